package api

import (
	"net/http"

	"shipment-sim-service/internal/api/handlers"
	"shipment-sim-service/internal/ports"
	"shipment-sim-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	assembler *services.Assembler,
	initializer *services.Initializer,
	processor *services.TickProcessor,
	coordinator *services.Coordinator,
	store ports.StateStore,
) http.Handler {
	mux := http.NewServeMux()

	simHandler := &handlers.SimulationHandler{
		Assembler:   assembler,
		Initializer: initializer,
		Store:       store,
	}
	tickHandler := &handlers.TickHandler{Processor: processor}
	sweepHandler := &handlers.SweepHandler{Coordinator: coordinator}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/simulations", simHandler.Start)
	mux.HandleFunc("/simulations/tick", tickHandler.Tick)
	mux.HandleFunc("/simulations/", simHandler.State)
	mux.HandleFunc("/internal/sweep", sweepHandler.Sweep)

	return loggingMiddleware(mux)
}
