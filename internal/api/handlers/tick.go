package handlers

import (
	"errors"
	"log"
	"net/http"

	"shipment-sim-service/internal/api/dto"
	"shipment-sim-service/internal/ports"
	"shipment-sim-service/internal/services"
)

// TickHandler is the worker entry point the dispatch boundary calls; one
// request advances one simulation.
type TickHandler struct {
	Processor *services.TickProcessor
}

func (h *TickHandler) Tick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.TickRequest

	defer r.Body.Close()
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	opts := services.TickOptions{
		TimeDelta:       req.TimeDelta,
		SpeedMultiplier: req.SpeedMultiplier,
	}

	result, err := h.Processor.Tick(r.Context(), req.ShipmentID, opts)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTickRequest):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ports.ErrStateNotFound):
			writeError(w, r, http.StatusNotFound, "simulation not found")
		case errors.Is(err, services.ErrInterpolationFailed):
			log.Printf("tick failed: %v", err)
			writeError(w, r, http.StatusUnprocessableEntity, "simulation marked as errored")
		default:
			log.Printf("tick failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	res := dto.TickResponse{
		ShipmentID:     result.ShipmentID,
		Status:         string(result.Status),
		Advanced:       result.Advanced,
		TraveledMeters: result.TraveledMeters,
		RouteMeters:    result.RouteMeters,
	}

	writeJSON(w, r, http.StatusOK, res)
}
