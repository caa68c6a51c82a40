package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"shipment-sim-service/internal/api/dto"
	"shipment-sim-service/internal/ports"
	"shipment-sim-service/internal/services"
)

// SimulationHandler exposes simulation lifecycle endpoints: start, read state,
// and the explicit (rarely used) delete.
type SimulationHandler struct {
	Assembler   *services.Assembler
	Initializer *services.Initializer
	Store       ports.StateStore
}

// Start assembles a SimulationInput for the requested shipment and starts a
// simulation for it. Duplicate starts report "already running".
func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.StartSimulationRequest

	defer r.Body.Close()
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.ShipmentID) == "" {
		writeError(w, r, http.StatusBadRequest, "shipment_id is required")
		return
	}

	input, err := h.Assembler.Assemble(r.Context(), req.ShipmentID)
	if err != nil {
		status, msg := assemblyErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("assemble simulation input failed: %v", err)
		}
		writeError(w, r, status, msg)
		return
	}

	result, err := h.Initializer.Start(r.Context(), input)
	if err != nil {
		log.Printf("start simulation failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.StartSimulationResponse{
		Started: result.Started,
		Reason:  result.Reason,
		Warning: result.Warning,
	}

	status := http.StatusCreated
	if !result.Started {
		status = http.StatusOK
	}
	writeJSON(w, r, status, res)
}

// State serves GET (read state) and DELETE (explicit removal) on
// /simulations/{shipmentID}.
func (h *SimulationHandler) State(w http.ResponseWriter, r *http.Request) {
	shipmentID := strings.TrimPrefix(r.URL.Path, "/simulations/")
	if shipmentID == "" || strings.Contains(shipmentID, "/") {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, shipmentID)
	case http.MethodDelete:
		h.delete(w, r, shipmentID)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *SimulationHandler) get(w http.ResponseWriter, r *http.Request, shipmentID string) {
	v, err := h.Store.Get(r.Context(), shipmentID)
	if errors.Is(err, ports.ErrStateNotFound) {
		writeError(w, r, http.StatusNotFound, "simulation not found")
		return
	}
	if err != nil {
		log.Printf("get simulation state failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.VehicleResponse{
		ID:         v.ID,
		ShipmentID: v.ShipmentID,
		Status:     string(v.Status),
		CurrentPosition: dto.PositionResponse{
			Lon: v.CurrentPosition.Lon,
			Lat: v.CurrentPosition.Lat,
		},
		Bearing:          v.Bearing,
		RouteDistance:    v.RouteDistance,
		TraveledDistance: v.TraveledDistance,
		LastUpdateTime:   v.LastUpdateTime,
		DriverName:       v.DriverName,
		TruckID:          v.TruckID,
		RecipientName:    v.RecipientName,
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *SimulationHandler) delete(w http.ResponseWriter, r *http.Request, shipmentID string) {
	if err := h.Store.Delete(r.Context(), shipmentID); err != nil {
		log.Printf("delete simulation state failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := h.Store.RemoveActive(r.Context(), shipmentID); err != nil {
		log.Printf("deregister deleted simulation failed: %v", err)
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

// assemblyErrorStatus maps the assembler's named failure conditions onto HTTP
// statuses.
func assemblyErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrShipmentNotFound):
		return http.StatusNotFound, "shipment not found"
	case errors.Is(err, services.ErrMissingOriginData),
		errors.Is(err, services.ErrInvalidOriginCoordinates),
		errors.Is(err, services.ErrMissingDestinationData),
		errors.Is(err, services.ErrInvalidDestinationCoordinates),
		errors.Is(err, services.ErrMissingDeliveryDate):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrRouteServiceUnavailable):
		return http.StatusBadGateway, "route service unavailable"
	}
	return http.StatusInternalServerError, "internal server error"
}
