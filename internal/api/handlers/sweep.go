package handlers

import (
	"log"
	"net/http"

	"shipment-sim-service/internal/api/dto"
	"shipment-sim-service/internal/services"
)

// SweepHandler is the scheduler entry point; each call runs one coordinator
// sweep over the active-simulation set.
type SweepHandler struct {
	Coordinator *services.Coordinator
}

func (h *SweepHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := h.Coordinator.Sweep(r.Context())
	if err != nil {
		log.Printf("sweep failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.SweepResponse{
		Enqueued: summary.Enqueued,
		Skipped:  summary.Skipped,
		Cleaned:  summary.Cleaned,
		Errored:  summary.Errored,
	}

	writeJSON(w, r, http.StatusOK, res)
}
