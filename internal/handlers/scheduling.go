package handlers

import (
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchedulingHandler serves the scheduling board.
type SchedulingHandler struct {
	scheduler SchedulingService
}

// NewSchedulingHandler creates a scheduling handler
func NewSchedulingHandler(scheduler SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{scheduler: scheduler}
}

// Vehicle returns one vehicle by VIN.
func (h *SchedulingHandler) Vehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.scheduler.Vehicle(r.Context(), r.PathValue("vin"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicle": vehicle})
}

// AvailableTechnicians lists technicians free today, filtered by the
// serviceType query parameter.
func (h *SchedulingHandler) AvailableTechnicians(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.scheduler.AvailableTechnicians(r.Context(), r.URL.Query().Get("serviceType"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"technician": technicians})
}

// Schedule updates the open work order of a vehicle.
func (h *SchedulingHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req maintenance.ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.scheduler.ScheduleOrUpdate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message   string             `json:"message"`
		ServiceID primitive.ObjectID `json:"service_id"`
	}{"Service updated", id})
}

// ScheduledServices lists every service.
func (h *SchedulingHandler) ScheduledServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.scheduler.ScheduledServices(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scheduled_services": services})
}

// Unassigned lists services with no technician attached.
func (h *SchedulingHandler) Unassigned(w http.ResponseWriter, r *http.Request) {
	services, err := h.scheduler.UnassignedServices(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unassigned_services": services})
}

// Complete marks a service completed, optionally paid.
func (h *SchedulingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req maintenance.CompleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.scheduler.CompleteService(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*maintenance.CompletionResult
	}{"Service marked completed", result})
}
