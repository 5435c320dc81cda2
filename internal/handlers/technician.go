package handlers

import (
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// TechnicianHandler serves technician registration and assignments.
type TechnicianHandler struct {
	technicians TechnicianService
	assignments AssignmentService
}

// NewTechnicianHandler creates a technician handler
func NewTechnicianHandler(technicians TechnicianService, assignments AssignmentService) *TechnicianHandler {
	return &TechnicianHandler{technicians: technicians, assignments: assignments}
}

type registeredTechnician struct {
	*models.Technician
	Role models.Role `json:"role"`
}

// Register creates a technician and their login.
func (h *TechnicianHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req maintenance.RegisterTechnicianRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tech, err := h.technicians.RegisterTechnician(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registeredTechnician{Technician: tech, Role: models.RoleTechnician})
}

// List returns every technician profile.
func (h *TechnicianHandler) List(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.technicians.ListTechnicians(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, technicians)
}

type createAssignmentRequest struct {
	ServiceID string `json:"service_id"`
}

// CreateAssignment promotes a scheduled service to Assigned.
func (h *TechnicianHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.assignments.CreateAssignment(r.Context(), req.ServiceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*maintenance.AssignmentResult
	}{"Service assigned", result})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves the caller's own assignment to a new status.
func (h *TechnicianHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.assignments.UpdateAssignmentStatus(r.Context(), r.PathValue("serviceId"), req.Status, identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*maintenance.StatusResult
	}{"Assignment status updated", result})
}

// Assignments lists assignments visible to the caller.
func (h *TechnicianHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	services, err := h.assignments.TechnicianAssignments(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// PendingAssignments lists scheduled services waiting to be assigned.
func (h *TechnicianHandler) PendingAssignments(w http.ResponseWriter, r *http.Request) {
	services, err := h.assignments.PendingAssignments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}
