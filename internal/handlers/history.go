package handlers

import (
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
)

// HistoryHandler serves payment recording and service history.
type HistoryHandler struct {
	history HistoryService
}

// NewHistoryHandler creates a history handler
func NewHistoryHandler(history HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// AddService records the payment status of a service.
func (h *HistoryHandler) AddService(w http.ResponseWriter, r *http.Request) {
	var req maintenance.PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.history.RecordPayment(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*maintenance.PaymentResult
	}{"Payment status updated", result})
}

// AllHistories returns every history record.
func (h *HistoryHandler) AllHistories(w http.ResponseWriter, r *http.Request) {
	histories, err := h.history.Histories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, histories)
}

// UnpaidAssignments returns completed services awaiting payment.
func (h *HistoryHandler) UnpaidAssignments(w http.ResponseWriter, r *http.Request) {
	services, err := h.history.UnpaidCompletedAssignments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}
