package handlers

import "net/http"

// DashboardHandler serves the summary counters.
type DashboardHandler struct {
	dashboard DashboardService
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary returns the dashboard counters.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
