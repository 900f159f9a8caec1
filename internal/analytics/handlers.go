package analytics

import (
	"net/http"
	"time"

	"github.com/noah-isme/backend-presupuesto/internal/budget"
	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// Handler exposes budget statistics endpoints.
type Handler struct {
	Svc      *Service
	Location *time.Location
}

// BudgetStats handles GET /api/v1/budgets/stats.
func (h *Handler) BudgetStats(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	query := r.URL.Query()
	from, _, err := budget.ParseDate(query.Get("dateFrom"), loc)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid dateFrom", nil)
		return
	}
	to, dateOnly, err := budget.ParseDate(query.Get("dateTo"), loc)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid dateTo", nil)
		return
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "dateFrom must be before dateTo", nil)
		return
	}
	stats, err := h.Svc.BudgetStats(r.Context(), from, to)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, stats)
}
