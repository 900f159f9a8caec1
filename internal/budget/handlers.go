package budget

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
)

// Handler exposes HTTP endpoints for budgets.
type Handler struct {
	Svc      *Service
	Renderer Renderer
	Location *time.Location
}

// Quote handles POST /api/v1/budgets/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	result, err := h.Svc.Quote(r.Context(), userID, req)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	obs.Annotate(r.Context(), "pricing_mode", string(result.Mode))
	common.Data(w, http.StatusOK, result)
}

// QuotePDF handles POST /api/v1/budgets/quote/pdf.
func (h *Handler) QuotePDF(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	doc, err := h.Svc.QuotePDF(r.Context(), h.Renderer, userID, req)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	writePDF(w, "presupuesto.pdf", doc)
}

// Create handles POST /api/v1/budgets.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var req QuoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	created, err := h.Svc.Create(r.Context(), userID, req)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	obs.Annotate(r.Context(), "budget_id", strconv.FormatInt(created.ID, 10))
	obs.Annotate(r.Context(), "pricing_mode", string(created.Result.Mode))
	common.Data(w, http.StatusCreated, created)
}

// List handles GET /api/v1/budgets.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, 20)
	q := r.URL.Query()
	params := ListParams{Category: strings.TrimSpace(q.Get("category")), Page: page, Limit: limit}

	var err error
	if params.DateFrom, _, err = ParseDate(q.Get("dateFrom"), h.location()); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid dateFrom", nil)
		return
	}
	to, dateOnly, err := ParseDate(q.Get("dateTo"), h.location())
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid dateTo", nil)
		return
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1)
	}
	params.DateTo = to
	if raw := firstNonEmpty(q.Get("seller"), q.Get("sellerId"), q.Get("vendedorId")); raw != "" {
		id, ok := common.ParseID(raw)
		if !ok {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid sellerId", nil)
			return
		}
		params.SellerID = id
	}

	result, err := h.Svc.List(r.Context(), params)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.Page(w, result.Items, common.NewPagination(result.Page, result.Limit, result.Total))
}

// Detail handles GET /api/v1/budgets/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	obs.Annotate(r.Context(), "budget_id", strconv.FormatInt(id, 10))
	detail, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, detail)
}

// PDF handles GET /api/v1/budgets/{id}/pdf.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	obs.Annotate(r.Context(), "budget_id", strconv.FormatInt(id, 10))
	doc, err := h.Svc.PDF(r.Context(), h.Renderer, id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("presupuesto-%d.pdf", id), doc)
}

// Delete handles DELETE /api/v1/budgets/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	obs.Annotate(r.Context(), "budget_id", strconv.FormatInt(id, 10))
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

// ParseDate accepts RFC3339 timestamps or YYYY-MM-DD dates in loc. dateOnly reports
// the latter so callers can treat it as a whole day.
func ParseDate(raw string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err = time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err = time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func writePDF(w http.ResponseWriter, name string, doc []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
