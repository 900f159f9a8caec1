package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// Handler exposes HTTP endpoints for the payment method registry.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createReq struct {
	Description  string          `json:"description" validate:"required"`
	Rate         decimal.Decimal `json:"rate"`
	Method       string          `json:"method" validate:"required"`
	Installments int             `json:"installments" validate:"gte=0"`
	Status       string          `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

type updateReq struct {
	Description  *string          `json:"description"`
	Rate         *decimal.Decimal `json:"rate"`
	Method       *string          `json:"method"`
	Installments *int             `json:"installments"`
	Status       *string          `json:"status"`
}

// List handles GET /api/v1/payments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, methods)
}

// Create handles POST /api/v1/payments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.WriteError(w, r, common.ValidationError(err.Error()))
			return
		}
	}
	method, err := h.Svc.Create(r.Context(), CreateInput{
		Description:  req.Description,
		Rate:         req.Rate,
		Method:       req.Method,
		Installments: req.Installments,
		Status:       req.Status,
	})
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, method)
}

// Update handles PUT /api/v1/payments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var req updateReq
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	method, err := h.Svc.Update(r.Context(), id, UpdateInput(req))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, method)
}
