package seller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// Handler exposes HTTP endpoints for sellers.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createReq struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	SellerNumber string `json:"sellerNumber" validate:"required"`
}

// List handles GET /api/v1/sellers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all")
	sellers, err := h.Svc.List(r.Context(), all == "1" || all == "true")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, sellers)
}

// Create handles POST /api/v1/sellers.
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
	seller, err := h.Svc.Create(r.Context(), CreateInput(req))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, seller)
}

// Activate handles PATCH /api/v1/sellers/{id}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles PATCH /api/v1/sellers/{id}/deactivate.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	seller, err := h.Svc.SetActive(r.Context(), id, active)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, seller)
}
