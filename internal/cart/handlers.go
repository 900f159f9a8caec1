package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// Handler exposes HTTP endpoints for the authenticated user's cart.
type Handler struct {
	Svc *Service
}

type addItemReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type updateItemReq struct {
	Quantity *int `json:"quantity"`
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// AddItem handles POST /api/v1/cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req addItemReq
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := h.Svc.AddItem(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondCart(w, r, userID, http.StatusCreated)
}

// UpdateItem handles PUT /api/v1/cart/items/{id}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	itemID, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var req updateItemReq
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if req.Quantity == nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "quantity is required", nil)
		return
	}
	if err := h.Svc.UpdateQty(r.Context(), userID, itemID, *req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondCart(w, r, userID, http.StatusOK)
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	itemID, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), userID, itemID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/v1/cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Clear(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, userID string, status int) {
	c, err := h.Svc.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, status, c)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "login required", nil)
		return "", false
	}
	return userID, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrInvalidInput) {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	common.WriteError(w, r, err)
}
