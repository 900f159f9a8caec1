package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	"github.com/noah-isme/backend-presupuesto/internal/security"
)

// Handler exposes catalog endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, validate: cfg.Validate}
}

type productReq struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
}

func (p productReq) input() ProductInput {
	return ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListCategories(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Products handles GET /api/v1/products with search, category filter, and pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.service.DefaultLimit())
	q := r.URL.Query()
	result, err := h.service.ListProducts(r.Context(), ListParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.Page(w, result.Items, common.NewPagination(result.Page, result.Limit, result.Total))
}

// ProductDetail handles GET /api/v1/products/{id}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, product)
}

// Create handles POST /api/v1/products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := h.decode(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	product, err := h.service.CreateProduct(r.Context(), req.input())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, product)
}

// Update handles PUT /api/v1/products/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var req productReq
	if err := h.decode(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), id, req.input())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, product)
}

// Delete handles DELETE /api/v1/products/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bulk handles POST /api/v1/products/bulk.
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	var rows []BulkRow
	if err := common.DecodeJSON(r, &rows); err != nil {
		common.WriteError(w, r, err)
		return
	}
	result, err := h.service.BulkUpsert(r.Context(), rows)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, result)
}

// Import handles POST /api/v1/products/import with a multipart xlsx upload in "file".
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		if security.IsTooLarge(err) {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload too large", nil)
			return
		}
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "file is required", nil)
			return
		}
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.service.ImportXLSX(r.Context(), file)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, result)
}

func (h *Handler) decode(r *http.Request, dst *productReq) error {
	if err := common.DecodeJSON(r, dst); err != nil {
		return err
	}
	if h.validate != nil {
		if err := h.validate.Struct(dst); err != nil {
			return common.ValidationError(err.Error())
		}
	}
	return nil
}
