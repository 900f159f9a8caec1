package auth

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// Handler exposes HTTP handlers for authentication and account endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=admin gerente vendedor"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles POST /api/v1/auth/register. Mounted behind RequireRole(admin).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	user, err := h.Service.Register(r.Context(), RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	result, err := h.Service.Login(r.Context(), req.Username, req.Password, r.UserAgent(), common.ClientIP(r))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, result)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := h.decode(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	result, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, result)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.ContentLength > 0 {
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(w, r, err)
			return
		}
	}
	principal, _ := PrincipalFrom(r.Context())
	if err := h.Service.Logout(r.Context(), req.RefreshToken, principal); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Profile handles GET /api/v1/auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	user, err := h.Service.Profile(r.Context(), userID)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, user)
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := common.DecodeJSON(r, dst); err != nil {
		return err
	}
	if h.Validate == nil {
		return nil
	}
	if err := h.Validate.Struct(dst); err != nil {
		return common.ValidationError(err.Error())
	}
	return nil
}
