package seller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
)

// Queries is the subset of generated queries used by the seller registry.
type Queries interface {
	CreateSeller(ctx context.Context, arg dbgen.CreateSellerParams) (dbgen.Seller, error)
	GetSeller(ctx context.Context, id int64) (dbgen.Seller, error)
	ListSellers(ctx context.Context, includeInactive bool) ([]dbgen.Seller, error)
	SetSellerActive(ctx context.Context, arg dbgen.SetSellerActiveParams) (dbgen.Seller, error)
}

// Service manages sellers.
type Service struct {
	Q Queries
}

// Seller is the API representation of a seller.
type Seller struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	SellerNumber string    `json:"sellerNumber"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FullName joins first and last name.
func (s Seller) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// CreateInput carries the fields for a new seller.
type CreateInput struct {
	FirstName    string
	LastName     string
	SellerNumber string
}

// List returns active sellers ordered by number, or all of them when includeInactive is set.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Seller, error) {
	rows, err := s.Q.ListSellers(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}
	out := make([]Seller, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSeller(row))
	}
	return out, nil
}

// Create stores a new active seller.
func (s *Service) Create(ctx context.Context, in CreateInput) (Seller, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	number := strings.TrimSpace(in.SellerNumber)
	if first == "" || last == "" || number == "" {
		return Seller{}, common.ValidationError("firstName, lastName and sellerNumber are required")
	}
	row, err := s.Q.CreateSeller(ctx, dbgen.CreateSellerParams{
		FirstName:    first,
		LastName:     last,
		SellerNumber: number,
		Active:       true,
	})
	if err != nil {
		if common.IsUniqueViolation(err) {
			return Seller{}, common.NewAppError("SELLER_NUMBER_TAKEN", "seller number already exists", http.StatusConflict, err)
		}
		return Seller{}, fmt.Errorf("create seller: %w", err)
	}
	return toSeller(row), nil
}

// SetActive toggles the active flag.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (Seller, error) {
	row, err := s.Q.SetSellerActive(ctx, dbgen.SetSellerActiveParams{ID: id, Active: active})
	if err != nil {
		if common.IsNoRows(err) {
			return Seller{}, common.NotFound("seller not found")
		}
		return Seller{}, fmt.Errorf("set seller active: %w", err)
	}
	return toSeller(row), nil
}

// RequireActive loads a seller and fails unless it exists and is active.
func (s *Service) RequireActive(ctx context.Context, id int64) (Seller, error) {
	row, err := s.Q.GetSeller(ctx, id)
	if err != nil {
		if common.IsNoRows(err) {
			return Seller{}, common.NotFound("seller not found")
		}
		return Seller{}, fmt.Errorf("get seller: %w", err)
	}
	if !row.Active {
		return Seller{}, common.NewAppError("SELLER_INACTIVE", "seller is not active", http.StatusUnprocessableEntity, nil)
	}
	return toSeller(row), nil
}

func toSeller(row dbgen.Seller) Seller {
	return Seller{
		ID:           row.ID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		SellerNumber: row.SellerNumber,
		Active:       row.Active,
		CreatedAt:    row.CreatedAt.Time,
	}
}
