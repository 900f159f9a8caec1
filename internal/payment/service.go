package payment

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/pricing"
)

// Status values accepted for payment methods.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// ErrCodeUnavailable is returned when requested methods cannot feed the engine.
const ErrCodeUnavailable = "PAYMENT_METHOD_UNAVAILABLE"

// MaxInstallments is the largest installment count the registry stores.
const MaxInstallments = math.MaxInt32

var (
	hundred           = decimal.NewFromInt(100)
	installmentsRange = fmt.Sprintf("installments must be between 1 and %d", MaxInstallments)
)

// Queries is the subset of generated queries used by the registry.
type Queries interface {
	CreatePaymentMethod(ctx context.Context, arg dbgen.CreatePaymentMethodParams) (dbgen.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id int64) (dbgen.PaymentMethod, error)
	GetPaymentMethodsByIDs(ctx context.Context, ids []int64) ([]dbgen.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, status pgtype.Text) ([]dbgen.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, arg dbgen.UpdatePaymentMethodParams) (dbgen.PaymentMethod, error)
}

// Service manages payment method records and exposes the active-option read boundary.
type Service struct {
	Q Queries
}

// Method is the API representation of a payment method record.
type Method struct {
	ID           int64           `json:"id"`
	Description  string          `json:"description"`
	Rate         decimal.Decimal `json:"rate"`
	Method       string          `json:"method"`
	Installments int             `json:"installments"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateInput carries the fields for a new payment method.
type CreateInput struct {
	Description  string
	Rate         decimal.Decimal
	Method       string
	Installments int
	Status       string
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Description  *string
	Rate         *decimal.Decimal
	Method       *string
	Installments *int
	Status       *string
}

// Empty reports whether no field was supplied.
func (in UpdateInput) Empty() bool {
	return in.Description == nil && in.Rate == nil && in.Method == nil && in.Installments == nil && in.Status == nil
}

// ValidStatus reports whether status is a known payment method status.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusPending:
		return true
	default:
		return false
	}
}

// List returns all methods ordered by description, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]Method, error) {
	filter := pgtype.Text{}
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		if !ValidStatus(status) {
			return nil, common.ValidationError("status must be one of active, inactive, pending")
		}
		filter = pgtype.Text{String: status, Valid: true}
	}
	rows, err := s.Q.ListPaymentMethods(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	out := make([]Method, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMethod(row))
	}
	return out, nil
}

// Create validates and stores a new payment method.
func (s *Service) Create(ctx context.Context, in CreateInput) (Method, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return Method{}, common.ValidationError("description is required")
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		return Method{}, common.ValidationError("method is required")
	}
	if in.Rate.IsNegative() {
		return Method{}, common.ValidationError("rate must be greater than or equal to 0")
	}
	installments := in.Installments
	if installments == 0 {
		installments = 1
	}
	if installments < 1 || installments > MaxInstallments {
		return Method{}, common.ValidationError(installmentsRange)
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return Method{}, common.ValidationError("status must be one of active, inactive, pending")
	}

	row, err := s.Q.CreatePaymentMethod(ctx, dbgen.CreatePaymentMethodParams{
		Description:  description,
		Rate:         in.Rate,
		Method:       method,
		Installments: int32(installments),
		Status:       status,
	})
	if err != nil {
		return Method{}, fmt.Errorf("create payment method: %w", err)
	}
	return toMethod(row), nil
}

// Update applies a partial update to an existing method.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Method, error) {
	if in.Empty() {
		return Method{}, common.ValidationError("no fields to update")
	}
	arg := dbgen.UpdatePaymentMethodParams{ID: id}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		if v == "" {
			return Method{}, common.ValidationError("description cannot be empty")
		}
		arg.Description = pgtype.Text{String: v, Valid: true}
	}
	if in.Rate != nil {
		if in.Rate.IsNegative() {
			return Method{}, common.ValidationError("rate must be greater than or equal to 0")
		}
		arg.Rate = decimal.NullDecimal{Decimal: *in.Rate, Valid: true}
	}
	if in.Method != nil {
		v := strings.TrimSpace(*in.Method)
		if v == "" {
			return Method{}, common.ValidationError("method cannot be empty")
		}
		arg.Method = pgtype.Text{String: v, Valid: true}
	}
	if in.Installments != nil {
		if *in.Installments < 1 || *in.Installments > MaxInstallments {
			return Method{}, common.ValidationError(installmentsRange)
		}
		arg.Installments = pgtype.Int4{Int32: int32(*in.Installments), Valid: true}
	}
	if in.Status != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Status))
		if !ValidStatus(v) {
			return Method{}, common.ValidationError("status must be one of active, inactive, pending")
		}
		arg.Status = pgtype.Text{String: v, Valid: true}
	}

	row, err := s.Q.UpdatePaymentMethod(ctx, arg)
	if err != nil {
		if common.IsNoRows(err) {
			return Method{}, common.NotFound("payment method not found")
		}
		return Method{}, fmt.Errorf("update payment method: %w", err)
	}
	return toMethod(row), nil
}

// ActiveOptions loads the requested methods and converts them into engine options,
// keeping the caller's order. Unknown, inactive, or malformed ids fail the whole call.
func (s *Service) ActiveOptions(ctx context.Context, ids []int64) ([]pricing.Method, error) {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.ActiveOptions")
	defer span.End()
	span.SetAttributes(attribute.Int("payment.requested", len(ids)))

	if len(ids) == 0 {
		return nil, nil
	}
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	rows, err := s.Q.GetPaymentMethodsByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}
	byID := make(map[int64]dbgen.PaymentMethod, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	options := make([]pricing.Method, 0, len(unique))
	var unavailable []int64
	for _, id := range unique {
		row, ok := byID[id]
		if !ok || row.Status != StatusActive {
			unavailable = append(unavailable, id)
			continue
		}
		option, ok := ToOption(row)
		if !ok {
			unavailable = append(unavailable, id)
			continue
		}
		options = append(options, option)
	}
	if len(unavailable) > 0 {
		span.SetAttributes(attribute.Int("payment.unavailable", len(unavailable)))
		return nil, common.NewAppError(ErrCodeUnavailable, "payment methods unavailable", http.StatusUnprocessableEntity, nil).
			WithDetails(map[string]any{"ids": unavailable})
	}
	return options, nil
}

// ToOption normalises a record into an engine option. It reports false for records
// the engine cannot price.
func ToOption(row dbgen.PaymentMethod) (pricing.Method, bool) {
	if row.Installments < 1 || row.Rate.IsNegative() {
		return pricing.Method{}, false
	}
	label := strings.TrimSpace(row.Description)
	if label == "" {
		return pricing.Method{}, false
	}
	return pricing.Method{
		ID:           row.ID,
		Label:        label,
		Installments: int(row.Installments),
		Rate:         NormalizeRate(row.Rate),
		Kind:         KindOf(row.Method),
	}, true
}

// NormalizeRate converts percentages (values above 1) into fractions.
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// KindOf maps the free-form method name to the engine's rate sign.
func KindOf(method string) pricing.Kind {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "tarjeta", "card", "credito", "crédito", "debito", "débito":
		return pricing.KindCard
	case "efectivo", "cash", "contado", "transferencia":
		return pricing.KindCash
	default:
		return pricing.KindOther
	}
}

func toMethod(row dbgen.PaymentMethod) Method {
	return Method{
		ID:           row.ID,
		Description:  row.Description,
		Rate:         row.Rate,
		Method:       row.Method,
		Installments: int(row.Installments),
		Status:       row.Status,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
