package budget

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-presupuesto/internal/cart"
	"github.com/noah-isme/backend-presupuesto/internal/catalog"
	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/events"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
	"github.com/noah-isme/backend-presupuesto/internal/pricing"
	"github.com/noah-isme/backend-presupuesto/internal/seller"
)

// ErrCodeEmpty is returned when a budget would be stored without any priced line.
const ErrCodeEmpty = "EMPTY_BUDGET"

// Store is the persistence surface for budgets.
type Store interface {
	CreateBudget(ctx context.Context, arg dbgen.CreateBudgetParams) (dbgen.Budget, error)
	CreateBudgetItem(ctx context.Context, arg dbgen.CreateBudgetItemParams) error
	CreateBudgetPayment(ctx context.Context, arg dbgen.CreateBudgetPaymentParams) error
	CountBudgets(ctx context.Context, arg dbgen.CountBudgetsParams) (int64, error)
	ListBudgets(ctx context.Context, arg dbgen.ListBudgetsParams) ([]dbgen.ListBudgetsRow, error)
	GetBudget(ctx context.Context, id int64) (dbgen.GetBudgetRow, error)
	ListBudgetItems(ctx context.Context, budgetID int64) ([]dbgen.BudgetItem, error)
	ListBudgetPaymentIDs(ctx context.Context, budgetID int64) ([]int64, error)
	DeleteBudget(ctx context.Context, id int64) (int64, error)
}

// TxFunc runs fn inside a transaction, committing when it returns nil.
type TxFunc func(ctx context.Context, fn func(Store) error) error

// PgxTx runs budget writes in a pgx transaction.
func PgxTx(pool *pgxpool.Pool, q *dbgen.Queries) TxFunc {
	return func(ctx context.Context, fn func(Store) error) error {
		tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()
		if err := fn(q.WithTx(tx)); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	}
}

// Catalog resolves product prices.
type Catalog interface {
	ProductsByID(ctx context.Context, ids []int64) (map[int64]catalog.Product, error)
}

// Carts loads the caller's cart.
type Carts interface {
	Get(ctx context.Context, userID string) (cart.Cart, error)
}

// Payments is the registry read boundary.
type Payments interface {
	ActiveOptions(ctx context.Context, ids []int64) ([]pricing.Method, error)
}

// Sellers validates sellers on create.
type Sellers interface {
	RequireActive(ctx context.Context, id int64) (seller.Seller, error)
}

// Emitter publishes domain events.
type Emitter interface {
	Emit(ctx context.Context, topic string, aggregateID int64, payload any) (events.Event, error)
}

// Service prices, stores, and lists budgets.
type Service struct {
	Store    Store
	InTx     TxFunc
	Catalog  Catalog
	Carts    Carts
	Payments Payments
	Sellers  Sellers
	Events   Emitter
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Line is a priced product line as stored with a budget.
type Line struct {
	ProductID int64           `json:"productId,omitempty"`
	Label     string          `json:"label"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Snapshot is everything needed to re-render a budget without re-pricing it.
type Snapshot struct {
	Result     pricing.Result        `json:"result"`
	Items      []Line                `json:"items"`
	Warranties []pricing.Warranty    `json:"warranties"`
	Manual     []pricing.ManualEntry `json:"manual"`
	Advance    decimal.Decimal       `json:"advance"`
	Seller     string                `json:"seller,omitempty"`
	Customer   string                `json:"customer,omitempty"`
	Notes      string                `json:"notes,omitempty"`
}

// Created is returned after a budget is stored.
type Created struct {
	ID     int64          `json:"id"`
	Result pricing.Result `json:"result"`
}

type prepared struct {
	mode       pricing.Mode
	lines      []Line
	methods    []pricing.Method
	warranties []pricing.Warranty
	manual     []pricing.ManualEntry
	advance    decimal.Decimal
	customer   string
	notes      string
}

func (p prepared) input() pricing.Input {
	items := make([]pricing.CartLine, 0, len(p.lines))
	for _, l := range p.lines {
		items = append(items, pricing.CartLine{
			ItemID:    strconv.FormatInt(l.ProductID, 10),
			Label:     l.Label,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return pricing.Input{
		Items:      items,
		Methods:    p.methods,
		Warranties: p.warranties,
		Advance:    p.advance,
		Manual:     p.manual,
		Mode:       p.mode,
	}
}

func (p prepared) snapshot(result pricing.Result, sellerName string) Snapshot {
	return Snapshot{
		Result:     result,
		Items:      p.lines,
		Warranties: p.warranties,
		Manual:     p.manual,
		Advance:    p.advance,
		Seller:     sellerName,
		Customer:   p.customer,
		Notes:      p.notes,
	}
}

// Quote prices the request without storing anything.
func (s *Service) Quote(ctx context.Context, userID string, req QuoteRequest) (pricing.Result, error) {
	ctx, span := otel.Tracer("budget.Service").Start(ctx, "BudgetService.Quote")
	defer span.End()

	p, err := s.prepare(ctx, userID, req)
	if err != nil {
		obs.ObserveQuote(ctx, string(modeOrDefault(req.Mode)), "error")
		return pricing.Result{}, err
	}
	result := pricing.Compute(p.input())
	outcome := "ok"
	if result.Empty() {
		outcome = "empty"
	}
	span.SetAttributes(attribute.String("budget.mode", string(p.mode)), attribute.String("budget.quote.result", outcome))
	obs.ObserveQuote(ctx, string(p.mode), outcome)
	return result, nil
}

// QuoteSnapshot prices the request and returns the renderable snapshot.
func (s *Service) QuoteSnapshot(ctx context.Context, userID string, req QuoteRequest) (Snapshot, error) {
	p, err := s.prepare(ctx, userID, req)
	if err != nil {
		return Snapshot{}, err
	}
	name := ""
	if id, ok := req.Seller(); ok && s.Sellers != nil {
		if sel, err := s.Sellers.RequireActive(ctx, id); err == nil {
			name = sel.FullName()
		}
	}
	return p.snapshot(pricing.Compute(p.input()), name), nil
}

// Create prices the request and stores header, items, payment ids, and the snapshot
// in one transaction.
func (s *Service) Create(ctx context.Context, userID string, req QuoteRequest) (Created, error) {
	ctx, span := otel.Tracer("budget.Service").Start(ctx, "BudgetService.Create")
	defer span.End()

	sellerID, ok := req.Seller()
	if !ok || sellerID <= 0 {
		return Created{}, common.ValidationError("sellerId is required")
	}
	uid, err := cart.ToUUID(userID)
	if err != nil {
		return Created{}, common.NewAppError("UNAUTHORIZED", "invalid user", http.StatusUnauthorized, err)
	}
	sel, err := s.Sellers.RequireActive(ctx, sellerID)
	if err != nil {
		return Created{}, err
	}

	p, err := s.prepare(ctx, userID, req)
	if err != nil {
		return Created{}, err
	}
	if len(p.lines) == 0 {
		return Created{}, emptyBudget("budget has no items")
	}
	result := pricing.Compute(p.input())
	if result.Empty() {
		return Created{}, emptyBudget("budget has no payment lines")
	}

	snapshot, err := json.Marshal(p.snapshot(result, sel.FullName()))
	if err != nil {
		return Created{}, fmt.Errorf("encode snapshot: %w", err)
	}
	warrantyIDs := make([]string, 0, len(p.warranties))
	for _, w := range p.warranties {
		warrantyIDs = append(warrantyIDs, w.ID)
	}

	var budgetID int64
	err = s.InTx(ctx, func(q Store) error {
		row, err := q.CreateBudget(ctx, dbgen.CreateBudgetParams{
			UserID:       uid,
			SellerID:     sel.ID,
			CustomerName: p.customer,
			Notes:        p.notes,
			Advance:      p.advance,
			Mode:         string(p.mode),
			Warranties:   warrantyIDs,
			Snapshot:     snapshot,
		})
		if err != nil {
			return fmt.Errorf("create budget: %w", err)
		}
		budgetID = row.ID
		for _, l := range p.lines {
			if err := q.CreateBudgetItem(ctx, dbgen.CreateBudgetItemParams{
				BudgetID:    row.ID,
				ProductID:   pgtype.Int8{Int64: l.ProductID, Valid: l.ProductID > 0},
				ProductName: l.Label,
				Category:    l.Category,
				Quantity:    int32(l.Quantity),
				UnitPrice:   l.UnitPrice,
			}); err != nil {
				return fmt.Errorf("create budget item: %w", err)
			}
		}
		for i, m := range p.methods {
			if err := q.CreateBudgetPayment(ctx, dbgen.CreateBudgetPaymentParams{
				BudgetID:  row.ID,
				PaymentID: m.ID,
				Position:  int32(i),
			}); err != nil {
				return fmt.Errorf("create budget payment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Created{}, err
	}

	span.SetAttributes(attribute.Int64("budget.id", budgetID), attribute.String("budget.mode", string(p.mode)))
	obs.ObserveBudgetCreated(string(p.mode))
	if s.Events != nil {
		payload := map[string]any{"budgetId": budgetID, "sellerId": sel.ID, "mode": p.mode, "items": len(p.lines)}
		if _, err := s.Events.Emit(ctx, events.TopicBudgetCreated, budgetID, payload); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("budget_id", budgetID).Msg("budget_event_emit_failed")
		}
	}
	return Created{ID: budgetID, Result: result}, nil
}

func (s *Service) prepare(ctx context.Context, userID string, req QuoteRequest) (prepared, error) {
	mode, ok := pricing.ParseMode(req.Mode)
	if !ok {
		return prepared{}, common.ValidationError("mode must be aggregate or per_item")
	}
	if req.Advance.IsNegative() {
		return prepared{}, common.ValidationError("advance must be greater than or equal to 0")
	}
	warranties, err := pricing.LookupWarranties(req.Warranties)
	if err != nil {
		return prepared{}, common.NewAppError("VALIDATION_ERROR", err.Error(), http.StatusBadRequest, err)
	}
	lines, err := s.resolveLines(ctx, userID, req.Items)
	if err != nil {
		return prepared{}, err
	}
	methods, err := s.Payments.ActiveOptions(ctx, req.Payments)
	if err != nil {
		return prepared{}, err
	}

	manual := make([]pricing.ManualEntry, 0, len(req.Manual))
	for _, m := range req.Manual {
		if !m.Amount.Equal(pricing.RoundMoney(m.Amount)) {
			return prepared{}, common.ValidationError(fmt.Sprintf("manual amount %s has more than %d decimals", m.Amount, pricing.MoneyPlaces))
		}
		manual = append(manual, pricing.ManualEntry{
			Label:          SanitizeText(m.Label),
			Installments:   m.Installments,
			PerInstallment: m.Amount,
		})
	}

	return prepared{
		mode:       mode,
		lines:      lines,
		methods:    methods,
		warranties: warranties,
		manual:     manual,
		advance:    pricing.RoundMoney(req.Advance),
		customer:   SanitizeText(req.CustomerName),
		notes:      SanitizeText(req.Notes),
	}, nil
}

func (s *Service) resolveLines(ctx context.Context, userID string, items []ItemRequest) ([]Line, error) {
	if len(items) == 0 {
		if s.Carts == nil || userID == "" {
			return nil, nil
		}
		c, err := s.Carts.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		lines := make([]Line, 0, len(c.Items))
		for _, it := range c.Items {
			if it.Quantity <= 0 {
				continue
			}
			lines = append(lines, Line{
				ProductID: it.ProductID,
				Label:     it.Name,
				Category:  it.Category,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
			})
		}
		return lines, nil
	}

	quantities := make(map[int64]int, len(items))
	order := make([]int64, 0, len(items))
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, common.ValidationError("productId must be positive")
		}
		if it.Quantity < 0 {
			return nil, common.ValidationError("quantity cannot be negative")
		}
		if _, seen := quantities[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
		if it.Quantity > math.MaxInt32 || quantities[it.ProductID] > math.MaxInt32 {
			return nil, common.ValidationError(fmt.Sprintf("quantity must be at most %d", math.MaxInt32))
		}
	}
	products, err := s.Catalog.ProductsByID(ctx, order)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(order))
	for _, id := range order {
		qty := quantities[id]
		if qty == 0 {
			continue
		}
		p := products[id]
		lines = append(lines, Line{
			ProductID: id,
			Label:     p.Name,
			Category:  p.Category,
			UnitPrice: p.Price,
			Quantity:  qty,
		})
	}
	return lines, nil
}

// ListParams filters the budget list.
type ListParams struct {
	DateFrom time.Time
	DateTo   time.Time
	SellerID int64
	Category string
	Page     int
	Limit    int
}

// Summary is a row in the budget list.
type Summary struct {
	ID           int64           `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	CustomerName string          `json:"customerName"`
	Mode         string          `json:"mode"`
	Advance      decimal.Decimal `json:"advance"`
	SellerID     int64           `json:"sellerId"`
	SellerName   string          `json:"sellerName"`
	CreatedBy    string          `json:"createdBy"`
	ItemCount    int64           `json:"itemCount"`
	Payments     []string        `json:"payments"`
}

// ListResult is one page of budgets.
type ListResult struct {
	Items []Summary
	Total int64
	Page  int
	Limit int
}

// List returns budgets newest first.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Limit < 1 {
		params.Limit = 20
	}
	params.Page, params.Limit = common.ClampPage(params.Page, params.Limit)
	from, to := timestamptz(params.DateFrom), timestamptz(params.DateTo)
	sellerID := pgtype.Int8{Int64: params.SellerID, Valid: params.SellerID > 0}
	category := pgtype.Text{String: params.Category, Valid: params.Category != ""}

	total, err := s.Store.CountBudgets(ctx, dbgen.CountBudgetsParams{DateFrom: from, DateTo: to, SellerID: sellerID, Category: category})
	if err != nil {
		return ListResult{}, fmt.Errorf("count budgets: %w", err)
	}
	rows, err := s.Store.ListBudgets(ctx, dbgen.ListBudgetsParams{
		DateFrom:    from,
		DateTo:      to,
		SellerID:    sellerID,
		Category:    category,
		LimitValue:  int32(params.Limit),
		OffsetValue: int32((params.Page - 1) * params.Limit),
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list budgets: %w", err)
	}
	items := make([]Summary, 0, len(rows))
	for _, row := range rows {
		payments := row.Payments
		if payments == nil {
			payments = []string{}
		}
		items = append(items, Summary{
			ID:           row.ID,
			CreatedAt:    row.CreatedAt.Time,
			CustomerName: row.CustomerName,
			Mode:         row.Mode,
			Advance:      row.Advance,
			SellerID:     row.SellerID,
			SellerName:   row.SellerName,
			CreatedBy:    row.CreatedBy,
			ItemCount:    row.ItemCount,
			Payments:     payments,
		})
	}
	return ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// Detail is a stored budget with its lines and snapshot.
type Detail struct {
	ID           int64           `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    string          `json:"createdBy"`
	SellerID     int64           `json:"sellerId"`
	SellerName   string          `json:"sellerName"`
	SellerNumber string          `json:"sellerNumber"`
	CustomerName string          `json:"customerName"`
	Notes        string          `json:"notes"`
	Advance      decimal.Decimal `json:"advance"`
	Mode         string          `json:"mode"`
	Warranties   []string        `json:"warranties"`
	Items        []Line          `json:"items"`
	PaymentIDs   []int64         `json:"paymentIds"`
	Snapshot     Snapshot        `json:"snapshot"`
}

// Get loads a stored budget.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	row, err := s.Store.GetBudget(ctx, id)
	if err != nil {
		if common.IsNoRows(err) {
			return Detail{}, common.NotFound("budget not found")
		}
		return Detail{}, fmt.Errorf("get budget: %w", err)
	}
	items, err := s.Store.ListBudgetItems(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("list budget items: %w", err)
	}
	paymentIDs, err := s.Store.ListBudgetPaymentIDs(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("list budget payments: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(row.Snapshot, &snap); err != nil {
		return Detail{}, fmt.Errorf("decode snapshot: %w", err)
	}

	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			ProductID: it.ProductID.Int64,
			Label:     it.ProductName,
			Category:  it.Category,
			UnitPrice: it.UnitPrice,
			Quantity:  int(it.Quantity),
		})
	}
	if paymentIDs == nil {
		paymentIDs = []int64{}
	}
	warranties := row.Warranties
	if warranties == nil {
		warranties = []string{}
	}
	return Detail{
		ID:           row.ID,
		CreatedAt:    row.CreatedAt.Time,
		CreatedBy:    row.CreatedBy,
		SellerID:     row.SellerID,
		SellerName:   row.SellerName,
		SellerNumber: row.SellerNumber,
		CustomerName: row.CustomerName,
		Notes:        row.Notes,
		Advance:      row.Advance,
		Mode:         row.Mode,
		Warranties:   warranties,
		Items:        lines,
		PaymentIDs:   paymentIDs,
		Snapshot:     snap,
	}, nil
}

// Delete removes a budget and announces it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.Store.DeleteBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return common.NotFound("budget not found")
	}
	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicBudgetDeleted, id, map[string]any{"budgetId": id}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("budget_id", id).Msg("budget_event_emit_failed")
		}
	}
	return nil
}

func emptyBudget(msg string) *common.AppError {
	return common.NewAppError(ErrCodeEmpty, msg, http.StatusUnprocessableEntity, nil)
}

func modeOrDefault(raw string) pricing.Mode {
	if m, ok := pricing.ParseMode(raw); ok {
		return m
	}
	return pricing.ModeAggregate
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
