package budget

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-presupuesto/internal/cart"
	"github.com/noah-isme/backend-presupuesto/internal/catalog"
	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/document"
	"github.com/noah-isme/backend-presupuesto/internal/events"
	"github.com/noah-isme/backend-presupuesto/internal/pricing"
	"github.com/noah-isme/backend-presupuesto/internal/seller"
)

const testUser = "6f1c1a7e-2b7d-4c39-9a51-3c0f1e0b2a10"

type fakeStore struct {
	nextID      int64
	budgets     map[int64]dbgen.Budget
	items       map[int64][]dbgen.BudgetItem
	payments    map[int64][]dbgen.CreateBudgetPaymentParams
	failPayment bool
	lastList    dbgen.ListBudgetsParams
	lastCount   dbgen.CountBudgetsParams
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		budgets:  make(map[int64]dbgen.Budget),
		items:    make(map[int64][]dbgen.BudgetItem),
		payments: make(map[int64][]dbgen.CreateBudgetPaymentParams),
	}
}

// inTx restores the previous state when fn fails.
func (f *fakeStore) inTx(_ context.Context, fn func(Store) error) error {
	budgets := make(map[int64]dbgen.Budget, len(f.budgets))
	for k, v := range f.budgets {
		budgets[k] = v
	}
	items := make(map[int64][]dbgen.BudgetItem, len(f.items))
	for k, v := range f.items {
		items[k] = v
	}
	payments := make(map[int64][]dbgen.CreateBudgetPaymentParams, len(f.payments))
	for k, v := range f.payments {
		payments[k] = v
	}
	if err := fn(f); err != nil {
		f.budgets, f.items, f.payments = budgets, items, payments
		return err
	}
	return nil
}

func (f *fakeStore) CreateBudget(_ context.Context, arg dbgen.CreateBudgetParams) (dbgen.Budget, error) {
	f.nextID++
	row := dbgen.Budget{
		ID:           f.nextID,
		UserID:       arg.UserID,
		SellerID:     arg.SellerID,
		CustomerName: arg.CustomerName,
		Notes:        arg.Notes,
		Advance:      arg.Advance,
		Mode:         arg.Mode,
		Warranties:   arg.Warranties,
		Snapshot:     arg.Snapshot,
	}
	f.budgets[row.ID] = row
	return row, nil
}

func (f *fakeStore) CreateBudgetItem(_ context.Context, arg dbgen.CreateBudgetItemParams) error {
	f.items[arg.BudgetID] = append(f.items[arg.BudgetID], dbgen.BudgetItem{
		ID:          int64(len(f.items[arg.BudgetID]) + 1),
		BudgetID:    arg.BudgetID,
		ProductID:   arg.ProductID,
		ProductName: arg.ProductName,
		Category:    arg.Category,
		Quantity:    arg.Quantity,
		UnitPrice:   arg.UnitPrice,
	})
	return nil
}

func (f *fakeStore) CreateBudgetPayment(_ context.Context, arg dbgen.CreateBudgetPaymentParams) error {
	if f.failPayment {
		return errors.New("insert failed")
	}
	f.payments[arg.BudgetID] = append(f.payments[arg.BudgetID], arg)
	return nil
}

func (f *fakeStore) CountBudgets(_ context.Context, arg dbgen.CountBudgetsParams) (int64, error) {
	f.lastCount = arg
	return int64(len(f.budgets)), nil
}

func (f *fakeStore) ListBudgets(_ context.Context, arg dbgen.ListBudgetsParams) ([]dbgen.ListBudgetsRow, error) {
	f.lastList = arg
	ids := make([]int64, 0, len(f.budgets))
	for id := range f.budgets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]dbgen.ListBudgetsRow, 0, len(ids))
	for _, id := range ids {
		b := f.budgets[id]
		out = append(out, dbgen.ListBudgetsRow{
			ID:           b.ID,
			CustomerName: b.CustomerName,
			Mode:         b.Mode,
			Advance:      b.Advance,
			SellerID:     b.SellerID,
			ItemCount:    int64(len(f.items[id])),
		})
	}
	return out, nil
}

func (f *fakeStore) GetBudget(_ context.Context, id int64) (dbgen.GetBudgetRow, error) {
	b, ok := f.budgets[id]
	if !ok {
		return dbgen.GetBudgetRow{}, pgx.ErrNoRows
	}
	return dbgen.GetBudgetRow{
		ID:           b.ID,
		UserID:       b.UserID,
		SellerID:     b.SellerID,
		CustomerName: b.CustomerName,
		Notes:        b.Notes,
		Advance:      b.Advance,
		Mode:         b.Mode,
		Warranties:   b.Warranties,
		Snapshot:     b.Snapshot,
		CreatedAt:    pgtype.Timestamptz{},
		SellerName:   "Lucía Fernández",
		SellerNumber: "002",
		CreatedBy:    "vendedor1",
	}, nil
}

func (f *fakeStore) ListBudgetItems(_ context.Context, budgetID int64) ([]dbgen.BudgetItem, error) {
	return f.items[budgetID], nil
}

func (f *fakeStore) ListBudgetPaymentIDs(_ context.Context, budgetID int64) ([]int64, error) {
	var out []int64
	for _, p := range f.payments[budgetID] {
		out = append(out, p.PaymentID)
	}
	return out, nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, id int64) (int64, error) {
	if _, ok := f.budgets[id]; !ok {
		return 0, nil
	}
	delete(f.budgets, id)
	delete(f.items, id)
	delete(f.payments, id)
	return 1, nil
}

type fakeCatalog map[int64]catalog.Product

func (f fakeCatalog) ProductsByID(_ context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := make(map[int64]catalog.Product, len(ids))
	var missing []int64
	for _, id := range ids {
		p, ok := f[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out[id] = p
	}
	if len(missing) > 0 {
		return nil, common.NotFound("products not found").WithDetails(map[string]any{"ids": missing})
	}
	return out, nil
}

type fakeCarts map[string]cart.Cart

func (f fakeCarts) Get(_ context.Context, userID string) (cart.Cart, error) {
	return f[userID], nil
}

type fakePayments map[int64]pricing.Method

func (f fakePayments) ActiveOptions(_ context.Context, ids []int64) ([]pricing.Method, error) {
	out := make([]pricing.Method, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	var missing []int64
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		m, ok := f[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, m)
	}
	if len(missing) > 0 {
		return nil, common.NewAppError("PAYMENT_METHOD_UNAVAILABLE", "payment methods unavailable", http.StatusUnprocessableEntity, nil).
			WithDetails(map[string]any{"ids": missing})
	}
	return out, nil
}

type fakeSellers map[int64]seller.Seller

func (f fakeSellers) RequireActive(_ context.Context, id int64) (seller.Seller, error) {
	s, ok := f[id]
	if !ok {
		return seller.Seller{}, common.NotFound("seller not found")
	}
	if !s.Active {
		return seller.Seller{}, common.NewAppError("SELLER_INACTIVE", "seller is inactive", http.StatusUnprocessableEntity, nil)
	}
	return s, nil
}

type emitted struct {
	topic string
	id    int64
}

type fakeEmitter struct {
	events []emitted
	err    error
}

func (f *fakeEmitter) Emit(_ context.Context, topic string, id int64, _ any) (events.Event, error) {
	if f.err != nil {
		return events.Event{}, f.err
	}
	f.events = append(f.events, emitted{topic: topic, id: id})
	return events.Event{Topic: topic}, nil
}

type fakeRenderer struct {
	last document.Input
	err  error
}

func (f *fakeRenderer) Render(w io.Writer, in document.Input) error {
	if f.err != nil {
		return f.err
	}
	f.last = in
	_, err := io.WriteString(w, "%PDF-1.3 fake")
	return err
}
