package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/pricing"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Queries is the subset of generated queries used by the cart.
type Queries interface {
	ListCartItems(ctx context.Context, userID pgtype.UUID) ([]dbgen.ListCartItemsRow, error)
	AddCartItem(ctx context.Context, arg dbgen.AddCartItemParams) (dbgen.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg dbgen.UpdateCartItemQuantityParams) (dbgen.CartItem, error)
	DeleteCartItem(ctx context.Context, arg dbgen.DeleteCartItemParams) (int64, error)
	ClearCart(ctx context.Context, userID pgtype.UUID) error
	GetProduct(ctx context.Context, id int64) (dbgen.Product, error)
}

// Service encapsulates cart domain operations. Every call is scoped to one user.
type Service struct {
	Q Queries
}

// Item is a cart line joined with its product.
type Item struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	ImageURL  string          `json:"imageUrl"`
	Stock     int             `json:"stock"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart is the user's current cart.
type Cart struct {
	Items     []Item          `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PricingLines converts the cart into engine input lines.
func (c Cart) PricingLines() []pricing.CartLine {
	lines := make([]pricing.CartLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, pricing.CartLine{
			ItemID:    strconv.FormatInt(it.ProductID, 10),
			Label:     it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return lines
}

// Get returns the user's cart.
func (s *Service) Get(ctx context.Context, userID string) (Cart, error) {
	uid, err := ToUUID(userID)
	if err != nil {
		return Cart{}, err
	}
	rows, err := s.Q.ListCartItems(ctx, uid)
	if err != nil {
		return Cart{}, fmt.Errorf("list cart items: %w", err)
	}
	out := Cart{Items: make([]Item, 0, len(rows)), Subtotal: decimal.Zero}
	for _, row := range rows {
		qty := decimal.NewFromInt(int64(row.Quantity))
		item := Item{
			ID:        row.ID,
			ProductID: row.ProductID,
			Name:      row.Name,
			Category:  row.Category,
			ImageURL:  row.ImageUrl,
			Stock:     int(row.Stock),
			UnitPrice: row.Price,
			Quantity:  int(row.Quantity),
			Subtotal:  row.Price.Mul(qty),
		}
		out.Items = append(out.Items, item)
		out.ItemCount += item.Quantity
		out.Subtotal = out.Subtotal.Add(item.Subtotal)
	}
	return out, nil
}

// AddItem adds a product, merging the quantity into an existing line.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, qty int) error {
	if qty < 1 || productID <= 0 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if qty > math.MaxInt32 {
		return fmt.Errorf("%w: quantity must be at most %d", ErrInvalidInput, math.MaxInt32)
	}
	uid, err := ToUUID(userID)
	if err != nil {
		return err
	}
	if _, err := s.Q.GetProduct(ctx, productID); err != nil {
		if common.IsNoRows(err) {
			return common.NotFound("product not found")
		}
		return fmt.Errorf("get product: %w", err)
	}
	if _, err := s.Q.AddCartItem(ctx, dbgen.AddCartItemParams{UserID: uid, ProductID: productID, Quantity: int32(qty)}); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// UpdateQty sets the quantity of a line; zero removes it.
func (s *Service) UpdateQty(ctx context.Context, userID string, itemID int64, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}
	if qty > math.MaxInt32 {
		return fmt.Errorf("%w: quantity must be at most %d", ErrInvalidInput, math.MaxInt32)
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}
	uid, err := ToUUID(userID)
	if err != nil {
		return err
	}
	if _, err := s.Q.UpdateCartItemQuantity(ctx, dbgen.UpdateCartItemQuantityParams{ID: itemID, UserID: uid, Quantity: int32(qty)}); err != nil {
		if common.IsNoRows(err) {
			return common.NotFound("cart item not found")
		}
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes a line owned by the user.
func (s *Service) RemoveItem(ctx context.Context, userID string, itemID int64) error {
	uid, err := ToUUID(userID)
	if err != nil {
		return err
	}
	n, err := s.Q.DeleteCartItem(ctx, dbgen.DeleteCartItemParams{ID: itemID, UserID: uid})
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if n == 0 {
		return common.NotFound("cart item not found")
	}
	return nil
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	uid, err := ToUUID(userID)
	if err != nil {
		return err
	}
	if err := s.Q.ClearCart(ctx, uid); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ToUUID parses a user id into its pgtype form.
func ToUUID(value string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid user id", ErrInvalidInput)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

// UUIDString formats a pgtype UUID; invalid values yield "".
func UUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
