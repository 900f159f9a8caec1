package budget

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// ItemRequest selects a catalog product and quantity.
type ItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ManualRequest is a free-form payment line typed by the seller.
type ManualRequest struct {
	Label        string          `json:"label"`
	Installments int             `json:"installments"`
	Amount       decimal.Decimal `json:"amount"`
}

// QuoteRequest is the payload accepted by quote and create. When Items is empty the
// caller's cart is priced instead.
type QuoteRequest struct {
	SellerID     *int64          `json:"sellerId"`
	VendedorID   *int64          `json:"vendedorId"`
	Items        []ItemRequest   `json:"items"`
	Payments     []int64         `json:"payments"`
	Warranties   []string        `json:"warranties"`
	Advance      decimal.Decimal `json:"advance"`
	Manual       []ManualRequest `json:"manual"`
	Mode         string          `json:"mode"`
	CustomerName string          `json:"customerName"`
	Notes        string          `json:"notes"`
}

// Seller returns the seller id, accepting either field name.
func (q QuoteRequest) Seller() (int64, bool) {
	if q.SellerID != nil {
		return *q.SellerID, true
	}
	if q.VendedorID != nil {
		return *q.VendedorID, true
	}
	return 0, false
}

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup from user supplied text and returns plain text.
func SanitizeText(s string) string {
	cleaned := textPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
