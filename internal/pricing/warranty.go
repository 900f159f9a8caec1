package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Warranty is an optional add-on priced as a percentage of the scope subtotal.
type Warranty struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	SurchargePct decimal.Decimal `json:"surchargePct"`
}

var warrantyCatalog = []Warranty{
	{ID: "g12", Label: "GARANTÍA EXTENDIDA 12 MESES + MAX PROTECCIÓN", SurchargePct: decimal.RequireFromString("0.095")},
	{ID: "g24", Label: "GARANTÍA EXTENDIDA 24 MESES + MAX PROTECCIÓN", SurchargePct: decimal.RequireFromString("0.18")},
	{ID: "f12", Label: "FALLÓ CAMBIÓ 12 MESES + MAX PROTECCIÓN", SurchargePct: decimal.RequireFromString("0.19")},
}

// Warranties returns a copy of the fixed warranty catalog.
func Warranties() []Warranty {
	return append([]Warranty(nil), warrantyCatalog...)
}

// LookupWarranties resolves ids against the catalog, dropping duplicates and keeping request order.
func LookupWarranties(ids []string) ([]Warranty, error) {
	out := make([]Warranty, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	var unknown []string
	for _, raw := range ids {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		w, ok := findWarranty(id)
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		out = append(out, w)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown warranties: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// TotalSurcharge sums the surcharge percentages of the toggled warranties.
func TotalSurcharge(ws []Warranty) decimal.Decimal {
	total := decimal.Zero
	for _, w := range ws {
		if w.SurchargePct.IsNegative() {
			continue
		}
		total = total.Add(w.SurchargePct)
	}
	return total
}

func findWarranty(id string) (Warranty, bool) {
	for _, w := range warrantyCatalog {
		if w.ID == id {
			return w, true
		}
	}
	return Warranty{}, false
}
