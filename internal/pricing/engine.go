package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects how the cart is priced against each payment method.
type Mode string

const (
	// ModeAggregate prices the whole cart subtotal once per method.
	ModeAggregate Mode = "aggregate"
	// ModePerItem prices each cart line independently per method.
	ModePerItem Mode = "per_item"
)

// ParseMode converts a raw mode string; empty input selects ModeAggregate.
func ParseMode(raw string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "aggregate", "total":
		return ModeAggregate, true
	case "per_item", "per-item", "peritem", "item":
		return ModePerItem, true
	default:
		return "", false
	}
}

// Kind decides the sign of a method rate: card surcharges, everything else discounts.
type Kind string

const (
	KindCard  Kind = "card"
	KindCash  Kind = "cash"
	KindOther Kind = "other"
)

// LineKind distinguishes registry-backed lines from ad hoc manual entries.
type LineKind string

const (
	LineMethod LineKind = "method"
	LineManual LineKind = "manual"
)

// CartLine is a single priced product in the cart.
type CartLine struct {
	ItemID    string          `json:"itemId"`
	Label     string          `json:"label"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Method is a validated payment method option. Rate is a fraction (0.05 = 5%).
type Method struct {
	ID           int64           `json:"id"`
	Label        string          `json:"label"`
	Installments int             `json:"installments"`
	Rate         decimal.Decimal `json:"rate"`
	Kind         Kind            `json:"kind"`
}

// ManualEntry is a free-form payment line appended verbatim to the result.
type ManualEntry struct {
	Label          string          `json:"label"`
	Installments   int             `json:"installments"`
	PerInstallment decimal.Decimal `json:"amount"`
}

// Input holds everything a budget computation depends on.
type Input struct {
	Items      []CartLine
	Methods    []Method
	Warranties []Warranty
	Advance    decimal.Decimal
	Manual     []ManualEntry
	Mode       Mode
}

// Line is one priced payment option.
type Line struct {
	Kind           LineKind        `json:"kind"`
	MethodID       int64           `json:"methodId,omitempty"`
	Label          string          `json:"methodLabel"`
	Installments   int             `json:"installmentCount"`
	PerInstallment decimal.Decimal `json:"perInstallmentAmount"`
	Total          decimal.Decimal `json:"totalAmount"`
}

// Scope describes the amounts a set of lines was priced from.
type Scope struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	WarrantyExtra decimal.Decimal `json:"warrantyExtra"`
	Advance       decimal.Decimal `json:"advance"`
	Base          decimal.Decimal `json:"base"`
}

// Group is the per-item breakdown produced in ModePerItem.
type Group struct {
	ItemID    string          `json:"itemId"`
	Label     string          `json:"label"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Scope     Scope           `json:"scope"`
	Lines     []Line          `json:"lines"`
}

// Result is the priced breakdown. Lines is set in aggregate mode, Groups in per-item mode.
type Result struct {
	Mode   Mode    `json:"mode"`
	Scope  *Scope  `json:"scope,omitempty"`
	Lines  []Line  `json:"lines,omitempty"`
	Groups []Group `json:"groups,omitempty"`
}

// Empty reports whether the computation produced no payment lines.
func (r Result) Empty() bool {
	if len(r.Lines) > 0 {
		return false
	}
	for _, g := range r.Groups {
		if len(g.Lines) > 0 {
			return false
		}
	}
	return true
}

var one = decimal.NewFromInt(1)

// Compute prices the cart against every selected method. It never mutates in.
func Compute(in Input) Result {
	mode := in.Mode
	if mode != ModePerItem {
		mode = ModeAggregate
	}
	res := Result{Mode: mode}

	items := make([]CartLine, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return res
	}

	methods := usableMethods(in.Methods)
	manual := usableManual(in.Manual)
	if len(methods) == 0 && len(manual) == 0 {
		return res
	}

	surcharge := TotalSurcharge(in.Warranties)
	advance := in.Advance
	if advance.IsNegative() {
		advance = decimal.Zero
	}

	if mode == ModeAggregate {
		subtotal := decimal.Zero
		for _, it := range items {
			subtotal = subtotal.Add(it.Subtotal())
		}
		scope := priceScope(subtotal, surcharge, advance)
		res.Scope = &scope
		res.Lines = priceLines(scope.Base, methods, manual)
		return res
	}

	res.Groups = make([]Group, 0, len(items))
	for _, it := range items {
		scope := priceScope(it.Subtotal(), surcharge, advance)
		res.Groups = append(res.Groups, Group{
			ItemID:    it.ItemID,
			Label:     it.Label,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Scope:     scope,
			Lines:     priceLines(scope.Base, methods, manual),
		})
	}
	return res
}

func priceScope(subtotal, surcharge, advance decimal.Decimal) Scope {
	extra := subtotal.Mul(surcharge)
	base := subtotal.Add(extra).Sub(advance)
	if base.IsNegative() {
		base = decimal.Zero
	}
	return Scope{Subtotal: subtotal, WarrantyExtra: extra, Advance: advance, Base: base}
}

func priceLines(base decimal.Decimal, methods []Method, manual []ManualEntry) []Line {
	lines := make([]Line, 0, len(methods)+len(manual))
	for _, m := range methods {
		var raw decimal.Decimal
		if m.Kind == KindCard {
			raw = base.Mul(one.Add(m.Rate))
		} else {
			raw = base.Mul(one.Sub(m.Rate))
		}
		if raw.IsNegative() {
			raw = decimal.Zero
		}
		per, total := SplitInstallments(raw, m.Installments)
		lines = append(lines, Line{
			Kind:           LineMethod,
			MethodID:       m.ID,
			Label:          m.Label,
			Installments:   m.Installments,
			PerInstallment: per,
			Total:          total,
		})
	}
	for _, e := range manual {
		per := e.PerInstallment
		lines = append(lines, Line{
			Kind:           LineManual,
			Label:          e.Label,
			Installments:   e.Installments,
			PerInstallment: per,
			Total:          per.Mul(decimal.NewFromInt(int64(e.Installments))),
		})
	}
	return lines
}

func usableMethods(in []Method) []Method {
	out := make([]Method, 0, len(in))
	for _, m := range in {
		if m.Installments < 1 || m.Rate.IsNegative() {
			continue
		}
		out = append(out, m)
	}
	return out
}

func usableManual(in []ManualEntry) []ManualEntry {
	out := make([]ManualEntry, 0, len(in))
	for _, e := range in {
		if e.Installments < 1 || !e.PerInstallment.IsPositive() {
			continue
		}
		out = append(out, e)
	}
	return out
}
