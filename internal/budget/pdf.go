package budget

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/noah-isme/backend-presupuesto/internal/document"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
)

// Renderer draws a budget document.
type Renderer interface {
	Render(w io.Writer, in document.Input) error
}

// PDF renders a stored budget from its snapshot.
func (s *Service) PDF(ctx context.Context, r Renderer, id int64) ([]byte, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in := documentInput(d.Snapshot)
	in.Number = d.ID
	in.IssuedAt = d.CreatedAt
	if in.Seller == "" {
		in.Seller = d.SellerName
	}
	return render(r, "stored", in)
}

// QuotePDF prices the request and renders it without storing.
func (s *Service) QuotePDF(ctx context.Context, r Renderer, userID string, req QuoteRequest) ([]byte, error) {
	snap, err := s.QuoteSnapshot(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	in := documentInput(snap)
	in.IssuedAt = s.now()
	return render(r, "quote", in)
}

func render(r Renderer, source string, in document.Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, in); err != nil {
		obs.ObservePDF(source, "error")
		return nil, fmt.Errorf("render budget: %w", err)
	}
	obs.ObservePDF(source, "ok")
	return buf.Bytes(), nil
}

func documentInput(snap Snapshot) document.Input {
	items := make([]document.Item, 0, len(snap.Items))
	for _, l := range snap.Items {
		items = append(items, document.Item{Label: l.Label, UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	warranties := make([]string, 0, len(snap.Warranties))
	for _, w := range snap.Warranties {
		warranties = append(warranties, w.Label)
	}
	return document.Input{
		Seller:     snap.Seller,
		Customer:   snap.Customer,
		Notes:      snap.Notes,
		Warranties: warranties,
		Advance:    snap.Advance,
		Items:      items,
		Result:     snap.Result,
	}
}
