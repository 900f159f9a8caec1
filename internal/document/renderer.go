// Package document renders budgets to PDF. It only presents numbers already
// computed by the pricing engine.
package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-presupuesto/internal/pricing"
)

// Item is a raw cart line shown in the products table.
type Item struct {
	Label     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Input is everything printed on a budget.
type Input struct {
	Number     int64
	IssuedAt   time.Time
	Seller     string
	Customer   string
	Notes      string
	Warranties []string
	Advance    decimal.Decimal
	Items      []Item
	Result     pricing.Result
}

// Renderer draws budgets on A4 pages.
type Renderer struct {
	Company     string
	FooterLines []string
	Location    *time.Location
	compress    bool
}

// NewRenderer constructs a renderer with the given header and footer text.
func NewRenderer(company string, footer []string) *Renderer {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		loc = time.UTC
	}
	return &Renderer{Company: company, FooterLines: footer, Location: loc, compress: true}
}

var (
	accent = [3]int{22, 160, 133}
	zebra  = [3]int{245, 245, 245}
)

const (
	pageMargin = 14.0
	rowHeight  = 8.0
)

// Render writes the PDF for in to w.
func (r *Renderer) Render(w io.Writer, in Input) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 28)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Presupuesto", true)
	if !in.IssuedAt.IsZero() {
		pdf.SetCreationDate(in.IssuedAt)
	}
	pageW, pageH := pdf.GetPageSize()

	pdf.SetFooterFunc(func() {
		r.footer(pdf, tr, pageW, pageH)
	})
	pdf.AddPage()

	// header band
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.Rect(0, 0, pageW, 30, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(0, 10)
	pdf.CellFormat(pageW, 10, tr(r.Company), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	issued := in.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	if r.Location != nil {
		issued = issued.In(r.Location)
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(pageMargin, 36)
	pdf.CellFormat(pageW-2*pageMargin, 6, issued.Format("02/01/2006"), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(pageW-2*pageMargin, 12, "Presupuesto", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	r.details(pdf, tr, in)
	r.productsTable(pdf, tr, pageW, in.Items)

	switch in.Result.Mode {
	case pricing.ModePerItem:
		for _, g := range in.Result.Groups {
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", 11)
			heading := fmt.Sprintf("%s (x%d)", g.Label, g.Quantity)
			pdf.CellFormat(pageW-2*pageMargin, 7, tr(heading), "", 1, "L", false, 0, "")
			r.paymentsTable(pdf, tr, pageW, g.Lines)
		}
	default:
		pdf.Ln(4)
		r.paymentsTable(pdf, tr, pageW, in.Result.Lines)
	}

	if in.Advance.IsPositive() {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(pageW-2*pageMargin, 7, tr("Anticipo: "+FormatMoney(in.Advance)), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func (r *Renderer) details(pdf *fpdf.Fpdf, tr func(string) string, in Input) {
	var rows [][2]string
	if in.Number > 0 {
		rows = append(rows, [2]string{"Presupuesto N°", strconv.FormatInt(in.Number, 10)})
	}
	if in.Seller != "" {
		rows = append(rows, [2]string{"Vendedor", in.Seller})
	}
	if in.Customer != "" {
		rows = append(rows, [2]string{"Cliente", in.Customer})
	}
	if len(in.Warranties) > 0 {
		rows = append(rows, [2]string{"Garantías", strings.Join(in.Warranties, " / ")})
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(32, 6, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	if in.Notes != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(32, 6, tr("Notas:"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(in.Notes), "", "L", false)
	}
	if len(rows) > 0 || in.Notes != "" {
		pdf.Ln(3)
	}
}

func (r *Renderer) productsTable(pdf *fpdf.Fpdf, tr func(string) string, pageW float64, items []Item) {
	width := pageW - 2*pageMargin
	cols := []float64{width * 0.46, width * 0.2, width * 0.14, width * 0.2}
	tableHeader(pdf, tr, cols, []string{"Producto", "Precio", "Cantidad", "Subtotal"})
	pdf.SetFont("Helvetica", "", 10)
	for i, it := range items {
		fill := setZebra(pdf, i)
		subtotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		pdf.CellFormat(cols[0], rowHeight, tr(it.Label), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(cols[1], rowHeight, tr(FormatMoney(it.UnitPrice)), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(cols[2], rowHeight, strconv.Itoa(it.Quantity), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(cols[3], rowHeight, tr(FormatMoney(subtotal)), "1", 1, "C", fill, 0, "")
	}
}

func (r *Renderer) paymentsTable(pdf *fpdf.Fpdf, tr func(string) string, pageW float64, lines []pricing.Line) {
	width := pageW - 2*pageMargin
	cols := []float64{width * 0.4, width * 0.16, width * 0.22, width * 0.22}
	tableHeader(pdf, tr, cols, []string{"Forma de pago", "Cuotas", "Monto cuota", "Total"})
	pdf.SetFont("Helvetica", "", 10)
	for i, l := range lines {
		fill := setZebra(pdf, i)
		pdf.CellFormat(cols[0], rowHeight, tr(l.Label), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(cols[1], rowHeight, strconv.Itoa(l.Installments), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(cols[2], rowHeight, tr(FormatMoney(l.PerInstallment)), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(cols[3], rowHeight, tr(FormatMoney(l.Total)), "1", 1, "C", fill, 0, "")
	}
}

func (r *Renderer) footer(pdf *fpdf.Fpdf, tr func(string) string, pageW, pageH float64) {
	y := pageH - 20
	pdf.SetDrawColor(accent[0], accent[1], accent[2])
	pdf.SetLineWidth(1)
	pdf.Line(0, y, pageW, y)
	if len(r.FooterLines) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	colW := pageW / float64(len(r.FooterLines))
	for i, line := range r.FooterLines {
		pdf.SetXY(colW*float64(i), y+5)
		pdf.CellFormat(colW, 5, tr(line), "", 0, "C", false, 0, "")
	}
}

func tableHeader(pdf *fpdf.Fpdf, tr func(string) string, cols []float64, titles []string) {
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	for i, title := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		pdf.CellFormat(cols[i], rowHeight, tr(title), "1", ln, "C", true, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

func setZebra(pdf *fpdf.Fpdf, row int) bool {
	if row%2 == 1 {
		pdf.SetFillColor(zebra[0], zebra[1], zebra[2])
		return true
	}
	return false
}
