package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/lock"
)

// BulkRow is one product in a bulk upsert. Rows with an id upsert that id.
type BulkRow struct {
	ID          *int64           `json:"id"`
	Name        *string          `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"imageUrl"`
}

// BulkError describes a row that could not be stored.
type BulkError struct {
	Row     int    `json:"row"`
	ID      *int64 `json:"id,omitempty"`
	Message string `json:"message"`
}

// BulkResult summarises a bulk upsert.
type BulkResult struct {
	TotalProcessed int         `json:"totalProcessed"`
	SuccessCount   int         `json:"successCount"`
	ErrorCount     int         `json:"errorCount"`
	Errors         []BulkError `json:"errors"`
}

// BulkLockName names the lock held while a bulk write runs.
const BulkLockName = "catalog:products:bulk"

// BulkUpsert stores each valid row independently and reports the invalid or failed ones.
// Concurrent bulk writes are serialised when a Locker is configured.
func (s *Service) BulkUpsert(ctx context.Context, rows []BulkRow) (BulkResult, error) {
	if s.lock == nil {
		return s.bulkUpsert(ctx, rows)
	}
	var result BulkResult
	err := s.lock.WithLock(ctx, BulkLockName, 2*time.Minute, func(ctx context.Context) error {
		var err error
		result, err = s.bulkUpsert(ctx, rows)
		return err
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return BulkResult{}, common.NewAppError("BULK_IN_PROGRESS", "another product import is running", http.StatusConflict, err)
	}
	return result, err
}

func (s *Service) bulkUpsert(ctx context.Context, rows []BulkRow) (BulkResult, error) {
	result := BulkResult{TotalProcessed: len(rows), Errors: []BulkError{}}
	var touched []int64
	explicitIDs := false

	for i, row := range rows {
		fail := func(msg string) {
			result.ErrorCount++
			result.Errors = append(result.Errors, BulkError{Row: i + 1, ID: row.ID, Message: msg})
		}
		if row.Name == nil || row.Price == nil || row.Stock == nil {
			fail("name, price and stock are required")
			continue
		}
		in, err := normalizeInput(ProductInput{
			Name:        *row.Name,
			Description: row.Description,
			Price:       *row.Price,
			Stock:       *row.Stock,
			Category:    row.Category,
			ImageURL:    row.ImageURL,
		})
		if err != nil {
			fail(appMessage(err))
			continue
		}

		if row.ID == nil {
			if _, err := s.CreateProduct(ctx, in); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Int("row", i+1).Msg("catalog_bulk_create_failed")
				fail("could not create product")
				continue
			}
			result.SuccessCount++
			continue
		}
		if *row.ID <= 0 {
			fail("id must be positive")
			continue
		}
		if _, err := s.queries.UpsertProduct(ctx, dbgen.UpsertProductParams{
			ID:          *row.ID,
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			Stock:       int32(in.Stock),
			Category:    in.Category,
			ImageUrl:    in.ImageURL,
		}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("product_id", *row.ID).Msg("catalog_bulk_upsert_failed")
			fail("could not upsert product")
			continue
		}
		explicitIDs = true
		touched = append(touched, *row.ID)
		result.SuccessCount++
	}

	if explicitIDs {
		if err := s.queries.SyncProductSequence(ctx); err != nil {
			return result, fmt.Errorf("sync product sequence: %w", err)
		}
	}
	if len(touched) > 0 {
		s.invalidate(ctx, touched...)
	}
	return result, nil
}

// ImportXLSX reads the first sheet of a workbook and bulk upserts its rows.
// The header row is matched case-insensitively.
func (s *Service) ImportXLSX(ctx context.Context, r io.Reader) (BulkResult, error) {
	rows, err := ParseXLSX(r)
	if err != nil {
		return BulkResult{}, err
	}
	return s.BulkUpsert(ctx, rows)
}

var headerAliases = map[string]string{
	"id":          "id",
	"name":        "name",
	"nombre":      "name",
	"detalle":     "name",
	"description": "description",
	"descripcion": "description",
	"descripción": "description",
	"price":       "price",
	"precio":      "price",
	"stock":       "stock",
	"category":    "category",
	"categoria":   "category",
	"categoría":   "category",
	"rubro":       "category",
	"imageurl":    "imageUrl",
	"image_url":   "imageUrl",
	"imagen":      "imageUrl",
}

// ParseXLSX converts the first sheet of a workbook into bulk rows. Cells that cannot be
// parsed leave the field unset so the row is reported by BulkUpsert.
func ParseXLSX(r io.Reader) ([]BulkRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, common.NewAppError("INVALID_FILE", "file is not a valid xlsx workbook", http.StatusBadRequest, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewAppError("INVALID_FILE", "workbook has no sheets", http.StatusBadRequest, nil)
	}
	sheet := sheets[0]
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(grid) == 0 {
		return []BulkRow{}, nil
	}

	columns := make(map[string]int)
	for idx, cell := range grid[0] {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = idx
			}
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, common.ValidationError("header row must include a name column")
	}

	cell := func(row []string, field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	amount := func(row []string, rowNum int, field string) (decimal.Decimal, bool) {
		v := cell(row, field)
		if v == "" {
			return decimal.Decimal{}, false
		}
		var (
			d   decimal.Decimal
			err error
		)
		if numericCell(f, sheet, columns[field]+1, rowNum) {
			d, err = decimal.NewFromString(v)
		} else {
			d, err = ParseAmount(v)
		}
		return d, err == nil
	}

	out := make([]BulkRow, 0, len(grid)-1)
	for i, row := range grid[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := i + 2
		var br BulkRow
		if v := cell(row, "id"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				br.ID = &id
			}
		}
		if v := cell(row, "name"); v != "" {
			br.Name = &v
		}
		if price, ok := amount(row, rowNum, "price"); ok {
			br.Price = &price
		}
		if stock, ok := amount(row, rowNum, "stock"); ok && stock.IsInteger() {
			n := int(stock.IntPart())
			br.Stock = &n
		}
		br.Description = cell(row, "description")
		br.Category = cell(row, "category")
		br.ImageURL = cell(row, "imageUrl")
		out = append(out, br)
	}
	return out, nil
}

// numericCell reports whether the cell holds a number rather than text. Numbers
// written by spreadsheet tools carry no type attribute.
func numericCell(f *excelize.File, sheet string, col, row int) bool {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return false
	}
	return typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset
}

// ParseAmount parses amounts typed as text, in either 1,234.56 or es-AR 1.234,56 form.
// When both separators appear the last one is the decimal point. A single separator
// followed by exactly three digits (1.234) could be either and is rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "$")
	v = strings.NewReplacer(" ", "", "\u00a0", "").Replace(v)
	neg := strings.HasPrefix(v, "-")
	v = strings.TrimPrefix(v, "-")
	if v == "" {
		return decimal.Decimal{}, fmt.Errorf("amount %q is empty", raw)
	}

	lastDot, lastComma := strings.LastIndex(v, "."), strings.LastIndex(v, ",")
	var intPart, fracPart, group string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		sep := max(lastDot, lastComma)
		intPart, fracPart = v[:sep], v[sep+1:]
		group = ","
		if lastComma == sep {
			group = "."
		}
	case lastDot >= 0 || lastComma >= 0:
		sep, mark := lastDot, "."
		if lastComma >= 0 {
			sep, mark = lastComma, ","
		}
		if strings.Count(v, mark) > 1 {
			intPart, group = v, mark
			break
		}
		intPart, fracPart = v[:sep], v[sep+1:]
		if len(fracPart) == 3 && len(intPart) <= 3 && !strings.HasPrefix(intPart, "0") {
			return decimal.Decimal{}, fmt.Errorf("amount %q is ambiguous", raw)
		}
	default:
		intPart = v
	}

	if group != "" {
		groups := strings.Split(intPart, group)
		for i, g := range groups {
			if !allDigits(g) || (i > 0 && len(g) != 3) || (i == 0 && (len(g) == 0 || len(g) > 3)) {
				return decimal.Decimal{}, fmt.Errorf("amount %q has malformed digit grouping", raw)
			}
		}
		intPart = strings.Join(groups, "")
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return decimal.Decimal{}, fmt.Errorf("amount %q is not a number", raw)
	}

	num := intPart
	if fracPart != "" {
		num += "." + fracPart
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func appMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
