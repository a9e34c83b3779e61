// =============================================================================
// Automated Invoice Generator - Workbook Parser
// =============================================================================
//
// This module reads the tabular sources the pipeline consumes:
//
//   - "Orders"  : one row per order to invoice (required)
//   - "BillTo"  : customer billing records keyed by CustomerID (optional)
//   - "Items"   : item catalog keyed by ItemID (optional)
//
// The first row of each sheet is the header; each following non-empty row
// becomes a mapping of column name to value. Order rows carry typed fields:
// "Qty" is coerced to an integer and "Price" to a float, everything else
// passes through as its cell text.
//
// The order sheet is the primary source and its absence is an error. The
// reference sheets are auxiliary: a missing file or missing sheet yields a
// Lookup with Available=false so callers can degrade gracefully while still
// being able to distinguish "no customers" from "source unreadable".
//
// =============================================================================

package sheetparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names expected in the source workbook.
const (
	OrdersSheet = "Orders"
	BillToSheet = "BillTo"
	ItemsSheet  = "Items"
)

// ErrSheetNotFound indicates a required sheet is absent from the workbook.
var ErrSheetNotFound = errors.New("sheetparser: sheet not found")

// =============================================================================
// ROW TYPE
// =============================================================================

// Row is one data row of a sheet, keyed by column header.
// Values are strings except for coerced columns (Qty: int, Price: float64).
type Row map[string]any

// String returns the field as text, or "" when absent.
func (r Row) String(key string) string {
	if v, ok := r[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// Int returns the field as an integer, or 0 when absent or untyped.
func (r Row) Int(key string) int {
	if v, ok := r[key].(int); ok {
		return v
	}
	return 0
}

// Float returns the field as a float, or 0 when absent or untyped.
func (r Row) Float(key string) float64 {
	if v, ok := r[key].(float64); ok {
		return v
	}
	return 0
}

// =============================================================================
// ORDER LOADING
// =============================================================================

// LoadOrders reads the "Orders" sheet into a slice of rows.
//
// The sheet must exist; its first row is the header. "Qty" cells are coerced
// to integers and "Price" cells to floats, and a non-numeric value in either
// column is a parse error naming the row and column. Empty rows are skipped.
func LoadOrders(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open order source: %w", err)
	}
	defer f.Close()

	rows, err := sheetRows(f, OrdersSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q has no header row", ErrSheetNotFound, OrdersSheet)
	}

	headers := rows[0]
	orders := make([]Row, 0, len(rows)-1)

	for i, raw := range rows[1:] {
		if isRowEmpty(raw) {
			continue
		}

		order := make(Row, len(headers))
		for j, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}

			cell := ""
			if j < len(raw) {
				cell = strings.TrimSpace(raw[j])
			}

			value, err := coerceCell(header, cell)
			if err != nil {
				// Data rows start on sheet row 2.
				return nil, fmt.Errorf("row %d, column %q: %w", i+2, header, err)
			}
			order[header] = value
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// coerceCell applies the typed-column contract: Qty -> int, Price -> float64,
// everything else stays text.
func coerceCell(header, cell string) (any, error) {
	switch header {
	case "Qty":
		qty, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("expected integer quantity, got %q", cell)
		}
		return qty, nil
	case "Price":
		price, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("expected decimal price, got %q", cell)
		}
		return price, nil
	default:
		return cell, nil
	}
}

// =============================================================================
// REFERENCE DATA LOADING
// =============================================================================

// Lookup is a keyed reference table. Available reports whether the source
// sheet could actually be read; an unavailable lookup behaves as empty.
type Lookup struct {
	Rows      map[string]Row
	Available bool
}

// Get returns the row for the given key, or an empty Row when the key is
// unknown or the lookup is unavailable. It never fails.
func (l Lookup) Get(key string) (Row, bool) {
	if row, ok := l.Rows[key]; ok {
		return row, true
	}
	return Row{}, false
}

// LoadBillTo reads the "BillTo" sheet into a lookup keyed by CustomerID.
// A missing file or sheet yields an unavailable lookup, not an error.
func LoadBillTo(path string) Lookup {
	return loadLookup(path, BillToSheet, "CustomerID")
}

// LoadItems reads the "Items" sheet into a lookup keyed by ItemID.
// A missing file or sheet yields an unavailable lookup, not an error.
func LoadItems(path string) Lookup {
	return loadLookup(path, ItemsSheet, "ItemID")
}

// loadLookup builds a keyed lookup from one sheet. Rows with an empty key
// are skipped. All values stay text; reference data has no typed columns.
func loadLookup(path, sheet, keyColumn string) Lookup {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Lookup{Available: false}
	}
	defer f.Close()

	rows, err := sheetRows(f, sheet)
	if err != nil || len(rows) == 0 {
		return Lookup{Available: false}
	}

	headers := rows[0]
	lookup := Lookup{Rows: make(map[string]Row), Available: true}

	for _, raw := range rows[1:] {
		if isRowEmpty(raw) {
			continue
		}

		entry := make(Row, len(headers))
		for j, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			cell := ""
			if j < len(raw) {
				cell = strings.TrimSpace(raw[j])
			}
			entry[header] = cell
		}

		key := entry.String(keyColumn)
		if key == "" {
			continue
		}
		lookup.Rows[key] = entry
	}

	return lookup
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sheetRows returns all rows of the named sheet, or ErrSheetNotFound when
// the workbook has no such sheet.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect workbook: %w", err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
