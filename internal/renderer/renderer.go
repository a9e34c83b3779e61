// =============================================================================
// Automated Invoice Generator - Invoice Renderer
// =============================================================================
//
// This module turns a canonical invoice record into a formatted single-sheet
// workbook. The layout is fixed-coordinate:
//
//   Row 1      : company name (A1), logo (E1, best effort), INVOICE title (F1)
//   Rows 2-3   : company contact lines
//   Rows 6-11  : BILL TO block (column A) and SHIP TO block (column D)
//   Rows 13-16 : metadata block (invoice #, invoice date, PO #, due date)
//   Row 21     : line-item table header {Qty, Description, Unit Price,
//                Amount, Notes, Status}
//   Rows 22+   : one row per line item, Amount = Qty x Unit Price
//   Below items: summary block (Subtotal, Tax, Total) and the terms line
//
// The line-item region is registered as a named Excel table spanning the
// header row through the last item row. Rendering is a pure function of the
// record and options; the returned workbook is only ever serialized by the
// exporter afterwards.
//
// =============================================================================

package renderer

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jessherna/AutomatedInvoiceGenerator/internal/invoice"
)

// SheetName is the name of the rendered invoice sheet.
const SheetName = "Invoice"

// TableName is the name of the Excel table covering the line-item region.
const TableName = "InvoiceItems"

// DefaultTaxRate is the fixed tax rate applied to the subtotal.
const DefaultTaxRate = 0.05

// dateLayout formats invoice and due dates as day/month/year.
const dateLayout = "02/01/2006"

// =============================================================================
// LAYOUT COORDINATES
// =============================================================================

// Fixed-coordinate anchors of the layout. The table header row is chosen so
// that a single-item invoice yields the table region A21:F22.
const (
	companyNameCell = "A1"
	titleCell       = "F1"
	logoCell        = "E1"

	billToHeaderRow = 6
	metadataRow     = 13 // first of four metadata rows

	tableHeaderRow = 21
)

// tableColumns is the line-item table header.
var tableColumns = []string{"Qty", "Description", "Unit Price", "Amount", "Notes", "Status"}

// =============================================================================
// OPTIONS
// =============================================================================

// Options carries the company identity and layout knobs supplied by
// configuration rather than by the invoice record itself.
type Options struct {
	// CompanyName is rendered in the top-left company block.
	CompanyName string

	// CompanyAddress is an optional second contact line.
	CompanyAddress string

	// LogoPath points at the logo image. Insertion is best effort: a missing
	// or unreadable asset is skipped silently.
	LogoPath string

	// TaxRate overrides DefaultTaxRate when non-zero.
	TaxRate float64
}

func (o Options) taxRate() float64 {
	if o.TaxRate > 0 {
		return o.TaxRate
	}
	return DefaultTaxRate
}

// =============================================================================
// RENDERING
// =============================================================================

// Render builds the formatted invoice workbook from a canonical record.
//
// The record must carry at least one line item; rendering a zero-item record
// is rejected so the summary arithmetic below is never degenerate.
func Render(inv *invoice.Invoice, opts Options) (*excelize.File, error) {
	if len(inv.Items) == 0 {
		return nil, invoice.ErrNoLineItems
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name invoice sheet: %w", err)
	}

	if err := renderSheet(f, inv, opts); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func renderSheet(f *excelize.File, inv *invoice.Invoice, opts Options) error {
	setWidths(f)

	if err := renderHeader(f, inv, opts); err != nil {
		return err
	}
	renderParties(f, inv)
	renderMetadata(f, inv)

	subtotal, err := renderItems(f, inv)
	if err != nil {
		return err
	}

	renderSummary(f, inv, opts, subtotal)
	return nil
}

// setWidths widens the description and amount columns so the layout is
// readable without manual resizing.
func setWidths(f *excelize.File) {
	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", "B", 36)
	_ = f.SetColWidth(SheetName, "C", "F", 14)
}

// renderHeader writes the company block, the right-aligned INVOICE title and
// the best-effort logo.
func renderHeader(f *excelize.File, inv *invoice.Invoice, opts Options) error {
	_ = f.SetCellValue(SheetName, companyNameCell, opts.CompanyName)
	_ = f.SetCellValue(SheetName, "A2", inv.CompanyContact)
	if opts.CompanyAddress != "" {
		_ = f.SetCellValue(SheetName, "A3", opts.CompanyAddress)
	}

	_ = f.SetCellValue(SheetName, titleCell, "INVOICE")

	nameStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("failed to create company style: %w", err)
	}
	_ = f.SetCellStyle(SheetName, companyNameCell, companyNameCell, nameStyle)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 18},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	_ = f.SetCellStyle(SheetName, titleCell, titleCell, titleStyle)

	// Logo insertion is best effort: a missing asset is not an error.
	if opts.LogoPath != "" {
		if _, statErr := os.Stat(opts.LogoPath); statErr == nil {
			_ = f.AddPicture(SheetName, logoCell, opts.LogoPath, nil)
		}
	}

	return nil
}

// renderParties writes the BILL TO and SHIP TO blocks side by side.
func renderParties(f *excelize.File, inv *invoice.Invoice) {
	writeParty := func(col string, header string, p invoice.Party) {
		row := billToHeaderRow
		set := func(v string) {
			if v != "" {
				_ = f.SetCellValue(SheetName, fmt.Sprintf("%s%d", col, row), v)
			}
			row++
		}
		_ = f.SetCellValue(SheetName, fmt.Sprintf("%s%d", col, row), header)
		row++
		set(p.Name)
		set(p.Address)
		set(p.City)
		set(p.Phone)
		set(p.Email)
	}

	writeParty("A", "BILL TO", inv.BillTo)
	writeParty("D", "SHIP TO", inv.ShipTo)
}

// renderMetadata writes the invoice number, dates and PO number block.
func renderMetadata(f *excelize.File, inv *invoice.Invoice) {
	entries := []struct {
		label string
		value string
	}{
		{"Invoice #", inv.InvoiceNumber},
		{"Invoice Date", formatDate(inv.InvoiceDate)},
		{"PO #", inv.PONumber},
		{"Due Date", formatDate(inv.DueDate)},
	}

	for i, entry := range entries {
		row := metadataRow + i
		_ = f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), entry.label)
		_ = f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), entry.value)
	}
}

// renderItems writes the bordered line-item table and registers the named
// table region. It returns the subtotal of all line amounts.
func renderItems(f *excelize.File, inv *invoice.Invoice) (float64, error) {
	for i, col := range tableColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, tableHeaderRow)
		if err != nil {
			return 0, err
		}
		_ = f.SetCellValue(SheetName, cell, col)
	}

	subtotal := 0.0
	for i, item := range inv.Items {
		row := tableHeaderRow + 1 + i
		amount := round2(float64(item.Qty) * item.UnitPrice)
		subtotal += amount

		_ = f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), item.Qty)
		_ = f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), item.Description)
		_ = f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), item.UnitPrice)
		_ = f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), amount)
	}

	lastRow := tableHeaderRow + len(inv.Items)
	tableRange := fmt.Sprintf("A%d:F%d", tableHeaderRow, lastRow)

	borderStyle, err := f.NewStyle(&excelize.Style{Border: boxBorder()})
	if err != nil {
		return 0, fmt.Errorf("failed to create border style: %w", err)
	}
	_ = f.SetCellStyle(SheetName, fmt.Sprintf("A%d", tableHeaderRow), fmt.Sprintf("F%d", lastRow), borderStyle)

	if err := f.AddTable(SheetName, &excelize.Table{
		Range: tableRange,
		Name:  TableName,
	}); err != nil {
		return 0, fmt.Errorf("failed to add line-item table: %w", err)
	}

	return round2(subtotal), nil
}

// renderSummary writes the subtotal/tax/total block and the terms line.
//
// Tax and total are rounded to two decimal places; because the tax is
// rounded before the addition, Total == Subtotal + Tax holds exactly.
func renderSummary(f *excelize.File, inv *invoice.Invoice, opts Options, subtotal float64) {
	tax := round2(subtotal * opts.taxRate())
	total := round2(subtotal + tax)

	row := tableHeaderRow + len(inv.Items) + 2
	entries := []struct {
		label string
		value float64
	}{
		{"Subtotal", subtotal},
		{"Tax", tax},
		{"Total", total},
	}
	for i, entry := range entries {
		_ = f.SetCellValue(SheetName, fmt.Sprintf("E%d", row+i), entry.label)
		_ = f.SetCellValue(SheetName, fmt.Sprintf("F%d", row+i), entry.value)
	}

	termsRow := row + len(entries) + 2
	_ = f.SetCellValue(SheetName, fmt.Sprintf("A%d", termsRow), inv.Terms)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// SummaryCells returns the cell coordinates of the Subtotal, Tax and Total
// values for an invoice with the given number of line items. Exposed for
// round-trip verification.
func SummaryCells(itemCount int) (subtotal, tax, total string) {
	row := tableHeaderRow + itemCount + 2
	return fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row+1), fmt.Sprintf("F%d", row+2)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// boxBorder is a thin border on all four sides.
func boxBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return borders
}
