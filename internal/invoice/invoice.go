// =============================================================================
// Automated Invoice Generator - Canonical Invoice Record
// =============================================================================
//
// The canonical invoice record is the fully resolved, ready-to-render
// representation of one invoice. It is produced by the transformer from a
// raw order row, the reference lookups, and freshly allocated numbers, and
// consumed by the renderer.
//
// =============================================================================

package invoice

import (
	"errors"
	"time"
)

// Sentinel validation errors.
var (
	// ErrNoLineItems indicates an invoice record without any line items.
	ErrNoLineItems = errors.New("invoice: record has no line items")
	// ErrDueBeforeInvoice indicates a due date earlier than the invoice date.
	ErrDueBeforeInvoice = errors.New("invoice: due date precedes invoice date")
	// ErrNegativeQuantity indicates a line item with a negative quantity.
	ErrNegativeQuantity = errors.New("invoice: line item quantity is negative")
	// ErrNegativePrice indicates a line item with a negative unit price.
	ErrNegativePrice = errors.New("invoice: line item unit price is negative")
)

// Party holds one side of the billing relationship. BillTo and ShipTo share
// this shape; in the current design ShipTo always equals BillTo because no
// separate ship-to source exists.
type Party struct {
	Name    string
	Address string
	City    string
	Phone   string
	Email   string
}

// LineItem is one ordered line on the invoice.
type LineItem struct {
	Qty         int
	Description string
	UnitPrice   float64
}

// Invoice is the canonical invoice record.
type Invoice struct {
	InvoiceNumber  string
	PONumber       string
	InvoiceDate    time.Time
	DueDate        time.Time
	CompanyContact string
	BillTo         Party
	ShipTo         Party
	Items          []LineItem
	Terms          string
}

// Validate checks the record invariants before rendering: at least one line
// item, a due date no earlier than the invoice date, and non-negative
// quantities and prices. A zero-item record is rejected rather than rendered
// as an empty table.
func Validate(inv *Invoice) error {
	if len(inv.Items) == 0 {
		return ErrNoLineItems
	}
	if inv.DueDate.Before(inv.InvoiceDate) {
		return ErrDueBeforeInvoice
	}
	for _, item := range inv.Items {
		if item.Qty < 0 {
			return ErrNegativeQuantity
		}
		if item.UnitPrice < 0 {
			return ErrNegativePrice
		}
	}
	return nil
}
