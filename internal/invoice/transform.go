// =============================================================================
// Automated Invoice Generator - Order Transformer
// =============================================================================
//
// The transformer merges one raw order row with the reference lookups and
// freshly allocated numbers into a canonical invoice record.
//
// RESOLUTION RULES:
//   - Email: the bill-to reference email when the customer is found,
//     otherwise the order's own Email column.
//   - Ship-to: always identical to the resolved bill-to.
//   - Line item description: the order's ItemName, else the item catalog's
//     Name for the ItemID, else a generated "Item {id}" placeholder.
//   - Due date: invoice date plus the grace period using calendar-correct
//     date addition, so a due date can cross a month boundary safely.
//
// Each call allocates a fresh invoice number and purchase-order number, so
// transforming consumes numbers and must happen exactly once per generated
// invoice.
//
// =============================================================================

package invoice

import (
	"fmt"
	"time"

	"github.com/jessherna/AutomatedInvoiceGenerator/internal/sequence"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/sheetparser"
)

// DefaultGraceDays is the payment grace period applied when none is
// configured.
const DefaultGraceDays = 15

// DefaultTerms is the payment terms line used when none is configured.
const DefaultTerms = "Payment is due within 15 days."

// Transformer builds canonical invoice records from raw order rows.
type Transformer struct {
	invoiceNumbers *sequence.Allocator
	poNumbers      *sequence.Allocator

	// CompanyContact is the company contact string stamped on every record.
	CompanyContact string
	// GraceDays is the payment grace period in days.
	GraceDays int
	// Terms is the payment terms line.
	Terms string

	now func() time.Time
}

// NewTransformer creates a Transformer with the given allocators and the
// default grace period and terms.
func NewTransformer(invoiceNumbers, poNumbers *sequence.Allocator) *Transformer {
	return &Transformer{
		invoiceNumbers: invoiceNumbers,
		poNumbers:      poNumbers,
		GraceDays:      DefaultGraceDays,
		Terms:          DefaultTerms,
		now:            time.Now,
	}
}

// WithClock replaces the transformer's time source. Used by tests to pin the
// invoice date.
func (t *Transformer) WithClock(now func() time.Time) *Transformer {
	t.now = now
	return t
}

// Transform resolves one raw order row into a canonical invoice record,
// allocating fresh invoice and purchase-order numbers.
func (t *Transformer) Transform(order sheetparser.Row, billTo, items sheetparser.Lookup) (*Invoice, error) {
	invoiceNumber, err := t.invoiceNumbers.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	poNumber, err := t.poNumbers.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate purchase-order number: %w", err)
	}

	invoiceDate := t.now()
	grace := t.GraceDays
	if grace <= 0 {
		grace = DefaultGraceDays
	}

	party := t.resolveBillTo(order, billTo)

	inv := &Invoice{
		InvoiceNumber:  invoiceNumber,
		PONumber:       poNumber,
		InvoiceDate:    invoiceDate,
		DueDate:        invoiceDate.AddDate(0, 0, grace),
		CompanyContact: t.CompanyContact,
		BillTo:         party,
		ShipTo:         party, // no separate ship-to source exists
		Items: []LineItem{{
			Qty:         order.Int("Qty"),
			Description: resolveDescription(order, items),
			UnitPrice:   order.Float("Price"),
		}},
		Terms: t.Terms,
	}
	if inv.Terms == "" {
		inv.Terms = DefaultTerms
	}

	return inv, nil
}

// resolveBillTo builds the bill-to party from the reference lookup, falling
// back to the order's own fields when the customer is unknown.
func (t *Transformer) resolveBillTo(order sheetparser.Row, billTo sheetparser.Lookup) Party {
	ref, found := billTo.Get(order.String("CustomerID"))

	party := Party{
		Name:    ref.String("CustomerName"),
		Address: ref.String("Address"),
		City:    ref.String("City"),
		Phone:   ref.String("Phone"),
		Email:   ref.String("Email"),
	}

	if party.Name == "" {
		party.Name = order.String("CustomerName")
	}
	if !found || party.Email == "" {
		party.Email = order.String("Email")
	}

	return party
}

// resolveDescription picks the line-item description: order ItemName, then
// the item catalog, then a generated placeholder.
func resolveDescription(order sheetparser.Row, items sheetparser.Lookup) string {
	if name := order.String("ItemName"); name != "" {
		return name
	}

	itemID := order.String("ItemID")
	if ref, ok := items.Get(itemID); ok {
		if name := ref.String("Name"); name != "" {
			return name
		}
	}

	return fmt.Sprintf("Item %s", itemID)
}
