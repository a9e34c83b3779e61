// =============================================================================
// Automated Invoice Generator - Invoice Dispatcher
// =============================================================================
//
// The dispatcher composes and sends the invoice email. Validation happens
// before any message is composed:
//
//   - every attachment path must exist (a not-found error names the path)
//   - the primary attachment must be a PDF (invalid-argument error otherwise)
//   - additional attachments that are not PDFs are skipped silently
//
// Validation failures propagate with their original classification; any
// failure from the mail transport is wrapped into a generic send error. One
// email is sent per call and nothing is retried.
//
// The SMTP transport is injected behind the Transport interface so tests can
// record messages instead of dialing a server.
//
// =============================================================================

package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// Sentinel errors of the dispatch taxonomy.
var (
	// ErrAttachmentNotFound indicates an attachment path that does not exist.
	ErrAttachmentNotFound = errors.New("mailer: attachment not found")
	// ErrNotPDF indicates a primary attachment without a .pdf extension.
	ErrNotPDF = errors.New("mailer: primary attachment is not a PDF")
)

// Transport sends a composed message. The production implementation dials
// SMTP; tests substitute a recorder.
type Transport interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// Request describes one dispatch: the recipient, the exported invoice PDF
// and optional extras.
type Request struct {
	To          string
	CC          string
	InvoicePath string
	Extra       []string
}

// Dispatcher composes and sends invoice emails.
type Dispatcher struct {
	transport Transport
	from      string
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Dispatcher sending from the given address.
func New(transport Transport, from string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		transport: transport,
		from:      from,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the dispatcher's time source. Used by tests to pin the
// date in the generated subject and body.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Send validates the request, composes the message from the fixed template
// and sends it through the transport.
func (d *Dispatcher) Send(ctx context.Context, req Request) error {
	// Validate every attachment path before anything is composed.
	if err := checkExists(req.InvoicePath); err != nil {
		return err
	}
	for _, extra := range req.Extra {
		if err := checkExists(extra); err != nil {
			return err
		}
	}

	if !strings.EqualFold(filepath.Ext(req.InvoicePath), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, req.InvoicePath)
	}

	number := InvoiceNumberFromPath(req.InvoicePath)
	today := d.now()

	msg := mail.NewMsg()
	if err := msg.From(d.from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", d.from, err)
	}
	if err := msg.To(req.To); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", req.To, err)
	}
	if req.CC != "" {
		if err := msg.Cc(req.CC); err != nil {
			return fmt.Errorf("invalid CC address %q: %w", req.CC, err)
		}
	}

	msg.Subject(fmt.Sprintf("Invoice %s - %s", number, today.Format("02 Jan 2006")))
	msg.SetBodyString(mail.TypeTextPlain, composeBody(number, today))

	// Attach errors are recorded on the message and surface at send time;
	// the paths themselves were already validated above.
	msg.AttachFile(req.InvoicePath)
	for _, extra := range req.Extra {
		if !strings.EqualFold(filepath.Ext(extra), ".pdf") {
			// Non-PDF extras are skipped rather than rejected.
			d.logger.Debug("skipping non-PDF attachment", "path", extra)
			continue
		}
		msg.AttachFile(extra)
	}

	if err := d.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send invoice %s to %s: %w", number, req.To, err)
	}

	d.logger.Info("invoice dispatched", "invoice", number, "to", req.To)
	return nil
}

// composeBody renders the fixed plain-text body template.
func composeBody(number string, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\n\n")
	fmt.Fprintf(&b, "Please find attached invoice %s, issued on %s.\n\n", number, today.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Payment details and terms are included in the attached document.\n\n")
	fmt.Fprintf(&b, "Kind regards,\nAccounts Receivable\n")
	return b.String()
}

// InvoiceNumberFromPath extracts the invoice number from an exported file
// name, e.g. "out/invoice_INV-20250114-0001.pdf" yields
// "INV-20250114-0001".
func InvoiceNumberFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, "invoice_")
}

// checkExists classifies a missing attachment path as ErrAttachmentNotFound.
func checkExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrAttachmentNotFound, path)
	}
	return nil
}
