// =============================================================================
// Automated Invoice Generator - Pipeline Orchestrator
// =============================================================================
//
// The pipeline drives the end-to-end batch run over one order source:
//
//   1. Load all order rows (fatal on failure - the primary source)
//   2. Load the bill-to and item reference lookups (degrade with a warning)
//   3. For each order, sequentially:
//      a. Transform the raw row into a canonical invoice record
//      b. Validate the record invariants
//      c. Render the formatted invoice workbook
//      d. Export to the requested format
//      e. Archive a copy of the artifact (best effort)
//      f. Optionally dispatch the invoice by email
//
// Failures are isolated per order: a stage failure is recorded with its
// order reference and the run continues with the next order. The caller
// receives a Summary of the whole run.
//
// Execution is strictly sequential. The only shared mutable state is the
// pair of sequence counters inside the transformer.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jessherna/AutomatedInvoiceGenerator/internal/invoice"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/mailer"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/renderer"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/sheetparser"
	"github.com/jessherna/AutomatedInvoiceGenerator/pkg/utils"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Exporter serializes a rendered workbook. Satisfied by export.Exporter.
type Exporter interface {
	Export(ctx context.Context, doc *excelize.File, basePath, format string) (string, error)
}

// Dispatcher sends the exported invoice. Satisfied by mailer.Dispatcher.
type Dispatcher interface {
	Send(ctx context.Context, req mailer.Request) error
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// Result is the outcome of processing a single order.
type Result struct {
	// OrderRef identifies the order (the OrderID column, or a 1-based
	// position when the column is absent).
	OrderRef string

	// InvoiceNumber is the allocated number, when transformation succeeded.
	InvoiceNumber string

	// OutputFile is the exported artifact path, when export succeeded.
	OutputFile string

	// Stage names the stage that failed. Empty on success.
	Stage string

	// Err is the failure, nil on success.
	Err error
}

// Summary aggregates a whole batch run.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
	Results   []Result
	Elapsed   time.Duration
}

// Failures returns only the failed results.
func (s Summary) Failures() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// =============================================================================
// PIPELINE
// =============================================================================

// Options controls one batch run.
type Options struct {
	// Format is the requested export format ("xlsx" or "pdf").
	Format string

	// Send enables email dispatch of each exported invoice.
	Send bool

	// ReferencePath is the workbook holding the BillTo and Items sheets.
	// Empty means the order source itself.
	ReferencePath string
}

// Pipeline wires the pipeline stages together.
type Pipeline struct {
	transformer *invoice.Transformer
	render      renderer.Options
	exporter    Exporter
	dispatcher  Dispatcher
	files       *utils.FileManager
	logger      *slog.Logger
}

// New creates a Pipeline. dispatcher may be nil when sending is disabled.
func New(
	transformer *invoice.Transformer,
	render renderer.Options,
	exporter Exporter,
	dispatcher Dispatcher,
	files *utils.FileManager,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		transformer: transformer,
		render:      render,
		exporter:    exporter,
		dispatcher:  dispatcher,
		files:       files,
		logger:      logger,
	}
}

// Run generates an invoice for every order row in the source workbook.
//
// A failure loading the order source aborts the run; reference-data
// failures degrade to empty lookups with a logged warning; per-order
// failures are recorded in the summary and the run continues.
func (p *Pipeline) Run(ctx context.Context, ordersPath string, opts Options) (Summary, error) {
	start := time.Now()

	orders, err := sheetparser.LoadOrders(ordersPath)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load orders: %w", err)
	}
	p.logger.Info("orders loaded", "source", ordersPath, "count", len(orders))

	refPath := opts.ReferencePath
	if refPath == "" {
		refPath = ordersPath
	}
	billTo := sheetparser.LoadBillTo(refPath)
	if !billTo.Available {
		p.logger.Warn("bill-to reference data unavailable, billing fields degrade to order values", "source", refPath)
	}
	items := sheetparser.LoadItems(refPath)
	if !items.Available {
		p.logger.Warn("item catalog unavailable, descriptions degrade to order values", "source", refPath)
	}

	summary := Summary{Processed: len(orders)}
	for i, order := range orders {
		result := p.processOrder(ctx, order, i, billTo, items, opts)
		summary.Results = append(summary.Results, result)

		if result.Err != nil {
			summary.Failed++
			p.logger.Error("order failed", "order", result.OrderRef, "stage", result.Stage, "error", result.Err)
			continue
		}
		summary.Succeeded++
		p.logger.Info("invoice generated", "order", result.OrderRef, "invoice", result.InvoiceNumber, "file", result.OutputFile)
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}

// processOrder runs the per-order stages and reports the first failure.
func (p *Pipeline) processOrder(ctx context.Context, order sheetparser.Row, index int, billTo, items sheetparser.Lookup, opts Options) Result {
	result := Result{OrderRef: orderRef(order, index)}

	inv, err := p.transformer.Transform(order, billTo, items)
	if err != nil {
		result.Stage, result.Err = "transform", err
		return result
	}
	result.InvoiceNumber = inv.InvoiceNumber

	if err := invoice.Validate(inv); err != nil {
		result.Stage, result.Err = "validate", err
		return result
	}

	doc, err := renderer.Render(inv, p.render)
	if err != nil {
		result.Stage, result.Err = "render", err
		return result
	}
	defer doc.Close()

	basePath := filepath.Join(p.files.OutputDir, "invoice_"+inv.InvoiceNumber)
	outputFile, err := p.exporter.Export(ctx, doc, basePath, opts.Format)
	if err != nil {
		result.Stage, result.Err = "export", err
		return result
	}
	result.OutputFile = outputFile

	// Archival is best effort and never fails the order.
	if _, err := p.files.ArchiveOutputFile(outputFile); err != nil {
		p.logger.Warn("failed to archive artifact", "file", outputFile, "error", err)
	}

	if opts.Send {
		if err := p.dispatchInvoice(ctx, inv, outputFile); err != nil {
			result.Stage, result.Err = "dispatch", err
			return result
		}
	}

	return result
}

// dispatchInvoice sends the exported invoice to the resolved billing email.
func (p *Pipeline) dispatchInvoice(ctx context.Context, inv *invoice.Invoice, outputFile string) error {
	if p.dispatcher == nil {
		return fmt.Errorf("sending requested but no dispatcher is configured")
	}
	if inv.BillTo.Email == "" {
		return fmt.Errorf("no recipient email resolved for invoice %s", inv.InvoiceNumber)
	}
	return p.dispatcher.Send(ctx, mailer.Request{
		To:          inv.BillTo.Email,
		InvoicePath: outputFile,
	})
}

// orderRef identifies an order in logs and summaries.
func orderRef(order sheetparser.Row, index int) string {
	if id := order.String("OrderID"); id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index+1)
}
