package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jessherna/AutomatedInvoiceGenerator/internal/invoice"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/mailer"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/renderer"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/sequence"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/sheetparser"
	"github.com/jessherna/AutomatedInvoiceGenerator/pkg/utils"
)

// =============================================================================
// TEST DOUBLES AND FIXTURES
// =============================================================================

type stubExporter struct {
	calls []string
	fail  error
}

func (s *stubExporter) Export(_ context.Context, _ *excelize.File, basePath, format string) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	out := basePath + "." + format
	if err := os.WriteFile(out, []byte("artifact"), 0o644); err != nil {
		return "", err
	}
	s.calls = append(s.calls, out)
	return out, nil
}

type stubDispatcher struct {
	requests []mailer.Request
	fail     error
}

func (s *stubDispatcher) Send(_ context.Context, req mailer.Request) error {
	if s.fail != nil {
		return s.fail
	}
	s.requests = append(s.requests, req)
	return nil
}

func writeWorkbook(t *testing.T, path string, sheets map[string][][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			for j, value := range row {
				cell, err := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, value))
			}
		}
	}

	require.NoError(t, f.SaveAs(path))
}

func ordersWorkbook(t *testing.T, dir string, orders [][]any) string {
	rows := [][]any{{"OrderID", "CustomerID", "ItemID", "Qty", "Price", "CustomerName", "Email"}}
	rows = append(rows, orders...)

	path := filepath.Join(dir, "orders.xlsx")
	writeWorkbook(t, path, map[string][][]any{
		sheetparser.OrdersSheet: rows,
		sheetparser.BillToSheet: {
			{"CustomerID", "CustomerName", "Email", "Phone", "Address", "City"},
			{"C001", "Acme Corp", "billing@acme.example", "555-0123", "123 Main St", "Metropolis"},
		},
	})
	return path
}

func newTestPipeline(t *testing.T, dir string, exporter Exporter, dispatcher Dispatcher) *Pipeline {
	t.Helper()

	clock := func() time.Time {
		return time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)
	}
	transformer := invoice.NewTransformer(
		sequence.NewInvoiceAllocator(sequence.NewMemoryStore()).WithClock(clock),
		sequence.NewPurchaseOrderAllocator(sequence.NewMemoryStore()).WithClock(clock),
	).WithClock(clock)

	files := utils.NewFileManager(dir, filepath.Join(dir, "archive"))
	require.NoError(t, files.EnsureDirectories())

	render := renderer.Options{CompanyName: "Northwind Traders"}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return New(transformer, render, exporter, dispatcher, files, logger)
}

// =============================================================================
// TESTS
// =============================================================================

func TestRunGeneratesInvoicePerOrder(t *testing.T) {
	dir := t.TempDir()
	path := ordersWorkbook(t, dir, [][]any{
		{"1001", "C001", "ABC123", 2, 9.99, "", ""},
		{"1002", "C001", "ABC123", 1, 4.50, "", ""},
	})

	exporter := &stubExporter{}
	p := newTestPipeline(t, dir, exporter, nil)

	summary, err := p.Run(context.Background(), path, Options{Format: "xlsx"})
	require.NoError(t, err)

	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 2, summary.Succeeded)
	require.Zero(t, summary.Failed)
	require.Len(t, exporter.calls, 2)

	first := summary.Results[0]
	require.Equal(t, "1001", first.OrderRef)
	require.Equal(t, "INV-20250114-0001", first.InvoiceNumber)
	require.Equal(t, filepath.Join(dir, "invoice_INV-20250114-0001.xlsx"), first.OutputFile)

	// Artifacts are archived alongside the run.
	_, err = os.Stat(filepath.Join(dir, "archive", "invoice_INV-20250114-0001.xlsx"))
	require.NoError(t, err)
}

func TestRunIsolatesPerOrderFailures(t *testing.T) {
	dir := t.TempDir()
	path := ordersWorkbook(t, dir, [][]any{
		{"1001", "C001", "ABC123", 2, 9.99, "", ""},
		{"1002", "C001", "ABC123", -3, 9.99, "", ""},
		{"1003", "C001", "ABC123", 1, 2.00, "", ""},
	})

	p := newTestPipeline(t, dir, &stubExporter{}, nil)

	summary, err := p.Run(context.Background(), path, Options{Format: "xlsx"})
	require.NoError(t, err)

	require.Equal(t, 3, summary.Processed)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, "1002", failures[0].OrderRef)
	require.Equal(t, "validate", failures[0].Stage)
	require.ErrorIs(t, failures[0].Err, invoice.ErrNegativeQuantity)

	// The failure must not disturb later orders' numbering by more than the
	// numbers the failed order itself consumed.
	require.Equal(t, "INV-20250114-0003", summary.Results[2].InvoiceNumber)
}

func TestRunExportFailureRecordedPerOrder(t *testing.T) {
	dir := t.TempDir()
	path := ordersWorkbook(t, dir, [][]any{
		{"1001", "C001", "ABC123", 2, 9.99, "", ""},
	})

	boom := errors.New("converter crashed")
	p := newTestPipeline(t, dir, &stubExporter{fail: boom}, nil)

	summary, err := p.Run(context.Background(), path, Options{Format: "pdf"})
	require.NoError(t, err)

	require.Equal(t, 1, summary.Failed)
	require.Equal(t, "export", summary.Results[0].Stage)
	require.ErrorIs(t, summary.Results[0].Err, boom)
}

func TestRunDispatchesToResolvedEmail(t *testing.T) {
	dir := t.TempDir()
	path := ordersWorkbook(t, dir, [][]any{
		{"1001", "C001", "ABC123", 2, 9.99, "", ""},
	})

	dispatcher := &stubDispatcher{}
	p := newTestPipeline(t, dir, &stubExporter{}, dispatcher)

	summary, err := p.Run(context.Background(), path, Options{Format: "pdf", Send: true})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	require.Len(t, dispatcher.requests, 1)
	require.Equal(t, "billing@acme.example", dispatcher.requests[0].To)
	require.Equal(t, summary.Results[0].OutputFile, dispatcher.requests[0].InvoicePath)
}

func TestRunDispatchWithoutRecipientFails(t *testing.T) {
	dir := t.TempDir()
	// Unknown customer and no Email column value, so no recipient resolves.
	path := ordersWorkbook(t, dir, [][]any{
		{"1001", "C999", "ABC123", 2, 9.99, "Ghost Inc", ""},
	})

	p := newTestPipeline(t, dir, &stubExporter{}, &stubDispatcher{})

	summary, err := p.Run(context.Background(), path, Options{Format: "pdf", Send: true})
	require.NoError(t, err)

	require.Equal(t, 1, summary.Failed)
	require.Equal(t, "dispatch", summary.Results[0].Stage)
	require.ErrorContains(t, summary.Results[0].Err, "no recipient email")
}

func TestRunMissingOrderSourceAborts(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t, dir, &stubExporter{}, nil)

	_, err := p.Run(context.Background(), filepath.Join(dir, "absent.xlsx"), Options{Format: "xlsx"})
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to load orders")
}

func TestRunSeparateReferenceWorkbook(t *testing.T) {
	dir := t.TempDir()

	ordersPath := filepath.Join(dir, "orders.xlsx")
	writeWorkbook(t, ordersPath, map[string][][]any{
		sheetparser.OrdersSheet: {
			{"OrderID", "CustomerID", "ItemID", "Qty", "Price"},
			{"1001", "C001", "ABC123", 2, 9.99},
		},
	})

	refPath := filepath.Join(dir, "reference.xlsx")
	writeWorkbook(t, refPath, map[string][][]any{
		sheetparser.BillToSheet: {
			{"CustomerID", "CustomerName", "Email"},
			{"C001", "Acme Corp", "billing@acme.example"},
		},
	})

	dispatcher := &stubDispatcher{}
	p := newTestPipeline(t, dir, &stubExporter{}, dispatcher)

	summary, err := p.Run(context.Background(), ordersPath, Options{
		Format:        "pdf",
		Send:          true,
		ReferencePath: refPath,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, "billing@acme.example", dispatcher.requests[0].To)
}

func TestOrderRefFallsBackToPosition(t *testing.T) {
	require.Equal(t, "#3", orderRef(sheetparser.Row{}, 2))
	require.Equal(t, "1001", orderRef(sheetparser.Row{"OrderID": "1001"}, 2))
}
