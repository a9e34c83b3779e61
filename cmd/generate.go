// =============================================================================
// Automated Invoice Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the main command for producing
// invoices from an order workbook. It wires the configuration into the
// pipeline and reports the run outcome.
//
// COMMAND USAGE:
//   invoicegen generate [flags]
//
// FLAGS:
//   --orders      : Path to the order workbook (required)
//   --reference   : Workbook holding the BillTo and Items sheets
//                   (defaults to the order workbook itself)
//   --format      : Export format, "xlsx" or "pdf"
//   --send        : Email each exported PDF to the billing contact
//   --out         : Override the configured output directory
//
// PROCESSING PIPELINE:
//   1. Load configuration and build the logger
//   2. Restore the invoice and purchase-order counters
//   3. For each order row:
//      a. Merge reference data and allocate numbers
//      b. Validate the invoice record
//      c. Render the formatted workbook
//      d. Export to the requested format
//      e. Archive the artifact, optionally email it
//   4. Print the run summary and write the summary log
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jessherna/AutomatedInvoiceGenerator/internal/config"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/export"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/invoice"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/mailer"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/pipeline"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/renderer"
	"github.com/jessherna/AutomatedInvoiceGenerator/internal/sequence"
	"github.com/jessherna/AutomatedInvoiceGenerator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// ordersPath is the path to the order workbook.
var ordersPath string

// referencePath is the workbook holding the reference sheets, when separate
// from the order workbook.
var referencePath string

// exportFormat is the requested artifact format.
var exportFormat string

// sendInvoices enables email dispatch of exported invoices.
var sendInvoices bool

// outputDir overrides the configured output directory when set.
var outputDir string

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate invoices from an order workbook",
	Long: `The generate command reads the Orders sheet of the given workbook, merges
billing and item reference data, allocates invoice and purchase-order numbers,
renders each invoice as a formatted workbook and exports it to the requested
format.

Each order is processed independently; an error in one order does not stop the
others. The run ends with a summary of successes and failures, and the same
summary is written to a log file in the output directory.

Sending requires PDF output and a configured SMTP environment (SMTP_HOST,
SMTP_FROM, and optionally SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

// init registers the generate command and its flags.
func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(
		&ordersPath,
		"orders",
		"",
		"Path to the order workbook (required)",
	)
	generateCmd.MarkFlagRequired("orders")

	generateCmd.Flags().StringVar(
		&referencePath,
		"reference",
		"",
		"Workbook holding the BillTo and Items sheets (default: the order workbook)",
	)

	generateCmd.Flags().StringVar(
		&exportFormat,
		"format",
		"xlsx",
		"Export format: xlsx or pdf",
	)

	generateCmd.Flags().BoolVar(
		&sendInvoices,
		"send",
		false,
		"Email each exported PDF invoice to the billing contact",
	)

	generateCmd.Flags().StringVar(
		&outputDir,
		"out",
		"",
		"Output directory (overrides the configured one)",
	)
}

// =============================================================================
// MAIN GENERATION FUNCTION
// =============================================================================

// runGenerate wires the configuration into the pipeline and runs it.
func runGenerate(cmd *cobra.Command) error {
	startTime := time.Now()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	logger := cfg.NewLogger()

	if sendInvoices && exportFormat != "pdf" {
		return fmt.Errorf("--send requires --format pdf, got %q", exportFormat)
	}

	// Fail fast on a bad source path, before any directories or counters
	// are touched.
	if !utils.FileExists(ordersPath) {
		return fmt.Errorf("order workbook not found: %s", ordersPath)
	}
	if referencePath != "" && !utils.FileExists(referencePath) {
		return fmt.Errorf("reference workbook not found: %s", referencePath)
	}

	// =========================================================================
	// STEP 1: DIRECTORIES AND COUNTERS
	// =========================================================================

	files := utils.NewFileManager(cfg.OutputDir, cfg.ArchiveDir)
	if err := files.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to prepare output directories: %w", err)
	}

	invoiceNumbers := sequence.NewInvoiceAllocator(
		sequence.NewFileStore(filepath.Join(cfg.CountersDir, "invoice_number.txt")))
	poNumbers := sequence.NewPurchaseOrderAllocator(
		sequence.NewFileStore(filepath.Join(cfg.CountersDir, "po_number.txt")))

	transformer := invoice.NewTransformer(invoiceNumbers, poNumbers)
	transformer.CompanyContact = cfg.Company.Contact
	transformer.GraceDays = cfg.Invoice.GraceDays
	transformer.Terms = cfg.Invoice.Terms

	// =========================================================================
	// STEP 2: EXPORT AND DISPATCH WIRING
	// =========================================================================

	converter := export.DetectConverter(cfg.GotenbergURL)
	if converter != nil {
		logger.Debug("pdf converter selected", "converter", converter.Name())
	}
	exporter := export.New(converter)

	var dispatcher pipeline.Dispatcher
	if sendInvoices {
		if !cfg.MailConfigured() {
			return fmt.Errorf("--send requires SMTP_HOST and SMTP_FROM to be set")
		}
		transport, err := mailer.NewSMTPTransport(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
		if err != nil {
			return fmt.Errorf("failed to set up mail transport: %w", err)
		}
		dispatcher = mailer.New(transport, cfg.SMTP.From, logger)
	}

	render := renderer.Options{
		CompanyName:    cfg.Company.Name,
		CompanyAddress: cfg.Company.Address,
		LogoPath:       cfg.Company.LogoPath,
		TaxRate:        cfg.Invoice.TaxRate,
	}

	// =========================================================================
	// STEP 3: RUN THE PIPELINE
	// =========================================================================

	fmt.Println("=== Automated Invoice Generator ===")
	fmt.Printf("Processing orders from %s\n", ordersPath)

	p := pipeline.New(transformer, render, exporter, dispatcher, files, logger)
	summary, err := p.Run(cmd.Context(), ordersPath, pipeline.Options{
		Format:        exportFormat,
		Send:          sendInvoices,
		ReferencePath: referencePath,
	})
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: REPORT RESULTS
	// =========================================================================

	for _, result := range summary.Results {
		if result.Err != nil {
			fmt.Printf("  ✗ %s: %s: %v\n", result.OrderRef, result.Stage, result.Err)
			continue
		}
		fmt.Printf("  ✓ %s -> %s\n", result.OrderRef, filepath.Base(result.OutputFile))
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total orders:    %d\n", summary.Processed)
	fmt.Printf("Successful:      %d\n", summary.Succeeded)
	fmt.Printf("Errors:          %d\n", summary.Failed)
	fmt.Printf("Time elapsed:    %s\n", summary.Elapsed)

	logSummary := utils.RunSummary{
		StartedAt: startTime,
		Elapsed:   summary.Elapsed,
		Processed: summary.Processed,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
	}
	for _, failure := range summary.Failures() {
		logSummary.Failures = append(logSummary.Failures, utils.FailureEntry{
			OrderRef: failure.OrderRef,
			Stage:    failure.Stage,
			Message:  failure.Err.Error(),
		})
	}
	logPath, err := utils.WriteSummaryLog(logSummary, cfg.OutputDir)
	if err != nil {
		logger.Warn("failed to write summary log", "error", err)
	} else {
		fmt.Printf("Summary log:     %s\n", logPath)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d orders failed", summary.Failed, summary.Processed)
	}
	return nil
}
