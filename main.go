// =============================================================================
// Automated Invoice Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Automated Invoice Generator CLI.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   invoicegen generate     - Generate invoices from an order workbook
//   invoicegen version      - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (not for external import)
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/jessherna/AutomatedInvoiceGenerator/cmd"
)

func main() {
	cmd.Execute()
}
