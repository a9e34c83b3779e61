// =============================================================================
// Automated Invoice Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicegen)
//   ├── generateCmd (invoicegen generate)
//   └── versionCmd (invoicegen version)
//
// The root command owns the global flags (--config, --verbose) shared by all
// subcommands. Configuration itself is loaded lazily by the subcommands so
// that 'invoicegen version' works without a configuration file.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoicegen",
	Short: "Automated Invoice Generator - Turn order spreadsheets into formatted invoices",

	Long: `Automated Invoice Generator is a CLI tool that reads order rows from an
Excel workbook, merges in billing and item reference data, allocates invoice
and purchase-order numbers, renders a formatted invoice workbook and exports
it to XLSX or PDF. Exported PDF invoices can optionally be emailed to the
billing contact.

Example Usage:
  invoicegen generate --orders ./orders.xlsx            # Generate XLSX invoices
  invoicegen generate --orders ./orders.xlsx --format pdf
  invoicegen generate --orders ./orders.xlsx --format pdf --send
  invoicegen generate --config ./my.yaml --orders ./orders.xlsx`,

	Run: func(cmd *cobra.Command, args []string) {
		// Without a subcommand there is nothing to do but print help.
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
