// =============================================================================
// Automated Invoice Generator - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration.
//
// CONFIGURATION SOURCES (later sources override earlier ones):
//   1. Built-in defaults
//   2. The YAML configuration file (config.yaml)
//   3. Environment variables for credentials and endpoints
//
// Credentials never live in the YAML file. SMTP settings and the Gotenberg
// endpoint come from the environment so the file can be committed safely.
//
// =============================================================================

package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	// Company describes the issuing company stamped on every invoice.
	Company CompanyConfig `yaml:"company"`

	// Invoice controls invoice-level defaults.
	Invoice InvoiceConfig `yaml:"invoice"`

	// OutputDir is the directory where generated invoices are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir is the directory where copies of generated invoices are
	// archived for long-term storage.
	// Default: "./output_archive"
	ArchiveDir string `yaml:"archive_dir"`

	// CountersDir is the directory holding the persisted sequence counter
	// files for invoice and purchase-order numbers.
	// Default: "./counters"
	CountersDir string `yaml:"counters_dir"`

	// LogLevel controls logging verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log output format: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// SMTP holds the mail transport settings. Populated from the
	// environment, never from YAML.
	SMTP SMTPConfig `yaml:"-"`

	// GotenbergURL is the base URL of a Gotenberg service used for PDF
	// conversion. Populated from the environment. When empty, a local
	// LibreOffice installation is probed instead.
	GotenbergURL string `yaml:"-"`
}

// CompanyConfig describes the issuing company.
type CompanyConfig struct {
	// Name appears in the invoice header.
	Name string `yaml:"name"`

	// Contact is the contact line shown in the invoice metadata block.
	Contact string `yaml:"contact"`

	// Address is the company address shown under the name.
	Address string `yaml:"address"`

	// LogoPath is an optional path to a logo image embedded in the header.
	// A missing file is skipped silently.
	LogoPath string `yaml:"logo_path"`
}

// InvoiceConfig controls invoice-level defaults.
type InvoiceConfig struct {
	// GraceDays is the payment grace period in days.
	// Default: 15
	GraceDays int `yaml:"grace_days"`

	// TaxRate is the flat tax rate applied to the subtotal.
	// Default: 0.05
	TaxRate float64 `yaml:"tax_rate"`

	// Terms is the payment terms line printed at the bottom of the invoice.
	Terms string `yaml:"terms"`
}

// SMTPConfig holds the mail transport settings, sourced from environment
// variables.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM"`
}

// envOverrides collects the environment-sourced settings in one struct so a
// single envconfig.Process call covers them all.
type envOverrides struct {
	SMTP         SMTPConfig
	GotenbergURL string `envconfig:"GOTENBERG_URL"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, applies defaults, overlays the
// environment and validates the result.
//
// A missing configuration file is not an error; the defaults and environment
// alone form a usable configuration.
func Load(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&config)

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	config.SMTP = env.SMTP
	config.GotenbergURL = env.GotenbergURL

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ArchiveDir == "" {
		config.ArchiveDir = "./output_archive"
	}
	if config.CountersDir == "" {
		config.CountersDir = "./counters"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.Invoice.GraceDays == 0 {
		config.Invoice.GraceDays = 15
	}
	if config.Invoice.TaxRate == 0 {
		config.Invoice.TaxRate = 0.05
	}
	if config.Invoice.Terms == "" {
		config.Invoice.Terms = fmt.Sprintf("Payment is due within %d days.", config.Invoice.GraceDays)
	}
}

// validate rejects configurations that cannot produce a correct run.
func validate(config *Config) error {
	if config.Invoice.GraceDays < 0 {
		return fmt.Errorf("invoice.grace_days must not be negative, got %d", config.Invoice.GraceDays)
	}
	if config.Invoice.TaxRate < 0 || config.Invoice.TaxRate >= 1 {
		return fmt.Errorf("invoice.tax_rate must be in [0, 1), got %v", config.Invoice.TaxRate)
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", config.LogLevel)
	}
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", config.LogFormat)
	}
	return nil
}

// MailConfigured reports whether enough SMTP settings are present to send.
func (c *Config) MailConfigured() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

// =============================================================================
// LOGGER CONSTRUCTION
// =============================================================================

// NewLogger builds the application logger from the logging settings.
func (c *Config) NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
