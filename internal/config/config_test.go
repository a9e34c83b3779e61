package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "company:\n  name: Northwind Traders\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "Northwind Traders", cfg.Company.Name)
	require.Equal(t, "./output", cfg.OutputDir)
	require.Equal(t, "./output_archive", cfg.ArchiveDir)
	require.Equal(t, "./counters", cfg.CountersDir)
	require.Equal(t, 15, cfg.Invoice.GraceDays)
	require.Equal(t, 0.05, cfg.Invoice.TaxRate)
	require.Equal(t, "Payment is due within 15 days.", cfg.Invoice.Terms)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "./output", cfg.OutputDir)
}

func TestLoadFileValuesOverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
company:
  name: Northwind Traders
  contact: Jess Hernandez
invoice:
  grace_days: 30
  tax_rate: 0.13
  terms: Net 30.
output_dir: ./invoices
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 30, cfg.Invoice.GraceDays)
	require.Equal(t, 0.13, cfg.Invoice.TaxRate)
	require.Equal(t, "Net 30.", cfg.Invoice.Terms)
	require.Equal(t, "./invoices", cfg.OutputDir)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadDefaultTermsTracksGraceDays(t *testing.T) {
	path := writeConfig(t, "invoice:\n  grace_days: 30\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Payment is due within 30 days.", cfg.Invoice.Terms)
}

func TestLoadEnvironmentOverlay(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "billing@example.com")
	t.Setenv("GOTENBERG_URL", "http://gotenberg:3000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	require.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	require.Equal(t, 2525, cfg.SMTP.Port)
	require.Equal(t, "billing@example.com", cfg.SMTP.From)
	require.Equal(t, "http://gotenberg:3000", cfg.GotenbergURL)
	require.True(t, cfg.MailConfigured())
}

func TestLoadSMTPPortDefault(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 587, cfg.SMTP.Port)
	require.False(t, cfg.MailConfigured())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative grace", "invoice:\n  grace_days: -1\n", "grace_days"},
		{"tax rate too high", "invoice:\n  tax_rate: 1.5\n", "tax_rate"},
		{"unknown log level", "log_level: loud\n", "log_level"},
		{"unknown log format", "log_format: xml\n", "log_format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "company: [unclosed"))
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	cfg := &Config{LogLevel: "warn", LogFormat: "text"}
	logger := cfg.NewLogger()

	require.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	require.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}
