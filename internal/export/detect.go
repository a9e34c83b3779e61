// =============================================================================
// Automated Invoice Generator - Converter Detection
// =============================================================================

package export

import (
	"fmt"
	"runtime"
)

// DetectConverter selects the PDF conversion capability at startup.
//
// An explicitly configured Gotenberg URL wins. Otherwise the host is probed
// for a LibreOffice binary. When neither exists the returned converter is
// nil and PDF exports fail with ErrConverterUnavailable.
func DetectConverter(gotenbergURL string) Converter {
	if gotenbergURL != "" {
		return NewGotenbergConverter(gotenbergURL)
	}
	if conv, ok := NewLibreOfficeConverter(); ok {
		return conv
	}
	return nil
}

// capabilityHint explains why PDF conversion is unavailable, distinguishing
// a missing installation from an unsupported platform.
func capabilityHint() string {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		return fmt.Sprintf("no LibreOffice installation found on %s and no Gotenberg URL configured; install LibreOffice or set GOTENBERG_URL", runtime.GOOS)
	default:
		return fmt.Sprintf("PDF conversion is not supported on %s; set GOTENBERG_URL to use a remote Gotenberg service", runtime.GOOS)
	}
}
