// =============================================================================
// Automated Invoice Generator - LibreOffice Converter
// =============================================================================
//
// Converter variant that shells out to a headless LibreOffice binary:
//
//   soffice --headless --convert-to pdf --outdir <dir> <src>
//
// soffice names its output after the source file, so conversion happens in
// the temp directory of the source and the result is renamed into place.
//
// =============================================================================

package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// sofficeBinaries are the binary names probed on $PATH, in order.
var sofficeBinaries = []string{"soffice", "libreoffice"}

// LibreOfficeConverter converts spreadsheets to PDF with a local headless
// LibreOffice installation.
type LibreOfficeConverter struct {
	// Binary is the resolved soffice executable path.
	Binary string
}

// NewLibreOfficeConverter probes $PATH for a LibreOffice binary. The second
// return value reports whether one was found.
func NewLibreOfficeConverter() (*LibreOfficeConverter, bool) {
	for _, name := range sofficeBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return &LibreOfficeConverter{Binary: path}, true
		}
	}
	return nil, false
}

// Name identifies the variant.
func (c *LibreOfficeConverter) Name() string { return "libreoffice" }

// Convert runs the headless conversion and moves the produced PDF to
// dstPath.
func (c *LibreOfficeConverter) Convert(ctx context.Context, srcPath, dstPath string) error {
	outDir := filepath.Dir(srcPath)

	cmd := exec.CommandContext(ctx, c.Binary,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, srcPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("soffice failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	// soffice writes <srcdir>/<srcbase>.pdf.
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	produced := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("soffice reported success but produced no output: %w", err)
	}

	if err := os.Rename(produced, dstPath); err != nil {
		// Rename fails across filesystems; fall back to copy+remove.
		if copyErr := copyFile(produced, dstPath); copyErr != nil {
			return fmt.Errorf("failed to place converted file: %w", copyErr)
		}
		_ = os.Remove(produced)
	}

	return nil
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
