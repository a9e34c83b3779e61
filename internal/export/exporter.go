// =============================================================================
// Automated Invoice Generator - Document Exporter
// =============================================================================
//
// The exporter serializes a rendered workbook to its output file:
//
//   - "xlsx": written directly; deterministic, always succeeds barring I/O.
//   - "pdf" : the workbook is first serialized to a uniquely named temporary
//             native file, then converted through the injected Converter.
//             The temporary file is removed on every exit path, including
//             conversion failure.
//
// PDF conversion is a platform capability with two variants (a headless
// LibreOffice binary, or a Gotenberg service over HTTP), selected at startup
// by DetectConverter and injected so tests can substitute a double. When no
// capability is available, the export fails with ErrConverterUnavailable and
// a message that distinguishes "not installed" from "not supported".
//
// =============================================================================

package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Sentinel errors of the export taxonomy.
var (
	// ErrUnsupportedFormat indicates a requested format other than xlsx/pdf.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
	// ErrConverterUnavailable indicates no PDF conversion capability exists.
	ErrConverterUnavailable = errors.New("export: no document converter available")
)

// Converter is the platform-specific PDF conversion capability.
type Converter interface {
	// Convert turns the native spreadsheet at srcPath into a PDF at dstPath.
	Convert(ctx context.Context, srcPath, dstPath string) error

	// Name identifies the converter variant for logs and error messages.
	Name() string
}

// Exporter serializes rendered workbooks. A nil Converter disables the PDF
// path but leaves xlsx export fully functional.
type Exporter struct {
	converter Converter
}

// New creates an Exporter with the given conversion capability. converter
// may be nil when no capability was detected.
func New(converter Converter) *Exporter {
	return &Exporter{converter: converter}
}

// Export writes the rendered workbook to basePath plus the extension of the
// requested format and returns the full output path.
func (e *Exporter) Export(ctx context.Context, doc *excelize.File, basePath, format string) (string, error) {
	switch format {
	case "xlsx":
		outPath := basePath + ".xlsx"
		if err := doc.SaveAs(outPath); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		return outPath, nil

	case "pdf":
		return e.exportPDF(ctx, doc, basePath)

	default:
		return "", fmt.Errorf("%w: %q (supported: xlsx, pdf)", ErrUnsupportedFormat, format)
	}
}

// exportPDF serializes the workbook to a temporary native file and converts
// it. The temporary file is removed on all exit paths.
func (e *Exporter) exportPDF(ctx context.Context, doc *excelize.File, basePath string) (string, error) {
	if e.converter == nil {
		return "", fmt.Errorf("%w: %s", ErrConverterUnavailable, capabilityHint())
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("invoice_%s.xlsx", uuid.New().String()))
	if err := doc.SaveAs(tmpPath); err != nil {
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	defer os.Remove(tmpPath)

	outPath := basePath + ".pdf"
	if err := e.converter.Convert(ctx, tmpPath, outPath); err != nil {
		return "", fmt.Errorf("%s conversion failed: %w", e.converter.Name(), err)
	}

	return outPath, nil
}
