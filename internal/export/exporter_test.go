package export

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// stubConverter records the paths it was asked to convert and optionally
// fails.
type stubConverter struct {
	srcPath string
	dstPath string
	err     error
}

func (s *stubConverter) Name() string { return "stub" }

func (s *stubConverter) Convert(_ context.Context, srcPath, dstPath string) error {
	s.srcPath = srcPath
	s.dstPath = dstPath
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(dstPath, []byte("%PDF-1.4 stub"), 0o644)
}

func testWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Contoso Logistics"))
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExportXLSX(t *testing.T) {
	base := filepath.Join(t.TempDir(), "invoice_INV-20250114-0001")

	path, err := New(nil).Export(context.Background(), testWorkbook(t), base, "xlsx")
	require.NoError(t, err)
	require.Equal(t, base+".xlsx", path)
	require.FileExists(t, path)
}

func TestExportUnsupportedFormat(t *testing.T) {
	base := filepath.Join(t.TempDir(), "invoice001")

	_, err := New(nil).Export(context.Background(), testWorkbook(t), base, "docx")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.ErrorContains(t, err, "docx")
}

func TestExportPDFWithoutConverter(t *testing.T) {
	base := filepath.Join(t.TempDir(), "invoice001")

	_, err := New(nil).Export(context.Background(), testWorkbook(t), base, "pdf")
	require.ErrorIs(t, err, ErrConverterUnavailable)
}

func TestExportPDFRemovesTempFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "invoice001")
	conv := &stubConverter{}

	path, err := New(conv).Export(context.Background(), testWorkbook(t), base, "pdf")
	require.NoError(t, err)
	require.Equal(t, base+".pdf", path)
	require.FileExists(t, path)

	// The intermediate native file must be gone.
	require.NotEmpty(t, conv.srcPath)
	require.NoFileExists(t, conv.srcPath)
}

func TestExportPDFRemovesTempFileOnConversionFailure(t *testing.T) {
	base := filepath.Join(t.TempDir(), "invoice001")
	conv := &stubConverter{err: errors.New("conversion exploded")}

	_, err := New(conv).Export(context.Background(), testWorkbook(t), base, "pdf")
	require.ErrorContains(t, err, "conversion exploded")
	require.ErrorContains(t, err, "stub")

	require.NotEmpty(t, conv.srcPath)
	require.NoFileExists(t, conv.srcPath)
}

func TestGotenbergConverterConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/libreoffice/convert" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("%PDF-1.4 converted"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := filepath.Join(dir, "in.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("native"), 0o644))
	dst := filepath.Join(dir, "out.pdf")

	conv := NewGotenbergConverter(srv.URL)
	require.NoError(t, conv.Convert(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 converted", string(data))
}

func TestGotenbergConverterErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "libreoffice crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := filepath.Join(dir, "in.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("native"), 0o644))

	conv := NewGotenbergConverter(srv.URL)
	err := conv.Convert(context.Background(), src, filepath.Join(dir, "out.pdf"))
	require.ErrorContains(t, err, "500")
	require.ErrorContains(t, err, "libreoffice crashed")
}

func TestDetectConverterPrefersGotenberg(t *testing.T) {
	conv := DetectConverter("http://gotenberg.local:3000")
	require.NotNil(t, conv)
	require.Equal(t, "gotenberg", conv.Name())
}
