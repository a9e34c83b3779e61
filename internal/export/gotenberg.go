// =============================================================================
// Automated Invoice Generator - Gotenberg Converter
// =============================================================================
//
// Converter variant that posts the native file to a Gotenberg service and
// writes the returned PDF. Gotenberg's LibreOffice route converts office
// documents without a local office-suite installation, which makes this the
// portable capability on hosts where no soffice binary exists.
//
// =============================================================================

package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GotenbergConverter converts spreadsheets to PDF through a remote Gotenberg
// instance.
type GotenbergConverter struct {
	baseURL    string
	httpClient *http.Client
}

// NewGotenbergConverter creates a converter for the given Gotenberg base URL.
func NewGotenbergConverter(baseURL string) *GotenbergConverter {
	return &GotenbergConverter{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the variant.
func (c *GotenbergConverter) Name() string { return "gotenberg" }

// Convert uploads srcPath to the LibreOffice conversion route and writes the
// response body to dstPath.
func (c *GotenbergConverter) Convert(ctx context.Context, srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", filepath.Base(srcPath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/forms/libreoffice/convert", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gotenberg request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("gotenberg returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
