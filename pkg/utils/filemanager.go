// =============================================================================
// Automated Invoice Generator - File Manager
// =============================================================================
//
// Filesystem utilities shared by the generate command and the pipeline:
// output/archive directory handling, archival copies of exported invoice
// artifacts, and the per-run summary log.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the output and archive directories of a run.
type FileManager struct {
	// OutputDir is where exported invoice files are written.
	OutputDir string

	// ArchiveDir is where copies of exported files are kept for long-term
	// storage. Archival is best effort and never fails a run.
	ArchiveDir string
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(outputDir, archiveDir string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
	}
}

// EnsureDirectories creates the output and archive directories if needed.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ArchiveOutputFile copies an exported file into the archive directory and
// returns the archive path.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return "", nil
	}

	archivePath := filepath.Join(fm.ArchiveDir, filepath.Base(filePath))
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filePath, err)
	}
	return archivePath, nil
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// FileExists reports whether the path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// RUN SUMMARY LOG
// =============================================================================

// RunSummary describes the outcome of one batch run for the summary log.
type RunSummary struct {
	StartedAt time.Time
	Elapsed   time.Duration
	Processed int
	Succeeded int
	Failed    int
	Failures  []FailureEntry
}

// FailureEntry is one failed order in the summary log.
type FailureEntry struct {
	OrderRef string
	Stage    string
	Message  string
}

// WriteSummaryLog writes a timestamped summary of the run into the output
// directory and returns the log path.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	logPath := filepath.Join(outputDir,
		fmt.Sprintf("run_summary_%s.txt", summary.StartedAt.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Automated Invoice Generator - Run Summary\n")
	fmt.Fprintf(writer, "Started:   %s\n", summary.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Elapsed:   %s\n", summary.Elapsed)
	fmt.Fprintf(writer, "Processed: %d\n", summary.Processed)
	fmt.Fprintf(writer, "Succeeded: %d\n", summary.Succeeded)
	fmt.Fprintf(writer, "Failed:    %d\n", summary.Failed)

	if len(summary.Failures) > 0 {
		fmt.Fprintf(writer, "\nFailures:\n")
		for i, failure := range summary.Failures {
			fmt.Fprintf(writer, "  #%d order %s at stage %s: %s\n",
				i+1, failure.OrderRef, failure.Stage, failure.Message)
		}
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary log: %w", err)
	}
	return logPath, nil
}
