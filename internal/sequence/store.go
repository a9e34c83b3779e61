// =============================================================================
// Automated Invoice Generator - Counter Stores
// =============================================================================
//
// Two Store implementations:
//
//   - FileStore: a flat text file holding a single line "{YYYYMMDD}-{counter}".
//     This is the production store; one file per counter (purchase orders and
//     invoices each get their own).
//
//   - MemoryStore: in-memory state for tests.
//
// =============================================================================

package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists counter state as a single line "{YYYYMMDD}-{counter}"
// in a flat text file. A missing file reads as empty state.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by the given path. The parent
// directory is created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted (day, counter) pair.
func (s *FileStore) Load() (string, int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No state yet; the allocator treats this as a fresh day.
			return "", 0, nil
		}
		return "", 0, fmt.Errorf("failed to read counter file: %w", err)
	}

	line := strings.TrimSpace(string(data))
	if line == "" {
		return "", 0, nil
	}

	day, counterStr, ok := strings.Cut(line, "-")
	if !ok {
		return "", 0, fmt.Errorf("malformed counter file %s: %q", s.path, line)
	}

	counter, err := strconv.Atoi(counterStr)
	if err != nil {
		return "", 0, fmt.Errorf("malformed counter in %s: %w", s.path, err)
	}

	return day, counter, nil
}

// Save writes the (day, counter) pair, replacing any previous state.
func (s *FileStore) Save(day string, counter int) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create counter directory: %w", err)
		}
	}

	line := fmt.Sprintf("%s-%d\n", day, counter)
	if err := os.WriteFile(s.path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("failed to write counter file: %w", err)
	}
	return nil
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps counter state in memory. Intended for tests.
type MemoryStore struct {
	day     string
	counter int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the in-memory (day, counter) pair.
func (s *MemoryStore) Load() (string, int, error) {
	return s.day, s.counter, nil
}

// Save replaces the in-memory state.
func (s *MemoryStore) Save(day string, counter int) error {
	s.day = day
	s.counter = counter
	return nil
}
