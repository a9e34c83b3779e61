// =============================================================================
// Automated Invoice Generator - Sequence Number Allocator
// =============================================================================
//
// This module issues daily-resetting sequential identifiers for purchase
// orders and invoices. Each allocator owns one persisted counter consisting
// of a day stamp and the last-issued sequence number:
//
//   - If the stored day matches today, the counter is incremented.
//   - If the stored day differs (or no state exists), the counter resets to 1.
//
// The new state is persisted before the identifier is returned, so a crash
// after allocation cannot re-issue a number within the same day.
//
// IDENTIFIER FORMAT:
//   {PREFIX}{YYYYMMDD}-{4-digit sequence}
//   Examples: PO-20250114-0001, INV-20250114-0042
//
// Persistence is abstracted behind the Store interface so tests can use an
// in-memory store instead of real filesystem state.
//
// =============================================================================

package sequence

import (
	"fmt"
	"time"
)

// dayFormat is the day-stamp layout used in identifiers and persisted state.
const dayFormat = "20060102"

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists the (day, counter) pair between allocations.
type Store interface {
	// Load returns the stored day stamp and counter. A store with no prior
	// state returns ("", 0, nil).
	Load() (day string, counter int, err error)

	// Save replaces the stored state with the given pair.
	Save(day string, counter int) error
}

// =============================================================================
// ALLOCATOR
// =============================================================================

// Allocator issues sequential identifiers backed by a Store.
//
// The allocator performs a read-modify-write on its store with no locking.
// Two processes sharing the same store can issue duplicate numbers; this is
// an accepted constraint of the single-operator, single-process usage model.
type Allocator struct {
	prefix string
	store  Store
	now    func() time.Time
}

// New creates an Allocator with the given identifier prefix and store.
func New(prefix string, store Store) *Allocator {
	return &Allocator{
		prefix: prefix,
		store:  store,
		now:    time.Now,
	}
}

// NewPurchaseOrderAllocator creates the allocator for PO numbers.
func NewPurchaseOrderAllocator(store Store) *Allocator {
	return New("PO-", store)
}

// NewInvoiceAllocator creates the allocator for invoice numbers.
func NewInvoiceAllocator(store Store) *Allocator {
	return New("INV-", store)
}

// WithClock replaces the allocator's time source. Used by tests to simulate
// a day boundary.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// Next issues the next identifier, mutating the persisted state.
//
// The counter resets to 1 whenever the stored day stamp differs from today,
// otherwise it increments by one.
func (a *Allocator) Next() (string, error) {
	today := a.now().Format(dayFormat)

	day, counter, err := a.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load counter state: %w", err)
	}

	if day == today {
		counter++
	} else {
		counter = 1
	}

	if err := a.store.Save(today, counter); err != nil {
		return "", fmt.Errorf("failed to save counter state: %w", err)
	}

	return fmt.Sprintf("%s%s-%04d", a.prefix, today, counter), nil
}
