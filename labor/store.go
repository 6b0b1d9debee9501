package labor

import (
	"context"

	"backend/models"
)

// EntryStore is the persistence contract the engine runs against. The store
// is the single source of truth: the engine keeps no state between calls, so
// an app restart or a second device always observes consistent timers.
//
// Implementations must provide two atomicity guarantees:
//
//   - Create of an active entry is a check-then-insert: two racing inserts
//     for the same (organization, employee) cannot both succeed; the loser
//     receives a *ConflictError naming the entry that won.
//   - Update with a non-empty ExpectStatus applies only if the stored status
//     still matches, returning *InvalidStateError with the current status
//     otherwise.
//
// Failures of the backing store itself are reported as *PersistenceError.
type EntryStore interface {
	// Create inserts a new entry and returns it with id and timestamps set.
	Create(ctx context.Context, entry models.NewLaborEntry) (*models.LaborEntry, error)

	// Update applies a partial update and returns the stored row.
	// Returns *NotFoundError if no entry has the id.
	Update(ctx context.Context, id string, patch models.LaborEntryPatch) (*models.LaborEntry, error)

	// FindActiveByEmployee returns the employee's running entry, or nil when
	// the employee is idle.
	FindActiveByEmployee(ctx context.Context, organizationID, employeeID string) (*models.LaborEntry, error)

	// Query returns entries matching the filter, most recent start first.
	Query(ctx context.Context, filter models.EntryFilter) ([]models.LaborEntry, error)

	// Delete removes an entry outright. Returns *NotFoundError if missing.
	Delete(ctx context.Context, id string) error
}
