package labor

import (
	"context"
	"time"

	"backend/models"
)

// Engine is the labor time-tracking engine. It is stateless between calls;
// every decision re-queries the entry store, which makes it restart-safe and
// consistent across devices operating on the same employee.
type Engine struct {
	store EntryStore
	now   func() time.Time
}

func NewEngine(store EntryStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// StartTimerInput identifies who is working on what. Display fields
// (employee name, work order number) and the pay rate are snapshotted onto
// the entry at start so the record stands alone.
type StartTimerInput struct {
	OrganizationID  string
	EmployeeID      string
	EmployeeName    string
	WorkOrderID     *string
	WorkOrderNumber string
	WorkType        string
	TaskDescription string
	RegularRate     *float64
}

// StartTimer opens a running entry for the employee. It fails with
// *ConflictError if the employee already has an active entry anywhere in the
// organization, including a race where two devices start simultaneously: the
// store's check-then-insert lets exactly one through. Safe to retry after an
// ambiguous failure; a retry of a start that actually landed reports the
// conflict instead of creating a duplicate.
func (e *Engine) StartTimer(ctx context.Context, in StartTimerInput) (*models.LaborEntry, error) {
	existing, err := e.store.FindActiveByEmployee(ctx, in.OrganizationID, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{
			OrganizationID: in.OrganizationID,
			EmployeeID:     in.EmployeeID,
			Existing:       existing,
		}
	}

	entry := models.NewLaborEntry{
		OrganizationID:  in.OrganizationID,
		WorkOrderID:     in.WorkOrderID,
		WorkOrderNumber: in.WorkOrderNumber,
		EmployeeID:      in.EmployeeID,
		EmployeeName:    in.EmployeeName,
		StartTime:       e.now(),
		WorkType:        in.WorkType,
		TaskDescription: in.TaskDescription,
		RegularRate:     in.RegularRate,
		Status:          models.EntryStatusActive,
	}
	return e.store.Create(ctx, entry)
}

// StopTimer completes a running entry: sets end_time to now, computes hours
// and cost from the rate captured on the entry, and flips the status. A
// duplicate stop (double tap, second device) loses the conditional update
// and fails with *InvalidStateError without touching the stored figures.
func (e *Engine) StopTimer(ctx context.Context, entryID string) (*models.LaborEntry, error) {
	entry, err := e.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.EntryStatusActive {
		return nil, &InvalidStateError{EntryID: entryID, Status: entry.Status}
	}

	end := e.now()
	hours, cost, err := ComputeDurationAndCost(entry.StartTime, end, entry.RegularRate)
	if err != nil {
		return nil, err
	}

	status := models.EntryStatusCompleted
	return e.store.Update(ctx, entryID, models.LaborEntryPatch{
		EndTime:        &end,
		HoursWorked:    &hours,
		TotalLaborCost: cost,
		Status:         &status,
		ExpectStatus:   models.EntryStatusActive,
	})
}

// GetActiveTimer returns the employee's running entry, or nil when idle.
// The presentation layer uses this to restore timer state after a reload.
func (e *Engine) GetActiveTimer(ctx context.Context, organizationID, employeeID string) (*models.LaborEntry, error) {
	return e.store.FindActiveByEmployee(ctx, organizationID, employeeID)
}

func (e *Engine) getEntry(ctx context.Context, entryID string) (*models.LaborEntry, error) {
	entries, err := e.store.Query(ctx, models.EntryFilter{EntryID: entryID})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &NotFoundError{EntryID: entryID}
	}
	return &entries[0], nil
}
