package labor

import (
	"fmt"
	"time"

	"backend/models"
)

// ConflictError is returned when a timer start would violate the
// one-active-entry-per-employee rule. Existing names the entry already
// running so the caller can offer to stop it first.
type ConflictError struct {
	OrganizationID string
	EmployeeID     string
	Existing       *models.LaborEntry
}

func (e *ConflictError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("employee %s already has an active timer (entry %s, started %s)",
			e.EmployeeID, e.Existing.ID, e.Existing.StartTime.Format(time.RFC3339))
	}
	return fmt.Sprintf("employee %s already has an active timer", e.EmployeeID)
}

// NotFoundError is returned when the referenced entry does not exist.
type NotFoundError struct {
	EntryID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("labor entry %s not found", e.EntryID)
}

// InvalidStateError is returned when an operation is not valid for the
// entry's current status, e.g. stopping an already-completed entry.
type InvalidStateError struct {
	EntryID string
	Status  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("labor entry %s is %s", e.EntryID, e.Status)
}

// InvalidRangeError is returned when an end time is not strictly after the
// start time.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("end time %s must be after start time %s",
		e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

// PersistenceError wraps a failure from the entry store. It is always
// surfaced to the caller; a silently dropped start or stop would corrupt
// payroll data. Callers may retry, the engine never does.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
