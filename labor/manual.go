package labor

import (
	"context"
	"time"

	"backend/models"
)

// ManualEntryInput carries operator-supplied times for a back-dated entry.
type ManualEntryInput struct {
	OrganizationID  string
	EmployeeID      string
	EmployeeName    string
	WorkOrderID     *string
	WorkOrderNumber string
	StartTime       time.Time
	EndTime         time.Time
	RegularRate     *float64
	WorkType        string
	TaskDescription string
}

// AddManualEntry records a completed entry directly, bypassing the timer
// state machine. The single-active-timer rule does not apply (a manual entry
// is never active), but entries of the same employee overlapping the supplied
// range are returned as a non-fatal warning for the operator to review.
func (e *Engine) AddManualEntry(ctx context.Context, in ManualEntryInput) (*models.LaborEntry, []models.LaborEntry, error) {
	hours, cost, err := ComputeDurationAndCost(in.StartTime, in.EndTime, in.RegularRate)
	if err != nil {
		return nil, nil, err
	}

	overlaps, err := e.store.Query(ctx, models.EntryFilter{
		OrganizationID: in.OrganizationID,
		EmployeeID:     in.EmployeeID,
		Overlaps:       &models.TimeRange{From: in.StartTime, To: in.EndTime},
	})
	if err != nil {
		return nil, nil, err
	}

	end := in.EndTime
	entry, err := e.store.Create(ctx, models.NewLaborEntry{
		OrganizationID:  in.OrganizationID,
		WorkOrderID:     in.WorkOrderID,
		WorkOrderNumber: in.WorkOrderNumber,
		EmployeeID:      in.EmployeeID,
		EmployeeName:    in.EmployeeName,
		StartTime:       in.StartTime,
		EndTime:         &end,
		HoursWorked:     &hours,
		RegularRate:     in.RegularRate,
		TotalLaborCost:  cost,
		WorkType:        in.WorkType,
		TaskDescription: in.TaskDescription,
		Status:          models.EntryStatusCompleted,
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, overlaps, nil
}

// EntryEdit corrects a completed entry. Nil fields are left unchanged.
type EntryEdit struct {
	StartTime       *time.Time
	EndTime         *time.Time
	RegularRate     *float64
	WorkType        *string
	TaskDescription *string
}

// EditEntry patches a completed entry. Any change to start, end or rate
// re-validates the range and recomputes hours and cost; stored figures are
// otherwise immutable once an entry completes.
func (e *Engine) EditEntry(ctx context.Context, entryID string, edit EntryEdit) (*models.LaborEntry, error) {
	entry, err := e.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.EntryStatusCompleted {
		return nil, &InvalidStateError{EntryID: entryID, Status: entry.Status}
	}

	start := entry.StartTime
	if edit.StartTime != nil {
		start = *edit.StartTime
	}
	end := *entry.EndTime
	if edit.EndTime != nil {
		end = *edit.EndTime
	}
	rate := entry.RegularRate
	if edit.RegularRate != nil {
		rate = edit.RegularRate
	}

	patch := models.LaborEntryPatch{
		StartTime:       edit.StartTime,
		EndTime:         edit.EndTime,
		RegularRate:     edit.RegularRate,
		WorkType:        edit.WorkType,
		TaskDescription: edit.TaskDescription,
		ExpectStatus:    models.EntryStatusCompleted,
	}
	if edit.StartTime != nil || edit.EndTime != nil || edit.RegularRate != nil {
		hours, cost, err := ComputeDurationAndCost(start, end, rate)
		if err != nil {
			return nil, err
		}
		patch.HoursWorked = &hours
		patch.TotalLaborCost = cost
	}

	return e.store.Update(ctx, entryID, patch)
}

// DeleteEntry removes an entry outright, active or completed. Deleting an
// active entry is how an operator discards a mistakenly started timer
// without it ever completing or costing. Nothing cascades: the work order
// and employee rows are never touched.
func (e *Engine) DeleteEntry(ctx context.Context, entryID string) error {
	return e.store.Delete(ctx, entryID)
}
