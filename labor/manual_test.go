package labor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/models"
)

func TestAddManualEntry(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates a completed entry with computed figures", func(t *testing.T) {
		engine := NewEngine(newMemStore())

		entry, overlaps, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01",
			EmployeeID:     "emp_07",
			EmployeeName:   "Jane Smith",
			StartTime:      day.Add(8 * time.Hour),
			EndTime:        day.Add(9*time.Hour + 30*time.Minute),
			RegularRate:    rate(25.00),
			WorkType:       "repair",
		})
		require.NoError(t, err)
		assert.Empty(t, overlaps)
		assert.Equal(t, models.EntryStatusCompleted, entry.Status)
		require.NotNil(t, entry.HoursWorked)
		assert.Equal(t, 1.5, *entry.HoursWorked)
		require.NotNil(t, entry.TotalLaborCost)
		assert.Equal(t, 37.5, *entry.TotalLaborCost)
	})

	t.Run("invalid range rejects before anything is stored", func(t *testing.T) {
		store := newMemStore()
		engine := NewEngine(store)

		_, _, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01",
			EmployeeID:     "emp_07",
			StartTime:      day.Add(9 * time.Hour),
			EndTime:        day.Add(8 * time.Hour),
			WorkType:       "repair",
		})
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)

		entries, err := store.Query(ctx, models.EntryFilter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("overlapping entries warn but do not block", func(t *testing.T) {
		engine := NewEngine(newMemStore())

		first, _, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01", EmployeeID: "emp_07",
			StartTime: day.Add(8 * time.Hour), EndTime: day.Add(10 * time.Hour),
			WorkType: "repair",
		})
		require.NoError(t, err)

		second, overlaps, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01", EmployeeID: "emp_07",
			StartTime: day.Add(9 * time.Hour), EndTime: day.Add(11 * time.Hour),
			WorkType: "inspection",
		})
		require.NoError(t, err)
		require.Len(t, overlaps, 1)
		assert.Equal(t, first.ID, overlaps[0].ID)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("running timer counts as an overlap", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		engine.now = func() time.Time { return day.Add(8 * time.Hour) }

		running, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)

		_, overlaps, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01", EmployeeID: "emp_07",
			StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour),
			WorkType: "inspection",
		})
		require.NoError(t, err)
		require.Len(t, overlaps, 1)
		assert.Equal(t, running.ID, overlaps[0].ID)
	})

	t.Run("other employees never warn", func(t *testing.T) {
		engine := NewEngine(newMemStore())

		_, _, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01", EmployeeID: "emp_07",
			StartTime: day.Add(8 * time.Hour), EndTime: day.Add(10 * time.Hour),
			WorkType: "repair",
		})
		require.NoError(t, err)

		_, overlaps, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01", EmployeeID: "emp_08",
			StartTime: day.Add(8 * time.Hour), EndTime: day.Add(10 * time.Hour),
			WorkType: "repair",
		})
		require.NoError(t, err)
		assert.Empty(t, overlaps)
	})
}

func TestEditEntry(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	addCompleted := func(t *testing.T, engine *Engine, r *float64) *models.LaborEntry {
		entry, _, err := engine.AddManualEntry(ctx, ManualEntryInput{
			OrganizationID: "org_01", EmployeeID: "emp_07",
			StartTime: day.Add(8 * time.Hour), EndTime: day.Add(9 * time.Hour),
			RegularRate: r, WorkType: "repair",
		})
		require.NoError(t, err)
		return entry
	}

	t.Run("changing end time recomputes hours and cost", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		entry := addCompleted(t, engine, rate(25.00))

		newEnd := day.Add(9*time.Hour + 30*time.Minute)
		edited, err := engine.EditEntry(ctx, entry.ID, EntryEdit{EndTime: &newEnd})
		require.NoError(t, err)
		require.NotNil(t, edited.HoursWorked)
		assert.Equal(t, 1.5, *edited.HoursWorked)
		require.NotNil(t, edited.TotalLaborCost)
		assert.Equal(t, 37.5, *edited.TotalLaborCost)
	})

	t.Run("supplying a rate resolves a pending cost", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		entry := addCompleted(t, engine, nil)
		assert.True(t, entry.CostPending())

		edited, err := engine.EditEntry(ctx, entry.ID, EntryEdit{RegularRate: rate(40.00)})
		require.NoError(t, err)
		require.NotNil(t, edited.TotalLaborCost)
		assert.Equal(t, 40.0, *edited.TotalLaborCost)
		assert.False(t, edited.CostPending())
	})

	t.Run("description-only edit leaves figures alone", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		entry := addCompleted(t, engine, rate(25.00))

		description := "corrected task notes"
		edited, err := engine.EditEntry(ctx, entry.ID, EntryEdit{TaskDescription: &description})
		require.NoError(t, err)
		assert.Equal(t, description, edited.TaskDescription)
		assert.Equal(t, *entry.HoursWorked, *edited.HoursWorked)
		assert.Equal(t, *entry.TotalLaborCost, *edited.TotalLaborCost)
	})

	t.Run("edit that would invert the range is rejected", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		entry := addCompleted(t, engine, rate(25.00))

		badEnd := day.Add(7 * time.Hour)
		_, err := engine.EditEntry(ctx, entry.ID, EntryEdit{EndTime: &badEnd})
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
	})

	t.Run("active entries cannot be edited", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		engine.now = func() time.Time { return day.Add(8 * time.Hour) }
		running, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)

		newEnd := day.Add(9 * time.Hour)
		_, err = engine.EditEntry(ctx, running.ID, EntryEdit{EndTime: &newEnd})
		var stateErr *InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, models.EntryStatusActive, stateErr.Status)
	})
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("deleting an active entry discards the timer", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		engine.now = func() time.Time { return day.Add(8 * time.Hour) }
		running, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)

		require.NoError(t, engine.DeleteEntry(ctx, running.ID))

		active, err := engine.GetActiveTimer(ctx, "org_01", "emp_07")
		require.NoError(t, err)
		assert.Nil(t, active)

		// The slot is free again.
		_, err = engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)
	})

	t.Run("unknown entry is not found", func(t *testing.T) {
		engine := NewEngine(newMemStore())
		err := engine.DeleteEntry(ctx, "no-such-entry")
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}
