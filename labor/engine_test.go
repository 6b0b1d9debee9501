package labor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/models"
)

func newTestEngine(store EntryStore, at time.Time) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return at }
	return e
}

func TestStartTimer(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	t.Run("opens an active entry with snapshotted fields", func(t *testing.T) {
		store := newMemStore()
		engine := newTestEngine(store, start)

		workOrderID := "wo_4821"
		entry, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID:  "org_01",
			EmployeeID:      "emp_07",
			EmployeeName:    "Jane Smith",
			WorkOrderID:     &workOrderID,
			WorkOrderNumber: "WO-4821",
			WorkType:        "repair",
			RegularRate:     rate(25.00),
		})
		require.NoError(t, err)
		assert.Equal(t, models.EntryStatusActive, entry.Status)
		assert.Equal(t, start, entry.StartTime)
		assert.Nil(t, entry.EndTime)
		assert.Nil(t, entry.HoursWorked)
		assert.Nil(t, entry.TotalLaborCost)
		assert.Equal(t, "Jane Smith", entry.EmployeeName)
		assert.Equal(t, "WO-4821", entry.WorkOrderNumber)
		require.NotNil(t, entry.RegularRate)
		assert.Equal(t, 25.00, *entry.RegularRate)
	})

	t.Run("second start conflicts and names the running entry", func(t *testing.T) {
		store := newMemStore()
		engine := newTestEngine(store, start)

		first, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)

		otherWO := "wo_9999"
		_, err = engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07",
			WorkOrderID: &otherWO, WorkType: "inspection",
		})
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "emp_07", conflictErr.EmployeeID)
		require.NotNil(t, conflictErr.Existing)
		assert.Equal(t, first.ID, conflictErr.Existing.ID)

		// The loser must not have created anything.
		entries, err := store.Query(ctx, models.EntryFilter{EmployeeID: "emp_07"})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("same employee id in another organization is independent", func(t *testing.T) {
		store := newMemStore()
		engine := newTestEngine(store, start)

		_, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)
		_, err = engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_02", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)
	})

	t.Run("racing starts let exactly one through", func(t *testing.T) {
		store := newMemStore()
		engine := newTestEngine(store, start)

		const racers = 8
		var wg sync.WaitGroup
		results := make(chan error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := engine.StartTimer(ctx, StartTimerInput{
					OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
				})
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins, conflicts := 0, 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			var conflictErr *ConflictError
			require.ErrorAs(t, err, &conflictErr)
			conflicts++
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, racers-1, conflicts)
	})

	t.Run("store failure surfaces as persistence error", func(t *testing.T) {
		store := newMemStore()
		store.failNext = errors.New("connection reset")
		engine := newTestEngine(store, start)

		_, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		var persistenceErr *PersistenceError
		require.ErrorAs(t, err, &persistenceErr)
	})
}

func TestStopTimer(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	startTimer := func(t *testing.T, store EntryStore, r *float64) (*Engine, *models.LaborEntry) {
		engine := newTestEngine(store, start)
		entry, err := engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07",
			EmployeeName: "Jane Smith", WorkType: "repair", RegularRate: r,
		})
		require.NoError(t, err)
		return engine, entry
	}

	t.Run("computes hours and cost from the captured rate", func(t *testing.T) {
		engine, entry := startTimer(t, newMemStore(), rate(25.00))
		engine.now = func() time.Time { return start.Add(90 * time.Minute) }

		stopped, err := engine.StopTimer(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EntryStatusCompleted, stopped.Status)
		require.NotNil(t, stopped.EndTime)
		assert.Equal(t, start.Add(90*time.Minute), *stopped.EndTime)
		require.NotNil(t, stopped.HoursWorked)
		assert.Equal(t, 1.5, *stopped.HoursWorked)
		require.NotNil(t, stopped.TotalLaborCost)
		assert.Equal(t, 37.5, *stopped.TotalLaborCost)
	})

	t.Run("nil rate completes with pending cost", func(t *testing.T) {
		engine, entry := startTimer(t, newMemStore(), nil)
		engine.now = func() time.Time { return start.Add(45 * time.Minute) }

		stopped, err := engine.StopTimer(ctx, entry.ID)
		require.NoError(t, err)
		require.NotNil(t, stopped.HoursWorked)
		assert.Equal(t, 0.75, *stopped.HoursWorked)
		assert.Nil(t, stopped.TotalLaborCost)
		assert.True(t, stopped.CostPending())
	})

	t.Run("double stop fails without touching stored figures", func(t *testing.T) {
		engine, entry := startTimer(t, newMemStore(), rate(25.00))
		engine.now = func() time.Time { return start.Add(time.Hour) }
		first, err := engine.StopTimer(ctx, entry.ID)
		require.NoError(t, err)

		engine.now = func() time.Time { return start.Add(2 * time.Hour) }
		_, err = engine.StopTimer(ctx, entry.ID)
		var stateErr *InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, models.EntryStatusCompleted, stateErr.Status)

		after, err := engine.store.Query(ctx, models.EntryFilter{EntryID: entry.ID})
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, *first.HoursWorked, *after[0].HoursWorked)
		assert.Equal(t, *first.EndTime, *after[0].EndTime)
	})

	t.Run("unknown entry is not found", func(t *testing.T) {
		engine := newTestEngine(newMemStore(), start)
		_, err := engine.StopTimer(ctx, "no-such-entry")
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "no-such-entry", notFoundErr.EntryID)
	})

	t.Run("after a stop the employee can start again", func(t *testing.T) {
		store := newMemStore()
		engine, entry := startTimer(t, store, rate(25.00))
		engine.now = func() time.Time { return start.Add(time.Hour) }
		_, err := engine.StopTimer(ctx, entry.ID)
		require.NoError(t, err)

		_, err = engine.StartTimer(ctx, StartTimerInput{
			OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
		})
		require.NoError(t, err)
	})
}

func TestGetActiveTimer(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	store := newMemStore()
	engine := newTestEngine(store, start)

	entry, err := engine.GetActiveTimer(ctx, "org_01", "emp_07")
	require.NoError(t, err)
	assert.Nil(t, entry)

	started, err := engine.StartTimer(ctx, StartTimerInput{
		OrganizationID: "org_01", EmployeeID: "emp_07", WorkType: "repair",
	})
	require.NoError(t, err)

	entry, err = engine.GetActiveTimer(ctx, "org_01", "emp_07")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, started.ID, entry.ID)

	entry, err = engine.GetActiveTimer(ctx, "org_01", "emp_08")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
