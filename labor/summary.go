package labor

import (
	"context"
	"sort"

	"backend/models"
)

// SummaryFilter scopes an aggregation to a work order, an employee, a date
// range, or any combination. Zero-valued fields are ignored.
type SummaryFilter struct {
	OrganizationID string
	WorkOrderID    string
	EmployeeID     string
	DateRange      *models.TimeRange
}

// Summarize totals hours and cost over completed entries. Active entries are
// counted and listed but contribute to neither total; their cost is still
// undefined. Completed entries with no captured rate contribute hours and
// are listed under EntriesPendingCost rather than counted as zero cost.
// Per-employee groups are ordered by employee name for deterministic output.
func (e *Engine) Summarize(ctx context.Context, f SummaryFilter) (*models.LaborSummary, error) {
	entries, err := e.store.Query(ctx, models.EntryFilter{
		OrganizationID: f.OrganizationID,
		WorkOrderID:    f.WorkOrderID,
		EmployeeID:     f.EmployeeID,
		DateRange:      f.DateRange,
	})
	if err != nil {
		return nil, err
	}

	summary := &models.LaborSummary{
		ByEmployee:         []models.EmployeeLaborTotal{},
		EntriesPendingCost: []models.LaborEntry{},
		Entries:            entries,
	}
	byEmployee := make(map[string]*models.EmployeeLaborTotal)

	for _, entry := range entries {
		if entry.Status == models.EntryStatusActive {
			summary.ActiveEntries++
			continue
		}
		if entry.Status != models.EntryStatusCompleted || entry.HoursWorked == nil {
			continue
		}

		summary.CompletedEntries++
		summary.TotalHours += *entry.HoursWorked

		group, ok := byEmployee[entry.EmployeeID]
		if !ok {
			group = &models.EmployeeLaborTotal{
				EmployeeID:   entry.EmployeeID,
				EmployeeName: entry.EmployeeName,
			}
			byEmployee[entry.EmployeeID] = group
		}
		group.EntryCount++
		group.TotalHours += *entry.HoursWorked

		if entry.CostPending() {
			summary.EntriesPendingCost = append(summary.EntriesPendingCost, entry)
			group.PendingCostEntries++
			continue
		}
		if entry.TotalLaborCost != nil {
			summary.TotalCost += *entry.TotalLaborCost
			group.TotalCost += *entry.TotalLaborCost
		}
	}

	for _, group := range byEmployee {
		group.TotalHours = roundTo(group.TotalHours, HoursPrecision)
		group.TotalCost = roundTo(group.TotalCost, HoursPrecision)
		summary.ByEmployee = append(summary.ByEmployee, *group)
	}
	sort.Slice(summary.ByEmployee, func(i, j int) bool {
		a, b := summary.ByEmployee[i], summary.ByEmployee[j]
		if a.EmployeeName != b.EmployeeName {
			return a.EmployeeName < b.EmployeeName
		}
		return a.EmployeeID < b.EmployeeID
	})

	summary.TotalHours = roundTo(summary.TotalHours, HoursPrecision)
	summary.TotalCost = roundTo(summary.TotalCost, HoursPrecision)
	return summary, nil
}
