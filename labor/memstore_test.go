package labor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"backend/models"
)

// memStore is an in-memory EntryStore honoring the same contract as the
// Postgres implementation: at most one active entry per employee, enforced
// under a single lock so racing starts resolve the same way the partial
// unique index resolves them, and conditional updates via ExpectStatus.
type memStore struct {
	mu      sync.Mutex
	entries map[string]*models.LaborEntry
	seq     int

	failNext error
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]*models.LaborEntry{}}
}

func (s *memStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *memStore) Create(ctx context.Context, entry models.NewLaborEntry) (*models.LaborEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, &PersistenceError{Op: "create labor entry", Err: err}
	}

	if entry.Status == models.EntryStatusActive {
		for _, existing := range s.entries {
			if existing.OrganizationID == entry.OrganizationID &&
				existing.EmployeeID == entry.EmployeeID &&
				existing.Status == models.EntryStatusActive {
				copied := *existing
				return nil, &ConflictError{
					OrganizationID: entry.OrganizationID,
					EmployeeID:     entry.EmployeeID,
					Existing:       &copied,
				}
			}
		}
	}

	s.seq++
	now := time.Now().UTC()
	created := &models.LaborEntry{
		ID:              fmt.Sprintf("entry-%d", s.seq),
		OrganizationID:  entry.OrganizationID,
		WorkOrderID:     entry.WorkOrderID,
		WorkOrderNumber: entry.WorkOrderNumber,
		EmployeeID:      entry.EmployeeID,
		EmployeeName:    entry.EmployeeName,
		StartTime:       entry.StartTime,
		EndTime:         entry.EndTime,
		HoursWorked:     entry.HoursWorked,
		RegularRate:     entry.RegularRate,
		TotalLaborCost:  entry.TotalLaborCost,
		WorkType:        entry.WorkType,
		TaskDescription: entry.TaskDescription,
		Status:          entry.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.entries[created.ID] = created
	copied := *created
	return &copied, nil
}

func (s *memStore) Update(ctx context.Context, id string, patch models.LaborEntryPatch) (*models.LaborEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, &PersistenceError{Op: "update labor entry", Err: err}
	}

	entry, ok := s.entries[id]
	if !ok {
		return nil, &NotFoundError{EntryID: id}
	}
	if patch.ExpectStatus != "" && entry.Status != patch.ExpectStatus {
		return nil, &InvalidStateError{EntryID: id, Status: entry.Status}
	}

	if patch.StartTime != nil {
		entry.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		entry.EndTime = patch.EndTime
	}
	if patch.HoursWorked != nil {
		entry.HoursWorked = patch.HoursWorked
	}
	if patch.RegularRate != nil {
		entry.RegularRate = patch.RegularRate
	}
	if patch.TotalLaborCost != nil {
		entry.TotalLaborCost = patch.TotalLaborCost
	}
	if patch.WorkType != nil {
		entry.WorkType = *patch.WorkType
	}
	if patch.TaskDescription != nil {
		entry.TaskDescription = *patch.TaskDescription
	}
	if patch.Status != nil {
		entry.Status = *patch.Status
	}
	entry.UpdatedAt = time.Now().UTC()

	copied := *entry
	return &copied, nil
}

func (s *memStore) FindActiveByEmployee(ctx context.Context, organizationID, employeeID string) (*models.LaborEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, &PersistenceError{Op: "find active labor entry", Err: err}
	}

	for _, entry := range s.entries {
		if entry.OrganizationID == organizationID &&
			entry.EmployeeID == employeeID &&
			entry.Status == models.EntryStatusActive {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) Query(ctx context.Context, filter models.EntryFilter) ([]models.LaborEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, &PersistenceError{Op: "query labor entries", Err: err}
	}

	matched := []models.LaborEntry{}
	for _, entry := range s.entries {
		if filter.EntryID != "" && entry.ID != filter.EntryID {
			continue
		}
		if filter.OrganizationID != "" && entry.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.WorkOrderID != "" && (entry.WorkOrderID == nil || *entry.WorkOrderID != filter.WorkOrderID) {
			continue
		}
		if filter.EmployeeID != "" && entry.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if filter.DateRange != nil {
			if entry.StartTime.Before(filter.DateRange.From) || !entry.StartTime.Before(filter.DateRange.To) {
				continue
			}
		}
		if filter.Overlaps != nil {
			if !entry.StartTime.Before(filter.Overlaps.To) {
				continue
			}
			if entry.EndTime != nil && !entry.EndTime.After(filter.Overlaps.From) {
				continue
			}
		}
		matched = append(matched, *entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartTime.After(matched[j].StartTime)
	})
	return matched, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return &PersistenceError{Op: "delete labor entry", Err: err}
	}

	if _, ok := s.entries[id]; !ok {
		return &NotFoundError{EntryID: id}
	}
	delete(s.entries, id)
	return nil
}
