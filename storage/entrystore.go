package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"backend/labor"
	"backend/models"
)

const pqUniqueViolation = "23505"

const entryColumns = `id, organization_id, work_order_id, work_order_number, employee_id, employee_name,
	start_time, end_time, hours_worked, regular_rate, total_labor_cost,
	work_type, task_description, status, created_at, updated_at`

// EntryStore is the Postgres-backed implementation of labor.EntryStore.
// The one-active-timer-per-employee rule is enforced by the partial unique
// index created in EnsureSchema, so the check-then-insert in Create is atomic
// no matter how many API instances share the database.
type EntryStore struct {
	db *sql.DB
}

func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

func (s *EntryStore) Create(ctx context.Context, entry models.NewLaborEntry) (*models.LaborEntry, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO labor_entries
		(id, organization_id, work_order_id, work_order_number, employee_id, employee_name,
		 start_time, end_time, hours_worked, regular_rate, total_labor_cost,
		 work_type, task_description, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING `+entryColumns,
		id, entry.OrganizationID, entry.WorkOrderID, entry.WorkOrderNumber,
		entry.EmployeeID, entry.EmployeeName, entry.StartTime, entry.EndTime,
		entry.HoursWorked, entry.RegularRate, entry.TotalLaborCost,
		entry.WorkType, entry.TaskDescription, entry.Status, now, now)

	created, err := scanEntry(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			// Lost the race for the active slot. Name the winner so the
			// caller can offer to stop it.
			existing, findErr := s.FindActiveByEmployee(ctx, entry.OrganizationID, entry.EmployeeID)
			if findErr != nil {
				return nil, findErr
			}
			return nil, &labor.ConflictError{
				OrganizationID: entry.OrganizationID,
				EmployeeID:     entry.EmployeeID,
				Existing:       existing,
			}
		}
		return nil, &labor.PersistenceError{Op: "create labor entry", Err: err}
	}
	return created, nil
}

func (s *EntryStore) Update(ctx context.Context, id string, patch models.LaborEntryPatch) (*models.LaborEntry, error) {
	set := []string{}
	args := []interface{}{}
	argIndex := 1
	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s=$%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", *patch.EndTime)
	}
	if patch.HoursWorked != nil {
		add("hours_worked", *patch.HoursWorked)
	}
	if patch.RegularRate != nil {
		add("regular_rate", *patch.RegularRate)
	}
	if patch.TotalLaborCost != nil {
		add("total_labor_cost", *patch.TotalLaborCost)
	}
	if patch.WorkType != nil {
		add("work_type", *patch.WorkType)
	}
	if patch.TaskDescription != nil {
		add("task_description", *patch.TaskDescription)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`UPDATE labor_entries SET %s WHERE id=$%d`, strings.Join(set, ", "), argIndex)
	args = append(args, id)
	argIndex++
	if patch.ExpectStatus != "" {
		query += fmt.Sprintf(" AND status=$%d", argIndex)
		args = append(args, patch.ExpectStatus)
	}
	query += " RETURNING " + entryColumns

	updated, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, &labor.PersistenceError{Op: "update labor entry", Err: err}
	}

	// Guarded update matched nothing: either the entry is gone or another
	// writer got there first. Distinguish for the caller.
	var status string
	switch err := s.db.QueryRowContext(ctx, `SELECT status FROM labor_entries WHERE id=$1`, id).Scan(&status); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, &labor.NotFoundError{EntryID: id}
	case err != nil:
		return nil, &labor.PersistenceError{Op: "update labor entry", Err: err}
	default:
		return nil, &labor.InvalidStateError{EntryID: id, Status: status}
	}
}

func (s *EntryStore) FindActiveByEmployee(ctx context.Context, organizationID, employeeID string) (*models.LaborEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM labor_entries
		WHERE organization_id=$1 AND employee_id=$2 AND status=$3`,
		organizationID, employeeID, models.EntryStatusActive)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &labor.PersistenceError{Op: "find active labor entry", Err: err}
	}
	return entry, nil
}

func (s *EntryStore) Query(ctx context.Context, filter models.EntryFilter) ([]models.LaborEntry, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1
	where := func(condition string, values ...interface{}) {
		for range values {
			condition = strings.Replace(condition, "?", fmt.Sprintf("$%d", argIndex), 1)
			argIndex++
		}
		conditions = append(conditions, condition)
		args = append(args, values...)
	}

	if filter.EntryID != "" {
		where("id=?", filter.EntryID)
	}
	if filter.OrganizationID != "" {
		where("organization_id=?", filter.OrganizationID)
	}
	if filter.WorkOrderID != "" {
		where("work_order_id=?", filter.WorkOrderID)
	}
	if filter.EmployeeID != "" {
		where("employee_id=?", filter.EmployeeID)
	}
	if filter.Status != "" {
		where("status=?", filter.Status)
	}
	if filter.DateRange != nil {
		where("start_time >= ?", filter.DateRange.From)
		where("start_time < ?", filter.DateRange.To)
	}
	if filter.Overlaps != nil {
		// [start, end) intersects the range; a running entry is open-ended.
		where("start_time < ?", filter.Overlaps.To)
		where("(end_time IS NULL OR end_time > ?)", filter.Overlaps.From)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM labor_entries
		WHERE %s
		ORDER BY start_time DESC, created_at DESC`,
		entryColumns, strings.Join(conditions, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &labor.PersistenceError{Op: "query labor entries", Err: err}
	}
	defer rows.Close()

	entries := []models.LaborEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, &labor.PersistenceError{Op: "scan labor entry", Err: err}
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &labor.PersistenceError{Op: "query labor entries", Err: err}
	}
	return entries, nil
}

func (s *EntryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM labor_entries WHERE id=$1`, id)
	if err != nil {
		return &labor.PersistenceError{Op: "delete labor entry", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return &labor.PersistenceError{Op: "delete labor entry", Err: err}
	}
	if affected == 0 {
		return &labor.NotFoundError{EntryID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.LaborEntry, error) {
	var entry models.LaborEntry
	var workOrderID sql.NullString
	var endTime sql.NullTime
	var hoursWorked, regularRate, totalLaborCost sql.NullFloat64

	err := row.Scan(
		&entry.ID, &entry.OrganizationID, &workOrderID, &entry.WorkOrderNumber,
		&entry.EmployeeID, &entry.EmployeeName,
		&entry.StartTime, &endTime, &hoursWorked, &regularRate, &totalLaborCost,
		&entry.WorkType, &entry.TaskDescription, &entry.Status,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if workOrderID.Valid {
		entry.WorkOrderID = &workOrderID.String
	}
	if endTime.Valid {
		t := endTime.Time
		entry.EndTime = &t
	}
	if hoursWorked.Valid {
		entry.HoursWorked = &hoursWorked.Float64
	}
	if regularRate.Valid {
		entry.RegularRate = &regularRate.Float64
	}
	if totalLaborCost.Valid {
		entry.TotalLaborCost = &totalLaborCost.Float64
	}
	return &entry, nil
}
