package models

import (
	"time"
)

// Labor entry lifecycle statuses. An entry is active exactly while its
// end_time is NULL; the two are kept consistent by the labor engine.
const (
	EntryStatusActive    = "active"
	EntryStatusCompleted = "completed"
)

// LaborEntry represents one stretch of recorded work against a work order.
// Work order and employee names are denormalized onto the entry so historical
// cost records survive renames and deletions of the referenced rows.
type LaborEntry struct {
	ID              string     `json:"id" example:"a9f3c1d2-5b6e-4f7a-8c9d-0e1f2a3b4c5d"`
	OrganizationID  string     `json:"organization_id" example:"org_01"`
	WorkOrderID     *string    `json:"work_order_id,omitempty" example:"wo_4821"`
	WorkOrderNumber string     `json:"work_order_number,omitempty" example:"WO-4821"`
	EmployeeID      string     `json:"employee_id" example:"emp_07"`
	EmployeeName    string     `json:"employee_name,omitempty" example:"Jane Smith"`
	StartTime       time.Time  `json:"start_time" example:"2024-01-15T08:00:00Z"`
	EndTime         *time.Time `json:"end_time,omitempty" example:"2024-01-15T09:30:00Z"`
	HoursWorked     *float64   `json:"hours_worked,omitempty" example:"1.5"`
	RegularRate     *float64   `json:"regular_rate,omitempty" example:"25.00"`
	TotalLaborCost  *float64   `json:"total_labor_cost,omitempty" example:"37.50"`
	WorkType        string     `json:"work_type" example:"repair"`
	TaskDescription string     `json:"task_description,omitempty" example:"Replaced hydraulic pump seal"`
	Status          string     `json:"status" example:"completed"`
	CreatedAt       time.Time  `json:"created_at" example:"2024-01-15T08:00:00Z"`
	UpdatedAt       time.Time  `json:"updated_at" example:"2024-01-15T09:30:00Z"`
}

// IsActive reports whether the entry is a running timer.
func (e *LaborEntry) IsActive() bool {
	return e.Status == EntryStatusActive
}

// CostPending reports whether the entry is completed but has no computable
// cost because no pay rate was captured. Distinct from zero-cost work.
func (e *LaborEntry) CostPending() bool {
	return e.Status == EntryStatusCompleted && e.RegularRate == nil
}

// NewLaborEntry carries the fields for inserting a labor entry. The store
// assigns id, created_at and updated_at.
type NewLaborEntry struct {
	OrganizationID  string     `json:"organization_id"`
	WorkOrderID     *string    `json:"work_order_id,omitempty"`
	WorkOrderNumber string     `json:"work_order_number,omitempty"`
	EmployeeID      string     `json:"employee_id"`
	EmployeeName    string     `json:"employee_name,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	HoursWorked     *float64   `json:"hours_worked,omitempty"`
	RegularRate     *float64   `json:"regular_rate,omitempty"`
	TotalLaborCost  *float64   `json:"total_labor_cost,omitempty"`
	WorkType        string     `json:"work_type"`
	TaskDescription string     `json:"task_description,omitempty"`
	Status          string     `json:"status"`
}

// LaborEntryPatch is a partial update. Nil fields are left untouched.
// ExpectStatus, when non-empty, makes the update conditional: the store
// applies the patch only if the stored status still matches, so concurrent
// writers cannot double-apply a stop or edit.
type LaborEntryPatch struct {
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	HoursWorked     *float64   `json:"hours_worked,omitempty"`
	RegularRate     *float64   `json:"regular_rate,omitempty"`
	TotalLaborCost  *float64   `json:"total_labor_cost,omitempty"`
	WorkType        *string    `json:"work_type,omitempty"`
	TaskDescription *string    `json:"task_description,omitempty"`
	Status          *string    `json:"status,omitempty"`
	ExpectStatus    string     `json:"-"`
}

// TimeRange is a half-open interval [From, To).
type TimeRange struct {
	From time.Time `json:"from" example:"2024-01-01T00:00:00Z"`
	To   time.Time `json:"to" example:"2024-02-01T00:00:00Z"`
}

// EntryFilter narrows a labor entry query. Zero-valued fields are ignored.
// Overlaps matches entries whose [start_time, end_time) intersects the range;
// a running entry (NULL end_time) is treated as open-ended.
type EntryFilter struct {
	EntryID        string     `json:"entry_id,omitempty"`
	OrganizationID string     `json:"organization_id,omitempty"`
	WorkOrderID    string     `json:"work_order_id,omitempty"`
	EmployeeID     string     `json:"employee_id,omitempty"`
	Status         string     `json:"status,omitempty"`
	DateRange      *TimeRange `json:"date_range,omitempty"`
	Overlaps       *TimeRange `json:"overlaps,omitempty"`
}

// EmployeeLaborTotal is one employee's slice of a labor summary.
type EmployeeLaborTotal struct {
	EmployeeID         string  `json:"employee_id" example:"emp_07"`
	EmployeeName       string  `json:"employee_name" example:"Jane Smith"`
	TotalHours         float64 `json:"total_hours" example:"12.25"`
	TotalCost          float64 `json:"total_cost" example:"306.25"`
	EntryCount         int     `json:"entry_count" example:"4"`
	PendingCostEntries int     `json:"pending_cost_entries" example:"1"`
}

// LaborSummary aggregates completed entries. Active entries appear in
// Entries and ActiveEntries but never contribute to the totals; entries with
// no captured rate contribute hours and are listed under EntriesPendingCost.
type LaborSummary struct {
	TotalHours         float64              `json:"total_hours" example:"40.5"`
	TotalCost          float64              `json:"total_cost" example:"1012.50"`
	CompletedEntries   int                  `json:"completed_entries" example:"11"`
	ActiveEntries      int                  `json:"active_entries" example:"2"`
	ByEmployee         []EmployeeLaborTotal `json:"by_employee"`
	EntriesPendingCost []LaborEntry         `json:"entries_pending_cost"`
	Entries            []LaborEntry         `json:"entries"`
}

// WorkOrder is the read-only directory row labor entries reference. The
// engine never mutates or cascades into it.
type WorkOrder struct {
	ID             string    `json:"id" example:"wo_4821"`
	OrganizationID string    `json:"organization_id" example:"org_01"`
	Number         string    `json:"number" example:"WO-4821"`
	Title          string    `json:"title" example:"Hydraulic press quarterly PM"`
	Status         string    `json:"status" example:"open"`
	CreatedAt      time.Time `json:"created_at" example:"2024-01-10T10:00:00Z"`
	UpdatedAt      time.Time `json:"updated_at" example:"2024-01-10T10:00:00Z"`
}

// Employee is the read-only directory row labor entries reference.
// RegularRate is the current hourly rate; entries snapshot it at capture
// time so later rate changes never rewrite history.
type Employee struct {
	ID             string    `json:"id" example:"emp_07"`
	OrganizationID string    `json:"organization_id" example:"org_01"`
	Code           string    `json:"code" example:"EMP007"`
	Name           string    `json:"name" example:"Jane Smith"`
	RegularRate    *float64  `json:"regular_rate,omitempty" example:"25.00"`
	CreatedAt      time.Time `json:"created_at" example:"2024-01-05T09:00:00Z"`
	UpdatedAt      time.Time `json:"updated_at" example:"2024-01-05T09:00:00Z"`
}

// ActivityLog records who did what against which labor record.
type ActivityLog struct {
	ID              int       `json:"id" example:"1"`
	CreatedAt       time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UserName        string    `json:"user_name" example:"Jane Smith"`
	EventContext    string    `json:"event_context" example:"Labor Entry"`
	EventName       string    `json:"event_name" example:"Stop Timer"`
	Description     string    `json:"description" example:"Stopped timer on WO-4821"`
	EmployeeID      string    `json:"employee_id,omitempty" example:"emp_07"`
	WorkOrderNumber string    `json:"work_order_number,omitempty" example:"WO-4821"`
}

// ErrorResponse is the generic error payload returned by the API.
type ErrorResponse struct {
	Error   string `json:"error" example:"entry not found"`
	Details string `json:"details,omitempty" example:""`
}
