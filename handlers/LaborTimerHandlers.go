package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend/labor"
	"backend/models"
	"backend/utils"
)

type startTimerRequest struct {
	OrganizationID  string `json:"organization_id" binding:"required"`
	EmployeeID      string `json:"employee_id" binding:"required"`
	WorkOrderID     string `json:"work_order_id"`
	WorkType        string `json:"work_type" binding:"required"`
	TaskDescription string `json:"task_description"`
}

// respondLaborError translates engine errors into HTTP responses. Every
// payload carries the ids the presentation layer needs to explain the
// failure in domain terms.
func respondLaborError(c *gin.Context, err error) {
	var conflictErr *labor.ConflictError
	var notFoundErr *labor.NotFoundError
	var invalidStateErr *labor.InvalidStateError
	var invalidRangeErr *labor.InvalidRangeError

	switch {
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":             conflictErr.Error(),
			"employee_id":       conflictErr.EmployeeID,
			"conflicting_entry": conflictErr.Existing,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error":    notFoundErr.Error(),
			"entry_id": notFoundErr.EntryID,
		})
	case errors.As(err, &invalidStateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":    invalidStateErr.Error(),
			"entry_id": invalidStateErr.EntryID,
			"status":   invalidStateErr.Status,
		})
	case errors.As(err, &invalidRangeErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidRangeErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func lookupEmployee(ctx context.Context, db *sql.DB, organizationID, employeeID string) (*models.Employee, error) {
	var emp models.Employee
	var rate sql.NullFloat64
	err := db.QueryRowContext(ctx, `
		SELECT id, organization_id, code, name, regular_rate
		FROM employees WHERE organization_id=$1 AND id=$2`,
		organizationID, employeeID).
		Scan(&emp.ID, &emp.OrganizationID, &emp.Code, &emp.Name, &rate)
	if err != nil {
		return nil, err
	}
	if rate.Valid {
		emp.RegularRate = &rate.Float64
	}
	return &emp, nil
}

func lookupWorkOrder(ctx context.Context, db *sql.DB, organizationID, workOrderID string) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	err := db.QueryRowContext(ctx, `
		SELECT id, organization_id, number, title, status
		FROM work_orders WHERE organization_id=$1 AND id=$2`,
		organizationID, workOrderID).
		Scan(&wo.ID, &wo.OrganizationID, &wo.Number, &wo.Title, &wo.Status)
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

// StartTimer godoc
// @Summary      Start a labor timer
// @Description  Opens an active labor entry for the employee. Fails with 409 if the employee already has a running timer on any work order.
// @Tags         labor-entries
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Timer start request"
// @Success      201   {object}  models.LaborEntry
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Failure      409   {object}  models.ErrorResponse
// @Router       /api/labor-entries/start [post]
func StartTimer(engine *labor.Engine, db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startTimerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		emp, err := lookupEmployee(ctx, db, req.OrganizationID, req.EmployeeID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		input := labor.StartTimerInput{
			OrganizationID:  req.OrganizationID,
			EmployeeID:      emp.ID,
			EmployeeName:    emp.Name,
			WorkType:        req.WorkType,
			TaskDescription: req.TaskDescription,
			RegularRate:     emp.RegularRate,
		}
		if req.WorkOrderID != "" {
			wo, err := lookupWorkOrder(ctx, db, req.OrganizationID, req.WorkOrderID)
			if err != nil {
				if err == sql.ErrNoRows {
					c.JSON(http.StatusNotFound, gin.H{"error": "Work order not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			input.WorkOrderID = &wo.ID
			input.WorkOrderNumber = wo.Number
		}

		entry, err := engine.StartTimer(ctx, input)
		if err != nil {
			respondLaborError(c, err)
			return
		}

		if logErr := SaveActivityLog(db, models.ActivityLog{
			EventContext:    "Labor Entry",
			EventName:       "Start Timer",
			Description:     fmt.Sprintf("Started timer for %s (%s)", emp.Name, input.WorkOrderNumber),
			UserName:        emp.Name,
			EmployeeID:      emp.ID,
			WorkOrderNumber: input.WorkOrderNumber,
			CreatedAt:       time.Now(),
		}); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Timer started but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}

		c.JSON(http.StatusCreated, entry)
	}
}

// StopTimer godoc
// @Summary      Stop a labor timer
// @Description  Completes the active entry: sets end time, computes hours worked and labor cost from the rate captured at start. A second stop on the same entry returns 409 and leaves the stored figures untouched.
// @Tags         labor-entries
// @Produce      json
// @Param        id   path      string  true  "Labor entry ID"
// @Success      200  {object}  models.LaborEntry
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/labor-entries/{id}/stop [put]
func StopTimer(engine *labor.Engine, db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID := c.Param("id")
		if entryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing entry id"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		entry, err := engine.StopTimer(ctx, entryID)
		if err != nil {
			respondLaborError(c, err)
			return
		}

		if logErr := SaveActivityLog(db, models.ActivityLog{
			EventContext:    "Labor Entry",
			EventName:       "Stop Timer",
			Description:     fmt.Sprintf("Stopped timer %s for %s", entry.ID, entry.EmployeeName),
			UserName:        entry.EmployeeName,
			EmployeeID:      entry.EmployeeID,
			WorkOrderNumber: entry.WorkOrderNumber,
			CreatedAt:       time.Now(),
		}); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Timer stopped but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

// GetActiveTimer godoc
// @Summary      Get the active timer for an employee
// @Description  Returns the running entry or null. The store is authoritative, so UI reloads and second devices restore timer state from here.
// @Tags         labor-entries
// @Produce      json
// @Param        organization_id  query     string  true  "Organization ID"
// @Param        employee_id      query     string  true  "Employee ID"
// @Success      200  {object}  models.LaborEntry
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/labor-entries/active [get]
func GetActiveTimer(engine *labor.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationID := c.Query("organization_id")
		employeeID := c.Query("employee_id")
		if organizationID == "" || employeeID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id and employee_id are required"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		entry, err := engine.GetActiveTimer(ctx, organizationID, employeeID)
		if err != nil {
			respondLaborError(c, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}
