package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend/labor"
	"backend/models"
	"backend/utils"
)

type manualEntryRequest struct {
	OrganizationID  string    `json:"organization_id" binding:"required"`
	EmployeeID      string    `json:"employee_id" binding:"required"`
	WorkOrderID     string    `json:"work_order_id"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	WorkType        string    `json:"work_type" binding:"required"`
	TaskDescription string    `json:"task_description"`
}

type editEntryRequest struct {
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	RegularRate     *float64   `json:"regular_rate"`
	WorkType        *string    `json:"work_type"`
	TaskDescription *string    `json:"task_description"`
}

// AddManualEntry godoc
// @Summary      Record a manual labor entry
// @Description  Creates a completed entry with operator-supplied times, e.g. back-dated work logged after the fact. Overlapping entries for the same employee do not block the insert; they are returned under overlap_warnings for review.
// @Tags         labor-entries
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Manual entry request"
// @Success      201   {object}  models.LaborEntry
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/labor-entries [post]
func AddManualEntry(engine *labor.Engine, db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req manualEntryRequest
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

		input := labor.ManualEntryInput{
			OrganizationID:  req.OrganizationID,
			EmployeeID:      emp.ID,
			EmployeeName:    emp.Name,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			RegularRate:     emp.RegularRate,
			WorkType:        req.WorkType,
			TaskDescription: req.TaskDescription,
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

		entry, overlaps, err := engine.AddManualEntry(ctx, input)
		if err != nil {
			respondLaborError(c, err)
			return
		}

		if logErr := SaveActivityLog(db, models.ActivityLog{
			EventContext:    "Labor Entry",
			EventName:       "Add Manual Entry",
			Description:     fmt.Sprintf("Manual entry for %s (%s)", emp.Name, input.WorkOrderNumber),
			UserName:        emp.Name,
			EmployeeID:      emp.ID,
			WorkOrderNumber: input.WorkOrderNumber,
			CreatedAt:       time.Now(),
		}); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Entry saved but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"entry":            entry,
			"overlap_warnings": overlaps,
		})
	}
}

// EditEntry godoc
// @Summary      Edit a completed labor entry
// @Description  Patches a completed entry. Changing start, end or rate recomputes hours worked and total cost; active entries cannot be edited, stop them first.
// @Tags         labor-entries
// @Accept       json
// @Produce      json
// @Param        id    path      string  true  "Labor entry ID"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  models.LaborEntry
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Failure      409   {object}  models.ErrorResponse
// @Router       /api/labor-entries/{id} [put]
func EditEntry(engine *labor.Engine, db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID := c.Param("id")
		var req editEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		entry, err := engine.EditEntry(ctx, entryID, labor.EntryEdit{
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			RegularRate:     req.RegularRate,
			WorkType:        req.WorkType,
			TaskDescription: req.TaskDescription,
		})
		if err != nil {
			respondLaborError(c, err)
			return
		}

		if logErr := SaveActivityLog(db, models.ActivityLog{
			EventContext:    "Labor Entry",
			EventName:       "Edit Entry",
			Description:     fmt.Sprintf("Edited entry %s for %s", entry.ID, entry.EmployeeName),
			UserName:        entry.EmployeeName,
			EmployeeID:      entry.EmployeeID,
			WorkOrderNumber: entry.WorkOrderNumber,
			CreatedAt:       time.Now(),
		}); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Entry updated but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

// DeleteEntry godoc
// @Summary      Delete a labor entry
// @Description  Removes the entry outright, active or completed. Deleting an active entry discards a mistakenly started timer. The referenced work order and employee are untouched.
// @Tags         labor-entries
// @Produce      json
// @Param        id   path      string  true  "Labor entry ID"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/labor-entries/{id} [delete]
func DeleteEntry(engine *labor.Engine, db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID := c.Param("id")

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := engine.DeleteEntry(ctx, entryID); err != nil {
			respondLaborError(c, err)
			return
		}

		if logErr := SaveActivityLog(db, models.ActivityLog{
			EventContext: "Labor Entry",
			EventName:    "Delete Entry",
			Description:  fmt.Sprintf("Deleted entry %s", entryID),
			CreatedAt:    time.Now(),
		}); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Entry deleted but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}

		utils.SuccessResponse(c, "Labor entry deleted successfully", http.StatusOK)
	}
}

// parseEntryFilter reads the common list filters off the query string.
// from/to must be RFC3339 and form a half-open range [from, to).
func parseEntryFilter(c *gin.Context) (models.EntryFilter, error) {
	filter := models.EntryFilter{
		OrganizationID: c.Query("organization_id"),
		WorkOrderID:    c.Query("work_order_id"),
		EmployeeID:     c.Query("employee_id"),
		Status:         c.Query("status"),
	}

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" && toStr == "" {
		return filter, nil
	}
	if fromStr == "" || toStr == "" {
		return filter, fmt.Errorf("from and to must be supplied together")
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return filter, fmt.Errorf("invalid from: %v", err)
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return filter, fmt.Errorf("invalid to: %v", err)
	}
	filter.DateRange = &models.TimeRange{From: from, To: to}
	return filter, nil
}

// GetLaborEntries godoc
// @Summary      List labor entries
// @Description  Returns entries newest first, filtered by organization, work order, employee, status and start-time range.
// @Tags         labor-entries
// @Produce      json
// @Param        organization_id  query  string  false  "Organization ID"
// @Param        work_order_id    query  string  false  "Work order ID"
// @Param        employee_id      query  string  false  "Employee ID"
// @Param        status           query  string  false  "Entry status (active or completed)"
// @Param        from             query  string  false  "Range start, RFC3339"
// @Param        to               query  string  false  "Range end, RFC3339 (exclusive)"
// @Success      200  {array}   models.LaborEntry
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/labor-entries [get]
func GetLaborEntries(store labor.EntryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseEntryFilter(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		entries, err := store.Query(ctx, filter)
		if err != nil {
			respondLaborError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
