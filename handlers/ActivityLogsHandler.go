package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend/models"
	"backend/utils"
)

// SaveActivityLog appends one audit row. Mutating handlers call this after
// the mutation commits, so a log failure never rolls back labor data.
func SaveActivityLog(db *sql.DB, logEntry models.ActivityLog) error {
	ctx, cancel := utils.GetDefaultQueryContext(nil)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO activity_logs
		(created_at, user_name, event_context, event_name, description, employee_id, work_order_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		logEntry.CreatedAt, logEntry.UserName, logEntry.EventContext,
		logEntry.EventName, logEntry.Description, logEntry.EmployeeID,
		logEntry.WorkOrderNumber)
	return err
}

// GetActivityLogs godoc
// @Summary      List activity logs
// @Description  Returns the audit trail, newest first, paginated.
// @Tags         logs
// @Produce      json
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Page size (default 50, max 200)"
// @Param        employee_id  query  string  false  "Filter by employee"
// @Success      200  {array}   models.ActivityLog
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/logs [get]
func GetActivityLogs(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 1 {
			limit = 50
		}
		if limit > 200 {
			limit = 200
		}
		offset := (page - 1) * limit

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		query := `
			SELECT id, created_at, user_name, event_context, event_name, description, employee_id, work_order_number
			FROM activity_logs`
		args := []interface{}{}
		if employeeID := c.Query("employee_id"); employeeID != "" {
			query += ` WHERE employee_id=$1`
			args = append(args, employeeID)
		}
		query += ` ORDER BY created_at DESC, id DESC`
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, limit, offset)

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to fetch activity logs",
				"details": err.Error(),
			})
			return
		}
		defer rows.Close()

		logs := []models.ActivityLog{}
		for rows.Next() {
			var logEntry models.ActivityLog
			if err := rows.Scan(&logEntry.ID, &logEntry.CreatedAt, &logEntry.UserName,
				&logEntry.EventContext, &logEntry.EventName, &logEntry.Description,
				&logEntry.EmployeeID, &logEntry.WorkOrderNumber); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "Failed to scan activity log",
					"details": err.Error(),
				})
				return
			}
			logs = append(logs, logEntry)
		}
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to read activity logs",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"page":  page,
			"limit": limit,
			"logs":  logs,
		})
	}
}
