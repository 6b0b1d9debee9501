package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backend/models"
	"backend/utils"
)

type createEmployeeRequest struct {
	OrganizationID string   `json:"organization_id" binding:"required"`
	Code           string   `json:"code"`
	Name           string   `json:"name" binding:"required"`
	RegularRate    *float64 `json:"regular_rate"`
}

type updateEmployeeRequest struct {
	Code        *string  `json:"code"`
	Name        *string  `json:"name"`
	RegularRate *float64 `json:"regular_rate"`
}

// CreateEmployee godoc
// @Summary      Create an employee
// @Description  Adds a directory row. The rate recorded here is snapshotted onto labor entries at capture time; changing it later never rewrites existing entries.
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Employee"
// @Success      201   {object}  models.Employee
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/employees [post]
func CreateEmployee(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		now := time.Now().UTC()
		emp := models.Employee{
			ID:             uuid.NewString(),
			OrganizationID: req.OrganizationID,
			Code:           req.Code,
			Name:           req.Name,
			RegularRate:    req.RegularRate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO employees (id, organization_id, code, name, regular_rate, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			emp.ID, emp.OrganizationID, emp.Code, emp.Name, emp.RegularRate, emp.CreatedAt, emp.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create employee", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, emp)
	}
}

// GetEmployees godoc
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Param        organization_id  query  string  false  "Organization ID"
// @Success      200  {array}  models.Employee
// @Router       /api/employees [get]
func GetEmployees(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		query := `SELECT id, organization_id, code, name, regular_rate, created_at, updated_at FROM employees`
		args := []interface{}{}
		if organizationID := c.Query("organization_id"); organizationID != "" {
			query += ` WHERE organization_id=$1`
			args = append(args, organizationID)
		}
		query += ` ORDER BY name`

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch employees", "details": err.Error()})
			return
		}
		defer rows.Close()

		employees := []models.Employee{}
		for rows.Next() {
			var emp models.Employee
			var rate sql.NullFloat64
			if err := rows.Scan(&emp.ID, &emp.OrganizationID, &emp.Code, &emp.Name,
				&rate, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan employee", "details": err.Error()})
				return
			}
			if rate.Valid {
				r := rate.Float64
				emp.RegularRate = &r
			}
			employees = append(employees, emp)
		}
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read employees", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, employees)
	}
}

// UpdateEmployee godoc
// @Summary      Update an employee
// @Description  Updates the directory row only. Labor entries keep the rate they captured.
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id    path      string  true  "Employee ID"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  utils.Response
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/employees/{id} [put]
func UpdateEmployee(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		result, err := db.ExecContext(ctx, `
			UPDATE employees SET
				code = COALESCE($1, code),
				name = COALESCE($2, name),
				regular_rate = COALESCE($3, regular_rate),
				updated_at = $4
			WHERE id=$5`,
			req.Code, req.Name, req.RegularRate, time.Now().UTC(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update employee", "details": err.Error()})
			return
		}
		affected, err := result.RowsAffected()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
			return
		}

		utils.SuccessResponse(c, "Employee updated successfully", http.StatusOK)
	}
}
