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

type createWorkOrderRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	Number         string `json:"number" binding:"required"`
	Title          string `json:"title"`
	Status         string `json:"status"`
}

// CreateWorkOrder godoc
// @Summary      Create a work order
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Work order"
// @Success      201   {object}  models.WorkOrder
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/work-orders [post]
func CreateWorkOrder(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createWorkOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Status == "" {
			req.Status = "open"
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		now := time.Now().UTC()
		wo := models.WorkOrder{
			ID:             uuid.NewString(),
			OrganizationID: req.OrganizationID,
			Number:         req.Number,
			Title:          req.Title,
			Status:         req.Status,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO work_orders (id, organization_id, number, title, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			wo.ID, wo.OrganizationID, wo.Number, wo.Title, wo.Status, wo.CreatedAt, wo.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create work order", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, wo)
	}
}

// GetWorkOrders godoc
// @Summary      List work orders
// @Tags         work-orders
// @Produce      json
// @Param        organization_id  query  string  false  "Organization ID"
// @Success      200  {array}  models.WorkOrder
// @Router       /api/work-orders [get]
func GetWorkOrders(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		query := `SELECT id, organization_id, number, title, status, created_at, updated_at FROM work_orders`
		args := []interface{}{}
		if organizationID := c.Query("organization_id"); organizationID != "" {
			query += ` WHERE organization_id=$1`
			args = append(args, organizationID)
		}
		query += ` ORDER BY number`

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch work orders", "details": err.Error()})
			return
		}
		defer rows.Close()

		workOrders := []models.WorkOrder{}
		for rows.Next() {
			var wo models.WorkOrder
			if err := rows.Scan(&wo.ID, &wo.OrganizationID, &wo.Number, &wo.Title,
				&wo.Status, &wo.CreatedAt, &wo.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan work order", "details": err.Error()})
				return
			}
			workOrders = append(workOrders, wo)
		}
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read work orders", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, workOrders)
	}
}

// GetWorkOrder godoc
// @Summary      Get a work order
// @Tags         work-orders
// @Produce      json
// @Param        id  path  string  true  "Work order ID"
// @Success      200  {object}  models.WorkOrder
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/work-orders/{id} [get]
func GetWorkOrder(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		var wo models.WorkOrder
		err := db.QueryRowContext(ctx, `
			SELECT id, organization_id, number, title, status, created_at, updated_at
			FROM work_orders WHERE id=$1`, c.Param("id")).
			Scan(&wo.ID, &wo.OrganizationID, &wo.Number, &wo.Title,
				&wo.Status, &wo.CreatedAt, &wo.UpdatedAt)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Work order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, wo)
	}
}
