package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/labor"
	"backend/utils"
)

// GetLaborSummary godoc
// @Summary      Summarize labor hours and cost
// @Description  Totals hours and cost over completed entries, grouped per employee. Active timers are counted but excluded from the totals, and completed entries with no captured rate are listed under entries_pending_cost instead of being treated as free labor.
// @Tags         labor-summary
// @Produce      json
// @Param        organization_id  query  string  false  "Organization ID"
// @Param        work_order_id    query  string  false  "Work order ID"
// @Param        employee_id      query  string  false  "Employee ID"
// @Param        from             query  string  false  "Range start, RFC3339"
// @Param        to               query  string  false  "Range end, RFC3339 (exclusive)"
// @Success      200  {object}  models.LaborSummary
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/labor-summary [get]
func GetLaborSummary(engine *labor.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseEntryFilter(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.GetQueryContext(c.Request.Context(), utils.ReportQueryTimeout)
		defer cancel()

		summary, err := engine.Summarize(ctx, labor.SummaryFilter{
			OrganizationID: filter.OrganizationID,
			WorkOrderID:    filter.WorkOrderID,
			EmployeeID:     filter.EmployeeID,
			DateRange:      filter.DateRange,
		})
		if err != nil {
			respondLaborError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
