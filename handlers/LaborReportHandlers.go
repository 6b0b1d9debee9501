package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"backend/labor"
	"backend/utils"
)

func formatOptionalMoney(v *float64) string {
	if v == nil {
		return "pending"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatOptionalHours(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// ExportLaborEntriesExcel godoc
// @Summary      Export labor entries as Excel
// @Description  Writes the filtered entries to an .xlsx workbook with a totals row computed from completed entries only.
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        organization_id  query  string  false  "Organization ID"
// @Param        work_order_id    query  string  false  "Work order ID"
// @Param        employee_id      query  string  false  "Employee ID"
// @Param        from             query  string  false  "Range start, RFC3339"
// @Param        to               query  string  false  "Range end, RFC3339 (exclusive)"
// @Success      200  {file}    file  "Excel file"
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/export_labor_entries [get]
func ExportLaborEntriesExcel(engine *labor.Engine) gin.HandlerFunc {
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

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Labor Entries"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Work Order", "Employee", "Start Time", "End Time",
			"Hours", "Rate", "Cost", "Work Type", "Description", "Status"}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, header)
		}

		rowIndex := 2
		for _, entry := range summary.Entries {
			endTime := ""
			if entry.EndTime != nil {
				endTime = entry.EndTime.Format(time.RFC3339)
			}
			values := []interface{}{
				entry.WorkOrderNumber,
				entry.EmployeeName,
				entry.StartTime.Format(time.RFC3339),
				endTime,
				formatOptionalHours(entry.HoursWorked),
				formatOptionalMoney(entry.RegularRate),
				formatOptionalMoney(entry.TotalLaborCost),
				entry.WorkType,
				entry.TaskDescription,
				entry.Status,
			}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, rowIndex)
				f.SetCellValue(sheet, cell, value)
			}
			rowIndex++
		}

		// Totals cover completed entries only; running timers have no figures.
		rowIndex++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIndex), "Total (completed)")
		f.SetCellValue(sheet, fmt.Sprintf("E%d", rowIndex), summary.TotalHours)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", rowIndex), summary.TotalCost)
		if len(summary.EntriesPendingCost) > 0 {
			rowIndex++
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIndex),
				fmt.Sprintf("%d entries awaiting a pay rate are excluded from the cost total", len(summary.EntriesPendingCost)))
		}

		fileName := fmt.Sprintf("labor_entries_%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment;filename="+fileName)

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file", "details": err.Error()})
			return
		}
	}
}

// GenerateLaborSummaryPDF godoc
// @Summary      Generate a labor summary PDF
// @Description  Renders per-employee hour and cost totals for the filtered range.
// @Tags         export
// @Produce      application/pdf
// @Param        organization_id  query  string  false  "Organization ID"
// @Param        work_order_id    query  string  false  "Work order ID"
// @Param        employee_id      query  string  false  "Employee ID"
// @Param        from             query  string  false  "Range start, RFC3339"
// @Param        to               query  string  false  "Range end, RFC3339 (exclusive)"
// @Success      200  "PDF file"
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/labor_summary_pdf [get]
func GenerateLaborSummaryPDF(engine *labor.Engine) gin.HandlerFunc {
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

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()

		pdf.SetFont("Arial", "B", 16)
		pdf.Cell(0, 10, "Labor Summary Report")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 8, "Generated: "+time.Now().Format("2006-01-02 15:04"))
		pdf.Ln(6)
		if filter.DateRange != nil {
			pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
				filter.DateRange.From.Format("2006-01-02"),
				filter.DateRange.To.Format("2006-01-02")))
			pdf.Ln(6)
		}
		pdf.Ln(4)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(70, 8, "Employee", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Entries", "1", 0, "R", true, 0, "")
		pdf.CellFormat(30, 8, "Hours", "1", 0, "R", true, 0, "")
		pdf.CellFormat(35, 8, "Cost", "1", 0, "R", true, 0, "")
		pdf.CellFormat(30, 8, "Pending", "1", 1, "R", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, group := range summary.ByEmployee {
			pdf.CellFormat(70, 8, group.EmployeeName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%d", group.EntryCount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", group.TotalHours), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", group.TotalCost), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%d", group.PendingCostEntries), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(95, 8, "Total", "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", summary.TotalHours), "1", 0, "R", true, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", summary.TotalCost), "1", 0, "R", true, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", len(summary.EntriesPendingCost)), "1", 1, "R", true, 0, "")

		if summary.ActiveEntries > 0 {
			pdf.Ln(4)
			pdf.SetFont("Arial", "I", 9)
			pdf.Cell(0, 6, fmt.Sprintf("%d timer(s) still running; excluded from all totals.", summary.ActiveEntries))
		}

		fileName := fmt.Sprintf("labor_summary_%s.pdf", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", "attachment;filename="+fileName)

		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
	}
}
