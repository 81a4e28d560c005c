package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"nem12-tou/internal/aggregate"
	meterdata "nem12-tou/internal/meterdata/domain"
)

// BuildReportPDF renders a one-page PDF of the aggregation report.
func BuildReportPDF(meter meterdata.MeterSummary, rows []aggregate.Row, stats aggregate.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Time-of-Use Aggregation Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("NMI: %s", meter.NMI))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Register: %s  UOM: %s  Interval: %d min", meter.RegisterID, meter.UOM, meter.IntervalLength))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Date Range: %s to %s",
		stats.DateRangeStart.Format("2006-01-02"), stats.DateRangeEnd.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Energy (kWh): %.3f over %d intervals", stats.TotalKWh, stats.TotalIntervals))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Estimated: %d (%.1f%%)  Unclassified: %d (%.1f%%)",
		stats.EstimatedIntervals, stats.EstimatedPercentage,
		stats.UnclassifiedIntervals, stats.UnclassifiedPercentage))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Day types: %d weekday, %d weekend, %d holiday intervals",
		stats.WeekdayIntervals, stats.WeekendIntervals, stats.HolidayIntervals))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Total kWh", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Share %", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Intervals", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Cost", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		cost := "-"
		if row.TotalCost != nil {
			cost = fmt.Sprintf("$%.2f", *row.TotalCost)
		}
		pdf.CellFormat(40, 6, row.Period, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", row.TotalKWh), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", row.Percentage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.IntervalCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, cost, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(stats.DSTTransitions) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "DST-Variant Days")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		for _, transition := range stats.DSTTransitions {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %d intervals (expected %d, %s, %s)",
				transition.Date, transition.IntervalCount, transition.ExpectedCount,
				transition.Type, transition.LocalZone))
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
