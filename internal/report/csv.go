// Package report renders the aggregation results into export artifacts.
// Column names and order here are presentation contracts; the semantic
// fields are exactly the aggregate row and summary fields.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"nem12-tou/internal/aggregate"
	tou "nem12-tou/internal/tou/domain"
)

const timestampLayout = time.RFC3339

// WriteAggregateCSV writes one line per period. Total_Cost is blank for
// unpriced periods, never zero.
func WriteAggregateCSV(w io.Writer, rows []aggregate.Row) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Period", "Total_kWh", "Percentage", "Interval_Count",
		"Avg_kWh_Per_Interval", "Estimated_Count",
		"Date_Range_Start", "Date_Range_End", "Total_Cost",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		cost := ""
		if row.TotalCost != nil {
			cost = fmt.Sprintf("%.2f", *row.TotalCost)
		}
		record := []string{
			row.Period,
			fmt.Sprintf("%.3f", row.TotalKWh),
			fmt.Sprintf("%.1f", row.Percentage),
			fmt.Sprintf("%d", row.IntervalCount),
			fmt.Sprintf("%.4f", row.AvgKWhPerInterval),
			fmt.Sprintf("%d", row.EstimatedCount),
			row.MinTimestamp.Format(timestampLayout),
			row.MaxTimestamp.Format(timestampLayout),
			cost,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDetailedCSV writes one line per classified interval.
func WriteDetailedCSV(w io.Writer, classified []tou.ClassifiedInterval) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Timestamp", "NMI", "Register", "kWh", "Quality", "Estimate", "Day_Type", "Period",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, interval := range classified {
		estimate := "false"
		if interval.IsEstimate {
			estimate = "true"
		}
		record := []string{
			interval.Timestamp.Format(timestampLayout),
			interval.NMI,
			interval.RegisterID,
			fmt.Sprintf("%.4f", interval.ConsumptionKWh),
			interval.QualityMethod,
			estimate,
			string(interval.DayType),
			interval.Period,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
