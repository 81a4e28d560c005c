// Package aggregate groups the classified interval stream by period,
// computes per-period totals and costs, detects DST-variant days, and orders
// results for presentation.
package aggregate

import (
	"sort"
	"time"

	"nem12-tou/internal/timebase"
	tou "nem12-tou/internal/tou/domain"
)

// DST transition kinds.
const (
	TransitionSpringForward = "spring_forward"
	TransitionFallBack      = "fall_back"
)

// Row is the aggregate for one period. TotalCost is nil when the period
// carries no price; a priced period with zero consumption gets a real 0.
type Row struct {
	Period            string
	TotalKWh          float64
	IntervalCount     int
	AvgKWhPerInterval float64
	MinTimestamp      time.Time
	MaxTimestamp      time.Time
	EstimatedCount    int
	Percentage        float64
	TotalCost         *float64
}

// Unclassified reports whether the row is the unclassified bucket.
func (r Row) Unclassified() bool { return r.Period == tou.Unclassified }

// DSTTransition records a local calendar day whose interval count differs
// from the expected count for the configured interval length. Informational,
// never an error.
type DSTTransition struct {
	Date          string
	IntervalCount int
	ExpectedCount int
	LocalZone     string
	Type          string
}

// Summary holds run-level statistics over the classified stream.
type Summary struct {
	TotalIntervals         int
	TotalKWh               float64
	DateRangeStart         time.Time
	DateRangeEnd           time.Time
	TotalDays              int
	EstimatedIntervals     int
	EstimatedPercentage    float64
	UnclassifiedIntervals  int
	UnclassifiedPercentage float64
	WeekdayIntervals       int
	WeekendIntervals       int
	HolidayIntervals       int
	DSTTransitions         []DSTTransition
}

// Engine aggregates classified intervals for one state and interval length.
type Engine struct {
	loc            *time.Location
	intervalLength int
}

// NewEngine resolves the civil zone used for DST-day detection.
func NewEngine(state string, intervalLength int) (*Engine, error) {
	loc, err := timebase.LocationFor(state)
	if err != nil {
		return nil, err
	}
	return &Engine{loc: loc, intervalLength: intervalLength}, nil
}

// Aggregate groups the classified stream by period and computes the summary.
// Rows are ordered by total kWh descending with Unclassified always last.
func (e *Engine) Aggregate(classified []tou.ClassifiedInterval, periods []tou.PeriodDefinition) ([]Row, Summary) {
	groups := make(map[string]*Row)
	order := make([]string, 0)

	summary := Summary{TotalIntervals: len(classified)}
	for _, interval := range classified {
		row, ok := groups[interval.Period]
		if !ok {
			row = &Row{Period: interval.Period, MinTimestamp: interval.Timestamp, MaxTimestamp: interval.Timestamp}
			groups[interval.Period] = row
			order = append(order, interval.Period)
		}
		row.TotalKWh += interval.ConsumptionKWh
		row.IntervalCount++
		if interval.Timestamp.Before(row.MinTimestamp) {
			row.MinTimestamp = interval.Timestamp
		}
		if interval.Timestamp.After(row.MaxTimestamp) {
			row.MaxTimestamp = interval.Timestamp
		}
		if interval.IsEstimate {
			row.EstimatedCount++
			summary.EstimatedIntervals++
		}

		summary.TotalKWh += interval.ConsumptionKWh
		if summary.DateRangeStart.IsZero() || interval.Timestamp.Before(summary.DateRangeStart) {
			summary.DateRangeStart = interval.Timestamp
		}
		if interval.Timestamp.After(summary.DateRangeEnd) {
			summary.DateRangeEnd = interval.Timestamp
		}
		switch interval.DayType {
		case tou.DayTypeWeekday:
			summary.WeekdayIntervals++
		case tou.DayTypeWeekend:
			summary.WeekendIntervals++
		case tou.DayTypeHoliday:
			summary.HolidayIntervals++
		}
		if interval.Period == tou.Unclassified {
			summary.UnclassifiedIntervals++
		}
	}

	prices := make(map[string]*float64, len(periods))
	for _, p := range periods {
		prices[p.Name] = p.PricePerKWh
	}

	rows := make([]Row, 0, len(groups))
	for _, name := range order {
		row := groups[name]
		row.AvgKWhPerInterval = row.TotalKWh / float64(row.IntervalCount)
		if summary.TotalKWh > 0 {
			row.Percentage = row.TotalKWh / summary.TotalKWh * 100
		}
		if price := prices[name]; price != nil {
			cost := row.TotalKWh * *price
			row.TotalCost = &cost
		}
		rows = append(rows, *row)
	}

	// Two-key sort: Unclassified last regardless of magnitude, the rest by
	// total kWh descending.
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Unclassified() != rows[b].Unclassified() {
			return !rows[a].Unclassified()
		}
		return rows[a].TotalKWh > rows[b].TotalKWh
	})

	if summary.TotalIntervals > 0 {
		summary.EstimatedPercentage = float64(summary.EstimatedIntervals) / float64(summary.TotalIntervals) * 100
		summary.UnclassifiedPercentage = float64(summary.UnclassifiedIntervals) / float64(summary.TotalIntervals) * 100
		summary.TotalDays = int(summary.DateRangeEnd.Sub(summary.DateRangeStart).Hours()/24) + 1
	}
	summary.DSTTransitions = e.detectDSTTransitions(classified)

	return rows, summary
}

// detectDSTTransitions groups intervals by local calendar date and flags any
// day whose count differs from 1440/interval_length. Fewer intervals means a
// spring-forward day, more means fall-back.
func (e *Engine) detectDSTTransitions(classified []tou.ClassifiedInterval) []DSTTransition {
	if e.intervalLength <= 0 {
		return nil
	}
	expected := 1440 / e.intervalLength

	counts := make(map[string]int)
	for _, interval := range classified {
		counts[interval.Timestamp.In(e.loc).Format("2006-01-02")]++
	}

	var transitions []DSTTransition
	for date, count := range counts {
		if count == expected {
			continue
		}
		kind := TransitionFallBack
		if count < expected {
			kind = TransitionSpringForward
		}
		transitions = append(transitions, DSTTransition{
			Date:          date,
			IntervalCount: count,
			ExpectedCount: expected,
			LocalZone:     e.loc.String(),
			Type:          kind,
		})
	}
	sort.Slice(transitions, func(a, b int) bool { return transitions[a].Date < transitions[b].Date })
	return transitions
}
