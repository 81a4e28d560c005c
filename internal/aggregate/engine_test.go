package aggregate

import (
	"math"
	"testing"
	"time"

	meterdata "nem12-tou/internal/meterdata/domain"
	"nem12-tou/internal/timebase"
	tou "nem12-tou/internal/tou/domain"
)

func classified(ts time.Time, kwh float64, period string, estimate bool) tou.ClassifiedInterval {
	quality := "A"
	if estimate {
		quality = "E"
	}
	return tou.ClassifiedInterval{
		IntervalRecord: meterdata.IntervalRecord{
			Timestamp:      ts,
			NMI:            "NMI1",
			ConsumptionKWh: kwh,
			QualityMethod:  quality,
			IsEstimate:     estimate,
		},
		DayType: tou.DayTypeWeekday,
		Period:  period,
	}
}

func mustEngine(t *testing.T, state string, length int) *Engine {
	t.Helper()
	e, err := NewEngine(state, length)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestAggregate_OrderingUnclassifiedLast(t *testing.T) {
	base := time.Date(2024, 6, 5, 0, 0, 0, 0, timebase.Industry)
	stream := []tou.ClassifiedInterval{
		classified(base, 50, "Peak", false),
		classified(base.Add(30*time.Minute), 200, tou.Unclassified, false),
		classified(base.Add(60*time.Minute), 80, "Shoulder", false),
	}

	rows, _ := mustEngine(t, "QLD", 30).Aggregate(stream, nil)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Descending kWh, but Unclassified always trails even with the largest total.
	if rows[0].Period != "Shoulder" || rows[1].Period != "Peak" || rows[2].Period != tou.Unclassified {
		t.Fatalf("unexpected order: %s, %s, %s", rows[0].Period, rows[1].Period, rows[2].Period)
	}
}

func TestAggregate_RowStatistics(t *testing.T) {
	base := time.Date(2024, 6, 5, 0, 0, 0, 0, timebase.Industry)
	stream := []tou.ClassifiedInterval{
		classified(base, 1.0, "Peak", false),
		classified(base.Add(30*time.Minute), 2.0, "Peak", true),
		classified(base.Add(60*time.Minute), 1.0, "OffPeak", false),
	}

	rows, stats := mustEngine(t, "QLD", 30).Aggregate(stream, nil)
	peak := rows[0]
	if peak.Period != "Peak" {
		t.Fatalf("expected Peak first, got %s", peak.Period)
	}
	if peak.TotalKWh != 3.0 || peak.IntervalCount != 2 || peak.EstimatedCount != 1 {
		t.Fatalf("unexpected Peak row: %+v", peak)
	}
	if peak.AvgKWhPerInterval != 1.5 {
		t.Fatalf("expected avg 1.5, got %v", peak.AvgKWhPerInterval)
	}
	if math.Abs(peak.Percentage-75.0) > 1e-9 {
		t.Fatalf("expected 75%%, got %v", peak.Percentage)
	}
	if !peak.MinTimestamp.Equal(base) || !peak.MaxTimestamp.Equal(base.Add(30*time.Minute)) {
		t.Fatalf("unexpected Peak range: %v to %v", peak.MinTimestamp, peak.MaxTimestamp)
	}

	total := 0.0
	pct := 0.0
	for _, row := range rows {
		total += row.TotalKWh
		pct += row.Percentage
	}
	if total != stats.TotalKWh {
		t.Fatalf("expected row totals to equal grand total, got %v vs %v", total, stats.TotalKWh)
	}
	if math.Abs(pct-100.0) > 1e-9 {
		t.Fatalf("expected percentages summing to 100, got %v", pct)
	}
	if stats.EstimatedIntervals != 1 || math.Abs(stats.EstimatedPercentage-100.0/3) > 1e-9 {
		t.Fatalf("unexpected estimate stats: %+v", stats)
	}
	if stats.TotalDays != 1 {
		t.Fatalf("expected 1 day, got %d", stats.TotalDays)
	}
}

func TestAggregate_CostNilVersusZero(t *testing.T) {
	base := time.Date(2024, 6, 5, 0, 0, 0, 0, timebase.Industry)
	stream := []tou.ClassifiedInterval{
		classified(base, 10, "Priced", false),
		classified(base.Add(30*time.Minute), 10, "FreePower", false),
		classified(base.Add(60*time.Minute), 10, "Unpriced", false),
	}
	price := 0.25
	zero := 0.0
	periods := []tou.PeriodDefinition{
		{Name: "Priced", PricePerKWh: &price},
		{Name: "FreePower", PricePerKWh: &zero},
		{Name: "Unpriced"},
	}

	rows, _ := mustEngine(t, "QLD", 30).Aggregate(stream, periods)
	byName := make(map[string]Row, len(rows))
	for _, row := range rows {
		byName[row.Period] = row
	}

	if got := byName["Priced"].TotalCost; got == nil || *got != 2.5 {
		t.Fatalf("expected cost 2.50 for priced period, got %v", got)
	}
	// A zero price is a real price; nil means no price was configured.
	if got := byName["FreePower"].TotalCost; got == nil || *got != 0 {
		t.Fatalf("expected explicit zero cost, got %v", got)
	}
	if got := byName["Unpriced"].TotalCost; got != nil {
		t.Fatalf("expected nil cost for unpriced period, got %v", *got)
	}
}

func TestAggregate_ZeroGrandTotalPercentages(t *testing.T) {
	base := time.Date(2024, 6, 5, 0, 0, 0, 0, timebase.Industry)
	stream := []tou.ClassifiedInterval{
		classified(base, 2.0, "Import", false),
		classified(base.Add(30*time.Minute), -2.0, "Export", false),
	}
	rows, _ := mustEngine(t, "QLD", 30).Aggregate(stream, nil)
	for _, row := range rows {
		if row.Percentage != 0 {
			t.Fatalf("expected percentages suppressed at zero grand total, got %v", row.Percentage)
		}
	}
}

func TestAggregate_SpringForwardDetection(t *testing.T) {
	// Sydney springs forward on 2023-10-01: a 30-minute meter day carries 46
	// intervals, all landing on the same civil date.
	base := time.Date(2023, 10, 1, 0, 0, 0, 0, timebase.Industry)
	var stream []tou.ClassifiedInterval
	for i := 0; i < 46; i++ {
		stream = append(stream, classified(base.Add(time.Duration(i*30)*time.Minute), 0.5, "Peak", false))
	}

	_, stats := mustEngine(t, "NSW", 30).Aggregate(stream, nil)
	if len(stats.DSTTransitions) != 1 {
		t.Fatalf("expected 1 DST transition, got %v", stats.DSTTransitions)
	}
	tr := stats.DSTTransitions[0]
	if tr.Date != "2023-10-01" || tr.IntervalCount != 46 || tr.ExpectedCount != 48 {
		t.Fatalf("unexpected transition: %+v", tr)
	}
	if tr.Type != TransitionSpringForward {
		t.Fatalf("expected spring_forward, got %s", tr.Type)
	}
	if tr.LocalZone != "Australia/Sydney" {
		t.Fatalf("expected Australia/Sydney, got %s", tr.LocalZone)
	}
}

func TestAggregate_FallBackDetection(t *testing.T) {
	// Sydney falls back on 2024-04-07: a 30-minute meter day carries 50
	// intervals mapping to that civil date.
	base := time.Date(2024, 4, 7, 0, 0, 0, 0, timebase.Industry)
	var stream []tou.ClassifiedInterval
	for i := -2; i < 48; i++ {
		stream = append(stream, classified(base.Add(time.Duration(i*30)*time.Minute), 0.5, "Peak", false))
	}

	_, stats := mustEngine(t, "NSW", 30).Aggregate(stream, nil)
	var fallBack *DSTTransition
	for i := range stats.DSTTransitions {
		if stats.DSTTransitions[i].Date == "2024-04-07" {
			fallBack = &stats.DSTTransitions[i]
		}
	}
	if fallBack == nil {
		t.Fatalf("expected a transition on 2024-04-07, got %v", stats.DSTTransitions)
	}
	if fallBack.Type != TransitionFallBack || fallBack.IntervalCount != 50 {
		t.Fatalf("unexpected transition: %+v", fallBack)
	}
}

func TestAggregate_NormalDayNoTransitions(t *testing.T) {
	base := time.Date(2024, 6, 5, 0, 0, 0, 0, timebase.Industry)
	var stream []tou.ClassifiedInterval
	for i := 0; i < 48; i++ {
		stream = append(stream, classified(base.Add(time.Duration(i*30)*time.Minute), 0.5, "Peak", false))
	}
	_, stats := mustEngine(t, "QLD", 30).Aggregate(stream, nil)
	if len(stats.DSTTransitions) != 0 {
		t.Fatalf("expected no transitions, got %v", stats.DSTTransitions)
	}
}
