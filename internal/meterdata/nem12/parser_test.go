package nem12

import (
	"errors"
	"strings"
	"testing"
	"time"

	"nem12-tou/internal/meterdata/domain"
	"nem12-tou/internal/timebase"
)

const sampleHeader = "100,NEM12,200401011200,MDP1,RETAILER1\n"
const sampleMeter = "200,NEM1204062,E1,E1,E1,N1,01009,kWh,30,20050610\n"

func TestParse_BasicDay(t *testing.T) {
	content := sampleHeader +
		sampleMeter +
		"300,20240102,1.5,2.25,,0.75,A\n" +
		"900\n"

	p := New()
	result, err := p.Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(result.Intervals) != 3 {
		t.Fatalf("expected 3 intervals (one gap dropped), got %d", len(result.Intervals))
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}

	first := result.Intervals[0]
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, timebase.Industry)
	if !first.Timestamp.Equal(want) {
		t.Fatalf("expected first timestamp %v, got %v", want, first.Timestamp)
	}
	if first.ConsumptionKWh != 1.5 {
		t.Fatalf("expected 1.5 kWh, got %v", first.ConsumptionKWh)
	}
	if first.QualityMethod != "A" || first.IsEstimate {
		t.Fatalf("expected actual quality, got %q estimate=%v", first.QualityMethod, first.IsEstimate)
	}

	// The gap in slot 2 must not shift slot 3.
	last := result.Intervals[2]
	wantLast := time.Date(2024, 1, 2, 1, 30, 0, 0, timebase.Industry)
	if !last.Timestamp.Equal(wantLast) {
		t.Fatalf("expected last timestamp %v, got %v", wantLast, last.Timestamp)
	}

	if result.Summary.NMI != "NEM1204062" {
		t.Fatalf("expected NMI NEM1204062, got %q", result.Summary.NMI)
	}
	if result.Summary.IntervalLength != 30 {
		t.Fatalf("expected interval length 30, got %d", result.Summary.IntervalLength)
	}
	if result.Summary.UOM != "kWh" {
		t.Fatalf("expected UOM kWh, got %q", result.Summary.UOM)
	}
	if result.Summary.TotalDays != 1 {
		t.Fatalf("expected 1 day, got %d", result.Summary.TotalDays)
	}
}

func TestParse_TrailingMetadata(t *testing.T) {
	content := sampleHeader +
		sampleMeter +
		"300,20240102,1.0,2.0,E,79,Estimated substitution,20240103120000,20240103130000\n" +
		"900\n"

	result, err := New().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(result.Intervals))
	}
	for _, rec := range result.Intervals {
		if rec.QualityMethod != "E" || !rec.IsEstimate {
			t.Fatalf("expected estimate quality E, got %q estimate=%v", rec.QualityMethod, rec.IsEstimate)
		}
	}
}

func TestParse_EstimateQualityMethods(t *testing.T) {
	for _, method := range []string{"E", "F", "S"} {
		content := sampleHeader + sampleMeter +
			"300,20240102,1.0," + method + "\n900\n"
		result, err := New().Parse(content)
		if err != nil {
			t.Fatalf("parse with quality %s: %v", method, err)
		}
		if !result.Intervals[0].IsEstimate {
			t.Fatalf("expected quality %s to be an estimate", method)
		}
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if _, err := New().Parse("  \n\n  "); !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestParse_NoIntervals(t *testing.T) {
	content := sampleHeader + sampleMeter + "900\n"
	if _, err := New().Parse(content); !errors.Is(err, domain.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestParse_300Before200(t *testing.T) {
	content := sampleHeader +
		"300,20240102,1.0,A\n" +
		sampleMeter +
		"300,20240103,2.0,A\n" +
		"900\n"

	result, err := New().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Intervals) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(result.Intervals))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "before any 200") {
		t.Fatalf("expected one orphan-300 warning, got %v", result.Warnings)
	}
	if result.RecordsSkipped != 1 {
		t.Fatalf("expected 1 skipped record, got %d", result.RecordsSkipped)
	}
}

func TestParse_MultiNMIFirstWins(t *testing.T) {
	content := sampleHeader +
		"200,NMI0000001,E1,E1,E1,N1,01009,kWh,30,\n" +
		"300,20240102,1.0,A\n" +
		"200,NMI0000002,E1,E1,E1,N1,01010,kWh,30,\n" +
		"300,20240102,9.0,A\n" +
		"300,20240103,9.0,A\n" +
		"900\n"

	result, err := New().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Summary.NMI != "NMI0000001" {
		t.Fatalf("expected first NMI to win, got %q", result.Summary.NMI)
	}
	if len(result.Intervals) != 1 || result.Intervals[0].ConsumptionKWh != 1.0 {
		t.Fatalf("expected only the first NMI's interval, got %v", result.Intervals)
	}
	if len(result.Summary.AllNMIs) != 2 {
		t.Fatalf("expected 2 NMIs recorded, got %v", result.Summary.AllNMIs)
	}

	// One warning for the foreign NMI, not one per suppressed 300.
	count := 0
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "additional NMI") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 multi-NMI warning, got %d (%v)", count, result.Warnings)
	}
}

func TestParse_UnknownRecordType(t *testing.T) {
	content := sampleHeader + sampleMeter +
		"300,20240102,1.0,A\n" +
		"700,something\n" +
		"900\n"

	result, err := New().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "unknown record type") {
		t.Fatalf("expected unknown-record warning, got %v", result.Warnings)
	}
}

func TestParse_BadIntervalLength(t *testing.T) {
	content := sampleHeader +
		"200,NEM1204062,E1,E1,E1,N1,01009,kWh,60,\n" +
		"300,20240102,1.0,A\n" +
		"900\n"

	if _, err := New().Parse(content); !errors.Is(err, domain.ErrNoData) {
		t.Fatalf("expected ErrNoData after header rejection, got %v", err)
	}
}

func TestParse_DSTVariantDayLength(t *testing.T) {
	// Spring-forward day in the civil zone: 46 readings instead of 48.
	// The block is decoded as-is; no fixed count is enforced.
	values := make([]string, 46)
	for i := range values {
		values[i] = "0.5"
	}
	content := sampleHeader + sampleMeter +
		"300,20231001," + strings.Join(values, ",") + ",A\n" +
		"900\n"

	result, err := New().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Intervals) != 46 {
		t.Fatalf("expected 46 intervals, got %d", len(result.Intervals))
	}
	last := result.Intervals[45].Timestamp
	want := time.Date(2023, 10, 1, 22, 30, 0, 0, timebase.Industry)
	if !last.Equal(want) {
		t.Fatalf("expected last interval %v, got %v", want, last)
	}
}

func TestParse_OutOfOrderDaysSorted(t *testing.T) {
	content := sampleHeader + sampleMeter +
		"300,20240105,2.0,A\n" +
		"300,20240103,1.0,A\n" +
		"900\n"

	result, err := New().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(result.Intervals))
	}
	if !result.Intervals[0].Timestamp.Before(result.Intervals[1].Timestamp) {
		t.Fatalf("expected intervals sorted ascending, got %v then %v",
			result.Intervals[0].Timestamp, result.Intervals[1].Timestamp)
	}
}

func TestParse_NegativeReadingsPreserved(t *testing.T) {
	content := sampleHeader + sampleMeter +
		"300,20240102,-0.8,1.2,A\n" +
		"900\n"

	result, err := New().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(result.Intervals))
	}
	if result.Intervals[0].ConsumptionKWh != -0.8 {
		t.Fatalf("expected net-export value -0.8 preserved, got %v", result.Intervals[0].ConsumptionKWh)
	}
}
