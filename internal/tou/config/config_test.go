package config

import (
	"errors"
	"testing"

	tou "nem12-tou/internal/tou/domain"
)

const sampleConfig = `
state: NSW
periods:
  - name: Peak
    price_per_kwh: 0.32
    weekday: ["07:00-09:00", "17:00-21:00"]
  - name: OffPeak
    price_per_kwh: 0.0
    weekday: ["22:00-06:00"]
    weekend: ["00:00-00:00"]
    holiday: ["00:00-00:00"]
  - name: Shoulder
    weekday: ["06:00-07:00", "09:00-17:00", "21:00-22:00"]
`

func TestParse_Valid(t *testing.T) {
	periods, state, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if state != "NSW" {
		t.Fatalf("expected NSW, got %q", state)
	}
	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}
	// File order is significant and must be preserved.
	if periods[0].Name != "Peak" || periods[1].Name != "OffPeak" || periods[2].Name != "Shoulder" {
		t.Fatalf("unexpected order: %s, %s, %s", periods[0].Name, periods[1].Name, periods[2].Name)
	}

	if periods[0].PricePerKWh == nil || *periods[0].PricePerKWh != 0.32 {
		t.Fatalf("expected price 0.32, got %v", periods[0].PricePerKWh)
	}
	// Zero price is a real price, absent price stays nil.
	if periods[1].PricePerKWh == nil || *periods[1].PricePerKWh != 0 {
		t.Fatalf("expected explicit zero price, got %v", periods[1].PricePerKWh)
	}
	if periods[2].PricePerKWh != nil {
		t.Fatalf("expected nil price for Shoulder")
	}

	if len(periods[0].WeekdayRanges) != 2 || len(periods[0].WeekendRanges) != 0 {
		t.Fatalf("unexpected Peak ranges: %+v", periods[0])
	}
	// "00:00-00:00" means the full day.
	fullDay := periods[1].WeekendRanges[0]
	if fullDay.Start != 0 || fullDay.End != tou.EndOfDay {
		t.Fatalf("expected full-day range, got %v", fullDay)
	}
	offPeak := periods[1].WeekdayRanges[0]
	if !offPeak.Wraps() {
		t.Fatalf("expected 22:00-06:00 to wrap midnight")
	}
}

func TestParse_StateFromEnvFallback(t *testing.T) {
	t.Setenv("TOU_STATE", "vic")
	_, state, err := Parse([]byte("periods:\n  - name: Flat\n    weekday: [\"00:00-00:00\"]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if state != "VIC" {
		t.Fatalf("expected VIC from environment, got %q", state)
	}
}

func TestParse_InvalidState(t *testing.T) {
	t.Setenv("TOU_STATE", "")
	_, _, err := Parse([]byte("state: XX\nperiods:\n  - name: Flat\n"))
	if !errors.Is(err, tou.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestParse_NoPeriods(t *testing.T) {
	_, _, err := Parse([]byte("state: NSW\nperiods: []\n"))
	if !errors.Is(err, tou.ErrNoPeriods) {
		t.Fatalf("expected ErrNoPeriods, got %v", err)
	}
}

func TestParse_EmptyPeriodName(t *testing.T) {
	_, _, err := Parse([]byte("state: NSW\nperiods:\n  - name: \"  \"\n"))
	if !errors.Is(err, tou.ErrEmptyPeriodName) {
		t.Fatalf("expected ErrEmptyPeriodName, got %v", err)
	}
}

func TestParse_NegativePrice(t *testing.T) {
	_, _, err := Parse([]byte("state: NSW\nperiods:\n  - name: Peak\n    price_per_kwh: -0.1\n"))
	if !errors.Is(err, tou.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestParse_BadRange(t *testing.T) {
	_, _, err := Parse([]byte("state: NSW\nperiods:\n  - name: Peak\n    weekday: [\"07:00\"]\n"))
	if err == nil {
		t.Fatalf("expected error for range without END")
	}
}

func TestParseTimeRange_DashNormalization(t *testing.T) {
	// En and em dashes from copy-pasted tariff sheets are accepted.
	for _, spec := range []string{"07:00-21:00", "07:00–21:00", "07:00—21:00"} {
		r, err := ParseTimeRange(spec)
		if err != nil {
			t.Fatalf("parse %q: %v", spec, err)
		}
		if r.Start != 7*3600 || r.End != 21*3600 {
			t.Fatalf("unexpected range for %q: %v", spec, r)
		}
	}
}

func TestParseTimeRange_TwelveHour(t *testing.T) {
	r, err := ParseTimeRange("7:00 AM-9:30 PM")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Start != 7*3600 || r.End != 21*3600+30*60 {
		t.Fatalf("unexpected range: %v", r)
	}
}
