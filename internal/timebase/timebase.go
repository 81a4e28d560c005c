// Package timebase is the single authority for the two time conversions the
// pipeline needs: fixing naive or foreign-zoned timestamps into the industry
// time base at parse time, and mapping industry time to a state's civil zone
// for calendar classification.
package timebase

import (
	"errors"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"
)

// Industry is the fixed AEST offset (UTC+10) interval metering is recorded in.
// It never observes daylight saving, which is what keeps interval identity
// and ordering stable across DST transitions.
var Industry = time.FixedZone("AEST", 10*60*60)

// ErrUnknownState is returned for a state code with no civil zone mapping.
var ErrUnknownState = errors.New("timebase: unknown state code")

// Each state or territory maps to exactly one IANA zone. ACT shares Sydney;
// QLD has no daylight saving at all.
var stateZones = map[string]string{
	"NSW": "Australia/Sydney",
	"VIC": "Australia/Melbourne",
	"QLD": "Australia/Brisbane",
	"SA":  "Australia/Adelaide",
	"WA":  "Australia/Perth",
	"TAS": "Australia/Hobart",
	"NT":  "Australia/Darwin",
	"ACT": "Australia/Sydney",
}

// ValidState reports whether a state code has a zone mapping.
func ValidState(state string) bool {
	_, ok := stateZones[strings.ToUpper(strings.TrimSpace(state))]
	return ok
}

// States returns the supported state codes in sorted order.
func States() []string {
	codes := make([]string, 0, len(stateZones))
	for code := range stateZones {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LocationFor resolves the civil time zone for a state code.
func LocationFor(state string) (*time.Location, error) {
	name, ok := stateZones[strings.ToUpper(strings.TrimSpace(state))]
	if !ok {
		return nil, ErrUnknownState
	}
	return time.LoadLocation(name)
}

// FixIndustry reinterprets the wall-clock fields of a naive timestamp as
// industry time. Used once at parse time; the result never shifts again.
func FixIndustry(naive time.Time) time.Time {
	return time.Date(
		naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(),
		Industry,
	)
}

// ToLocal converts an industry timestamp to the civil time of a state.
func ToLocal(industry time.Time, state string) (time.Time, error) {
	loc, err := LocationFor(state)
	if err != nil {
		return time.Time{}, err
	}
	return industry.In(loc), nil
}
