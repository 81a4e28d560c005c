package domain

import (
	"fmt"
	"strconv"
	"strings"

	meterdata "nem12-tou/internal/meterdata/domain"
)

// DayType classifies a civil calendar date. Priority when assigning is
// holiday > weekend > weekday.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

// Unclassified is the sentinel period name for intervals no period matches.
const Unclassified = "Unclassified"

// TimeOfDay is a civil time of day in seconds since midnight.
// EndOfDay (24:00) is only valid as a range end.
type TimeOfDay int

// EndOfDay marks an exclusive range end at midnight of the following day.
const EndOfDay TimeOfDay = 24 * 60 * 60

// ParseTimeOfDay parses "HH:MM", "HH:MM:SS" and 12-hour "h:MM AM/PM" or
// "h:MM:SS AM/PM" forms.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("tou: empty time %q", s)
	}

	upper := strings.ToUpper(s)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			upper = strings.TrimSpace(strings.TrimSuffix(upper, suffix))
			break
		}
	}

	parts := strings.Split(upper, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("tou: invalid time %q", s)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("tou: invalid time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("tou: invalid time %q", s)
	}
	second := 0
	if len(parts) == 3 {
		if second, err = strconv.Atoi(parts[2]); err != nil {
			return 0, fmt.Errorf("tou: invalid time %q", s)
		}
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("tou: invalid time %q", s)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("tou: invalid time %q", s)
		}
		if hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("tou: invalid time %q", s)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// String renders HH:MM, or HH:MM:SS when seconds are present.
func (t TimeOfDay) String() string {
	if t == EndOfDay {
		return "24:00"
	}
	h := int(t) / 3600
	m := int(t) % 3600 / 60
	s := int(t) % 60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// TimeRange is a civil start/end time-of-day pair. A range whose start is
// after its end wraps past midnight and covers [start,24:00) plus [00:00,end).
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Wraps reports whether the range crosses midnight.
func (r TimeRange) Wraps() bool { return r.Start > r.End }

// Contains reports whether t falls in the range. Non-wrapping containment is
// half-open [start,end); wrapping containment is t >= start OR t < end.
func (r TimeRange) Contains(t TimeOfDay) bool {
	if !r.Wraps() {
		return t >= r.Start && t < r.End
	}
	return t >= r.Start || t < r.End
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// PeriodDefinition is a named TOU period with independent range lists per
// day-type and an optional price. A nil price means the period is unpriced,
// which is distinct from a zero price.
type PeriodDefinition struct {
	Name          string
	WeekdayRanges []TimeRange
	WeekendRanges []TimeRange
	HolidayRanges []TimeRange
	PricePerKWh   *float64
}

// RangesFor returns the range list for a day-type. There is no fallback:
// a day-type with no ranges can never match this period.
func (p PeriodDefinition) RangesFor(day DayType) []TimeRange {
	switch day {
	case DayTypeHoliday:
		return p.HolidayRanges
	case DayTypeWeekend:
		return p.WeekendRanges
	case DayTypeWeekday:
		return p.WeekdayRanges
	}
	return nil
}

// Matches reports whether t matches this period on the given day-type.
func (p PeriodDefinition) Matches(t TimeOfDay, day DayType) bool {
	for _, r := range p.RangesFor(day) {
		if r.Contains(t) {
			return true
		}
	}
	return false
}

// ClassifiedInterval is an interval record with its day-type and assigned
// period name (Unclassified when nothing matched).
type ClassifiedInterval struct {
	meterdata.IntervalRecord
	DayType DayType
	Period  string
}
