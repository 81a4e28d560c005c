// Package classifier assigns a day-type and a time-of-use period to every
// interval. Classification is a pure function of (timestamp, state, period
// list): no hidden state, deterministic, safe to run in parallel over the
// interval stream.
package classifier

import (
	"fmt"
	"time"

	"nem12-tou/internal/holiday"
	meterdata "nem12-tou/internal/meterdata/domain"
	"nem12-tou/internal/timebase"
	tou "nem12-tou/internal/tou/domain"
)

// HolidayCalendar answers whether a civil date is a public holiday.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

// Classifier maps intervals to (day-type, period) for one state.
type Classifier struct {
	periods  []tou.PeriodDefinition
	state    string
	loc      *time.Location
	holidays HolidayCalendar
}

// Option configures the classifier.
type Option func(*Classifier)

// WithHolidayCalendar overrides the default per-state holiday calendar.
func WithHolidayCalendar(cal HolidayCalendar) Option {
	return func(c *Classifier) {
		if cal != nil {
			c.holidays = cal
		}
	}
}

// New validates the configuration and builds a classifier. Configuration
// problems are fatal here, before any interval is classified.
func New(periods []tou.PeriodDefinition, state string, opts ...Option) (*Classifier, error) {
	if len(periods) == 0 {
		return nil, tou.ErrNoPeriods
	}
	for _, p := range periods {
		if p.Name == "" {
			return nil, tou.ErrEmptyPeriodName
		}
		if p.PricePerKWh != nil && *p.PricePerKWh < 0 {
			return nil, fmt.Errorf("%w: period %q", tou.ErrInvalidPrice, p.Name)
		}
	}

	loc, err := timebase.LocationFor(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", tou.ErrInvalidState, state)
	}

	c := &Classifier{periods: periods, state: state, loc: loc}
	for _, opt := range opts {
		opt(c)
	}
	if c.holidays == nil {
		cal, err := holiday.NewCalendar(state)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", tou.ErrInvalidState, state)
		}
		c.holidays = cal
	}
	return c, nil
}

// Classify assigns day-type and period to every interval, preserving order.
func (c *Classifier) Classify(intervals []meterdata.IntervalRecord) []tou.ClassifiedInterval {
	classified := make([]tou.ClassifiedInterval, len(intervals))
	for i, rec := range intervals {
		dayType, period := c.classifyAt(rec.Timestamp)
		classified[i] = tou.ClassifiedInterval{
			IntervalRecord: rec,
			DayType:        dayType,
			Period:         period,
		}
	}
	return classified
}

// DayTypeAt classifies the civil date of an industry timestamp.
// Priority: holiday > weekend > weekday.
func (c *Classifier) DayTypeAt(ts time.Time) tou.DayType {
	local := ts.In(c.loc)
	if c.holidays.IsHoliday(local) {
		return tou.DayTypeHoliday
	}
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return tou.DayTypeWeekend
	}
	return tou.DayTypeWeekday
}

func (c *Classifier) classifyAt(ts time.Time) (tou.DayType, string) {
	dayType := c.DayTypeAt(ts)
	local := ts.In(c.loc)
	t := tou.TimeOfDay(local.Hour()*3600 + local.Minute()*60 + local.Second())

	// First match wins; configured period order is significant.
	for _, p := range c.periods {
		if p.Matches(t, dayType) {
			return dayType, p.Name
		}
	}
	return dayType, tou.Unclassified
}
