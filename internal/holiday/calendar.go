// Package holiday provides a public-holiday calendar for Australian states
// and territories. National holidays come from the calendar library's
// Australian definitions; the days each jurisdiction adds on top are declared
// here as rule values evaluated by the same engine.
package holiday

import (
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	aus "github.com/rickar/cal/v2/au"

	"nem12-tou/internal/timebase"
)

// Calendar answers holiday lookups for one state.
type Calendar struct {
	state string
	rules *cal.Calendar
}

// NewCalendar builds a calendar scoped to one state code.
func NewCalendar(state string) (*Calendar, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if !timebase.ValidState(state) {
		return nil, timebase.ErrUnknownState
	}
	return &Calendar{state: state, rules: newRuleCalendar(state)}, nil
}

// State returns the state code the calendar is scoped to.
func (c *Calendar) State() string { return c.state }

// IsHoliday reports whether the given civil date is a public holiday.
// Only the year/month/day fields are considered.
func (c *Calendar) IsHoliday(date time.Time) bool {
	_, ok := c.HolidayName(date)
	return ok
}

// HolidayName returns the holiday name for a civil date, if any. Observed
// substitute days are suffixed so they stay distinguishable from the actual
// date.
func (c *Calendar) HolidayName(date time.Time) (string, bool) {
	actual, observed, h := c.rules.IsHoliday(date)
	if h == nil || (!actual && !observed) {
		return "", false
	}
	if !actual {
		return h.Name + " (observed)", true
	}
	return h.Name, true
}

// State-specific holidays. Easter-linked days use the library's Easter
// arithmetic; movable days use its nth-weekday rules.
var (
	easterSaturday = &cal.Holiday{
		Name:   "Easter Saturday",
		Offset: -1,
		Func:   cal.CalcEasterOffset,
	}
	easterSunday = &cal.Holiday{
		Name: "Easter Sunday",
		Func: cal.CalcEasterOffset,
	}

	kingsBirthdayJune = &cal.Holiday{
		Name:    "King's Birthday",
		Month:   time.June,
		Weekday: time.Monday,
		Offset:  2,
		Func:    cal.CalcWeekdayOffset,
	}
	kingsBirthdayOctober = &cal.Holiday{
		Name:    "King's Birthday",
		Month:   time.October,
		Weekday: time.Monday,
		Offset:  1,
		Func:    cal.CalcWeekdayOffset,
	}
	kingsBirthdaySeptember = &cal.Holiday{
		Name:    "King's Birthday",
		Month:   time.September,
		Weekday: time.Monday,
		Offset:  -1,
		Func:    cal.CalcWeekdayOffset,
	}

	labourDayMarchFirst = &cal.Holiday{
		Name:    "Labour Day",
		Month:   time.March,
		Weekday: time.Monday,
		Offset:  1,
		Func:    cal.CalcWeekdayOffset,
	}
	labourDayMarchSecond = &cal.Holiday{
		Name:    "Labour Day",
		Month:   time.March,
		Weekday: time.Monday,
		Offset:  2,
		Func:    cal.CalcWeekdayOffset,
	}
	eightHoursDay = &cal.Holiday{
		Name:    "Eight Hours Day",
		Month:   time.March,
		Weekday: time.Monday,
		Offset:  2,
		Func:    cal.CalcWeekdayOffset,
	}
	labourDayMay = &cal.Holiday{
		Name:    "Labour Day",
		Month:   time.May,
		Weekday: time.Monday,
		Offset:  1,
		Func:    cal.CalcWeekdayOffset,
	}
	labourDayOctober = &cal.Holiday{
		Name:    "Labour Day",
		Month:   time.October,
		Weekday: time.Monday,
		Offset:  1,
		Func:    cal.CalcWeekdayOffset,
	}

	canberraDay = &cal.Holiday{
		Name:    "Canberra Day",
		Month:   time.March,
		Weekday: time.Monday,
		Offset:  2,
		Func:    cal.CalcWeekdayOffset,
	}
	// Monday on or after May 27.
	reconciliationDay = &cal.Holiday{
		Name: "Reconciliation Day",
		Func: func(_ *cal.Holiday, year int) time.Time {
			d := time.Date(year, time.May, 27, 0, 0, 0, 0, time.UTC)
			offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
			return d.AddDate(0, 0, offset)
		},
	}
	melbourneCup = &cal.Holiday{
		Name:    "Melbourne Cup Day",
		Month:   time.November,
		Weekday: time.Tuesday,
		Offset:  1,
		Func:    cal.CalcWeekdayOffset,
	}
	adelaideCup = &cal.Holiday{
		Name:    "Adelaide Cup Day",
		Month:   time.March,
		Weekday: time.Monday,
		Offset:  2,
		Func:    cal.CalcWeekdayOffset,
	}
	picnicDay = &cal.Holiday{
		Name:    "Picnic Day",
		Month:   time.August,
		Weekday: time.Monday,
		Offset:  1,
		Func:    cal.CalcWeekdayOffset,
	}
	// SA observes December 26 as Proclamation Day rather than Boxing Day.
	proclamationDay = &cal.Holiday{
		Name:  "Proclamation Day",
		Month: time.December,
		Day:   26,
		Func:  cal.CalcDayOfMonth,
		Observed: []cal.AltDay{
			{Day: time.Saturday, Offset: 2},
			{Day: time.Sunday, Offset: 2},
		},
	}
)

func newRuleCalendar(state string) *cal.Calendar {
	c := &cal.Calendar{Name: "AU-" + state, Cacheable: true}
	c.AddHoliday(
		aus.NewYear,
		aus.AustraliaDay,
		aus.GoodFriday,
		aus.EasterMonday,
		aus.AnzacDay,
		aus.ChristmasDay,
	)
	if state == "SA" {
		c.AddHoliday(proclamationDay)
	} else {
		c.AddHoliday(aus.BoxingDay)
	}

	switch state {
	case "ACT":
		c.AddHoliday(easterSaturday, easterSunday, kingsBirthdayJune, labourDayOctober, canberraDay, reconciliationDay)
	case "NSW":
		c.AddHoliday(easterSaturday, easterSunday, kingsBirthdayJune, labourDayOctober)
	case "NT":
		c.AddHoliday(easterSaturday, kingsBirthdayJune, labourDayMay, picnicDay)
	case "QLD":
		c.AddHoliday(easterSaturday, easterSunday, kingsBirthdayOctober, labourDayMay)
	case "SA":
		c.AddHoliday(easterSaturday, kingsBirthdayJune, adelaideCup, labourDayOctober)
	case "TAS":
		c.AddHoliday(kingsBirthdayJune, eightHoursDay)
	case "VIC":
		c.AddHoliday(easterSaturday, easterSunday, kingsBirthdayJune, labourDayMarchSecond, melbourneCup)
	case "WA":
		c.AddHoliday(kingsBirthdaySeptember, labourDayMarchFirst)
	}
	return c
}
