// Package config loads the ordered time-of-use period list and state code
// from a YAML file. Interactive period entry is deliberately out of scope;
// the file is the configuration surface.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"nem12-tou/internal/timebase"
	tou "nem12-tou/internal/tou/domain"
)

// File is the on-disk configuration shape.
//
//	state: NSW
//	periods:
//	  - name: Peak
//	    price_per_kwh: 0.32
//	    weekday: ["07:00-09:00", "17:00-21:00"]
//	    weekend: []
//	    holiday: []
type File struct {
	State   string   `yaml:"state"`
	Periods []Period `yaml:"periods"`
}

// Period is one named TOU window in the file. Range lists are strings of the
// form "START-END"; 12-hour forms like "7:00 AM-9:00 PM" are accepted.
type Period struct {
	Name        string   `yaml:"name"`
	PricePerKWh *float64 `yaml:"price_per_kwh"`
	Weekday     []string `yaml:"weekday"`
	Weekend     []string `yaml:"weekend"`
	Holiday     []string `yaml:"holiday"`
}

// Load reads and validates a period configuration file. Period order in the
// file is significant and preserved.
func Load(path string) ([]tou.PeriodDefinition, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("tou config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) ([]tou.PeriodDefinition, string, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("tou config: %w", err)
	}

	state := strings.ToUpper(strings.TrimSpace(file.State))
	if state == "" {
		state = strings.ToUpper(strings.TrimSpace(os.Getenv("TOU_STATE")))
	}
	if !timebase.ValidState(state) {
		return nil, "", fmt.Errorf("%w: %q (expected one of %s)",
			tou.ErrInvalidState, state, strings.Join(timebase.States(), ", "))
	}

	if len(file.Periods) == 0 {
		return nil, "", tou.ErrNoPeriods
	}

	periods := make([]tou.PeriodDefinition, 0, len(file.Periods))
	for i, p := range file.Periods {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, "", fmt.Errorf("%w: period %d", tou.ErrEmptyPeriodName, i+1)
		}
		if p.PricePerKWh != nil && *p.PricePerKWh < 0 {
			return nil, "", fmt.Errorf("%w: period %q", tou.ErrInvalidPrice, name)
		}

		def := tou.PeriodDefinition{Name: name, PricePerKWh: p.PricePerKWh}
		var perr error
		if def.WeekdayRanges, perr = parseRanges(p.Weekday, name, "weekday"); perr != nil {
			return nil, "", perr
		}
		if def.WeekendRanges, perr = parseRanges(p.Weekend, name, "weekend"); perr != nil {
			return nil, "", perr
		}
		if def.HolidayRanges, perr = parseRanges(p.Holiday, name, "holiday"); perr != nil {
			return nil, "", perr
		}
		periods = append(periods, def)
	}
	return periods, state, nil
}

func parseRanges(specs []string, period, dayType string) ([]tou.TimeRange, error) {
	ranges := make([]tou.TimeRange, 0, len(specs))
	for _, spec := range specs {
		r, err := ParseTimeRange(spec)
		if err != nil {
			return nil, fmt.Errorf("tou config: period %q %s range: %w", period, dayType, err)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// ParseTimeRange parses a "START-END" pair. En and em dashes are normalized;
// "00:00-00:00" means the full day.
func ParseTimeRange(spec string) (tou.TimeRange, error) {
	normalized := strings.NewReplacer("–", "-", "—", "-").Replace(spec)
	parts := strings.Split(normalized, "-")
	if len(parts) != 2 {
		return tou.TimeRange{}, fmt.Errorf("tou: invalid range %q (want START-END)", spec)
	}
	start, err := tou.ParseTimeOfDay(parts[0])
	if err != nil {
		return tou.TimeRange{}, err
	}
	end, err := tou.ParseTimeOfDay(parts[1])
	if err != nil {
		return tou.TimeRange{}, err
	}
	if start == 0 && end == 0 {
		end = tou.EndOfDay
	}
	return tou.TimeRange{Start: start, End: end}, nil
}
