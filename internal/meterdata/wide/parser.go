// Package wide parses the spreadsheet-style interval CSV: a header row and
// one row per day, with a variable set of readingN_value columns discovered
// by name rather than position.
package wide

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"nem12-tou/internal/meterdata/domain"
	"nem12-tou/internal/timebase"
)

// Parser parses wide-format CSV content.
type Parser struct{}

// New returns a wide-format parser.
func New() *Parser { return &Parser{} }

var readingColumn = regexp.MustCompile(`^reading(\d+)_value$`)

// Layouts accepted for interval_start_at. The RFC3339 form carries its own
// offset; the naive forms are interpreted directly as industry time.
var startLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2/01/2006 15:04",
}

// readingRef is one discovered readingN_value column with its quality columns.
type readingRef struct {
	number    int
	valueIdx  int
	methodIdx int
	flagIdx   int
}

// Parse decodes wide-format content into the uniform interval stream,
// sorted by timestamp ascending.
func (p *Parser) Parse(content string) (*domain.ParseResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyInput
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.ErrEmptyInput
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	startIdx, ok := columns["interval_start_at"]
	if !ok {
		return nil, fmt.Errorf("%w: interval_start_at", domain.ErrMissingColumns)
	}
	lengthIdx, ok := columns["interval_length"]
	if !ok {
		return nil, fmt.Errorf("%w: interval_length", domain.ErrMissingColumns)
	}
	meterIdx, ok := columns["meterpoint_id"]
	if !ok {
		if meterIdx, ok = columns["device_id"]; !ok {
			return nil, domain.ErrMissingMeterID
		}
	}

	readings := discoverReadings(columns)
	if len(readings) == 0 {
		return nil, fmt.Errorf("%w: no readingN_value columns", domain.ErrNoData)
	}

	registerIdx := optional(columns, "register_identifier")
	serialIdx := optional(columns, "device_id")
	unitsIdx := optional(columns, "units")

	var (
		intervals []domain.IntervalRecord
		warnings  []domain.Warning
		summary   domain.MeterSummary
		seenNMIs  []string
		ignored   = map[string]bool{}
		used      int
		skipped   int
		line      = 1
	)

	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			warnings = append(warnings, domain.Warning{Line: line, Message: err.Error()})
			continue
		}

		length, err := strconv.Atoi(strings.TrimSpace(field(row, lengthIdx)))
		if err != nil || !domain.ValidIntervalLength(length) {
			skipped++
			warnings = append(warnings, domain.Warning{
				Line:    line,
				Message: fmt.Sprintf("invalid interval_length %q, skipping row", field(row, lengthIdx)),
			})
			continue
		}

		start, err := parseStart(field(row, startIdx))
		if err != nil {
			skipped++
			warnings = append(warnings, domain.Warning{
				Line:    line,
				Message: fmt.Sprintf("invalid interval_start_at %q, skipping row", field(row, startIdx)),
			})
			continue
		}

		nmi := strings.TrimSpace(field(row, meterIdx))
		seenNMIs = appendUnique(seenNMIs, nmi)
		if summary.NMI == "" {
			summary = domain.MeterSummary{
				NMI:            nmi,
				RegisterID:     strings.TrimSpace(field(row, registerIdx)),
				SerialNumber:   strings.TrimSpace(field(row, serialIdx)),
				UOM:            defaultString(strings.TrimSpace(field(row, unitsIdx)), "KWH"),
				IntervalLength: length,
			}
		}
		if nmi != summary.NMI {
			if !ignored[nmi] {
				ignored[nmi] = true
				warnings = append(warnings, domain.Warning{
					Line:    line,
					Message: fmt.Sprintf("additional meter %s found; only %s is processed", nmi, summary.NMI),
				})
			}
			skipped++
			continue
		}

		rowCount := 0
		for _, ref := range readings {
			value := strings.TrimSpace(field(row, ref.valueIdx))
			if value == "" {
				continue
			}
			kwh, err := strconv.ParseFloat(value, 64)
			if err != nil || kwh == 0 {
				// Zero and unparseable readings mean "no reading" here;
				// negative net-export values pass through untouched.
				continue
			}
			quality := rowQuality(row, ref)
			intervals = append(intervals, domain.IntervalRecord{
				Timestamp:      start.Add(time.Duration((ref.number-1)*length) * time.Minute),
				NMI:            nmi,
				RegisterID:     summary.RegisterID,
				ConsumptionKWh: kwh,
				QualityMethod:  quality,
				IsEstimate:     domain.IsEstimateMethod(quality),
			})
			rowCount++
		}
		// A row where every reading is blank or zero is silently skipped.
		if rowCount > 0 {
			summary.TotalDays++
			used++
		}
	}

	if len(intervals) == 0 {
		return nil, domain.ErrNoData
	}
	sort.SliceStable(intervals, func(a, b int) bool {
		return intervals[a].Timestamp.Before(intervals[b].Timestamp)
	})
	summary.AllNMIs = seenNMIs

	return &domain.ParseResult{
		Intervals:      intervals,
		Summary:        summary,
		Warnings:       warnings,
		RecordsUsed:    used,
		RecordsSkipped: skipped,
	}, nil
}

// discoverReadings finds every readingN_value column and its quality columns,
// ordered by reading number.
func discoverReadings(columns map[string]int) []readingRef {
	var refs []readingRef
	for name, idx := range columns {
		m := readingColumn.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		refs = append(refs, readingRef{
			number:    number,
			valueIdx:  idx,
			methodIdx: optional(columns, fmt.Sprintf("reading%d_quality_method", number)),
			flagIdx:   optional(columns, fmt.Sprintf("reading%d_quality_flag", number)),
		})
	}
	sort.Slice(refs, func(a, b int) bool { return refs[a].number < refs[b].number })
	return refs
}

// rowQuality resolves quality for one reading: quality_method if present and
// non-empty, else quality_flag, else actual.
func rowQuality(row []string, ref readingRef) string {
	if q := strings.TrimSpace(field(row, ref.methodIdx)); q != "" {
		return q
	}
	if q := strings.TrimSpace(field(row, ref.flagIdx)); q != "" {
		return q
	}
	return domain.QualityActual
}

// parseStart parses interval_start_at. Offset-aware values are converted to
// industry time; naive values are fixed into it.
func parseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.In(timebase.Industry), nil
	}
	for _, layout := range startLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return timebase.FixIndustry(ts), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func optional(columns map[string]int, name string) int {
	if idx, ok := columns[name]; ok {
		return idx
	}
	return -1
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
