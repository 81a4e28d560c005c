// Package nem12 decodes the NEM12 record-oriented exchange format into the
// uniform interval stream. Lines are processed independently: malformed or
// unknown records are warned about and skipped, never fatal. Only an empty
// file or a file yielding zero intervals aborts the run.
package nem12

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"nem12-tou/internal/meterdata/domain"
	"nem12-tou/internal/timebase"
)

// Parser parses NEM12 content.
type Parser struct{}

// New returns a NEM12 parser.
func New() *Parser { return &Parser{} }

// parserState is the explicit state threaded through record dispatch: the
// current 200 header plus everything accumulated so far.
type parserState struct {
	current     *domain.MeterHeader
	suppressing bool // current header belongs to an ignored extra NMI

	primaryNMI string
	allNMIs    []string
	ignored    map[string]bool

	blocks   []intervalBlock
	warnings []domain.Warning
	used     int
	skipped  int
}

func (s *parserState) warnf(line int, format string, args ...interface{}) {
	s.warnings = append(s.warnings, domain.Warning{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Parse decodes NEM12 content into the uniform interval stream.
func (p *Parser) Parse(content string) (*domain.ParseResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyInput
	}

	state := &parserState{ignored: make(map[string]bool)}
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		dispatch(state, i+1, strings.Split(line, ","))
	}

	intervals := flatten(state)
	if len(intervals) == 0 {
		return nil, domain.ErrNoData
	}
	sort.SliceStable(intervals, func(a, b int) bool {
		return intervals[a].Timestamp.Before(intervals[b].Timestamp)
	})

	first := state.blocks[0].header
	return &domain.ParseResult{
		Intervals: intervals,
		Summary: domain.MeterSummary{
			NMI:            first.NMI,
			AllNMIs:        state.allNMIs,
			RegisterID:     first.RegisterID,
			SerialNumber:   first.SerialNumber,
			UOM:            first.UOM,
			IntervalLength: first.IntervalLength,
			TotalDays:      len(state.blocks),
		},
		Warnings:       state.warnings,
		RecordsUsed:    state.used,
		RecordsSkipped: state.skipped,
	}, nil
}

// dispatch routes one record by its leading type token.
func dispatch(state *parserState, line int, fields []string) {
	switch strings.TrimSpace(fields[0]) {
	case "100":
		// Format confirmation; validated for minimum field count only.
		if len(fields) < 5 {
			state.skipped++
			state.warnf(line, "invalid 100 record: %d fields, want at least 5", len(fields))
			return
		}
		state.used++
	case "200":
		header, err := decodeHeader(fields)
		if err != nil {
			state.skipped++
			state.warnf(line, "%v", err)
			return
		}
		if state.primaryNMI == "" {
			state.primaryNMI = header.NMI
		}
		appendNMI(state, header.NMI)
		if header.NMI != state.primaryNMI {
			// Multi-NMI files: first NMI wins, the rest are reported once each.
			if !state.ignored[header.NMI] {
				state.ignored[header.NMI] = true
				state.warnf(line, "additional NMI %s found; only %s is processed", header.NMI, state.primaryNMI)
			}
			state.current = &header
			state.suppressing = true
			state.skipped++
			return
		}
		state.current = &header
		state.suppressing = false
		state.used++
	case "300":
		if state.current == nil {
			state.skipped++
			state.warnf(line, "300 record before any 200 record, skipping")
			return
		}
		if state.suppressing {
			state.skipped++
			return
		}
		block, err := decodeBlock(fields, *state.current)
		if err != nil {
			state.skipped++
			state.warnf(line, "%v", err)
			return
		}
		state.blocks = append(state.blocks, block)
		state.used++
	case "400", "500", "900":
		// Event records, block terminators and the file footer carry nothing
		// the aggregation needs.
		state.used++
	default:
		state.skipped++
		state.warnf(line, "unknown record type %q", fields[0])
	}
}

// flatten turns day blocks into timestamped interval records. Interval i
// starts at interval_date + i*interval_length as naive wall-clock time, fixed
// into industry time so it never shifts under DST reinterpretation. That is
// what makes variable block lengths on transition days legal.
func flatten(state *parserState) []domain.IntervalRecord {
	var intervals []domain.IntervalRecord
	for _, block := range state.blocks {
		day := timebase.FixIndustry(block.date)
		for i, r := range block.readings {
			if r.gap {
				continue
			}
			intervals = append(intervals, domain.IntervalRecord{
				Timestamp:      day.Add(time.Duration(i*block.header.IntervalLength) * time.Minute),
				NMI:            block.header.NMI,
				RegisterID:     block.header.RegisterID,
				ConsumptionKWh: r.value,
				QualityMethod:  block.quality,
				IsEstimate:     domain.IsEstimateMethod(block.quality),
			})
		}
	}
	return intervals
}

func appendNMI(state *parserState, nmi string) {
	for _, seen := range state.allNMIs {
		if seen == nmi {
			return
		}
	}
	state.allNMIs = append(state.allNMIs, nmi)
}
