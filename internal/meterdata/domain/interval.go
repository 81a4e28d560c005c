package domain

import "time"

// IntervalRecord is a single consumption reading in industry time.
// The timestamp carries a fixed offset and is never reinterpreted under
// local daylight-saving rules.
type IntervalRecord struct {
	Timestamp      time.Time
	NMI            string
	RegisterID     string
	ConsumptionKWh float64
	QualityMethod  string
	IsEstimate     bool
}

// MeterHeader describes the meter a run of interval blocks belongs to.
// Parsed from a NEM12 200 record or reconstructed per wide-format row.
type MeterHeader struct {
	NMI               string
	Configuration     string
	RegisterID        string
	Suffix            string
	DataStreamID      string
	SerialNumber      string
	UOM               string
	IntervalLength    int
	NextScheduledRead string
}

// MeterSummary is the per-file metadata exposed alongside the interval stream.
type MeterSummary struct {
	NMI            string
	AllNMIs        []string
	RegisterID     string
	SerialNumber   string
	UOM            string
	IntervalLength int
	TotalDays      int
}

// Warning records a recovered structural issue. Offending records are skipped,
// never fatal, and each skip stays individually reportable.
type Warning struct {
	Line    int
	Message string
}

// ParseResult is the uniform output of every parser implementation.
type ParseResult struct {
	Intervals      []IntervalRecord
	Summary        MeterSummary
	Warnings       []Warning
	RecordsUsed    int
	RecordsSkipped int
}

// ValidIntervalLength reports whether a meter interval length is supported.
func ValidIntervalLength(minutes int) bool {
	switch minutes {
	case 5, 15, 30:
		return true
	}
	return false
}
