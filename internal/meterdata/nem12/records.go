package nem12

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"nem12-tou/internal/meterdata/domain"
)

// reading is one slot of a 300 record. Empty fields are sample gaps, kept
// positionally so later slots still land on the right timestamp.
type reading struct {
	value float64
	gap   bool
}

// intervalBlock is a decoded 300 record: one calendar day of readings under
// the header that was current when the record appeared.
type intervalBlock struct {
	header   domain.MeterHeader
	date     time.Time
	readings []reading
	quality  string

	// Optional trailing metadata; silently absent on most records.
	reasonCode    *int
	reasonDesc    string
	updateTime    string
	msatsLoadTime string
}

// decodeHeader decodes a 200 record into a meter header.
func decodeHeader(fields []string) (domain.MeterHeader, error) {
	if len(fields) < 9 {
		return domain.MeterHeader{}, fmt.Errorf("invalid 200 record: %d fields, want at least 9", len(fields))
	}
	length, err := strconv.Atoi(strings.TrimSpace(fields[8]))
	if err != nil {
		return domain.MeterHeader{}, fmt.Errorf("invalid 200 record: interval length %q", fields[8])
	}
	if !domain.ValidIntervalLength(length) {
		return domain.MeterHeader{}, fmt.Errorf("invalid 200 record: interval length %d not one of 5/15/30", length)
	}

	h := domain.MeterHeader{
		NMI:            strings.TrimSpace(fields[1]),
		Configuration:  fields[2],
		RegisterID:     strings.TrimSpace(fields[3]),
		Suffix:         fields[4],
		DataStreamID:   fields[5],
		SerialNumber:   strings.TrimSpace(fields[6]),
		UOM:            strings.TrimSpace(fields[7]),
		IntervalLength: length,
	}
	if len(fields) > 9 {
		h.NextScheduledRead = strings.TrimSpace(fields[9])
	}
	return h, nil
}

// decodeBlock decodes a 300 record under the given header.
//
// Fields after the date are a variable-length run of reading values ended by
// the first field that is exactly one alphabetic character (the quality
// method). The run may be shorter or longer than 1440/interval_length on DST
// transition days; no fixed count is assumed. Up to four positional metadata
// fields may follow the quality method and are omitted without error.
func decodeBlock(fields []string, header domain.MeterHeader) (intervalBlock, error) {
	if len(fields) < 3 {
		return intervalBlock{}, fmt.Errorf("invalid 300 record: %d fields, want at least 3", len(fields))
	}
	date, err := time.Parse("20060102", strings.TrimSpace(fields[1]))
	if err != nil {
		return intervalBlock{}, fmt.Errorf("invalid 300 record: date %q", fields[1])
	}

	block := intervalBlock{header: header, date: date, quality: domain.QualityActual}

	idx := 2
	for idx < len(fields) {
		value := strings.TrimSpace(fields[idx])
		if isQualityField(value) {
			break
		}
		if value == "" {
			// Sample gap: no reading for this slot.
			block.readings = append(block.readings, reading{gap: true})
			idx++
			continue
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			// Not a number and not a quality letter: trailing metadata starts here.
			break
		}
		block.readings = append(block.readings, reading{value: parsed})
		idx++
	}

	if idx < len(fields) {
		block.quality = strings.TrimSpace(fields[idx])
	}
	if idx+1 < len(fields) {
		if code, err := strconv.Atoi(strings.TrimSpace(fields[idx+1])); err == nil {
			block.reasonCode = &code
		}
	}
	if idx+2 < len(fields) {
		block.reasonDesc = fields[idx+2]
	}
	if idx+3 < len(fields) {
		block.updateTime = strings.TrimSpace(fields[idx+3])
	}
	if idx+4 < len(fields) {
		block.msatsLoadTime = strings.TrimSpace(fields[idx+4])
	}
	return block, nil
}

// isQualityField reports whether a field is a single-letter quality method.
func isQualityField(s string) bool {
	if len(s) != 1 {
		return false
	}
	return unicode.IsLetter(rune(s[0]))
}
