package format

import (
	"errors"
	"strings"

	"nem12-tou/internal/meterdata/domain"
)

var (
	// ErrMissingHeader is returned when a NEM12 file lacks the 100 record.
	ErrMissingHeader = errors.New("format: missing 100 header record")
	// ErrMissingFooter is returned when a NEM12 file lacks the 900 record.
	ErrMissingFooter = errors.New("format: missing 900 footer record")
	// ErrMissingMeterRecords is returned when no 200 record is present.
	ErrMissingMeterRecords = errors.New("format: no 200 meter header records")
	// ErrMissingIntervalRecords is returned when no 300 record is present.
	ErrMissingIntervalRecords = errors.New("format: no 300 interval records")
)

// ValidateNEM12Structure is a cheap envelope check: 100 header first, 900
// footer last, and at least one 200/300 pair somewhere in between. Advisory
// only; the parser remains authoritative and more tolerant.
func ValidateNEM12Structure(content string) error {
	var lines []string
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return domain.ErrEmptyInput
	}
	if !strings.HasPrefix(lines[0], "100") {
		return ErrMissingHeader
	}
	if !strings.HasPrefix(lines[len(lines)-1], "900") {
		return ErrMissingFooter
	}
	has200, has300 := false, false
	for _, line := range lines {
		if strings.HasPrefix(line, "200") {
			has200 = true
		}
		if strings.HasPrefix(line, "300") {
			has300 = true
		}
	}
	if !has200 {
		return ErrMissingMeterRecords
	}
	if !has300 {
		return ErrMissingIntervalRecords
	}
	return nil
}
