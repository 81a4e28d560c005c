package domain

import "errors"

var (
	// ErrEmptyInput is returned when a file has no content at all.
	ErrEmptyInput = errors.New("meterdata: empty input")
	// ErrNoData is returned when a file parses but yields no usable intervals.
	ErrNoData = errors.New("meterdata: no interval data found")
	// ErrUnknownFormat is returned when a file matches no supported format.
	ErrUnknownFormat = errors.New("meterdata: unrecognized file format")
	// ErrMissingColumns is returned when a wide-format header lacks required columns.
	ErrMissingColumns = errors.New("meterdata: missing required columns")
	// ErrMissingMeterID is returned when a wide-format file has no meter identifier column.
	ErrMissingMeterID = errors.New("meterdata: missing meter identifier column")
)
