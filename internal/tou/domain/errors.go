package domain

import "errors"

var (
	// ErrNoPeriods is returned when a run is configured with no periods.
	ErrNoPeriods = errors.New("tou: no periods defined")
	// ErrEmptyPeriodName is returned when a period has no name.
	ErrEmptyPeriodName = errors.New("tou: empty period name")
	// ErrInvalidPrice is returned when a period carries a negative price.
	ErrInvalidPrice = errors.New("tou: negative price per kwh")
	// ErrInvalidState is returned when the configured state code is unknown.
	ErrInvalidState = errors.New("tou: invalid state code")
)
