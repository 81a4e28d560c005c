package domain

import "strings"

// QualityActual is the default quality method for readings without one.
const QualityActual = "A"

// IsEstimateMethod reports whether a quality method code belongs to the
// estimate family (E=estimated, F=final estimate, S=substituted).
func IsEstimateMethod(code string) bool {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "E", "F", "S":
		return true
	}
	return false
}
