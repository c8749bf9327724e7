package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validation messages surfaced verbatim to the operator.
const (
	msgNotANumber = "Please enter a valid number."
	msgNegative   = "Mark cannot be negative."
)

// ValidateMark checks one raw mark input against the record's maximum. A nil
// error means the returned value is committable.
func ValidateMark(raw string, maxMark float64) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.New(msgNotANumber)
	}
	// ParseFloat accepts "NaN" and "Inf" spellings; neither is a mark.
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.New(msgNotANumber)
	}
	if value < 0 {
		return 0, errors.New(msgNegative)
	}
	if value > maxMark {
		return 0, fmt.Errorf("Cannot exceed maximum mark of %s", formatMax(maxMark))
	}
	return value, nil
}

// FormatMark renders a mark for display with three decimal places.
func FormatMark(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

// formatMax renders the maximum mark the way the grid shows it, without
// trailing zeros.
func formatMax(max float64) string {
	return strconv.FormatFloat(max, 'f', -1, 64)
}
