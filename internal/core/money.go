// Package core provides the receipt domain model and money handling
// utilities shared by the storage, stats and HTTP layers.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseValueCents converts a decimal string to cents with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Negative values parse successfully: the model expects
// non-negative values but does not enforce them.
//
// Examples:
//
//	ParseValueCents("12.34")  -> 1234, nil
//	ParseValueCents("12,345") -> 1235, nil (rounds up)
//	ParseValueCents("abc")    -> 0, ErrInvalidValue
func ParseValueCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidValue
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidValue
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidValue
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidValue
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidValue
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidValue
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidValue
	}

	// Take the first two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// CentsToValue returns the decimal value of cents for JSON serialization.
func CentsToValue(cents int64) float64 {
	return float64(cents) / 100.0
}

// Round2 rounds a float to two decimal places, matching the rounding of
// the aggregation responses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
