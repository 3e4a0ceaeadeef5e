package fraction

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rxdose/dose-engine/generic"
)

// Accepted forms:
//
//	W N/D   mixed number, e.g. "1 1/2" or "-1 1/2"
//	N/D     simple fraction, e.g. "3/2" or "-1/2"
//	W       whole number
//
// Whitespace is allowed around every token. The denominator is unsigned.
var fractionPattern = regexp.MustCompile(`^\s*(?:(-?\d+)\s+)?(-?\d+)\s*/\s*(\d+)\s*$`)

// ParseError describes text that is not a fraction.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q: %s", generic.ErrFormat, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return generic.ErrFormat
}

// Parse reads a fraction in any form Text produces.
func Parse(s string) (Fraction, error) {
	m := fractionPattern.FindStringSubmatch(s)
	if m == nil {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return Zero, &ParseError{Input: s, Reason: "empty input"}
		}
		whole, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return Zero, &ParseError{Input: s, Reason: "not a fraction"}
		}
		return FromInt(whole), nil
	}

	var whole int64
	if m[1] != "" {
		w, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Zero, &ParseError{Input: s, Reason: "whole part out of range"}
		}
		whole = w
	}

	num, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Zero, &ParseError{Input: s, Reason: "numerator out of range"}
	}
	den, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Zero, &ParseError{Input: s, Reason: "denominator out of range"}
	}
	if den == 0 {
		return Zero, &ParseError{Input: s, Reason: "zero denominator"}
	}

	f, err := NewMixed(whole, num, den)
	if err != nil {
		var fe *generic.FieldError
		if errors.As(err, &fe) {
			return Zero, &ParseError{Input: s, Reason: fe.Reason}
		}
		return Zero, &ParseError{Input: s, Reason: err.Error()}
	}
	return f, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Fraction {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}
