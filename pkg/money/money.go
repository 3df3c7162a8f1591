// Package money represents monetary amounts as integer cents.
//
// Every comparison and sum inside the gateway happens on Cents values;
// the two-decimal string form exists only at the HTTP and wallet-API
// boundaries. Parsing is digit-wise — amounts never pass through floats.
package money

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid reports a string that is not a valid two-decimal amount.
var ErrInvalid = errors.New("invalid amount")

// Cents is a monetary amount in hundredths of the base currency unit.
type Cents int64

// Parse converts a decimal string such as "20", "20.1" or "20.01" into
// cents. At most two fraction digits are accepted.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	raw := s
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || !isDigits(intPart) {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	if hasDot && (fracPart == "" || len(fracPart) > 2 || !isDigits(fracPart)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	// 15 integer digits keeps intPart*100+99 far from int64 overflow.
	if len(intPart) > 15 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}

	var units int64
	for _, r := range intPart {
		units = units*10 + int64(r-'0')
	}
	var frac int64
	for _, r := range fracPart {
		frac = frac*10 + int64(r-'0')
	}
	if len(fracPart) == 1 {
		frac *= 10
	}

	total := units*100 + frac
	if neg {
		total = -total
	}
	return Cents(total), nil
}

// String renders the amount with exactly two decimal places.
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
