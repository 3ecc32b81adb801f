// Package validation evaluates number field entries against their tolerance.
package validation

import (
	"strconv"
	"strings"

	"board-tester/internal/field"
)

// Verdict is the outcome of evaluating an entry.
type Verdict int

const (
	// NoRule means nothing to judge: no value yet or no derivable bound.
	NoRule Verdict = iota
	// FormatInvalid means the text is not a number.
	FormatInvalid
	// OutOfRange means the value lies outside the derived bounds.
	OutOfRange
	// InRange means lo <= value <= hi.
	InRange
)

func (v Verdict) String() string {
	switch v {
	case FormatInvalid:
		return "format-invalid"
	case OutOfRange:
		return "out-of-range"
	case InRange:
		return "in-range"
	default:
		return "no-rule"
	}
}

// Bounds is an inclusive range.
type Bounds struct {
	Lo, Hi float64
}

// Contains reports whether v lies within the bounds, ends included.
func (b Bounds) Contains(v float64) bool {
	return b.Lo <= v && v <= b.Hi
}

// Evaluate judges raw against tol. Blank, "-" and "." are treated as no value
// yet. Percentage and absolute adjustments compose additively.
func Evaluate(raw string, tol *field.Tolerance) Verdict {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" || raw == "." {
		return NoRule
	}
	value, ok := ParseNumber(raw)
	if !ok {
		return FormatInvalid
	}
	b, ok := Derive(tol, value)
	if !ok {
		return NoRule
	}
	if b.Contains(value) {
		return InRange
	}
	return OutOfRange
}

// ParseNumber reads a decimal number the way operators type it. Underscores
// may separate digits; hex notation is not a number here.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	if strings.Contains(s, "_") {
		var ok bool
		if s, ok = stripUnderscores(s); !ok {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// stripUnderscores drops underscores that sit between two digits and fails
// on any other underscore.
func stripUnderscores(s string) (string, bool) {
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

// Derive computes the bounds for value under tol. It reports false when tol
// yields no bound at all; a target without percentage or absolute
// adjustments is not a bound.
func Derive(tol *field.Tolerance, value float64) (Bounds, bool) {
	if tol == nil {
		return Bounds{}, false
	}

	var lo, hi *float64
	if tol.Target != nil && (tol.LowerPct != nil || tol.UpperPct != nil) {
		t := *tol.Target
		l := t * (1 + deref(tol.LowerPct)/100)
		h := t * (1 + deref(tol.UpperPct)/100)
		lo, hi = &l, &h
	}

	if tol.LowerAbs != nil || tol.UpperAbs != nil {
		base := value
		if tol.Target != nil {
			base = *tol.Target
		}
		l, h := base, base
		if lo != nil {
			l, h = *lo, *hi
		}
		l += deref(tol.LowerAbs)
		h += deref(tol.UpperAbs)
		lo, hi = &l, &h
	}

	if lo == nil {
		return Bounds{}, false
	}
	return Bounds{Lo: *lo, Hi: *hi}, true
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
