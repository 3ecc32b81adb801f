package field

import (
	"fmt"
	"strconv"
	"strings"
)

// Tolerance describes the accepted range of a number field. Every key is
// optional; nil means absent.
type Tolerance struct {
	Target   *float64 `json:"target,omitempty"`
	LowerPct *float64 `json:"lower_pct,omitempty"`
	UpperPct *float64 `json:"upper_pct,omitempty"`
	LowerAbs *float64 `json:"lower_abs,omitempty"`
	UpperAbs *float64 `json:"upper_abs,omitempty"`
}

// Float returns a pointer to v, for building tolerances.
func Float(v float64) *float64 {
	return &v
}

// Clone returns a copy that shares no pointers with t.
func (t Tolerance) Clone() Tolerance {
	cp := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		return Float(*p)
	}
	return Tolerance{
		Target:   cp(t.Target),
		LowerPct: cp(t.LowerPct),
		UpperPct: cp(t.UpperPct),
		LowerAbs: cp(t.LowerAbs),
		UpperAbs: cp(t.UpperAbs),
	}
}

// IsEmpty reports whether no key is set.
func (t Tolerance) IsEmpty() bool {
	return t.Target == nil && t.LowerPct == nil && t.UpperPct == nil &&
		t.LowerAbs == nil && t.UpperAbs == nil
}

func (t *Tolerance) slots() []**float64 {
	return []**float64{&t.Target, &t.LowerPct, &t.UpperPct, &t.LowerAbs, &t.UpperAbs}
}

// String formats the tolerance as "target,lower_pct,upper_pct,lower_abs,upper_abs"
// with absent keys left blank.
func (t Tolerance) String() string {
	parts := make([]string, 0, 5)
	for _, p := range t.slots() {
		if *p == nil {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, strconv.FormatFloat(**p, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ParseTolerance parses the comma form produced by Tolerance.String.
// Blank positions are absent keys; extra positions are an error.
func ParseTolerance(s string) (*Tolerance, error) {
	var t Tolerance
	if strings.TrimSpace(s) == "" {
		return &t, nil
	}
	parts := strings.Split(s, ",")
	slots := t.slots()
	if len(parts) > len(slots) {
		return nil, fmt.Errorf("tolerance has %d values, want at most %d", len(parts), len(slots))
	}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("tolerance value %q: %w", part, err)
		}
		*slots[i] = Float(v)
	}
	return &t, nil
}

// SplitList splits a comma list, trimming items and dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
