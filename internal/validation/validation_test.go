package validation

import (
	"testing"

	"board-tester/internal/field"

	"github.com/stretchr/testify/assert"
)

var f = field.Float

func TestEvaluatePercentBoundsInclusive(t *testing.T) {
	tol := &field.Tolerance{Target: f(5), LowerPct: f(-10), UpperPct: f(10)}
	const eps = 1e-9

	b, ok := Derive(tol, 0)
	assert.True(t, ok)
	assert.InDelta(t, 4.5, b.Lo, 1e-12)
	assert.InDelta(t, 5.5, b.Hi, 1e-12)

	tests := []struct {
		raw  string
		want Verdict
	}{
		{"4.5", InRange},
		{"5.5", InRange},
		{"5", InRange},
		{" 5.0 ", InRange},
		{"4.49", OutOfRange},
		{"5.51", OutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.raw, tol))
		})
	}

	assert.True(t, b.Contains(b.Lo))
	assert.True(t, b.Contains(b.Hi))
	assert.False(t, b.Contains(b.Lo-eps))
	assert.False(t, b.Contains(b.Hi+eps))
}

func TestEvaluateNoValueYet(t *testing.T) {
	specs := []*field.Tolerance{
		nil,
		{},
		{Target: f(1), LowerPct: f(-1), UpperPct: f(1)},
		{LowerAbs: f(-1)},
	}
	for _, tol := range specs {
		for _, raw := range []string{"", "-", ".", "   "} {
			assert.Equal(t, NoRule, Evaluate(raw, tol), "raw %q", raw)
		}
		assert.Equal(t, FormatInvalid, Evaluate("abc", tol))
		assert.Equal(t, FormatInvalid, Evaluate("1.2.3", tol))
	}
}

func TestEvaluateNoBound(t *testing.T) {
	for _, tol := range []*field.Tolerance{nil, {}, {Target: f(3)}} {
		for _, raw := range []string{"0", "-7", "1e6"} {
			assert.Equal(t, NoRule, Evaluate(raw, tol))
		}
	}
}

func TestEvaluateAbsolute(t *testing.T) {
	t.Run("around target", func(t *testing.T) {
		tol := &field.Tolerance{Target: f(10), LowerAbs: f(-0.5), UpperAbs: f(0.5)}
		assert.Equal(t, InRange, Evaluate("9.5", tol))
		assert.Equal(t, InRange, Evaluate("10.5", tol))
		assert.Equal(t, OutOfRange, Evaluate("10.6", tol))
	})

	t.Run("around value", func(t *testing.T) {
		// Without a target the value itself is the base.
		tol := &field.Tolerance{LowerAbs: f(-1), UpperAbs: f(1)}
		assert.Equal(t, InRange, Evaluate("123", tol))

		tol = &field.Tolerance{LowerAbs: f(1), UpperAbs: f(2)}
		assert.Equal(t, OutOfRange, Evaluate("123", tol))
	})

	t.Run("missing side is zero", func(t *testing.T) {
		tol := &field.Tolerance{Target: f(10), UpperAbs: f(1)}
		assert.Equal(t, InRange, Evaluate("10", tol))
		assert.Equal(t, OutOfRange, Evaluate("9.99", tol))
	})
}

func TestEvaluateAdditiveComposition(t *testing.T) {
	// pct gives [9, 11], abs widens it to [8.5, 11.5].
	tol := &field.Tolerance{
		Target:   f(10),
		LowerPct: f(-10),
		UpperPct: f(10),
		LowerAbs: f(-0.5),
		UpperAbs: f(0.5),
	}
	b, ok := Derive(tol, 0)
	assert.True(t, ok)
	assert.InDelta(t, 8.5, b.Lo, 1e-12)
	assert.InDelta(t, 11.5, b.Hi, 1e-12)

	assert.Equal(t, InRange, Evaluate("8.5", tol))
	assert.Equal(t, InRange, Evaluate("11.5", tol))
	assert.Equal(t, OutOfRange, Evaluate("8.4", tol))
}

func TestEvaluateOnePctSide(t *testing.T) {
	tol := &field.Tolerance{Target: f(100), UpperPct: f(5)}
	assert.Equal(t, InRange, Evaluate("100", tol))
	assert.Equal(t, InRange, Evaluate("105", tol))
	assert.Equal(t, OutOfRange, Evaluate("99", tol))
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "in-range", InRange.String())
	assert.Equal(t, "no-rule", NoRule.String())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1_000", 1000, true},
		{"-1_000.2_5", -1000.25, true},
		{" 2.5e3 ", 2500, true},
		{"0x1p4", 0, false},
		{"-0X10", 0, false},
		{"_1", 0, false},
		{"1_", 0, false},
		{"1__0", 0, false},
		{"1_.5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, ok := ParseNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, v, 1e-9)
			}
		})
	}

	tol := &field.Tolerance{Target: f(1000), LowerAbs: f(-1), UpperAbs: f(1)}
	assert.Equal(t, FormatInvalid, Evaluate("0x1p4", tol))
	assert.Equal(t, InRange, Evaluate("1_000", tol))
}
