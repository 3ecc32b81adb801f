package field

import (
	"encoding/json"
	"testing"

	"board-tester/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, src string) *Field {
	t.Helper()
	var f Field
	require.NoError(t, json.Unmarshal([]byte(src), &f))
	return &f
}

func TestNewDefaults(t *testing.T) {
	f := New("R1", "", geometry.NewRect(1, 2, 30, 40))

	assert.Equal(t, "R1", f.Label)
	assert.Equal(t, KindNumber, f.Kind())
	assert.NoError(t, f.Validate())
}

func TestUnmarshalCanonical(t *testing.T) {
	f := decode(t, `{
		"id": "VCC",
		"label": "Supply",
		"component_type": "rail",
		"rect": {"x": 10, "y": 20, "w": 80, "h": 30},
		"input": {
			"type": "number",
			"units": ["V", "mV"],
			"default_unit": "V",
			"validation": {"target": 5, "lower_pct": -5, "upper_pct": 5}
		}
	}`)

	assert.Equal(t, "VCC", f.ID)
	assert.Equal(t, "Supply", f.Label)
	assert.Equal(t, "rail", f.ComponentType)
	assert.Equal(t, geometry.NewRect(10, 20, 80, 30), f.Rect)

	in, ok := f.Input.(NumberInput)
	require.True(t, ok)
	assert.Equal(t, []string{"V", "mV"}, in.Units)
	assert.Equal(t, "V", in.DefaultUnit)
	require.NotNil(t, in.Validation)
	assert.Equal(t, 5.0, *in.Validation.Target)
	assert.Nil(t, in.Validation.LowerAbs)
}

func TestUnmarshalLegacyShape(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		units       []string
		defaultUnit string
		rect        geometry.Rect
	}{
		{
			name:        "units string and unit",
			src:         `{"id": "A", "units": "V", "unit": "V", "x": 5, "y": 6, "w": 50, "h": 20}`,
			units:       []string{"V"},
			defaultUnit: "V",
			rect:        geometry.NewRect(5, 6, 50, 20),
		},
		{
			name:        "default_unit preferred over unit",
			src:         `{"id": "A", "units": ["A", "mA"], "unit": "A", "default_unit": "mA"}`,
			units:       []string{"A", "mA"},
			defaultUnit: "mA",
			rect:        geometry.NewRect(0, 0, DefaultWidth, DefaultHeight),
		},
		{
			name:        "unit alone becomes the unit list",
			src:         `{"id": "A", "unit": "Ohm", "position": {"x": 1, "y": 2, "w": 3, "h": 4}}`,
			units:       []string{"Ohm"},
			defaultUnit: "Ohm",
			rect:        geometry.NewRect(1, 2, 3, 4),
		},
		{
			name:        "empty input object",
			src:         `{"id": "A", "units": ["V", "mV"], "default_unit": "V", "input": {}}`,
			units:       []string{"V", "mV"},
			defaultUnit: "V",
			rect:        geometry.NewRect(0, 0, DefaultWidth, DefaultHeight),
		},
		{
			name: "no units at all",
			src:  `{"id": "A"}`,
			rect: geometry.NewRect(0, 0, DefaultWidth, DefaultHeight),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := decode(t, tt.src)

			in, ok := f.Input.(NumberInput)
			require.True(t, ok)
			assert.Equal(t, tt.units, in.Units)
			assert.Equal(t, tt.defaultUnit, in.DefaultUnit)
			assert.Equal(t, tt.rect, f.Rect)
			assert.Equal(t, "A", f.Label)
		})
	}
}

func TestRectFallbackOrder(t *testing.T) {
	f := decode(t, `{"id": "A", "rect": {"x": 9}, "position": {"y": 8}, "w": 7}`)
	assert.Equal(t, geometry.NewRect(9, 8, 7, DefaultHeight), f.Rect)
}

func TestUnmarshalInputKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Input
	}{
		{"text uppercase", `{"id": "a", "input": {"type": "TEXT"}}`, TextInput{}},
		{"unknown type", `{"id": "a", "input": {"type": "slider"}}`, NumberInput{}},
		{"missing type", `{"id": "a", "input": {}}`, NumberInput{}},
		{"toggle default labels", `{"id": "a", "input": {"type": "toggle"}}`, ToggleInput{TrueLabel: "True", FalseLabel: "False"}},
		{"toggle labels", `{"id": "a", "input": {"type": "Toggle", "labels": {"true": "pass", "false": "fail"}}}`, ToggleInput{TrueLabel: "pass", FalseLabel: "fail"}},
		{"enum", `{"id": "a", "input": {"type": "enum", "options": ["x", "y"], "default": "y"}}`, EnumInput{Options: []string{"x", "y"}, Default: "y"}},
		{"enum bad default dropped", `{"id": "a", "input": {"type": "enum", "options": ["x"], "default": "z"}}`, EnumInput{Options: []string{"x"}}},
		{"empty validation dropped", `{"id": "a", "input": {"type": "number", "validation": {}}}`, NumberInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decode(t, tt.src).Input)
		})
	}
}

func TestMarshalCanonicalOnly(t *testing.T) {
	f := decode(t, `{"id": "A", "label": "Amp", "units": "V", "x": 5, "y": 6, "w": 50, "h": 20}`)

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal(data, &tree))
	assert.NotContains(t, tree, "units")
	assert.NotContains(t, tree, "x")
	assert.NotContains(t, tree, "position")
	assert.Equal(t, map[string]any{"x": 5.0, "y": 6.0, "w": 50.0, "h": 20.0}, tree["rect"])
	assert.Equal(t, map[string]any{"type": "number", "units": []any{"V"}, "default_unit": ""}, tree["input"])

	again := decode(t, string(data))
	assert.Equal(t, f, again)
}

func TestMarshalEmptyVariants(t *testing.T) {
	for _, in := range []Input{NumberInput{}, TextInput{}, ToggleInput{}, EnumInput{}} {
		f := &Field{ID: "x", Label: "x", Input: in}
		data, err := json.Marshal(f)
		require.NoError(t, err)

		back := decode(t, string(data))
		assert.Equal(t, in.Kind(), back.Kind())
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Field{
		ID: "A",
		Input: NumberInput{
			Units:      []string{"V"},
			Validation: &Tolerance{Target: Float(1)},
		},
	}
	c := orig.Clone()
	cin := c.Input.(NumberInput)
	cin.Units[0] = "mV"
	*cin.Validation.Target = 2

	oin := orig.Input.(NumberInput)
	assert.Equal(t, "V", oin.Units[0])
	assert.Equal(t, 1.0, *oin.Validation.Target)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Field{}).Validate(), ErrBlankID)
	assert.ErrorIs(t, (&Field{ID: "a", Rect: geometry.NewRect(0, 0, -1, 5)}).Validate(), ErrNegativeSize)
	assert.ErrorIs(t, (&Field{ID: "a", Input: EnumInput{Options: []string{"x"}, Default: "y"}}).Validate(), ErrInvalidDefault)
	assert.NoError(t, (&Field{ID: "a", Input: EnumInput{Options: []string{"x"}, Default: "x"}}).Validate())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Enum ")
	require.NoError(t, err)
	assert.Equal(t, KindEnum, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, k)

	k, err = ParseKind("dial")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, KindNumber, k)
}

func TestToleranceText(t *testing.T) {
	tol, err := ParseTolerance("5,-10,10,,")
	require.NoError(t, err)
	assert.Equal(t, 5.0, *tol.Target)
	assert.Equal(t, -10.0, *tol.LowerPct)
	assert.Nil(t, tol.LowerAbs)
	assert.Equal(t, "5,-10,10,,", tol.String())

	tol, err = ParseTolerance("1, , , -0.5, 0.5")
	require.NoError(t, err)
	assert.Equal(t, "1,,,-0.5,0.5", tol.String())

	_, err = ParseTolerance("1,2,3,4,5,6")
	assert.Error(t, err)

	_, err = ParseTolerance("x")
	assert.Error(t, err)

	tol, err = ParseTolerance("  ")
	require.NoError(t, err)
	assert.True(t, tol.IsEmpty())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"V", "mV"}, SplitList(" V, ,mV,"))
	assert.Nil(t, SplitList(""))
}

func TestInputHelpers(t *testing.T) {
	assert.Equal(t, "mV", NumberInput{Units: []string{"V", "mV"}, DefaultUnit: "mV"}.InitialUnit())
	assert.Equal(t, "V", NumberInput{Units: []string{"V", "mV"}}.InitialUnit())
	assert.False(t, NumberInput{DefaultUnit: "V"}.HasUnitChooser())

	assert.Equal(t, "b", EnumInput{Options: []string{"a", "b"}, Default: "b"}.Initial())
	assert.Equal(t, "a", EnumInput{Options: []string{"a", "b"}}.Initial())

	tg := ToggleInput{TrueLabel: "pass"}
	assert.Equal(t, "pass", tg.Format(true))
	assert.Equal(t, "False", tg.Format(false))
}
