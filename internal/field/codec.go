package field

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stringList decodes either a JSON list of strings or a single string.
// A blank single string decodes to an empty list.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*l = nil
		} else {
			*l = stringList{s}
		}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("units: %w", err)
	}
	*l = items
	return nil
}

type rectWire struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	W *float64 `json:"w,omitempty"`
	H *float64 `json:"h,omitempty"`
}

type rectOut struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type toggleLabels struct {
	True  string `json:"true"`
	False string `json:"false"`
}

type inputWire struct {
	Type        string        `json:"type"`
	Units       stringList    `json:"units"`
	DefaultUnit string        `json:"default_unit"`
	Validation  *Tolerance    `json:"validation"`
	Labels      *toggleLabels `json:"labels"`
	Options     []string      `json:"options"`
	Default     string        `json:"default"`
}

// empty reports whether the input object is missing or has no keys set.
func (w *inputWire) empty() bool {
	return w == nil || (w.Type == "" && len(w.Units) == 0 && w.DefaultUnit == "" &&
		w.Validation == nil && w.Labels == nil && len(w.Options) == 0 && w.Default == "")
}

// fieldWire accepts the canonical shape and every legacy spelling.
type fieldWire struct {
	ID            string     `json:"id"`
	Label         *string    `json:"label"`
	ComponentType string     `json:"component_type"`
	Rect          *rectWire  `json:"rect"`
	Position      *rectWire  `json:"position"`
	X             *float64   `json:"x"`
	Y             *float64   `json:"y"`
	W             *float64   `json:"w"`
	H             *float64   `json:"h"`
	Input         *inputWire `json:"input"`

	// Legacy flat number attributes.
	Units       stringList `json:"units"`
	Unit        string     `json:"unit"`
	DefaultUnit *string    `json:"default_unit"`
}

type numberOut struct {
	Type        Kind       `json:"type"`
	Units       []string   `json:"units"`
	DefaultUnit string     `json:"default_unit"`
	Validation  *Tolerance `json:"validation,omitempty"`
}

type textOut struct {
	Type Kind `json:"type"`
}

type toggleOut struct {
	Type   Kind         `json:"type"`
	Labels toggleLabels `json:"labels"`
}

type enumOut struct {
	Type    Kind     `json:"type"`
	Options []string `json:"options"`
	Default string   `json:"default"`
}

type fieldOut struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	ComponentType string  `json:"component_type"`
	Rect          rectOut `json:"rect"`
	Input         any     `json:"input"`
}

// UnmarshalJSON reads a field from either the canonical nested shape or the
// legacy flat shape, normalizing to the canonical model.
func (f *Field) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	f.ID = strings.TrimSpace(w.ID)
	f.Label = f.ID
	if w.Label != nil {
		f.Label = *w.Label
	}
	f.ComponentType = w.ComponentType
	f.Rect.X = pick(0, w.X, w.Position.x(), w.Rect.x())
	f.Rect.Y = pick(0, w.Y, w.Position.y(), w.Rect.y())
	f.Rect.Width = pick(DefaultWidth, w.W, w.Position.w(), w.Rect.w())
	f.Rect.Height = pick(DefaultHeight, w.H, w.Position.h(), w.Rect.h())

	if w.Input.empty() {
		f.Input = legacyNumber(w)
		return nil
	}
	f.Input = decodeInput(w.Input)
	return nil
}

// MarshalJSON writes the canonical nested shape only.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldOut{
		ID:            f.ID,
		Label:         f.Label,
		ComponentType: f.ComponentType,
		Rect:          rectOut{X: f.Rect.X, Y: f.Rect.Y, W: f.Rect.Width, H: f.Rect.Height},
		Input:         encodeInput(f.Input),
	})
}

func legacyNumber(w fieldWire) NumberInput {
	unit := w.Unit
	if w.DefaultUnit != nil {
		unit = *w.DefaultUnit
	}
	units := []string(w.Units)
	if len(units) == 0 && unit != "" {
		units = []string{unit}
	}
	return NumberInput{Units: units, DefaultUnit: unit}
}

// decodeInput never fails: unknown types fall back to a number entry and
// enum defaults outside the options are dropped.
func decodeInput(w *inputWire) Input {
	kind, _ := ParseKind(w.Type)
	switch kind {
	case KindText:
		return TextInput{}
	case KindToggle:
		in := ToggleInput{TrueLabel: "True", FalseLabel: "False"}
		if w.Labels != nil {
			if w.Labels.True != "" {
				in.TrueLabel = w.Labels.True
			}
			if w.Labels.False != "" {
				in.FalseLabel = w.Labels.False
			}
		}
		return in
	case KindEnum:
		in := EnumInput{Options: w.Options, Default: w.Default}
		if in.validate() != nil {
			in.Default = ""
		}
		return in
	default:
		in := NumberInput{Units: []string(w.Units), DefaultUnit: w.DefaultUnit}
		if w.Validation != nil && !w.Validation.IsEmpty() {
			in.Validation = w.Validation
		}
		return in
	}
}

func encodeInput(in Input) any {
	switch in := in.(type) {
	case TextInput:
		return textOut{Type: KindText}
	case ToggleInput:
		t, f := in.Labels()
		return toggleOut{Type: KindToggle, Labels: toggleLabels{True: t, False: f}}
	case EnumInput:
		opts := in.Options
		if opts == nil {
			opts = []string{}
		}
		return enumOut{Type: KindEnum, Options: opts, Default: in.Default}
	case NumberInput:
		units := in.Units
		if units == nil {
			units = []string{}
		}
		return numberOut{Type: KindNumber, Units: units, DefaultUnit: in.DefaultUnit, Validation: in.Validation}
	default:
		return numberOut{Type: KindNumber, Units: []string{}}
	}
}

// pick returns the last non-nil candidate, else the fallback.
func pick(fallback float64, candidates ...*float64) float64 {
	v := fallback
	for _, c := range candidates {
		if c != nil {
			v = *c
		}
	}
	return v
}

func (r *rectWire) x() *float64 {
	if r == nil {
		return nil
	}
	return r.X
}

func (r *rectWire) y() *float64 {
	if r == nil {
		return nil
	}
	return r.Y
}

func (r *rectWire) w() *float64 {
	if r == nil {
		return nil
	}
	return r.W
}

func (r *rectWire) h() *float64 {
	if r == nil {
		return nil
	}
	return r.H
}
