package field

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Errors reported by field validation.
var (
	ErrBlankID        = errors.New("field id is required")
	ErrNegativeSize   = errors.New("field rectangle has negative size")
	ErrInvalidDefault = errors.New("enum default is not one of the options")
	ErrUnknownKind    = errors.New("unknown input type")
)

// Kind identifies an input variant.
type Kind string

const (
	KindNumber Kind = "number"
	KindText   Kind = "text"
	KindToggle Kind = "toggle"
	KindEnum   Kind = "enum"
)

// Kinds lists the input kinds in the order offered to operators.
var Kinds = []Kind{KindNumber, KindText, KindToggle, KindEnum}

// ParseKind parses an input type name case-insensitively.
// A blank name is a number.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindNumber, nil
	case KindNumber, KindText, KindToggle, KindEnum:
		return k, nil
	default:
		return KindNumber, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Input is the typed input descriptor of a field. The set of implementations
// is closed: NumberInput, TextInput, ToggleInput and EnumInput.
type Input interface {
	Kind() Kind
	clone() Input
	validate() error
}

// NumberInput is a numeric entry with optional units and tolerance.
type NumberInput struct {
	Units       []string
	DefaultUnit string
	Validation  *Tolerance
}

// TextInput is a free text entry.
type TextInput struct{}

// ToggleInput is a boolean entry exported as one of two labels.
type ToggleInput struct {
	TrueLabel  string
	FalseLabel string
}

// EnumInput is a single choice among fixed options.
type EnumInput struct {
	Options []string
	Default string
}

func (NumberInput) Kind() Kind { return KindNumber }
func (TextInput) Kind() Kind   { return KindText }
func (ToggleInput) Kind() Kind { return KindToggle }
func (EnumInput) Kind() Kind   { return KindEnum }

func (in NumberInput) clone() Input {
	in.Units = slices.Clone(in.Units)
	if in.Validation != nil {
		v := in.Validation.Clone()
		in.Validation = &v
	}
	return in
}

func (in TextInput) clone() Input   { return in }
func (in ToggleInput) clone() Input { return in }

func (in EnumInput) clone() Input {
	in.Options = slices.Clone(in.Options)
	return in
}

func (NumberInput) validate() error { return nil }
func (TextInput) validate() error   { return nil }
func (ToggleInput) validate() error { return nil }

func (in EnumInput) validate() error {
	if in.Default != "" && !slices.Contains(in.Options, in.Default) {
		return fmt.Errorf("%w: %q", ErrInvalidDefault, in.Default)
	}
	return nil
}

// InitialUnit is the unit preselected in Entry Mode: the default unit, else
// the first listed unit.
func (in NumberInput) InitialUnit() string {
	if in.DefaultUnit != "" {
		return in.DefaultUnit
	}
	if len(in.Units) > 0 {
		return in.Units[0]
	}
	return ""
}

// HasUnitChooser reports whether Entry Mode offers a unit selection.
func (in NumberInput) HasUnitChooser() bool {
	return len(in.Units) > 0
}

// Labels returns the true and false labels with defaults applied.
func (in ToggleInput) Labels() (string, string) {
	t, f := in.TrueLabel, in.FalseLabel
	if t == "" {
		t = "True"
	}
	if f == "" {
		f = "False"
	}
	return t, f
}

// Format maps a toggle state to its exported label.
func (in ToggleInput) Format(on bool) string {
	t, f := in.Labels()
	if on {
		return t
	}
	return f
}

// Initial returns the preselected option: the default, else the first option.
func (in EnumInput) Initial() string {
	if in.Default != "" {
		return in.Default
	}
	if len(in.Options) > 0 {
		return in.Options[0]
	}
	return ""
}

// DefaultInput returns an empty input of the given kind.
func DefaultInput(k Kind) Input {
	switch k {
	case KindText:
		return TextInput{}
	case KindToggle:
		return ToggleInput{TrueLabel: "True", FalseLabel: "False"}
	case KindEnum:
		return EnumInput{}
	default:
		return NumberInput{}
	}
}
