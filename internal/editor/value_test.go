package editor

import (
	"testing"

	"board-tester/internal/field"

	"github.com/stretchr/testify/assert"
)

func TestValueNotifiesOnChangeOnly(t *testing.T) {
	v := NewValue(&field.Field{ID: "a", Input: field.TextInput{}})
	calls := 0
	cancel := v.Subscribe(func(*Value) { calls++ })

	v.SetText("x")
	v.SetText("x")
	v.SetBool(true)
	assert.Equal(t, 2, calls)

	cancel()
	v.SetText("y")
	assert.Equal(t, 2, calls)
	assert.Equal(t, "y", v.Text())
}

func TestNewValueInitialState(t *testing.T) {
	v := NewValue(&field.Field{Input: field.EnumInput{Options: []string{"a", "b"}, Default: "b"}})
	assert.Equal(t, "b", v.Text())
	assert.Equal(t, field.KindEnum, v.Kind())

	v = NewValue(&field.Field{Input: field.NumberInput{Units: []string{"Ohm", "kOhm"}}})
	assert.Equal(t, "Ohm", v.Unit())
	assert.Equal(t, "", v.Text())

	v = NewValue(&field.Field{})
	assert.Equal(t, field.KindNumber, v.Kind())
	assert.False(t, v.Bool())
}
