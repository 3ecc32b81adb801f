package editor

import (
	"sync"

	"board-tester/internal/field"
)

// Value is the live entry state of one field in Entry Mode. Widgets write to
// it and the editor observes it through Subscribe.
type Value struct {
	mu   sync.Mutex
	kind field.Kind
	text string
	unit string
	on   bool

	nextID int
	subs   map[int]func(*Value)
}

// NewValue creates a value holding the initial state for f.
func NewValue(f *field.Field) *Value {
	v := &Value{kind: f.Kind(), subs: make(map[int]func(*Value))}
	switch in := f.Input.(type) {
	case field.EnumInput:
		v.text = in.Initial()
	case field.NumberInput:
		v.unit = in.InitialUnit()
	}
	return v
}

// Kind returns the input kind the value was created for.
func (v *Value) Kind() field.Kind {
	return v.kind
}

func (v *Value) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}

func (v *Value) Unit() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.unit
}

func (v *Value) Bool() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.on
}

// SetText sets the entry text and notifies subscribers on change.
func (v *Value) SetText(s string) {
	v.set(func() bool {
		if v.text == s {
			return false
		}
		v.text = s
		return true
	})
}

// SetUnit sets the chosen unit and notifies subscribers on change.
func (v *Value) SetUnit(s string) {
	v.set(func() bool {
		if v.unit == s {
			return false
		}
		v.unit = s
		return true
	})
}

// SetBool sets the toggle state and notifies subscribers on change.
func (v *Value) SetBool(on bool) {
	v.set(func() bool {
		if v.on == on {
			return false
		}
		v.on = on
		return true
	})
}

// Subscribe registers fn to run after every change. The returned function
// cancels the subscription.
func (v *Value) Subscribe(fn func(*Value)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

func (v *Value) set(apply func() bool) {
	v.mu.Lock()
	changed := apply()
	var fns []func(*Value)
	if changed {
		for _, fn := range v.subs {
			fns = append(fns, fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
