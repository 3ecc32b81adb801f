// Package editor implements the two-mode layout editor: Entry Mode mounts a
// live input per field, Layout Mode lets the operator draw, move, edit and
// delete field rectangles.
package editor

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/log"

	"board-tester/internal/field"
	"board-tester/internal/layout"
	"board-tester/internal/validation"
	"board-tester/pkg/geometry"
)

// MinFieldSize is the smallest width and height of a drawn field.
const MinFieldSize = 10.0

// Mode is the top-level editor state.
type Mode int

const (
	ModeEntry Mode = iota
	ModeLayout
)

func (m Mode) String() string {
	if m == ModeLayout {
		return "Layout"
	}
	return "Entry"
}

// Phase is the pointer sub-state of Layout Mode.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseDrawing:
		return "drawing"
	case PhaseDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Editor owns the open layout document and the visuals drawn for it.
// All methods must be called from the UI goroutine.
type Editor struct {
	logger *log.Logger

	doc        *layout.Document
	background image.Image

	surface   Surface
	prompter  Prompter
	notifier  Notifier
	suggester Suggester

	mode     Mode
	phase    Phase
	armed    bool
	selected string

	anchor     geometry.Point2D
	draft      geometry.Rect
	dragOffset geometry.Point2D
	dragOrigin geometry.Rect

	handles  map[string]Handle
	values   map[string]*Value
	verdicts map[string]validation.Verdict
	cancels  []func()

	selectionListeners []func(id string)
	modifiedListeners  []func()
}

// New creates an editor in Entry Mode over an empty document.
func New(logger *log.Logger) *Editor {
	if logger == nil {
		logger = log.Default()
	}
	e := &Editor{
		logger:   logger.WithPrefix("editor"),
		doc:      layout.New(""),
		surface:  nopSurface{},
		handles:  make(map[string]Handle),
		values:   make(map[string]*Value),
		verdicts: make(map[string]validation.Verdict),
	}
	return e
}

// SetSurface attaches the rendering surface and redraws.
func (e *Editor) SetSurface(s Surface) {
	if s == nil {
		s = nopSurface{}
	}
	e.surface = s
	e.rebuild()
}

func (e *Editor) SetPrompter(p Prompter)   { e.prompter = p }
func (e *Editor) SetNotifier(n Notifier)   { e.notifier = n }
func (e *Editor) SetSuggester(s Suggester) { e.suggester = s }

// OnSelectionChanged registers fn to run with the selected id ("" for none).
func (e *Editor) OnSelectionChanged(fn func(id string)) {
	e.selectionListeners = append(e.selectionListeners, fn)
}

// OnModified registers fn to run after every document mutation.
func (e *Editor) OnModified(fn func()) {
	e.modifiedListeners = append(e.modifiedListeners, fn)
}

func (e *Editor) Document() *layout.Document { return e.doc }
func (e *Editor) Background() image.Image    { return e.background }
func (e *Editor) Mode() Mode                 { return e.mode }
func (e *Editor) Phase() Phase               { return e.phase }
func (e *Editor) Selected() string           { return e.selected }
func (e *Editor) AddArmed() bool             { return e.armed }

// Verdict returns the last validation verdict of a number field.
func (e *Editor) Verdict(id string) validation.Verdict {
	return e.verdicts[id]
}

// Value returns the Entry Mode value of a field, if one has been mounted.
func (e *Editor) Value(id string) (*Value, bool) {
	v, ok := e.values[id]
	return v, ok
}

// SetDocument replaces the document and background. Entry values of the
// previous document are discarded.
func (e *Editor) SetDocument(doc *layout.Document, bg image.Image) {
	if doc == nil {
		doc = layout.New("")
	}
	e.doc = doc
	e.background = bg
	e.values = make(map[string]*Value)
	e.resetPointer()
	e.setSelected("")
	e.logger.Debug("document set", "path", doc.Path, "fields", len(doc.Fields))
	e.rebuild()
}

// SetBackground replaces the background image and redraws.
func (e *Editor) SetBackground(bg image.Image) {
	e.background = bg
	e.rebuild()
}

// SetMode switches modes. Every switch tears down all visuals and rebuilds
// them from the document, clearing the selection.
func (e *Editor) SetMode(m Mode) {
	e.mode = m
	e.resetPointer()
	e.setSelected("")
	e.logger.Debug("mode", "mode", m)
	e.rebuild()
}

// ArmAddField makes the next pointer-down start drawing a new field.
// It only has an effect in Layout Mode.
func (e *Editor) ArmAddField() bool {
	if e.mode != ModeLayout || e.phase != PhaseIdle {
		return false
	}
	e.armed = true
	e.setSelected("")
	e.refreshShapes()
	return true
}

// DisarmAddField cancels a pending add.
func (e *Editor) DisarmAddField() {
	e.armed = false
}

// PointerDown handles a primary button press at p in canvas coordinates.
func (e *Editor) PointerDown(p geometry.Point2D) {
	if e.mode != ModeLayout || e.phase != PhaseIdle {
		return
	}
	if e.armed {
		e.phase = PhaseDrawing
		e.anchor = p
		e.draft = geometry.RectFromPoints(p, p)
		e.surface.ShowDraft(e.draft)
		return
	}
	f, ok := e.doc.FieldAt(p)
	if !ok {
		e.setSelected("")
		e.refreshShapes()
		return
	}
	e.setSelected(f.ID)
	e.refreshShapes()
	e.phase = PhaseDragging
	e.dragOffset = p.Sub(f.Rect.TopLeft())
	e.dragOrigin = f.Rect
}

// PointerMove handles pointer motion with the primary button held.
func (e *Editor) PointerMove(p geometry.Point2D) {
	if e.mode != ModeLayout {
		return
	}
	switch e.phase {
	case PhaseDrawing:
		e.draft = geometry.RectFromPoints(e.anchor, p)
		e.surface.ShowDraft(e.draft)
	case PhaseDragging:
		f, ok := e.doc.Field(e.selected)
		if !ok {
			e.phase = PhaseIdle
			return
		}
		f.Rect = f.Rect.MoveTo(p.Sub(e.dragOffset))
		if h, ok := e.handles[f.ID]; ok {
			h.Update(f, true)
		}
	}
}

// PointerUp handles the primary button release. Calling it again without an
// intervening PointerDown is a no-op.
func (e *Editor) PointerUp(p geometry.Point2D) {
	if e.mode != ModeLayout {
		return
	}
	switch e.phase {
	case PhaseDrawing:
		e.draft = geometry.RectFromPoints(e.anchor, p)
		e.surface.HideDraft()
		e.phase = PhaseIdle
		e.armed = false
		draft := e.draft
		if draft.SmallerThan(MinFieldSize, MinFieldSize) {
			e.logger.Debug("draft discarded", "w", draft.Width, "h", draft.Height)
			return
		}
		e.promptNewField(draft)
	case PhaseDragging:
		e.phase = PhaseIdle
		if f, ok := e.doc.Field(e.selected); ok && f.Rect != e.dragOrigin {
			e.logger.Debug("field moved", "id", f.ID, "x", f.Rect.X, "y", f.Rect.Y)
			e.emitModified()
		}
	}
}

// DoubleClick selects the field under p and opens its editor.
func (e *Editor) DoubleClick(p geometry.Point2D) {
	if e.mode != ModeLayout {
		return
	}
	f, ok := e.doc.FieldAt(p)
	if !ok {
		return
	}
	e.resetPointer()
	e.setSelected(f.ID)
	e.refreshShapes()
	e.EditSelected()
}

// EditSelected opens the field editor for the selection.
func (e *Editor) EditSelected() {
	if e.mode != ModeLayout || e.prompter == nil {
		return
	}
	f, ok := e.doc.Field(e.selected)
	if !ok {
		return
	}
	oldID := f.ID
	e.prompter.EditField(f.Clone(), func(edited *field.Field, ok bool) {
		if !ok || edited == nil {
			return
		}
		if err := e.ApplyEdit(oldID, edited); err != nil {
			e.report("Edit Field", err)
		}
	})
}

// ApplyEdit replaces the field stored under oldID with edited. The rectangle
// is not editable here and keeps its current value.
func (e *Editor) ApplyEdit(oldID string, edited *field.Field) error {
	cur, ok := e.doc.Field(oldID)
	if !ok {
		return fmt.Errorf("field %q: %w", oldID, layout.ErrNotFound)
	}
	edited = edited.Clone()
	edited.ID = strings.TrimSpace(edited.ID)
	edited.Rect = cur.Rect
	if err := e.doc.Replace(oldID, edited); err != nil {
		return err
	}

	if edited.ID != oldID {
		if h, ok := e.handles[oldID]; ok {
			delete(e.handles, oldID)
			e.handles[edited.ID] = h
		}
		delete(e.values, oldID)
		delete(e.verdicts, oldID)
	}
	if e.selected == oldID {
		e.setSelected(edited.ID)
	}
	if e.mode == ModeEntry {
		e.rebuild()
	} else if h, ok := e.handles[edited.ID]; ok {
		h.Update(edited, edited.ID == e.selected)
	}
	e.logger.Debug("field edited", "old", oldID, "id", edited.ID, "type", edited.Kind())
	e.emitModified()
	return nil
}

// DeleteSelected removes the selected field and its visual.
func (e *Editor) DeleteSelected() bool {
	if e.mode != ModeLayout || e.selected == "" {
		return false
	}
	id := e.selected
	e.doc.Remove(id)
	if h, ok := e.handles[id]; ok {
		h.Remove()
		delete(e.handles, id)
	}
	delete(e.values, id)
	delete(e.verdicts, id)
	e.resetPointer()
	e.setSelected("")
	e.logger.Debug("field deleted", "id", id)
	e.emitModified()
	return true
}

// NotifyCanvasChanged marks the document modified after its canvas has been
// replaced and redraws with the new background.
func (e *Editor) NotifyCanvasChanged(bg image.Image) {
	e.background = bg
	e.rebuild()
	e.emitModified()
}

func (e *Editor) promptNewField(draft geometry.Rect) {
	if e.prompter == nil {
		return
	}
	suggested := e.suggestID(draft)
	e.prompter.PromptNewField(suggested, func(id, label string, ok bool) {
		if !ok {
			return
		}
		if err := e.AddField(id, label, draft); err != nil {
			e.report("Add Field", err)
		}
	})
}

// AddField creates a number field over r, adds it and selects it.
func (e *Editor) AddField(id, label string, r geometry.Rect) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return layout.ErrBlankID
	}
	if r.SmallerThan(MinFieldSize, MinFieldSize) {
		return fmt.Errorf("field must be at least %gx%g", MinFieldSize, MinFieldSize)
	}
	f := field.New(id, strings.TrimSpace(label), r)
	if err := e.doc.Add(f); err != nil {
		return err
	}
	e.setSelected(id)
	if e.mode == ModeLayout {
		e.handles[id] = e.surface.AddShape(f, true)
		e.refreshShapes()
	} else {
		e.rebuild()
	}
	e.logger.Debug("field added", "id", id, "rect", r)
	e.emitModified()
	return nil
}

func (e *Editor) suggestID(r geometry.Rect) string {
	if e.suggester == nil || e.background == nil {
		return ""
	}
	id, err := e.suggester.SuggestID(e.background, r)
	if err != nil {
		e.logger.Debug("no id suggestion", "err", err)
		return ""
	}
	if id != "" && e.doc.Has(id) {
		return ""
	}
	return id
}

// rebuild tears down every visual and recreates them from the document.
func (e *Editor) rebuild() {
	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = nil
	e.handles = make(map[string]Handle, len(e.doc.Fields))
	e.verdicts = make(map[string]validation.Verdict)

	e.surface.HideDraft()
	e.surface.Clear()
	e.surface.SetBackground(e.background)

	for _, f := range e.doc.Fields {
		if e.mode == ModeLayout {
			e.handles[f.ID] = e.surface.AddShape(f, f.ID == e.selected)
			continue
		}
		v := e.valueFor(f)
		h := e.surface.AddInput(f, v)
		e.handles[f.ID] = h
		if in, ok := f.Input.(field.NumberInput); ok {
			id, tol := f.ID, in.Validation
			judge := func(v *Value) {
				verdict := validation.Evaluate(v.Text(), tol)
				e.verdicts[id] = verdict
				h.SetVerdict(verdict)
			}
			judge(v)
			e.cancels = append(e.cancels, v.Subscribe(judge))
		}
	}
}

// valueFor returns the preserved value for f, or a fresh one when the field
// is new or its input kind changed.
func (e *Editor) valueFor(f *field.Field) *Value {
	if v, ok := e.values[f.ID]; ok && v.Kind() == f.Kind() {
		return v
	}
	v := NewValue(f)
	e.values[f.ID] = v
	return v
}

func (e *Editor) refreshShapes() {
	if e.mode != ModeLayout {
		return
	}
	for _, f := range e.doc.Fields {
		if h, ok := e.handles[f.ID]; ok {
			h.Update(f, f.ID == e.selected)
		}
	}
}

func (e *Editor) resetPointer() {
	if e.phase == PhaseDrawing {
		e.surface.HideDraft()
	}
	e.phase = PhaseIdle
	e.armed = false
}

func (e *Editor) setSelected(id string) {
	if e.selected == id {
		return
	}
	e.selected = id
	for _, fn := range e.selectionListeners {
		fn(id)
	}
}

func (e *Editor) emitModified() {
	for _, fn := range e.modifiedListeners {
		fn()
	}
}

func (e *Editor) report(title string, err error) {
	e.logger.Warn(title, "err", err)
	if e.notifier != nil {
		e.notifier.Error(title, err)
	}
}

