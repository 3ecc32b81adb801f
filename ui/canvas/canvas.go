// Package canvas provides the field canvas: a scrollable background with
// Layout Mode shapes or Entry Mode input widgets placed over it.
package canvas

import (
	"image"
	"image/color"

	"board-tester/internal/editor"
	"board-tester/internal/field"
	"board-tester/internal/layout"
	"board-tester/internal/validation"
	"board-tester/pkg/colorutil"
	"board-tester/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// FieldCanvas implements editor.Surface with fyne canvas objects. Pointer
// events in Layout Mode are forwarded to the editor.
type FieldCanvas struct {
	ed *editor.Editor

	background *fynecanvas.Image
	spacer     *fynecanvas.Rectangle
	items      *fyne.Container
	draft      *fynecanvas.Rectangle
	events     *eventLayer
	content    *fyne.Container
	scroll     *container.Scroll

	size fyne.Size
}

var _ editor.Surface = (*FieldCanvas)(nil)

// NewFieldCanvas creates a canvas driving ed. The caller must register it
// with ed.SetSurface.
func NewFieldCanvas(ed *editor.Editor) *FieldCanvas {
	fc := &FieldCanvas{ed: ed}

	fc.background = fynecanvas.NewImageFromImage(nil)
	fc.background.FillMode = fynecanvas.ImageFillStretch
	fc.background.ScaleMode = fynecanvas.ImageScaleSmooth

	fc.spacer = fynecanvas.NewRectangle(color.Transparent)
	fc.items = container.NewWithoutLayout()

	fc.draft = fynecanvas.NewRectangle(color.Transparent)
	fc.draft.StrokeColor = colorutil.Draft
	fc.draft.StrokeWidth = colorutil.ShapeStroke
	fc.draft.Hide()

	fc.events = newEventLayer(fc)
	fc.events.Hide()

	fc.content = container.NewWithoutLayout(fc.spacer, fc.background, fc.items, fc.draft, fc.events)
	fc.scroll = container.NewScroll(fc.content)
	fc.scroll.Direction = container.ScrollBoth

	fc.setSize(fyne.NewSize(layout.DefaultBlankWidth, layout.DefaultBlankHeight))
	return fc
}

// Container returns the canvas for embedding in layouts.
func (fc *FieldCanvas) Container() fyne.CanvasObject {
	return fc.scroll
}

// SetInteractive routes pointer events to the editor (Layout Mode) or lets
// them reach the input widgets (Entry Mode).
func (fc *FieldCanvas) SetInteractive(on bool) {
	if on {
		fc.events.Show()
	} else {
		fc.events.Hide()
	}
}

func (fc *FieldCanvas) setSize(s fyne.Size) {
	fc.size = s
	fc.spacer.SetMinSize(s)
	fc.spacer.Resize(s)
	fc.background.Resize(s)
	fc.items.Resize(s)
	fc.events.Resize(s)
	fc.content.Resize(s)
	fc.content.Refresh()
	fc.scroll.Refresh()
}

// Clear implements editor.Surface.
func (fc *FieldCanvas) Clear() {
	fc.items.RemoveAll()
	fc.background.Image = nil
	fc.background.Refresh()
}

// SetBackground implements editor.Surface. Without an image the canvas
// keeps the default blank size.
func (fc *FieldCanvas) SetBackground(img image.Image) {
	fc.background.Image = img
	if img != nil {
		b := img.Bounds()
		fc.setSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	} else {
		fc.setSize(fyne.NewSize(layout.DefaultBlankWidth, layout.DefaultBlankHeight))
	}
	fc.background.Refresh()
}

// ShowDraft implements editor.Surface.
func (fc *FieldCanvas) ShowDraft(r geometry.Rect) {
	place(fc.draft, r)
	fc.draft.Show()
	fc.draft.Refresh()
}

// HideDraft implements editor.Surface.
func (fc *FieldCanvas) HideDraft() {
	fc.draft.Hide()
}

// AddShape implements editor.Surface.
func (fc *FieldCanvas) AddShape(f *field.Field, selected bool) editor.Handle {
	h := &shapeHandle{
		fc:    fc,
		rect:  fynecanvas.NewRectangle(colorutil.ShapeFill),
		label: fynecanvas.NewText("", colorutil.Shape),
	}
	h.label.TextSize = 11
	h.Update(f, selected)
	fc.items.Add(h.rect)
	fc.items.Add(h.label)
	return h
}

// AddInput implements editor.Surface.
func (fc *FieldCanvas) AddInput(f *field.Field, v *editor.Value) editor.Handle {
	h := &inputHandle{fc: fc, frame: fynecanvas.NewRectangle(colorutil.Neutral)}
	h.obj = newInputWidget(f, v)
	h.Update(f, false)
	fc.items.Add(h.frame)
	fc.items.Add(h.obj)
	return h
}

func place(o fyne.CanvasObject, r geometry.Rect) {
	o.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	o.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
}

type shapeHandle struct {
	fc    *FieldCanvas
	rect  *fynecanvas.Rectangle
	label *fynecanvas.Text
}

func (h *shapeHandle) Update(f *field.Field, selected bool) {
	place(h.rect, f.Rect)
	if selected {
		h.rect.StrokeColor = colorutil.Selected
		h.rect.StrokeWidth = colorutil.SelectedStroke
		h.label.Color = colorutil.Selected
	} else {
		h.rect.StrokeColor = colorutil.Shape
		h.rect.StrokeWidth = colorutil.ShapeStroke
		h.label.Color = colorutil.Shape
	}
	h.label.Text = f.ID
	h.label.Move(fyne.NewPos(float32(f.Rect.X)+2, float32(f.Rect.Y)-h.label.MinSize().Height))
	h.rect.Refresh()
	h.label.Refresh()
}

func (h *shapeHandle) SetVerdict(validation.Verdict) {}

func (h *shapeHandle) Remove() {
	h.fc.items.Remove(h.rect)
	h.fc.items.Remove(h.label)
}

type inputHandle struct {
	fc    *FieldCanvas
	frame *fynecanvas.Rectangle
	obj   fyne.CanvasObject
}

// framePad is the width of the verdict-colored frame around a widget.
const framePad = 3

func (h *inputHandle) Update(f *field.Field, _ bool) {
	place(h.obj, f.Rect)
	r := f.Rect
	place(h.frame, geometry.NewRect(r.X-framePad, r.Y-framePad, r.Width+2*framePad, r.Height+2*framePad))
}

func (h *inputHandle) SetVerdict(v validation.Verdict) {
	h.frame.FillColor = VerdictColor(v)
	h.frame.Refresh()
}

func (h *inputHandle) Remove() {
	h.fc.items.Remove(h.frame)
	h.fc.items.Remove(h.obj)
}

// VerdictColor maps a validation verdict to the entry background color.
func VerdictColor(v validation.Verdict) color.Color {
	switch v {
	case validation.FormatInvalid:
		return colorutil.Alert
	case validation.OutOfRange:
		return colorutil.Warn
	case validation.InRange:
		return colorutil.Pass
	default:
		return colorutil.Neutral
	}
}

// eventLayer sits above the shapes in Layout Mode and turns mouse input into
// editor pointer calls. Positions are canvas coordinates.
type eventLayer struct {
	widget.BaseWidget
	fc   *FieldCanvas
	last fyne.Position
}

var (
	_ desktop.Mouseable   = (*eventLayer)(nil)
	_ fyne.Draggable      = (*eventLayer)(nil)
	_ fyne.DoubleTappable = (*eventLayer)(nil)
	_ desktop.Cursorable  = (*eventLayer)(nil)
)

func newEventLayer(fc *FieldCanvas) *eventLayer {
	l := &eventLayer{fc: fc}
	l.ExtendBaseWidget(l)
	return l
}

func point(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

func (l *eventLayer) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	l.last = ev.Position
	l.fc.ed.PointerDown(point(ev.Position))
}

func (l *eventLayer) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	l.fc.ed.PointerUp(point(ev.Position))
}

func (l *eventLayer) Dragged(ev *fyne.DragEvent) {
	l.last = ev.Position
	l.fc.ed.PointerMove(point(ev.Position))
}

// DragEnd finishes a drag released outside the canvas; a regular MouseUp
// after it is ignored by the editor.
func (l *eventLayer) DragEnd() {
	l.fc.ed.PointerUp(point(l.last))
}

func (l *eventLayer) DoubleTapped(ev *fyne.PointEvent) {
	l.fc.ed.DoubleClick(point(ev.Position))
}

func (l *eventLayer) Cursor() desktop.Cursor {
	if l.fc.ed.AddArmed() {
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

func (l *eventLayer) MinSize() fyne.Size {
	return l.fc.size
}

func (l *eventLayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(fynecanvas.NewRectangle(color.Transparent))
}
