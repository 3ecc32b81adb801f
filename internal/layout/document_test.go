package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"board-tester/internal/field"
	"board-tester/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyLayout = `{
  "board_name": "PSU-3",
  "fields": [
    {"id": "VOUT", "label": "Output", "units": "V", "unit": "V", "position": {"x": 10, "y": 20, "w": 80, "h": 24}},
    {"id": "ripple", "units": ["mV", "V"], "default_unit": "mV", "x": 200, "y": 40},
    {"id": "visual", "input": {"type": "Toggle", "labels": {"true": "OK", "false": "NG"}}, "rect": {"x": 5, "y": 5, "w": 30, "h": 30}}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadLegacyAndRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "psu.json", legacyLayout)

	doc, err := Load(src)
	require.NoError(t, err)
	assert.Equal(t, "PSU-3", doc.BoardName)
	assert.Equal(t, []string{"VOUT", "ripple", "visual"}, doc.IDs())
	assert.Nil(t, doc.Canvas)
	assert.Equal(t, CanvasBlank, doc.EffectiveCanvas().Type)

	first := filepath.Join(dir, "out", "first.json")
	require.NoError(t, doc.Save(first))
	assert.Equal(t, first, doc.Path)

	again, err := Load(first)
	require.NoError(t, err)
	second := filepath.Join(dir, "second.json")
	require.NoError(t, again.Save(second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	assert.Equal(t, doc.IDs(), again.IDs())
	for i := range doc.Fields {
		assert.Equal(t, doc.Fields[i].Rect, again.Fields[i].Rect)
	}
	assert.Equal(t, geometry.NewRect(200, 40, field.DefaultWidth, field.DefaultHeight), again.Fields[1].Rect)

	var tree map[string]any
	require.NoError(t, json.Unmarshal(a, &tree))
	assert.EqualValues(t, 1, tree["version"])
	assert.Equal(t, map[string]any{
		"type": "blank",
		"size": []any{1200.0, 800.0},
		"grid": map[string]any{"enabled": true, "size": 20.0},
	}, tree["canvas"])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)

	bad := writeFile(t, dir, "bad.json", `{"fields": [`)
	_, err = Load(bad)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, bad, pe.Path)

	dup := writeFile(t, dir, "dup.json", `{"fields": [{"id": "A"}, {"id": "A"}]}`)
	_, err = Load(dup)
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrDuplicateID)

	blank := writeFile(t, dir, "blank.json", `{"fields": [{"id": "  "}]}`)
	_, err = Load(blank)
	assert.ErrorIs(t, err, ErrBlankID)

	noFile := writeFile(t, dir, "nopdf.json", `{"canvas": {"type": "pdf", "path": "gone.pdf"}, "fields": []}`)
	_, err = Load(noFile)
	assert.ErrorIs(t, err, ErrNotFound)

	noPath := writeFile(t, dir, "nopath.json", `{"pdf": {"page": 2}, "fields": []}`)
	_, err = Load(noPath)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveFailureLeavesDocument(t *testing.T) {
	dir := t.TempDir()
	blocker := writeFile(t, dir, "blocker", "")

	doc := &Document{BoardName: "PSU-3", Path: "orig.json"}
	err := doc.Save(filepath.Join(blocker, "layout.json"))
	require.Error(t, err)
	assert.Nil(t, doc.Canvas)
	assert.Zero(t, doc.Version)
	assert.Equal(t, "orig.json", doc.Path)

	out := filepath.Join(dir, "layout.json")
	require.NoError(t, doc.Save(out))
	require.NotNil(t, doc.Canvas)
	assert.Equal(t, CanvasBlank, doc.Canvas.Type)
	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Equal(t, out, doc.Path)
}

func TestImageCanvasKeepsDPI(t *testing.T) {
	data, err := json.Marshal(CanvasConfig{Type: CanvasImage, Path: "scan.png", Page: 4, DPI: 300})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "image", "path": "scan.png", "dpi": 300}`, string(data))

	var c CanvasConfig
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, 300, c.EffectiveDPI())
	assert.Zero(t, c.Page)
}

func TestLegacyPDFBlock(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "board.pdf", "%PDF-1.4")
	p := writeFile(t, dir, "legacy.json", `{"pdf": {"path": "board.pdf", "page": 1, "dpi": 200}, "fields": []}`)

	doc, err := Load(p)
	require.NoError(t, err)
	require.NotNil(t, doc.Canvas)
	assert.Equal(t, CanvasPDF, doc.Canvas.Type)
	assert.Equal(t, 1, doc.Canvas.Page)
	assert.Equal(t, 200, doc.Canvas.DPI)
	assert.Equal(t, filepath.Join(dir, "board.pdf"), doc.Canvas.ResolvePath(doc.Path))

	data, err := doc.Marshal()
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, json.Unmarshal(data, &tree))
	assert.NotContains(t, tree, "pdf")
	assert.Equal(t, map[string]any{"type": "pdf", "path": "board.pdf", "page": 1.0, "dpi": 200.0}, tree["canvas"])
}

func TestCanvasMissingTypeIsPDF(t *testing.T) {
	doc, err := Parse([]byte(`{"canvas": {"path": "x.png"}}`))
	require.NoError(t, err)
	assert.Equal(t, CanvasPDF, doc.Canvas.Type)
	assert.Equal(t, DefaultDPI, doc.Canvas.EffectiveDPI())

	_, err = Parse([]byte(`{"canvas": {"type": "svg"}}`))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestAddDuplicate(t *testing.T) {
	doc := New("B")
	require.NoError(t, doc.Add(field.New("A", "", geometry.NewRect(0, 0, 20, 20))))

	err := doc.Add(field.New("A", "other", geometry.NewRect(50, 50, 20, 20)))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, doc.Fields, 1)

	err = doc.Add(field.New("", "", geometry.NewRect(0, 0, 20, 20)))
	assert.ErrorIs(t, err, ErrBlankID)
	assert.Len(t, doc.Fields, 1)
}

func TestRenameAndReplace(t *testing.T) {
	doc := New("B")
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, doc.Add(field.New(id, "", geometry.NewRect(0, 0, 20, 20))))
	}

	assert.ErrorIs(t, doc.Rename("A", "C"), ErrDuplicateID)
	assert.NoError(t, doc.Rename("A", "A"))
	assert.ErrorIs(t, doc.Rename("Z", "Y"), ErrNotFound)
	assert.ErrorIs(t, doc.Rename("A", ""), ErrBlankID)

	require.NoError(t, doc.Rename("B", "B2"))
	assert.Equal(t, []string{"A", "B2", "C"}, doc.IDs())
	assert.False(t, doc.Has("B"))

	edited := field.New("C", "Cap", geometry.NewRect(0, 0, 20, 20))
	edited.Input = field.TextInput{}
	require.NoError(t, doc.Replace("C", edited))
	c, ok := doc.Field("C")
	require.True(t, ok)
	assert.Equal(t, field.KindText, c.Kind())
}

func TestRemoveIdempotent(t *testing.T) {
	doc := New("B")
	require.NoError(t, doc.Add(field.New("A", "", geometry.NewRect(0, 0, 20, 20))))

	assert.True(t, doc.Remove("A"))
	assert.False(t, doc.Remove("A"))
	assert.Empty(t, doc.Fields)
}

func TestFieldAtTopmost(t *testing.T) {
	doc := New("B")
	require.NoError(t, doc.Add(field.New("under", "", geometry.NewRect(0, 0, 100, 100))))
	require.NoError(t, doc.Add(field.New("over", "", geometry.NewRect(50, 50, 100, 100))))

	f, ok := doc.FieldAt(geometry.NewPoint2D(60, 60))
	require.True(t, ok)
	assert.Equal(t, "over", f.ID)

	f, ok = doc.FieldAt(geometry.NewPoint2D(10, 10))
	require.True(t, ok)
	assert.Equal(t, "under", f.ID)

	_, ok = doc.FieldAt(geometry.NewPoint2D(300, 300))
	assert.False(t, ok)
}

func TestSetCanvas(t *testing.T) {
	doc := New("B")
	doc.SetCanvas(CanvasConfig{Type: CanvasBlank, Width: 640, Height: 480, Grid: Grid{Enabled: false}})

	data, err := doc.Marshal()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	w, h := back.Canvas.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.False(t, back.Canvas.Grid.Enabled)
}

func TestParseSize(t *testing.T) {
	w, h, ok := ParseSize("640, 480")
	assert.True(t, ok)
	assert.Equal(t, []int{640, 480}, []int{w, h})

	w, h, ok = ParseSize("800x600")
	assert.True(t, ok)
	assert.Equal(t, []int{800, 600}, []int{w, h})

	w, h, ok = ParseSize("huge")
	assert.False(t, ok)
	assert.Equal(t, []int{DefaultBlankWidth, DefaultBlankHeight}, []int{w, h})
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", "{}")
	writeFile(t, dir, "a.JSON", "{}")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	paths, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.JSON"), filepath.Join(dir, "b.json")}, paths)

	paths, err = List(filepath.Join(dir, "nope"))
	assert.NoError(t, err)
	assert.Empty(t, paths)
}
