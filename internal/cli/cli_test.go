package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"board-tester/internal/config"
	"board-tester/internal/layout"
	"board-tester/internal/store"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guiCall struct {
	cfg    config.Config
	layout string
}

func run(t *testing.T, gui GUI, args ...string) (string, error) {
	t.Helper()
	if gui == nil {
		gui = func(context.Context, config.Config, string, *log.Logger) error { return nil }
	}
	cmd := newRootCmd(gui)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) (string, string) {
	t.Helper()
	db := filepath.Join(dir, "log.db")
	cfg := config.Default()
	cfg.DBPath = db
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, cfg.Write(path))
	return path, db
}

func seedLog(t *testing.T, db string) {
	t.Helper()
	ctx := context.Background()
	l, err := store.Open(ctx, db, nil)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.InsertRun(ctx, store.Run{RunID: "R1", Timestamp: "20240101_100000", BoardName: "PSU"}, []store.Measurement{
		{FieldID: "A", Value: "5", Unit: "V"},
		{FieldID: "B", Value: "pass"},
	}))
	require.NoError(t, l.InsertRun(ctx, store.Run{RunID: "R2", Timestamp: "20240102_100000", BoardName: "PSU"}, []store.Measurement{
		{FieldID: "A", Value: "6", Unit: "V"},
		{FieldID: "B", Value: "pass"},
	}))
}

func TestRootLaunchesGUI(t *testing.T) {
	dir := t.TempDir()
	cfgPath, db := writeConfig(t, dir)
	layoutPath := filepath.Join(dir, "board.json")
	require.NoError(t, layout.New("B").Save(layoutPath))

	var got guiCall
	gui := func(_ context.Context, cfg config.Config, p string, _ *log.Logger) error {
		got = guiCall{cfg: cfg, layout: p}
		return nil
	}
	_, err := run(t, gui, "--config", cfgPath, layoutPath)
	require.NoError(t, err)
	assert.Equal(t, layoutPath, got.layout)
	assert.Equal(t, db, got.cfg.DBPath)

	_, err = run(t, gui, "--config", cfgPath, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestRunsCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath, db := writeConfig(t, dir)

	out, err := run(t, nil, "--config", cfgPath, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs logged")

	seedLog(t, db)
	out, err = run(t, nil, "--config", cfgPath, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "R1")
	assert.Contains(t, out, "R2")
	assert.Less(t, bytes.Index([]byte(out), []byte("R2")), bytes.Index([]byte(out), []byte("R1")))
	assert.Contains(t, out, "2 of 2 runs")

	out, err = run(t, nil, "--config", cfgPath, "runs", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 runs")
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath, db := writeConfig(t, dir)

	_, err := run(t, nil, "--config", cfgPath, "compare", "R1")
	assert.Error(t, err)

	seedLog(t, db)
	out, err := run(t, nil, "--config", cfgPath, "compare", "R1", "R2")
	require.NoError(t, err)
	assert.Contains(t, out, "5 V")
	assert.Contains(t, out, "6 V")
	assert.Contains(t, out, "pass")
	assert.Contains(t, out, "baseline: R1")

	out, err = run(t, nil, "--config", cfgPath, "compare", "R1", "R2", "--only-diff", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "6 V")
	assert.NotContains(t, out, "pass")
	assert.Contains(t, out, "5.5")

	out, err = run(t, nil, "--config", cfgPath, "compare", "R1", "R1", "--only-diff")
	require.NoError(t, err)
	assert.Contains(t, out, "No differences")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath, _ := writeConfig(t, dir)
	src := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(src, []byte(`{
  "board_name": "PSU",
  "fields": [{"id": "VOUT", "units": "V", "x": 1, "y": 2}]
}`), 0o644))

	out, err := run(t, nil, "--config", cfgPath, "check", src)
	require.NoError(t, err)
	assert.Contains(t, out, `board "PSU", 1 fields`)
	assert.Contains(t, out, "blank 1200x800, grid 20 (default)")

	dst := filepath.Join(dir, "canonical.json")
	out, err = run(t, nil, "--config", cfgPath, "check", src, "--normalize", "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote canonical layout")

	doc, err := layout.Load(dst)
	require.NoError(t, err)
	require.NotNil(t, doc.Canvas)
	assert.Equal(t, layout.CanvasBlank, doc.Canvas.Type)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"fields": [{"id": "A"}, {"id": "A"}]}`), 0o644))
	_, err = run(t, nil, "--config", cfgPath, "check", bad)
	assert.ErrorIs(t, err, layout.ErrDuplicateID)
}

func TestViewerCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath, _ := writeConfig(t, dir)

	s2p := filepath.Join(dir, "amp.s2p")
	require.NoError(t, os.WriteFile(s2p, []byte("# MHz S MA R 50\n100 0.5 -30 10 90 0.01 0 0.1 180\n"), 0o644))
	out, err := run(t, nil, "--config", cfgPath, "s2p", s2p)
	require.NoError(t, err)
	assert.Contains(t, out, "S21 (dB)")
	assert.Contains(t, out, "0.100")
	assert.Contains(t, out, "20.00")
	assert.Contains(t, out, "1 points, MA format")

	im := filepath.Join(dir, "pa.im")
	require.NoError(t, os.WriteFile(im, []byte(`<m><biasingcmd access="VG1" unit="V" quiescent="-2.1"/></m>`), 0o644))
	out, err = run(t, nil, "--config", cfgPath, "im", im)
	require.NoError(t, err)
	assert.Contains(t, out, "Quiescent")
	assert.Contains(t, out, "VG1")
	assert.Contains(t, out, "-2.1")

	empty := filepath.Join(dir, "empty.im")
	require.NoError(t, os.WriteFile(empty, []byte(`<m/>`), 0o644))
	out, err = run(t, nil, "--config", cfgPath, "im", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "No bias commands")

	_, err = run(t, nil, "--config", cfgPath, "s2p", filepath.Join(dir, "missing.s2p"))
	assert.Error(t, err)
}
