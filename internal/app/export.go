package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"board-tester/internal/editor"
	"board-tester/internal/export"
	"board-tester/internal/store"

	"github.com/google/uuid"
)

var (
	// ErrExport is returned when the export file cannot be written.
	ErrExport = errors.New("export failed")

	// ErrPersistence wraps run log failures.
	ErrPersistence = errors.New("run log failed")

	// ErrNotEntryMode is returned when exporting outside Entry Mode.
	ErrNotEntryMode = errors.New("switch to Entry Mode to export values")

	// ErrNoFields is returned when the open layout has nothing to export.
	ErrNoFields = errors.New("load a layout first")
)

// RunIDTimeFormat is the timestamp layout of run ids and exported rows.
const RunIDTimeFormat = "20060102_150405"

// DefaultBoardName is used in run ids when the layout has no board name.
const DefaultBoardName = "Board"

// RunMeta is the operator-supplied metadata of an export.
type RunMeta struct {
	Operator string
	Lot      string
	DUTID    string
	Notes    string
}

// Run is a pending export: its id and timestamp are fixed when it starts so
// the suggested file name matches the logged run.
type Run struct {
	ID        string
	Timestamp string
}

// ExportResult describes a completed export.
type ExportResult struct {
	Path  string
	RunID string
	Rows  int

	// LogErr is set when the file was written but logging the run failed.
	LogErr error
}

// BeginRun checks that an export is possible and allocates its run id.
func (s *State) BeginRun() (Run, error) {
	if s.Editor.Mode() != editor.ModeEntry {
		return Run{}, ErrNotEntryMode
	}
	doc := s.Editor.Document()
	if len(doc.Fields) == 0 {
		return Run{}, ErrNoFields
	}
	ts := s.now().Format(RunIDTimeFormat)
	board := strings.TrimSpace(doc.BoardName)
	if board == "" {
		board = DefaultBoardName
	}
	return Run{ID: ts + "_" + board, Timestamp: ts}, nil
}

// SuggestedFileName returns the default export file name for a run.
func (r Run) SuggestedFileName(format string) string {
	if format == "" {
		format = string(export.FormatXLSX)
	}
	return "run_" + r.ID + "." + strings.TrimPrefix(format, ".")
}

// Export writes every field's current value to path and, when logToDB is
// set, records the run. A logging failure is reported in ExportResult.LogErr
// and never undoes the written file.
func (s *State) Export(ctx context.Context, run Run, meta RunMeta, path string, logToDB bool) (*ExportResult, error) {
	readings := s.Editor.Readings()
	rows := make([]export.Row, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, export.Row{
			Timestamp:     run.Timestamp,
			Operator:      meta.Operator,
			Lot:           meta.Lot,
			DUTID:         meta.DUTID,
			FieldID:       r.FieldID,
			Label:         r.Label,
			ComponentType: r.ComponentType,
			Value:         r.Value,
			Unit:          r.Unit,
		})
	}
	if err := export.WriteTable(rows, path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	s.logger.Info("exported", "path", path, "run", run.ID, "rows", len(rows))

	res := &ExportResult{Path: path, RunID: run.ID, Rows: len(rows)}
	if logToDB {
		id, err := s.logRun(ctx, run, meta, readings)
		if err != nil {
			s.logger.Warn("run not logged", "run", run.ID, "err", err)
			res.LogErr = fmt.Errorf("%w: %v", ErrPersistence, err)
		} else {
			res.RunID = id
		}
	}
	s.Emit(EventExported, res)
	return res, nil
}

// logRun inserts the run, suffixing its id when it is already logged.
func (s *State) logRun(ctx context.Context, run Run, meta RunMeta, readings []editor.Reading) (string, error) {
	l, err := s.RunLog(ctx)
	if err != nil {
		return "", err
	}
	id := run.ID
	exists, err := l.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if exists {
		id += "_" + uuid.NewString()[:8]
	}

	doc := s.Editor.Document()
	ms := make([]store.Measurement, 0, len(readings))
	for _, r := range readings {
		ms = append(ms, store.Measurement{
			FieldID:       r.FieldID,
			Label:         r.Label,
			ComponentType: r.ComponentType,
			Value:         r.Value,
			Unit:          r.Unit,
		})
	}
	err = l.InsertRun(ctx, store.Run{
		RunID:      id,
		Timestamp:  run.Timestamp,
		Operator:   meta.Operator,
		Lot:        meta.Lot,
		DUTID:      meta.DUTID,
		BoardName:  doc.BoardName,
		LayoutFile: doc.Path,
		Notes:      meta.Notes,
	}, ms)
	return id, err
}
