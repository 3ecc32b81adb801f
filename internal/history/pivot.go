// Package history pivots logged runs by field for side-by-side comparison
// against a baseline run.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"board-tester/internal/store"
	"board-tester/internal/validation"
)

// ErrNoRuns is returned when a pivot is requested for no runs.
var ErrNoRuns = errors.New("no runs selected")

// Source reads the run log.
type Source interface {
	ListRuns(ctx context.Context) ([]store.Run, error)
	QueryMeasurements(ctx context.Context, runIDs []string) ([]store.Measurement, error)
}

// Marker classifies a cell relative to the baseline run.
type Marker int

const (
	MarkNone Marker = iota
	MarkBaseline
	MarkDiffers
)

// Row is one field across the selected runs.
type Row struct {
	FieldID string
	Label   string
	// Cells maps run id to the display text; a run without a measurement
	// has an empty cell.
	Cells   map[string]string
	Summary Summary

	values map[string]string
}

// Table is a pivot of measurements by field id.
type Table struct {
	RunIDs []string
	Rows   []Row
}

// Baseline returns the reference run id.
func (t *Table) Baseline() string {
	if len(t.RunIDs) == 0 {
		return ""
	}
	return t.RunIDs[0]
}

// Marker classifies the cell of row r in run runID.
func (t *Table) Marker(r Row, runID string) Marker {
	base := t.Baseline()
	switch {
	case runID == base:
		return MarkBaseline
	case r.Cells[runID] != r.Cells[base]:
		return MarkDiffers
	default:
		return MarkNone
	}
}

// Differs reports whether any cell of r differs from the baseline cell.
func (t *Table) Differs(r Row) bool {
	base := r.Cells[t.Baseline()]
	for _, id := range t.RunIDs {
		if r.Cells[id] != base {
			return true
		}
	}
	return false
}

// Display formats a measurement as "value unit", or the value alone when
// there is no unit.
func Display(value, unit string) string {
	if unit == "" {
		return value
	}
	return value + " " + unit
}

// BuildPivot groups measurements by field id. Rows are ordered by field id,
// case-insensitively. With onlyDifferences, rows whose cells all equal the
// baseline cell are dropped.
func BuildPivot(runIDs []string, measurements []store.Measurement, onlyDifferences bool) *Table {
	t := &Table{RunIDs: dedupe(runIDs)}
	selected := make(map[string]bool, len(t.RunIDs))
	for _, id := range t.RunIDs {
		selected[id] = true
	}

	byField := make(map[string]*Row)
	for _, m := range measurements {
		if !selected[m.RunID] {
			continue
		}
		r, ok := byField[m.FieldID]
		if !ok {
			r = &Row{
				FieldID: m.FieldID,
				Cells:   make(map[string]string, len(t.RunIDs)),
				values:  make(map[string]string, len(t.RunIDs)),
			}
			byField[m.FieldID] = r
		}
		if r.Label == "" && m.Label != "" {
			r.Label = m.Label
		}
		r.Cells[m.RunID] = Display(m.Value, m.Unit)
		r.values[m.RunID] = m.Value
	}

	for _, r := range byField {
		if r.Label == "" {
			r.Label = r.FieldID
		}
		for _, id := range t.RunIDs {
			if _, ok := r.Cells[id]; !ok {
				r.Cells[id] = ""
			}
		}
		if onlyDifferences && !t.Differs(*r) {
			continue
		}
		r.Summary = summarize(t.RunIDs, r.values)
		t.Rows = append(t.Rows, *r)
	}

	sort.Slice(t.Rows, func(i, j int) bool {
		a, b := strings.ToLower(t.Rows[i].FieldID), strings.ToLower(t.Rows[j].FieldID)
		if a != b {
			return a < b
		}
		return t.Rows[i].FieldID < t.Rows[j].FieldID
	})
	return t
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func parseNumber(s string) (float64, bool) {
	return validation.ParseNumber(s)
}

// Engine runs pivots against a run log.
type Engine struct {
	src    Source
	logger *log.Logger
}

// NewEngine creates an engine reading from src.
func NewEngine(src Source, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{src: src, logger: logger.WithPrefix("history")}
}

// ListRuns returns every logged run, newest first.
func (e *Engine) ListRuns(ctx context.Context) ([]store.Run, error) {
	runs, err := e.src.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Pivot loads the measurements of runIDs and pivots them. runIDs[0] is the
// baseline.
func (e *Engine) Pivot(ctx context.Context, runIDs []string, onlyDifferences bool) (*Table, error) {
	if len(runIDs) == 0 {
		return nil, ErrNoRuns
	}
	ms, err := e.src.QueryMeasurements(ctx, runIDs)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	t := BuildPivot(runIDs, ms, onlyDifferences)
	e.logger.Debug("pivot", "runs", len(t.RunIDs), "measurements", len(ms), "rows", len(t.Rows))
	return t, nil
}
