// Package store persists completed runs and their measurements in an embedded
// SQLite log.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

// ErrRunExists is returned when inserting a run whose id is already logged.
var ErrRunExists = errors.New("run already logged")

// Run is one logged data-entry session.
type Run struct {
	RunID      string
	Timestamp  string
	Operator   string
	Lot        string
	DUTID      string
	BoardName  string
	LayoutFile string
	Notes      string
}

// Measurement is one field value of a run.
type Measurement struct {
	RunID         string
	FieldID       string
	Label         string
	ComponentType string
	Value         string
	Unit          string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		timestamp   TEXT NOT NULL,
		operator    TEXT,
		lot         TEXT,
		dut_id      TEXT,
		board_name  TEXT,
		layout_file TEXT,
		notes       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS measurements (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id         TEXT NOT NULL,
		field_id       TEXT NOT NULL,
		label          TEXT,
		component_type TEXT,
		value          TEXT,
		unit           TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_run ON measurements(run_id)`,
}

// Log is the run log database.
type Log struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open opens or creates the log at path, creating parent directories.
func Open(ctx context.Context, path string, logger *log.Logger) (*Log, error) {
	if logger == nil {
		logger = log.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	logger.Debug("run log opened", "path", path)
	return &Log{db: db, path: path, logger: logger}, nil
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Log) Path() string {
	return l.path
}

// Exists reports whether a run with the given id is logged.
func (l *Log) Exists(ctx context.Context, runID string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertRun logs a run and its measurements in one transaction. The run id
// of every measurement is taken from run.
func (l *Log) InsertRun(ctx context.Context, run Run, measurements []Measurement) error {
	exists, err := l.Exists(ctx, run.RunID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrRunExists, run.RunID)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs(run_id, timestamp, operator, lot, dut_id, board_name, layout_file, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Timestamp, run.Operator, run.Lot, run.DUTID, run.BoardName, run.LayoutFile, run.Notes)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements(run_id, field_id, label, component_type, value, unit)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range measurements {
		if _, err := stmt.ExecContext(ctx, run.RunID, m.FieldID, m.Label, m.ComponentType, m.Value, m.Unit); err != nil {
			return fmt.Errorf("insert measurement %s: %w", m.FieldID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	l.logger.Info("run logged", "run", run.RunID, "measurements", len(measurements))
	return nil
}

// ListRuns returns every run, newest timestamp first.
func (l *Log) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, timestamp, operator, lot, dut_id, board_name, layout_file, notes
		 FROM runs ORDER BY timestamp DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var operator, lot, dut, board, layoutFile, notes sql.NullString
		if err := rows.Scan(&r.RunID, &r.Timestamp, &operator, &lot, &dut, &board, &layoutFile, &notes); err != nil {
			return nil, err
		}
		r.Operator, r.Lot, r.DUTID = operator.String, lot.String, dut.String
		r.BoardName, r.LayoutFile, r.Notes = board.String, layoutFile.String, notes.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// QueryMeasurements returns the measurements of the given runs in insertion
// order.
func (l *Log) QueryMeasurements(ctx context.Context, runIDs []string) ([]Measurement, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(runIDs)), ",")
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		args[i] = id
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, field_id, label, component_type, value, unit
		 FROM measurements WHERE run_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var m Measurement
		var label, ctype, value, unit sql.NullString
		if err := rows.Scan(&m.RunID, &m.FieldID, &label, &ctype, &value, &unit); err != nil {
			return nil, err
		}
		m.Label, m.ComponentType, m.Value, m.Unit = label.String, ctype.String, value.String, unit.String
		out = append(out, m)
	}
	return out, rows.Err()
}
