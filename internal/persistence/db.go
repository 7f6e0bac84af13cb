// Package persistence provides a SQLite archive of solve runs: the
// run's parameters and outcome plus every committed cell, enough to
// reproduce or re-render a map later.
package persistence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/wavemap/internal/grid"
)

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		steps INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		run_id TEXT NOT NULL,
		i INTEGER NOT NULL,
		j INTEGER NOT NULL,
		category INTEGER NOT NULL,
		PRIMARY KEY (run_id, i, j)
	);

	CREATE INDEX IF NOT EXISTS idx_cells_run ON cells(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one archived solve.
type Run struct {
	ID         string `db:"id"`
	Seed       int64  `db:"seed"`
	Width      int    `db:"width"`
	Height     int    `db:"height"`
	Outcome    string `db:"outcome"` // "complete" or "contradiction"
	Steps      int    `db:"steps"`
	DurationMS int64  `db:"duration_ms"`
	CreatedAt  string `db:"created_at"`
}

// CellRow is one committed cell of an archived run.
type CellRow struct {
	RunID    string `db:"run_id"`
	I        int    `db:"i"`
	J        int    `db:"j"`
	Category uint8  `db:"category"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun writes a run and every resolved cell of its grid.
func (db *DB) SaveRun(run Run, g *grid.Grid) error {
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, seed, width, height, outcome, steps, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Seed, run.Width, run.Height, run.Outcome,
		run.Steps, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO cells (run_id, i, j, category) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for j := 0; j < g.Height(); j++ {
		for i := 0; i < g.Width(); i++ {
			cell := g.Cell(i, j)
			if !cell.Resolved {
				continue
			}
			if _, err := stmt.Exec(run.ID, i, j, uint8(cell.Category)); err != nil {
				return fmt.Errorf("insert cell (%d,%d): %w", i, j, err)
			}
		}
	}

	return tx.Commit()
}

// LoadRun retrieves a run's metadata by ID.
func (db *DB) LoadRun(id string) (Run, error) {
	var run Run
	err := db.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", id)
	if err != nil {
		return Run{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return run, nil
}

// LoadRunCells retrieves the committed cells of a run.
func (db *DB) LoadRunCells(id string) ([]CellRow, error) {
	var cells []CellRow
	err := db.conn.Select(&cells,
		"SELECT run_id, i, j, category FROM cells WHERE run_id = ? ORDER BY j, i", id)
	if err != nil {
		return nil, fmt.Errorf("load cells for %s: %w", id, err)
	}
	return cells, nil
}

// RecentRuns returns the most recent N runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT ?", limit)
	return runs, err
}
