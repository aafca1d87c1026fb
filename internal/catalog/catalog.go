// Package catalog maintains the run index at the root of an output
// directory. It is an observer of the lifecycle: the run command records
// finished runs best-effort, and the list/show commands and the MCP server
// read them back. Catalog failures never change run semantics.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the fixed name of the catalog database inside the output
// directory.
const FileName = "catalog.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dir TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    scheme TEXT NOT NULL,
    initial_time REAL NOT NULL,
    final_time REAL NOT NULL,
    status TEXT NOT NULL,
    time_reached REAL NOT NULL DEFAULT 0,
    steps INTEGER NOT NULL DEFAULT 0,
    accepted INTEGER NOT NULL DEFAULT 0,
    rejected INTEGER NOT NULL DEFAULT 0,
    evals INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name);
`

// Run is one catalog row: where a run lives, what it was, how it ended.
type Run struct {
	ID          int64
	Dir         string
	Name        string
	Scheme      string
	InitialTime float64
	FinalTime   float64
	Status      string
	TimeReached float64
	Steps       int
	Accepted    int
	Rejected    int
	Evals       int
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Catalog wraps the SQLite run index.
type Catalog struct {
	db *sql.DB
}

// Open opens the catalog inside dir, creating the database and schema on
// first use.
func Open(dir string) (*Catalog, error) {
	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts one finished run and returns its catalog id.
func (c *Catalog) Record(ctx context.Context, r Run) (int64, error) {
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (dir, name, scheme, initial_time, final_time,
			status, time_reached, steps, accepted, rejected, evals, error,
			started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Dir, r.Name, r.Scheme, r.InitialTime, r.FinalTime,
		r.Status, r.TimeReached, r.Steps, r.Accepted, r.Rejected, r.Evals, r.Error,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("recording run %s: %w", r.Dir, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recording run %s: %w", r.Dir, err)
	}
	return id, nil
}

const selectColumns = `id, dir, name, scheme, initial_time, final_time,
	status, time_reached, steps, accepted, rejected, evals, error,
	started_at, finished_at`

func scanRun(scan func(dest ...any) error) (Run, error) {
	var r Run
	var started, finished string
	err := scan(&r.ID, &r.Dir, &r.Name, &r.Scheme, &r.InitialTime, &r.FinalTime,
		&r.Status, &r.TimeReached, &r.Steps, &r.Accepted, &r.Rejected, &r.Evals,
		&r.Error, &started, &finished)
	if err != nil {
		return r, err
	}
	if t, perr := time.Parse(time.RFC3339Nano, started); perr == nil {
		r.StartedAt = t
	}
	if t, perr := time.Parse(time.RFC3339Nano, finished); perr == nil {
		r.FinishedAt = t
	}
	return r, nil
}

// List returns all recorded runs, newest first.
func (c *Catalog) List(ctx context.Context) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// ByDir returns the run recorded for the given run directory name.
func (c *Catalog) ByDir(ctx context.Context, dir string) (Run, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM runs WHERE dir = ?`, dir)
	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return r, fmt.Errorf("run %s not found in catalog", dir)
	}
	if err != nil {
		return r, fmt.Errorf("looking up run %s: %w", dir, err)
	}
	return r, nil
}
