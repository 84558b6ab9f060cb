// Package journal persists sync operation outcomes for diagnostics. The
// journal is observational only: nothing in the sync path reads it back, so
// losing it costs history, never correctness.
package journal

import (
	"database/sql"
	"fmt"

	"github.com/tuncaytekle/docsync/internal/docsync"
	"github.com/tuncaytekle/docsync/internal/journal/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements the Journal interface on a SQLite database.
type SQLiteJournal struct {
	db    *sql.DB
	clock docsync.Clock
	path  string
}

// NewSQLiteJournal opens (or creates) a journal database at path and brings
// its schema up to date. path may be ":memory:" for tests.
func NewSQLiteJournal(path string, clock docsync.Clock) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal database: %w", err)
	}

	return &SQLiteJournal{db: db, clock: clock, path: path}, nil
}

// Record appends an entry, stamping it with the current time.
func (j *SQLiteJournal) Record(entry docsync.JournalEntry) error {
	_, err := j.db.Exec(
		`INSERT INTO entries (op, key, name, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Op, entry.Key, entry.Name, entry.Outcome, entry.Detail, j.clock.Now(),
	)
	if err != nil {
		return fmt.Errorf("recording journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *SQLiteJournal) Recent(limit int) ([]docsync.JournalEntry, error) {
	rows, err := j.db.Query(
		`SELECT id, op, key, name, outcome, detail, created_at FROM entries ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	var entries []docsync.JournalEntry
	for rows.Next() {
		var e docsync.JournalEntry
		if err := rows.Scan(&e.ID, &e.Op, &e.Key, &e.Name, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading journal entries: %w", err)
	}
	return entries, nil
}

// Path returns the journal database path.
func (j *SQLiteJournal) Path() string { return j.path }

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteJournal implements docsync.Journal.
var _ docsync.Journal = (*SQLiteJournal)(nil)
