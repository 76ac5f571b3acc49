package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver.
)

// MemoryDB opens a private in-memory database.
const MemoryDB = ":memory:"

type migration struct {
	version int
	sql     string
}

// migrations holds the match schema in order; schema_migrations records what has run.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE matches (
    id             TEXT PRIMARY KEY,
    board_rows     INTEGER NOT NULL,
    board_cols     INTEGER NOT NULL,
    win_threshold  INTEGER NOT NULL,
    player_count   INTEGER NOT NULL,
    winner         TEXT NOT NULL DEFAULT '',
    drawn          INTEGER NOT NULL DEFAULT 0,
    moves          INTEGER NOT NULL DEFAULT 0,
    finished_at    DATETIME NOT NULL
);
CREATE INDEX idx_matches_finished_at ON matches(finished_at);
`,
	},
}

// NewSQLiteDB opens (or creates) the match database at dbPath and brings its schema up
// to date. fresh reports whether the matches table was created by this call.
func NewSQLiteDB(dbPath string) (_ *sql.DB, fresh bool, err error) {
	pragmas := []string{"PRAGMA busy_timeout=5000"}
	if dbPath != MemoryDB {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, false, fmt.Errorf("creating database directory: %w", err)
		}
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, false, fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if cerr := db.Close(); cerr != nil {
			slog.Warn("failed to close match database", "path", dbPath, "error", cerr)
		}
	}()

	// One connection: match writes come from the event bus workers concurrently, and
	// an in-memory database exists only inside the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, p := range pragmas {
		if _, err = db.ExecContext(ctx, p); err != nil {
			return nil, false, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	applied, err := migrate(ctx, db)
	if err != nil {
		return nil, false, fmt.Errorf("running migrations: %w", err)
	}
	return db, slices.Contains(applied, 1), nil
}

// migrate applies every pending migration and returns the versions it ran.
func migrate(ctx context.Context, db *sql.DB) ([]int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations",
	).Scan(&current); err != nil {
		return nil, fmt.Errorf("querying current schema version: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				m.version, time.Now().UTC(),
			)
			return err
		}); err != nil {
			return nil, fmt.Errorf("migration %d: %w", m.version, err)
		}
		applied = append(applied, m.version)
	}
	return applied, nil
}

// inTx runs fn in a transaction, committing on success and rolling back otherwise.
func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("failed to rollback transaction", "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}
