package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Match is the record of one finished game.
type Match struct {
	ID           string    `json:"id"`
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	WinThreshold int       `json:"winThreshold"`
	PlayerCount  int       `json:"playerCount"`
	Winner       string    `json:"winner"`
	Drawn        bool      `json:"drawn"`
	Moves        int       `json:"moves"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// MatchStore defines the interface for match persistence.
type MatchStore interface {
	SaveMatch(ctx context.Context, m *Match) error
	// GetMatch returns nil, nil when no match has the given id.
	GetMatch(ctx context.Context, id string) (*Match, error)
	// ListMatches returns the most recent matches first.
	ListMatches(ctx context.Context, limit int) ([]*Match, error)
	// PruneMatches deletes all but the keep most recent matches and returns the number removed.
	PruneMatches(ctx context.Context, keep int) (int64, error)
}

// SQLiteMatchStore implements MatchStore backed by SQLite.
type SQLiteMatchStore struct {
	db *sql.DB
}

// NewSQLiteMatchStore returns a new SQLiteMatchStore.
func NewSQLiteMatchStore(db *sql.DB) *SQLiteMatchStore {
	return &SQLiteMatchStore{db: db}
}

const matchColumns = `id, board_rows, board_cols, win_threshold, player_count, winner, drawn, moves, finished_at`

// SaveMatch inserts a match record.
func (s *SQLiteMatchStore) SaveMatch(ctx context.Context, m *Match) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Rows, m.Cols, m.WinThreshold, m.PlayerCount,
		m.Winner, boolToInt(m.Drawn), m.Moves, m.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting match %q: %w", m.ID, err)
	}
	return nil
}

// GetMatch loads one match by id.
func (s *SQLiteMatchStore) GetMatch(ctx context.Context, id string) (*Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying match %q: %w", id, err)
	}
	return m, nil
}

// ListMatches returns up to limit matches ordered by finished_at descending.
func (s *SQLiteMatchStore) ListMatches(ctx context.Context, limit int) (_ []*Match, err error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		ORDER BY finished_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	matches := []*Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match rows: %w", err)
	}
	return matches, nil
}

// PruneMatches keeps only the newest keep matches.
func (s *SQLiteMatchStore) PruneMatches(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM matches
		WHERE id NOT IN (
			SELECT id FROM matches ORDER BY finished_at DESC, id LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning matches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading pruned row count: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(r rowScanner) (*Match, error) {
	var m Match
	var drawn int
	if err := r.Scan(&m.ID, &m.Rows, &m.Cols, &m.WinThreshold, &m.PlayerCount,
		&m.Winner, &drawn, &m.Moves, &m.FinishedAt); err != nil {
		return nil, err
	}
	m.Drawn = drawn != 0
	return &m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
