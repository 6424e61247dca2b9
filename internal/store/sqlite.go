package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buscajob/buscajob/internal/model"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps saved search criteria and favorite postings in a SQLite
// database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the criteria_configs and favorites tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS criteria_configs (
			id            TEXT PRIMARY KEY,
			criteria_json TEXT NOT NULL,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			posting_id TEXT PRIMARY KEY,
			saved_at   INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// SaveCriteria stores c under a fresh id.
func (s *SQLiteStore) SaveCriteria(ctx context.Context, c model.SearchCriteria) (model.SavedCriteria, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return model.SavedCriteria{}, fmt.Errorf("encoding criteria: %w", err)
	}

	saved := model.SavedCriteria{
		ID:        "config_" + uuid.NewString(),
		Criteria:  c.Clone(),
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO criteria_configs (id, criteria_json, created_at) VALUES (?, ?, ?)",
		saved.ID, string(data), saved.CreatedAt.UnixNano())
	if err != nil {
		return model.SavedCriteria{}, fmt.Errorf("saving criteria: %w", err)
	}
	return saved, nil
}

// ListCriteria returns every saved configuration, newest first.
func (s *SQLiteStore) ListCriteria(ctx context.Context) ([]model.SavedCriteria, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, criteria_json, created_at FROM criteria_configs ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("listing criteria: %w", err)
	}
	defer rows.Close()

	out := []model.SavedCriteria{}
	for rows.Next() {
		saved, err := scanCriteria(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing criteria: %w", err)
	}
	return out, nil
}

// LatestCriteria returns the most recently saved configuration, or
// model.ErrNotFound when none exists.
func (s *SQLiteStore) LatestCriteria(ctx context.Context) (model.SavedCriteria, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, criteria_json, created_at FROM criteria_configs ORDER BY created_at DESC, rowid DESC LIMIT 1")
	saved, err := scanCriteria(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavedCriteria{}, model.ErrNotFound
	}
	return saved, err
}

// SaveFavorite records postingID and reports whether it was new. Saving the
// same id twice is a no-op.
func (s *SQLiteStore) SaveFavorite(ctx context.Context, postingID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO favorites (posting_id, saved_at) VALUES (?, ?)",
		postingID, s.now().UTC().UnixNano())
	if err != nil {
		return false, fmt.Errorf("saving favorite %s: %w", postingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving favorite %s: %w", postingID, err)
	}
	return n > 0, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCriteria(sc scanner) (model.SavedCriteria, error) {
	var (
		saved   model.SavedCriteria
		raw     string
		created int64
	)
	if err := sc.Scan(&saved.ID, &raw, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return saved, err
		}
		return saved, fmt.Errorf("reading criteria row: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &saved.Criteria); err != nil {
		return saved, fmt.Errorf("decoding criteria %s: %w", saved.ID, err)
	}
	saved.CreatedAt = time.Unix(0, created).UTC()
	return saved, nil
}
