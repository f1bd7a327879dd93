package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/contactmesh/geodetect/internal/model"
)

// SQLite is a file-backed cache using modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS event_cache (
	cache_key  TEXT PRIMARY KEY,
	events     TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_cache_expires_at ON event_cache(expires_at);
`

// NewSQLite opens (or creates) a cache database at the given path and
// configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	if dsn == "" {
		return nil, eris.New("cache: sqlite path is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: sqlite exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: sqlite migrate")
	}
	return &SQLite{db: db}, nil
}

// Get retrieves cached events, treating expired rows as misses.
func (s *SQLite) Get(ctx context.Context, key Key) ([]model.Event, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT events FROM event_cache WHERE cache_key = ? AND expires_at > datetime('now')`,
		key.String(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: sqlite get")
	}

	var events []model.Event
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		return nil, false, eris.Wrap(err, "cache: sqlite unmarshal events")
	}
	return events, true, nil
}

// Set upserts events under a key. Last writer wins.
func (s *SQLite) Set(ctx context.Context, key Key, events []model.Event, ttl time.Duration) error {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return eris.Wrap(err, "cache: sqlite marshal events")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO event_cache (cache_key, events, cached_at, expires_at)
		VALUES (?, ?, datetime('now'), ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			events = excluded.events,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`,
		key.String(), string(payload), time.Now().UTC().Add(ttl).Format("2006-01-02 15:04:05"),
	)
	return eris.Wrap(err, "cache: sqlite set")
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *SQLite) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM event_cache WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, eris.Wrap(err, "cache: sqlite purge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "cache: sqlite rows affected")
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
