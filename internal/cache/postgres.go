package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/contactmesh/geodetect/internal/model"
)

// pgPool is the minimal pool surface used by the Postgres cache; pgxmock
// satisfies it in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Postgres is a shared cache backed by a Postgres table, for deployments
// where multiple workers serve detection requests.
type Postgres struct {
	pool pgPool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS event_cache (
	cache_key  TEXT PRIMARY KEY,
	events     JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_cache_expires_at ON event_cache(expires_at)`

// NewPostgres connects to the given database and ensures the cache table.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	if url == "" {
		return nil, eris.New("cache: postgres database_url is required")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "cache: postgres connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cache: postgres ping")
	}
	p := &Postgres{pool: pool}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cache: postgres migrate")
	}
	return p, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool pgPool) *Postgres {
	return &Postgres{pool: pool}
}

// Get retrieves cached events, treating expired rows as misses.
func (p *Postgres) Get(ctx context.Context, key Key) ([]model.Event, bool, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT events FROM event_cache WHERE cache_key = $1 AND expires_at > now()`,
		key.String(),
	).Scan(&payload)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: postgres get")
	}

	var events []model.Event
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, false, eris.Wrap(err, "cache: postgres unmarshal events")
	}
	return events, true, nil
}

// Set upserts events under a key. Last writer wins.
func (p *Postgres) Set(ctx context.Context, key Key, events []model.Event, ttl time.Duration) error {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return eris.Wrap(err, "cache: postgres marshal events")
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO event_cache (cache_key, events, cached_at, expires_at)
		VALUES ($1, $2, now(), now() + $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			events = EXCLUDED.events,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at`,
		key.String(), payload, ttl,
	)
	return eris.Wrap(err, "cache: postgres set")
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM event_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "cache: postgres purge")
	}
	return tag.RowsAffected(), nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
