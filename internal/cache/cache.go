// Package cache stores detected events per search location so repeated scans
// at the same spot skip the upstream places search. Staleness is harmless
// (a slightly outdated suggestion at worst), so last-writer-wins semantics
// are acceptable everywhere.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/contactmesh/geodetect/internal/geo"
	"github.com/contactmesh/geodetect/internal/model"
)

// DefaultTTL is the default lifetime of a cached search result.
const DefaultTTL = 30 * time.Minute

// Key identifies one search: a snapped location, radius, and type filter.
type Key struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	EventTypes   []string
}

// String renders the canonical cache key: rounded coordinates, radius, and
// the sorted event-type list.
func (k Key) String() string {
	types := append([]string(nil), k.EventTypes...)
	for i := range types {
		types[i] = strings.ToLower(types[i])
	}
	sort.Strings(types)
	return fmt.Sprintf("%.3f,%.3f|%.0f|%s",
		geo.RoundCoordinate(k.Latitude, geo.DefaultPrecision),
		geo.RoundCoordinate(k.Longitude, geo.DefaultPrecision),
		k.RadiusMeters,
		strings.Join(types, ","),
	)
}

// Cache is the injected collaborator interface. Implementations must tolerate
// concurrent access.
type Cache interface {
	// Get returns the cached events for a key, or ok=false on miss/expiry.
	Get(ctx context.Context, key Key) ([]model.Event, bool, error)
	// Set stores events under a key with the given TTL.
	Set(ctx context.Context, key Key, events []model.Event, ttl time.Duration) error
	Close() error
}

// Purger is implemented by backends with explicit expired-entry cleanup.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Config selects and configures a cache backend.
type Config struct {
	Driver      string        `mapstructure:"driver"`
	Path        string        `mapstructure:"path"`
	DatabaseURL string        `mapstructure:"database_url"`
	TTL         time.Duration `mapstructure:"ttl"`
	MaxEntries  int           `mapstructure:"max_entries"`
}

// Open builds the cache backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(cfg.MaxEntries), nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}
