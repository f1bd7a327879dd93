package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{
			name: "rounded coordinates and sorted types",
			key: Key{
				Latitude:     36.13161,
				Longitude:    -115.15361,
				RadiusMeters: 500,
				EventTypes:   []string{"stadium", "convention_center"},
			},
			expected: "36.132,-115.154|500|convention_center,stadium",
		},
		{
			name: "no types",
			key: Key{
				Latitude:     36.1316,
				Longitude:    -115.1536,
				RadiusMeters: 1000,
			},
			expected: "36.132,-115.154|1000|",
		},
		{
			name: "types lowercased",
			key: Key{
				Latitude:     0,
				Longitude:    0,
				RadiusMeters: 250,
				EventTypes:   []string{"Stadium"},
			},
			expected: "0.000,0.000|250|stadium",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.key.String())
		})
	}
}

func TestKeyString_OrderIndependent(t *testing.T) {
	a := Key{Latitude: 1, Longitude: 2, RadiusMeters: 500, EventTypes: []string{"a", "b"}}
	b := Key{Latitude: 1, Longitude: 2, RadiusMeters: 500, EventTypes: []string{"b", "a"}}
	assert.Equal(t, a.String(), b.String())
}

func TestKeyString_NearbyPointsCollide(t *testing.T) {
	// Points within the rounding grid share a key; farther ones do not.
	a := Key{Latitude: 36.1316, Longitude: -115.1536, RadiusMeters: 500}
	b := Key{Latitude: 36.13161, Longitude: -115.15361, RadiusMeters: 500}
	c := Key{Latitude: 36.1416, Longitude: -115.1536, RadiusMeters: 500}
	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.String(), c.String())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory default", func(t *testing.T) {
		c, err := Open(ctx, Config{})
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &Memory{}, c)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, Config{Driver: "redis"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown driver")
	})

	t.Run("sqlite requires path", func(t *testing.T) {
		_, err := Open(ctx, Config{Driver: "sqlite"})
		assert.Error(t, err)
	})

	t.Run("postgres requires url", func(t *testing.T) {
		_, err := Open(ctx, Config{Driver: "postgres"})
		assert.Error(t, err)
	})
}
