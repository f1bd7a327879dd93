package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contactmesh/geodetect/internal/model"
)

func TestGrowthRadius(t *testing.T) {
	c := newTestClusterer(t)

	tests := []struct {
		name     string
		event    model.Event
		ctx      *model.CompanyContext
		expected float64
	}{
		{
			name:     "company context overrides tables",
			event:    model.Event{Types: []string{"convention_center"}},
			ctx:      &model.CompanyContext{MaxRadiusMeters: 150},
			expected: 150,
		},
		{
			name:     "convention center gets the widest radius",
			event:    model.Event{Types: []string{"convention_center"}},
			expected: 2000,
		},
		{
			name:     "unknown type falls back to default",
			event:    model.Event{Types: []string{"laundromat"}},
			expected: 500,
		},
		{
			name:     "no types falls back to default",
			event:    model.Event{},
			expected: 500,
		},
		{
			name: "dense city caps the category radius",
			event: model.Event{
				Types:            []string{"convention_center"},
				FormattedAddress: "655 W 34th St, New York, NY 10001, USA",
			},
			expected: 300,
		},
		{
			name: "city cap narrows smaller categories too",
			event: model.Event{
				Types:            []string{"hotel"},
				FormattedAddress: "123 Michigan Ave, Chicago, IL 60601, USA",
			},
			expected: 400,
		},
		{
			name: "unknown city keeps category radius",
			event: model.Event{
				Types:            []string{"stadium"},
				FormattedAddress: "1 Stadium Way, Smallville, KS 66002, USA",
			},
			expected: 1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, c.growthRadius(tt.event, tt.ctx), 1e-9)
		})
	}
}

func TestCityFromAddress(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		expected string
	}{
		{"full us address", "3150 Paradise Rd, Las Vegas, NV 89109, USA", "las vegas"},
		{"three segments", "1 Main St, Boston, MA", "1 main st"},
		{"too short", "Las Vegas, NV", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cityFromAddress(tt.addr))
		})
	}
}
