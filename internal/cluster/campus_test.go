package cluster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCampuses_EmbeddedDefault(t *testing.T) {
	campuses, err := LoadCampuses("")

	require.NoError(t, err)
	require.NotEmpty(t, campuses)
	for _, c := range campuses {
		assert.NotEmpty(t, c.Company)
		assert.Greater(t, c.RadiusMeters, 0.0)
	}
}

func TestLoadCampuses_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campuses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
campuses:
  - name: Acme HQ
    company: Acme
    latitude: 36.1000
    longitude: -115.1000
    radius_meters: 200
`), 0o644))

	campuses, err := LoadCampuses(path)

	require.NoError(t, err)
	require.Len(t, campuses, 1)
	assert.Equal(t, "Acme", campuses[0].Company)
	assert.InDelta(t, 200, campuses[0].RadiusMeters, 1e-9)
}

func TestLoadCampuses_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing company",
			yaml: "campuses:\n  - name: X\n    latitude: 1\n    longitude: 1\n    radius_meters: 100\n",
		},
		{
			name: "non-positive radius",
			yaml: "campuses:\n  - name: X\n    company: Acme\n    latitude: 1\n    longitude: 1\n    radius_meters: 0\n",
		},
		{
			name: "malformed yaml",
			yaml: "campuses: [",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "campuses.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := LoadCampuses(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadCampuses_MissingFile(t *testing.T) {
	_, err := LoadCampuses(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMatchCampus(t *testing.T) {
	campuses := []Campus{
		{Name: "Acme HQ", Company: "Acme", Latitude: 36.1000, Longitude: -115.1000, RadiusMeters: 200},
	}

	tests := []struct {
		name     string
		lat, lng float64
		match    bool
	}{
		{"at center", 36.1000, -115.1000, true},
		{"inside radius", 36.1010, -115.1000, true},  // ~111m
		{"outside radius", 36.1030, -115.1000, false}, // ~334m
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchCampus(campuses, tt.lat, tt.lng)
			if tt.match {
				require.NotNil(t, got)
				assert.Equal(t, "Acme", got.Company)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}
