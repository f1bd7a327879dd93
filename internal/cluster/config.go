package cluster

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Config holds the clusterer's tunables. The numeric values are tuned
// defaults, not hard invariants; Validate runs at startup so a broken table is
// a deployment failure rather than a per-request surprise.
type Config struct {
	// MinSimilarity is the pairwise similarity floor for absorbing a
	// candidate event into a seed's cluster.
	MinSimilarity float64 `mapstructure:"min_similarity"`

	// MaxIntraClusterDistance is the global coherence ceiling in meters on
	// the maximum pairwise distance between member events. It is independent
	// of the per-seed growth radius and guards against transitive chaining.
	MaxIntraClusterDistance float64 `mapstructure:"max_intra_cluster_distance"`

	// SplitRadiusCapMeters caps the stricter radius used when an incoherent
	// cluster is re-clustered locally.
	SplitRadiusCapMeters float64 `mapstructure:"split_radius_cap"`

	// MajorityRadiusMeters is the radius override applied when company
	// context comes from a contact-majority vote rather than the campus table.
	MajorityRadiusMeters float64 `mapstructure:"majority_radius"`

	// CategoryRadii maps venue type categories to growth radii in meters.
	// A "default" entry is mandatory.
	CategoryRadii map[string]float64 `mapstructure:"category_radii"`

	// CityRadiusCaps caps the growth radius per (lowercased) city name.
	// Denser cities get tighter radii.
	CityRadiusCaps map[string]float64 `mapstructure:"city_radius_caps"`

	// IncompatibleTypes marks venue type pairs that must never share a
	// cluster regardless of distance or similarity.
	IncompatibleTypes map[string][]string `mapstructure:"incompatible_types"`

	// CampusFile optionally overrides the embedded campus table.
	CampusFile string `mapstructure:"campus_file"`
}

// DefaultConfig returns the stock clustering tables.
func DefaultConfig() Config {
	return Config{
		MinSimilarity:           0.5,
		MaxIntraClusterDistance: 500,
		SplitRadiusCapMeters:    200,
		MajorityRadiusMeters:    250,
		CategoryRadii: map[string]float64{
			"convention_center": 2000,
			"event_venue":       1500,
			"stadium":           1500,
			"concert_hall":      1000,
			"university":        800,
			"hotel":             500,
			"default":           500,
		},
		CityRadiusCaps: map[string]float64{
			"new york":      300,
			"san francisco": 350,
			"chicago":       400,
			"boston":        350,
		},
		IncompatibleTypes: map[string][]string{
			"hospital": {"night_club", "bar", "casino"},
			"school":   {"night_club", "bar", "casino"},
			"cemetery": {"amusement_park", "night_club"},
		},
	}
}

// Validate checks the config for defects that must fail at startup rather
// than per request.
func (c Config) Validate() error {
	var errs []string

	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		errs = append(errs, "min_similarity must be in [0,1]")
	}
	if c.MaxIntraClusterDistance <= 0 {
		errs = append(errs, "max_intra_cluster_distance must be > 0")
	}
	if c.SplitRadiusCapMeters <= 0 {
		errs = append(errs, "split_radius_cap must be > 0")
	}
	if c.MajorityRadiusMeters <= 0 {
		errs = append(errs, "majority_radius must be > 0")
	}

	if len(c.CategoryRadii) == 0 {
		errs = append(errs, "category_radii table is empty")
	} else if _, ok := c.CategoryRadii["default"]; !ok {
		errs = append(errs, `category_radii is missing the "default" entry`)
	}
	for cat, r := range c.CategoryRadii {
		if r <= 0 {
			errs = append(errs, fmt.Sprintf("category_radii[%s] must be > 0", cat))
		}
	}
	for city, r := range c.CityRadiusCaps {
		if r <= 0 {
			errs = append(errs, fmt.Sprintf("city_radius_caps[%s] must be > 0", city))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("cluster: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
