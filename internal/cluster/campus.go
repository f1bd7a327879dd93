package cluster

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/contactmesh/geodetect/internal/geo"
)

//go:embed campuses.yaml
var defaultCampusYAML []byte

// Campus is a known corporate campus with a tight clustering radius. Events
// landing inside a campus inherit its company context regardless of what the
// associated contacts report.
type Campus struct {
	Name         string  `yaml:"name"`
	Company      string  `yaml:"company"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	RadiusMeters float64 `yaml:"radius_meters"`
}

// campusFile is the on-disk shape of a campus table.
type campusFile struct {
	Campuses []Campus `yaml:"campuses"`
}

// LoadCampuses reads a campus table from the given YAML path, or the embedded
// default table when path is empty. Malformed tables fail at load time.
func LoadCampuses(path string) ([]Campus, error) {
	data := defaultCampusYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "cluster: read campus table %s", path)
		}
		data = b
	}

	var f campusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "cluster: parse campus table")
	}

	for i, c := range f.Campuses {
		if c.Company == "" {
			return nil, eris.Errorf("cluster: campus entry %d is missing a company", i)
		}
		if c.RadiusMeters <= 0 {
			return nil, eris.Errorf("cluster: campus %q has non-positive radius", c.Name)
		}
		if !geo.IsFinite(c.Latitude, c.Longitude) {
			return nil, eris.Errorf("cluster: campus %q has invalid coordinates", c.Name)
		}
	}
	return f.Campuses, nil
}

// matchCampus returns the first campus whose radius contains the point.
func matchCampus(campuses []Campus, lat, lng float64) *Campus {
	for i := range campuses {
		c := &campuses[i]
		if geo.DistanceMeters(lat, lng, c.Latitude, c.Longitude) <= c.RadiusMeters {
			return c
		}
	}
	return nil
}
