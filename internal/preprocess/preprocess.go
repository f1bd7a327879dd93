// Package preprocess condenses raw location pings into unique search locations.
package preprocess

import (
	"go.uber.org/zap"

	"github.com/contactmesh/geodetect/internal/geo"
	"github.com/contactmesh/geodetect/internal/model"
)

// Dedupe merges raw pings that land on the same rounded-coordinate grid cell,
// unioning their contact-id sets. Pings with non-finite coordinates are
// silently dropped. Returns the condensed locations and the number of pings
// removed as duplicates. Output order is unspecified; downstream consumers
// must not depend on it.
func Dedupe(pings []model.RawLocationPing) ([]model.PreprocessedLocation, int) {
	merged := make(map[string]*model.PreprocessedLocation, len(pings))
	seen := make(map[string]map[string]bool, len(pings))
	removed := 0

	for _, ping := range pings {
		if !geo.IsFinite(ping.Latitude, ping.Longitude) {
			zap.L().Debug("preprocess: dropping ping with invalid coordinates",
				zap.Float64("lat", ping.Latitude),
				zap.Float64("lng", ping.Longitude),
			)
			continue
		}

		key := geo.GridKey(ping.Latitude, ping.Longitude)
		loc, ok := merged[key]
		if !ok {
			loc = &model.PreprocessedLocation{
				Latitude:  geo.RoundCoordinate(ping.Latitude, geo.DefaultPrecision),
				Longitude: geo.RoundCoordinate(ping.Longitude, geo.DefaultPrecision),
				Metadata:  ping.Metadata,
			}
			merged[key] = loc
			seen[key] = make(map[string]bool)
		} else {
			removed++
		}

		ids := seen[key]
		for _, id := range ping.ContactIDs {
			if id == "" || ids[id] {
				continue
			}
			ids[id] = true
			loc.ContactIDs = append(loc.ContactIDs, id)
		}
		loc.Contacts = append(loc.Contacts, ping.Contacts...)
	}

	out := make([]model.PreprocessedLocation, 0, len(merged))
	for _, loc := range merged {
		out = append(out, *loc)
	}
	return out, removed
}
