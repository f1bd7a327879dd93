package suggest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/contactmesh/geodetect/internal/geo"
	"github.com/contactmesh/geodetect/internal/model"
)

// fromLocations clusters contacts purely by proximity, independent of any
// detected event, for cases where people met somewhere with no venue signal.
func (g *Generator) fromLocations(contacts []model.ContactRef) []model.GroupSuggestion {
	located := make([]model.ContactRef, 0, len(contacts))
	for _, c := range contacts {
		if c.Location != nil && geo.IsFinite(c.Location.Latitude, c.Location.Longitude) {
			located = append(located, c)
		}
	}
	if len(located) < 2 {
		return nil
	}

	var out []model.GroupSuggestion
	for _, group := range clusterByProximity(located, g.cfg.LocationRadiusMeters) {
		if len(group) < 2 {
			continue
		}
		ids := make([]string, 0, len(group))
		var latSum, lngSum float64
		for _, c := range group {
			ids = append(ids, c.ID)
			latSum += c.Location.Latitude
			lngSum += c.Location.Longitude
		}
		n := float64(len(group))

		s := model.GroupSuggestion{
			ID:          uuid.NewString(),
			Type:        model.SuggestionLocation,
			SubType:     "proximity",
			Name:        "Same Location Group",
			Description: describeContacts(group),
			ContactIDs:  ids,
			Contacts:    group,
			Confidence:  model.ConfidenceMedium,
			Reason: fmt.Sprintf("%d contacts added within %.0fm of (%.4f, %.4f)",
				len(group), g.cfg.LocationRadiusMeters, latSum/n, lngSum/n),
			Quality: &model.QualityMetrics{ContactCount: len(group)},
		}
		s.Priority = g.priority(s)
		out = append(out, s)
	}
	return out
}

// clusterByProximity groups contacts using a distance threshold: a contact
// joins a group when it is within the threshold of any current group member.
func clusterByProximity(contacts []model.ContactRef, thresholdMeters float64) [][]model.ContactRef {
	groups := make([][]model.ContactRef, 0, len(contacts))
	visited := make([]bool, len(contacts))

	for i := range contacts {
		if visited[i] {
			continue
		}
		group := []model.ContactRef{contacts[i]}
		visited[i] = true

		for j := range contacts {
			if visited[j] {
				continue
			}
			for _, member := range group {
				d := geo.DistanceMeters(
					contacts[j].Location.Latitude, contacts[j].Location.Longitude,
					member.Location.Latitude, member.Location.Longitude,
				)
				if d <= thresholdMeters {
					group = append(group, contacts[j])
					visited[j] = true
					break
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}
