package suggest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/contactmesh/geodetect/internal/model"
)

// fromClusters emits one event-based suggestion per accepted cluster with at
// least two contacts.
func (g *Generator) fromClusters(clusters []model.Cluster) []model.GroupSuggestion {
	var out []model.GroupSuggestion
	for i := range clusters {
		cl := clusters[i]
		if len(cl.ContactIDs) < 2 {
			continue
		}

		tight := cl.Validation.MaxInternalDistance
		score := cl.PrimaryEvent.EventScore
		s := model.GroupSuggestion{
			ID:          uuid.NewString(),
			Type:        model.SuggestionEvent,
			SubType:     string(cl.PrimaryEvent.DiscoveryMethod),
			Name:        eventGroupName(cl.PrimaryEvent),
			Description: describeContacts(cl.Contacts),
			ContactIDs:  cl.ContactIDs,
			Contacts:    cl.Contacts,
			Confidence:  cl.Confidence,
			Reason: fmt.Sprintf("%d contacts detected near %s",
				len(cl.ContactIDs), cl.PrimaryEvent.Name),
			EventData: &cl.PrimaryEvent,
			Quality: &model.QualityMetrics{
				ContactCount:     len(cl.ContactIDs),
				ClusterTightness: &tight,
				EventScore:       &score,
			},
		}
		s.Priority = g.priority(s)
		out = append(out, s)
	}
	return out
}
