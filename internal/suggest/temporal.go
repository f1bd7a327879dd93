package suggest

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/contactmesh/geodetect/internal/model"
)

// fromTimestamps groups contacts whose submission timestamps co-occur. Same
// clock hour is a stronger signal than same calendar day and gets the higher
// confidence tier.
func (g *Generator) fromTimestamps(contacts []model.ContactRef) []model.GroupSuggestion {
	byDay := make(map[string][]model.ContactRef)
	byHour := make(map[string][]model.ContactRef)
	for _, c := range contacts {
		if c.SubmittedAt == nil {
			continue
		}
		ts := c.SubmittedAt.UTC()
		byDay[ts.Format("2006-01-02")] = append(byDay[ts.Format("2006-01-02")], c)
		byHour[ts.Format("2006-01-02T15")] = append(byHour[ts.Format("2006-01-02T15")], c)
	}

	var out []model.GroupSuggestion
	for hour, members := range byHour {
		if len(members) < g.cfg.MinHourContacts {
			continue
		}
		out = append(out, g.temporalSuggestion(members, "same_hour", model.ConfidenceHigh,
			fmt.Sprintf("%d contacts added during hour %s UTC", len(members), hour)))
	}
	for day, members := range byDay {
		if len(members) < g.cfg.MinDayContacts {
			continue
		}
		out = append(out, g.temporalSuggestion(members, "same_day", model.ConfidenceMedium,
			fmt.Sprintf("%d contacts added on %s", len(members), day)))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Reason < out[j].Reason })
	return out
}

func (g *Generator) temporalSuggestion(members []model.ContactRef, subType string, conf model.Confidence, reason string) model.GroupSuggestion {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	name := "Met the Same Day"
	if subType == "same_hour" {
		name = "Met the Same Hour"
	}
	s := model.GroupSuggestion{
		ID:          uuid.NewString(),
		Type:        model.SuggestionTemporal,
		SubType:     subType,
		Name:        name,
		Description: describeContacts(members),
		ContactIDs:  ids,
		Contacts:    members,
		Confidence:  conf,
		Reason:      reason,
		Quality:     &model.QualityMetrics{ContactCount: len(members)},
	}
	s.Priority = g.priority(s)
	return s
}
