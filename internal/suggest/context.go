package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/contactmesh/geodetect/internal/geo"
	"github.com/contactmesh/geodetect/internal/model"
)

// fromEventContext cross-references contacts against every detected event,
// regardless of cluster membership: anyone within the context radius of an
// event plausibly attended it.
func (g *Generator) fromEventContext(events []model.Event, contacts []model.ContactRef) []model.GroupSuggestion {
	var out []model.GroupSuggestion
	for i := range events {
		ev := events[i]
		var nearby []model.ContactRef
		for _, c := range contacts {
			if c.Location == nil || !geo.IsFinite(c.Location.Latitude, c.Location.Longitude) {
				continue
			}
			d := geo.DistanceMeters(
				ev.Location.Latitude, ev.Location.Longitude,
				c.Location.Latitude, c.Location.Longitude,
			)
			if d <= g.cfg.ContextRadiusMeters {
				nearby = append(nearby, c)
			}
		}
		if len(nearby) < 2 {
			continue
		}

		ids := make([]string, 0, len(nearby))
		for _, c := range nearby {
			ids = append(ids, c.ID)
		}
		score := ev.EventScore
		s := model.GroupSuggestion{
			ID:          uuid.NewString(),
			Type:        model.SuggestionContext,
			SubType:     "event_vicinity",
			Name:        "Met near " + ev.Name,
			Description: describeContacts(nearby),
			ContactIDs:  ids,
			Contacts:    nearby,
			Confidence:  ev.Confidence,
			Reason: fmt.Sprintf("%d contacts within %.0fm of %s",
				len(nearby), g.cfg.ContextRadiusMeters, ev.Name),
			EventData: &ev,
			Quality: &model.QualityMetrics{
				ContactCount: len(nearby),
				EventScore:   &score,
			},
		}
		s.Priority = g.priority(s)
		out = append(out, s)
	}
	return out
}

// industryKeywords maps job-title keywords to an inferred industry label.
var industryKeywords = []struct {
	keyword  string
	industry string
}{
	{"engineer", "technology"},
	{"developer", "technology"},
	{"software", "technology"},
	{"data scientist", "technology"},
	{"doctor", "healthcare"},
	{"nurse", "healthcare"},
	{"physician", "healthcare"},
	{"medical", "healthcare"},
	{"banker", "finance"},
	{"accountant", "finance"},
	{"analyst", "finance"},
	{"investor", "finance"},
	{"sales", "sales"},
	{"marketing", "marketing"},
	{"attorney", "legal"},
	{"lawyer", "legal"},
	{"counsel", "legal"},
	{"professor", "education"},
	{"teacher", "education"},
}

// fromIndustries infers an industry per contact from job-title keywords and
// groups contacts sharing one.
func (g *Generator) fromIndustries(contacts []model.ContactRef) []model.GroupSuggestion {
	byIndustry := make(map[string][]model.ContactRef)
	for _, c := range contacts {
		industry := inferIndustry(c.JobTitle)
		if industry == "" {
			continue
		}
		byIndustry[industry] = append(byIndustry[industry], c)
	}

	var out []model.GroupSuggestion
	for industry, members := range byIndustry {
		if len(members) < 2 {
			continue
		}
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		s := model.GroupSuggestion{
			ID:          uuid.NewString(),
			Type:        model.SuggestionIndustry,
			SubType:     industry,
			Name:        titleCaser.String(industry) + " Contacts",
			Description: describeContacts(members),
			ContactIDs:  ids,
			Contacts:    members,
			Confidence:  model.ConfidenceLow,
			Reason: fmt.Sprintf("%d contacts have %s job titles",
				len(members), industry),
			Quality: &model.QualityMetrics{ContactCount: len(members)},
		}
		s.Priority = g.priority(s)
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SubType < out[j].SubType })
	return out
}

func inferIndustry(jobTitle string) string {
	title := strings.ToLower(jobTitle)
	if title == "" {
		return ""
	}
	for _, entry := range industryKeywords {
		if strings.Contains(title, entry.keyword) {
			return entry.industry
		}
	}
	return ""
}
