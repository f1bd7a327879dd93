package cluster

import (
	"strings"

	"github.com/contactmesh/geodetect/internal/model"
)

// Contact-majority votes need at least this many contacts behind the winning
// company to count as context.
const majorityMinContacts = 2

// companyContext classifies a seed event's organizational affiliation.
// A coordinate match against the campus table takes precedence over the
// contact-majority vote when the two disagree.
func (c *Clusterer) companyContext(seed model.Event) *model.CompanyContext {
	if campus := matchCampus(c.campuses, seed.Location.Latitude, seed.Location.Longitude); campus != nil {
		return &model.CompanyContext{
			Company:         campus.Company,
			Confidence:      model.ConfidenceHigh,
			Source:          model.CompanySourceCampusTable,
			MaxRadiusMeters: campus.RadiusMeters,
		}
	}

	company, votes := majorityCompany(seed.ContactsNearby)
	if votes < majorityMinContacts {
		return nil
	}
	return &model.CompanyContext{
		Company:         company,
		Confidence:      model.ConfidenceMedium,
		Source:          model.CompanySourceContactMajority,
		MaxRadiusMeters: c.cfg.MajorityRadiusMeters,
	}
}

// majorityCompany returns the most common contact company (original casing of
// the first occurrence) and its vote count.
func majorityCompany(contacts []model.ContactRef) (string, int) {
	counts := make(map[string]int)
	display := make(map[string]string)
	for _, c := range contacts {
		if c.Company == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(c.Company))
		if key == "" {
			continue
		}
		counts[key]++
		if _, ok := display[key]; !ok {
			display[key] = strings.TrimSpace(c.Company)
		}
	}

	best, bestVotes := "", 0
	for key, n := range counts {
		if n > bestVotes {
			best, bestVotes = key, n
		}
	}
	return display[best], bestVotes
}
