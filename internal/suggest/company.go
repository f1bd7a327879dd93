package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/contactmesh/geodetect/internal/model"
)

// fromCompanies groups contacts by explicit company field and, separately, by
// shared corporate email domain. Free-mail providers are excluded from the
// domain axis to avoid false positives: five strangers on gmail.com are not a
// company.
func (g *Generator) fromCompanies(contacts []model.ContactRef) []model.GroupSuggestion {
	var out []model.GroupSuggestion

	byCompany := make(map[string][]model.ContactRef)
	display := make(map[string]string)
	for _, c := range contacts {
		name := strings.TrimSpace(c.Company)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		byCompany[key] = append(byCompany[key], c)
		if _, ok := display[key]; !ok {
			display[key] = name
		}
	}
	for key, members := range byCompany {
		if len(members) < g.cfg.MinCompanyContacts {
			continue
		}
		out = append(out, g.companySuggestion(display[key], "company_field", members, model.ConfidenceHigh,
			fmt.Sprintf("%d contacts list %s as their company", len(members), display[key])))
	}

	byDomain := make(map[string][]model.ContactRef)
	for _, c := range contacts {
		domain := emailDomain(c.Email)
		if domain == "" || g.freeMail[domain] {
			continue
		}
		byDomain[domain] = append(byDomain[domain], c)
	}
	for domain, members := range byDomain {
		if len(members) < g.cfg.MinDomainContacts {
			continue
		}
		name := titleCaser.String(strings.TrimSuffix(domain, domainSuffix(domain)))
		out = append(out, g.companySuggestion(name, "email_domain", members, model.ConfidenceMedium,
			fmt.Sprintf("%d contacts share the %s email domain", len(members), domain)))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (g *Generator) companySuggestion(name, subType string, members []model.ContactRef, conf model.Confidence, reason string) model.GroupSuggestion {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	s := model.GroupSuggestion{
		ID:          uuid.NewString(),
		Type:        model.SuggestionCompany,
		SubType:     subType,
		Name:        name + " Team",
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

// emailDomain returns the lowercased domain part of an email address, or ""
// when the address is malformed.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// domainSuffix returns the trailing ".tld" portion of a domain.
func domainSuffix(domain string) string {
	dot := strings.LastIndex(domain, ".")
	if dot < 0 {
		return ""
	}
	return domain[dot:]
}
