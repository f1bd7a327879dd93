// Package suggest turns validated clusters and non-geographic signals into
// ranked, de-duplicated group suggestions.
//
// Six independent generators feed one pool: event clusters, shared
// company/domain, pure location proximity, temporal co-occurrence,
// event-context cross-referencing, and inferred industries. The pool is then
// de-duplicated against the caller's existing groups, ranked, and truncated.
package suggest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/contactmesh/geodetect/internal/model"
)

// Config holds the generator's tunables.
type Config struct {
	MaxSuggestions       int      `mapstructure:"max_suggestions"`
	MinCompanyContacts   int      `mapstructure:"min_company_contacts"`
	MinDomainContacts    int      `mapstructure:"min_domain_contacts"`
	MinDayContacts       int      `mapstructure:"min_day_contacts"`
	MinHourContacts      int      `mapstructure:"min_hour_contacts"`
	LocationRadiusMeters float64  `mapstructure:"location_radius"`
	ContextRadiusMeters  float64  `mapstructure:"context_radius"`
	FreeMailProviders    []string `mapstructure:"free_mail_providers"`
	HighValueIndustries  []string `mapstructure:"high_value_industries"`
}

// DefaultConfig returns the stock suggestion tunables.
func DefaultConfig() Config {
	return Config{
		MaxSuggestions:       10,
		MinCompanyContacts:   2,
		MinDomainContacts:    3,
		MinDayContacts:       3,
		MinHourContacts:      2,
		LocationRadiusMeters: 200,
		ContextRadiusMeters:  2000,
		FreeMailProviders: []string{
			"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
			"icloud.com", "aol.com", "proton.me", "protonmail.com",
		},
		HighValueIndustries: []string{"technology", "finance", "healthcare"},
	}
}

// Validate fails fast on config defects.
func (c Config) Validate() error {
	var errs []string
	if c.MaxSuggestions <= 0 {
		errs = append(errs, "max_suggestions must be > 0")
	}
	if c.MinCompanyContacts < 2 {
		errs = append(errs, "min_company_contacts must be >= 2")
	}
	if c.MinDomainContacts < 2 {
		errs = append(errs, "min_domain_contacts must be >= 2")
	}
	if c.LocationRadiusMeters <= 0 {
		errs = append(errs, "location_radius must be > 0")
	}
	if c.ContextRadiusMeters <= 0 {
		errs = append(errs, "context_radius must be > 0")
	}
	if len(errs) > 0 {
		return eris.Errorf("suggest: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Stats counts suggestion outcomes for the run's analytics.
type Stats struct {
	Generated int
	Deduped   int
}

// Generator produces group suggestions.
type Generator struct {
	cfg       Config
	freeMail  map[string]bool
	highValue map[string]bool
}

// New builds a Generator, validating config at construction.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:       cfg,
		freeMail:  make(map[string]bool, len(cfg.FreeMailProviders)),
		highValue: make(map[string]bool, len(cfg.HighValueIndustries)),
	}
	for _, p := range cfg.FreeMailProviders {
		g.freeMail[strings.ToLower(p)] = true
	}
	for _, i := range cfg.HighValueIndustries {
		g.highValue[strings.ToLower(i)] = true
	}
	return g, nil
}

// Generate merges the six suggestion axes, drops duplicates of existing
// groups, ranks, and truncates. The returned list never contains two entries
// with identical order-independent contact-id sets.
func (g *Generator) Generate(clusters []model.Cluster, contacts []model.ContactRef, events []model.Event, existing [][]string) ([]model.GroupSuggestion, Stats) {
	var pool []model.GroupSuggestion
	pool = append(pool, g.fromClusters(clusters)...)
	pool = append(pool, g.fromCompanies(contacts)...)
	pool = append(pool, g.fromLocations(contacts)...)
	pool = append(pool, g.fromTimestamps(contacts)...)
	pool = append(pool, g.fromEventContext(events, contacts)...)
	pool = append(pool, g.fromIndustries(contacts)...)

	stats := Stats{Generated: len(pool)}

	existingSets := make(map[string]bool, len(existing))
	for _, ids := range existing {
		existingSets[contactSetKey(ids)] = true
	}

	// Drop suggestions matching existing groups, then keep only the
	// best-ranked suggestion per contact-id set.
	bySet := make(map[string]model.GroupSuggestion)
	for _, s := range pool {
		key := contactSetKey(s.ContactIDs)
		if existingSets[key] {
			stats.Deduped++
			continue
		}
		if prev, ok := bySet[key]; ok {
			stats.Deduped++
			if !ranksAbove(s, prev) {
				continue
			}
		}
		bySet[key] = s
	}

	out := make([]model.GroupSuggestion, 0, len(bySet))
	for _, s := range bySet {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return ranksAbove(out[i], out[j]) })

	if len(out) > g.cfg.MaxSuggestions {
		out = out[:g.cfg.MaxSuggestions]
	}
	return out, stats
}

// priority scores a suggestion: contact count weighs most heavily, then
// confidence tier, then type-specific bonuses.
func (g *Generator) priority(s model.GroupSuggestion) float64 {
	p := float64(len(s.ContactIDs)) * 10
	p += float64(s.Confidence.Rank()) * 3

	switch s.Type {
	case model.SuggestionEvent:
		if s.Quality != nil && s.Quality.ClusterTightness != nil && *s.Quality.ClusterTightness < 200 {
			p += 2
		}
		if s.EventData != nil {
			p += s.EventData.EventScore
		}
	case model.SuggestionIndustry:
		if g.highValue[strings.ToLower(s.SubType)] {
			p += 2
		}
	}
	return p
}

// ranksAbove orders suggestions for the final list: priority, then tighter
// clusters ahead of looser ones, then name for a stable order.
func ranksAbove(a, b model.GroupSuggestion) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	at, bt := tightness(a), tightness(b)
	if at != bt {
		return at < bt
	}
	return a.Name < b.Name
}

func tightness(s model.GroupSuggestion) float64 {
	if s.Quality != nil && s.Quality.ClusterTightness != nil {
		return *s.Quality.ClusterTightness
	}
	return math.MaxFloat64
}

// contactSetKey builds an order-independent key over a contact-id set.
func contactSetKey(ids []string) string {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, "|")
}

// describeContacts renders a short human-readable member summary.
func describeContacts(contacts []model.ContactRef) string {
	names := make([]string, 0, 3)
	for _, c := range contacts {
		if c.Name == "" {
			continue
		}
		names = append(names, c.Name)
		if len(names) == 3 {
			break
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("%d contacts", len(contacts))
	}
	if len(contacts) > len(names) {
		return fmt.Sprintf("%s and %d more", strings.Join(names, ", "), len(contacts)-len(names))
	}
	return strings.Join(names, ", ")
}
