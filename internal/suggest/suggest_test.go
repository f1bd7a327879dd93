package suggest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactmesh/geodetect/internal/model"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := New(DefaultConfig())
	require.NoError(t, err)
	return g
}

func coord(lat, lng float64) *model.Coordinate {
	return &model.Coordinate{Latitude: lat, Longitude: lng}
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func testCluster(conf model.Confidence, tightness float64, contacts ...model.ContactRef) model.Cluster {
	ids := make([]string, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ID)
	}
	return model.Cluster{
		ID: "cl-1",
		PrimaryEvent: model.Event{
			Name:       "Moscone Convention Center",
			EventScore: 0.9,
			Confidence: conf,
		},
		Contacts:   contacts,
		ContactIDs: ids,
		Confidence: conf,
		Validation: model.ValidationResult{
			Coherent:            true,
			MaxInternalDistance: tightness,
		},
	}
}

func TestGenerate_NoDuplicateContactSets(t *testing.T) {
	g := newTestGenerator(t)

	// The same three contacts trigger the company axis, the location axis,
	// and the temporal axis. Only one suggestion per contact-id set may
	// survive.
	contacts := []model.ContactRef{
		{ID: "a", Name: "Ana", Company: "Acme", Location: coord(36.1316, -115.1536), SubmittedAt: ts("2026-03-14T10:05:00Z")},
		{ID: "b", Name: "Ben", Company: "Acme", Location: coord(36.1317, -115.1536), SubmittedAt: ts("2026-03-14T10:20:00Z")},
		{ID: "c", Name: "Cam", Company: "Acme", Location: coord(36.1318, -115.1536), SubmittedAt: ts("2026-03-14T10:40:00Z")},
	}

	suggestions, stats := g.Generate(nil, contacts, nil, nil)

	seen := make(map[string]bool)
	for _, s := range suggestions {
		key := contactSetKey(s.ContactIDs)
		assert.False(t, seen[key], "duplicate contact set in %q", s.Name)
		seen[key] = true
	}
	assert.Greater(t, stats.Generated, len(suggestions))
	assert.Positive(t, stats.Deduped)
}

func TestGenerate_DropsExistingGroups(t *testing.T) {
	g := newTestGenerator(t)

	contacts := []model.ContactRef{
		{ID: "a", Company: "Acme"},
		{ID: "b", Company: "Acme"},
	}

	// Order of ids in the existing group must not matter.
	suggestions, stats := g.Generate(nil, contacts, nil, [][]string{{"b", "a"}})

	assert.Empty(t, suggestions)
	assert.Positive(t, stats.Deduped)
}

func TestGenerate_FreeMailNeverGroups(t *testing.T) {
	g := newTestGenerator(t)

	contacts := make([]model.ContactRef, 5)
	for i := range contacts {
		contacts[i] = model.ContactRef{
			ID:    fmt.Sprintf("c%d", i),
			Email: fmt.Sprintf("person%d@gmail.com", i),
		}
	}

	suggestions, _ := g.Generate(nil, contacts, nil, nil)

	for _, s := range suggestions {
		assert.NotEqual(t, "email_domain", s.SubType,
			"free-mail contacts must never form a domain group")
	}
}

func TestGenerate_CorporateDomainGroups(t *testing.T) {
	g := newTestGenerator(t)

	contacts := []model.ContactRef{
		{ID: "a", Email: "ana@initech.com"},
		{ID: "b", Email: "ben@INITECH.com"},
		{ID: "c", Email: "cam@initech.com"},
	}

	suggestions, _ := g.Generate(nil, contacts, nil, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, model.SuggestionCompany, suggestions[0].Type)
	assert.Equal(t, "email_domain", suggestions[0].SubType)
	assert.Equal(t, "Initech Team", suggestions[0].Name)
	assert.Equal(t, model.ConfidenceMedium, suggestions[0].Confidence)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, suggestions[0].ContactIDs)
}

func TestGenerate_TwoDomainContactsBelowFloor(t *testing.T) {
	g := newTestGenerator(t)

	contacts := []model.ContactRef{
		{ID: "a", Email: "ana@initech.com"},
		{ID: "b", Email: "ben@initech.com"},
	}

	suggestions, _ := g.Generate(nil, contacts, nil, nil)
	assert.Empty(t, suggestions)
}

func TestGenerate_RankingAndTruncation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSuggestions = 2
	g, err := New(cfg)
	require.NoError(t, err)

	// Five contacts at one company outrank two at another; the location pair
	// falls off the truncated list.
	var contacts []model.ContactRef
	for i := 0; i < 5; i++ {
		contacts = append(contacts, model.ContactRef{ID: fmt.Sprintf("big%d", i), Company: "Initech"})
	}
	contacts = append(contacts,
		model.ContactRef{ID: "s1", Company: "Globex"},
		model.ContactRef{ID: "s2", Company: "Globex"},
		model.ContactRef{ID: "l1", Location: coord(40.7128, -74.0060)},
		model.ContactRef{ID: "l2", Location: coord(40.7129, -74.0060)},
	)

	suggestions, _ := g.Generate(nil, contacts, nil, nil)

	require.Len(t, suggestions, 2)
	assert.Equal(t, "Initech Team", suggestions[0].Name)
	assert.Equal(t, "Globex Team", suggestions[1].Name)
	assert.GreaterOrEqual(t, suggestions[0].Priority, suggestions[1].Priority)
}

func TestGenerate_EventClusterSuggestion(t *testing.T) {
	g := newTestGenerator(t)

	ana := model.ContactRef{ID: "a", Name: "Ana"}
	ben := model.ContactRef{ID: "b", Name: "Ben"}
	cl := testCluster(model.ConfidenceHigh, 120, ana, ben)

	suggestions, _ := g.Generate([]model.Cluster{cl}, nil, nil, nil)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, model.SuggestionEvent, s.Type)
	assert.Equal(t, "Moscone Convention Center Conference", s.Name)
	assert.Equal(t, model.ConfidenceHigh, s.Confidence)
	require.NotNil(t, s.Quality)
	require.NotNil(t, s.Quality.ClusterTightness)
	assert.InDelta(t, 120, *s.Quality.ClusterTightness, 1e-9)
	require.NotNil(t, s.EventData)
	assert.Equal(t, "Moscone Convention Center", s.EventData.Name)
}

func TestGenerate_SingleContactClusterSkipped(t *testing.T) {
	g := newTestGenerator(t)

	cl := testCluster(model.ConfidenceHigh, 50, model.ContactRef{ID: "solo"})

	suggestions, _ := g.Generate([]model.Cluster{cl}, nil, nil, nil)
	assert.Empty(t, suggestions)
}

func TestGenerate_TemporalAxes(t *testing.T) {
	g := newTestGenerator(t)

	// Same hour beats same day in confidence.
	contacts := []model.ContactRef{
		{ID: "a", SubmittedAt: ts("2026-03-14T10:05:00Z")},
		{ID: "b", SubmittedAt: ts("2026-03-14T10:55:00Z")},
		{ID: "c", SubmittedAt: ts("2026-03-14T18:00:00Z")},
	}

	suggestions, _ := g.Generate(nil, contacts, nil, nil)

	var hour, day *model.GroupSuggestion
	for i := range suggestions {
		switch suggestions[i].SubType {
		case "same_hour":
			hour = &suggestions[i]
		case "same_day":
			day = &suggestions[i]
		}
	}
	require.NotNil(t, hour)
	require.NotNil(t, day)
	assert.Equal(t, model.ConfidenceHigh, hour.Confidence)
	assert.ElementsMatch(t, []string{"a", "b"}, hour.ContactIDs)
	assert.Equal(t, model.ConfidenceMedium, day.Confidence)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, day.ContactIDs)
}

func TestGenerate_EventContextAxis(t *testing.T) {
	g := newTestGenerator(t)

	ev := model.Event{
		Name:       "Summit Expo",
		Location:   model.Coordinate{Latitude: 36.1316, Longitude: -115.1536},
		EventScore: 0.8,
		Confidence: model.ConfidenceHigh,
	}
	contacts := []model.ContactRef{
		{ID: "near1", Location: coord(36.1320, -115.1536)},
		{ID: "near2", Location: coord(36.1310, -115.1540)},
		{ID: "far", Location: coord(37.0, -115.1536)},
	}

	suggestions, _ := g.Generate(nil, contacts, []model.Event{ev}, nil)

	var ctx *model.GroupSuggestion
	for i := range suggestions {
		if suggestions[i].Type == model.SuggestionContext {
			ctx = &suggestions[i]
		}
	}
	require.NotNil(t, ctx)
	assert.Equal(t, "Met near Summit Expo", ctx.Name)
	assert.ElementsMatch(t, []string{"near1", "near2"}, ctx.ContactIDs)
}

func TestGenerate_IndustryAxis(t *testing.T) {
	g := newTestGenerator(t)

	contacts := []model.ContactRef{
		{ID: "a", JobTitle: "Senior Software Engineer"},
		{ID: "b", JobTitle: "developer advocate"},
		{ID: "c", JobTitle: "Pastry Chef"},
	}

	suggestions, _ := g.Generate(nil, contacts, nil, nil)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, model.SuggestionIndustry, s.Type)
	assert.Equal(t, "technology", s.SubType)
	assert.Equal(t, model.ConfidenceLow, s.Confidence)
	assert.ElementsMatch(t, []string{"a", "b"}, s.ContactIDs)
}

func TestGenerate_Empty(t *testing.T) {
	g := newTestGenerator(t)

	suggestions, stats := g.Generate(nil, nil, nil, nil)

	assert.Empty(t, suggestions)
	assert.Zero(t, stats.Generated)
}

func TestContactSetKey(t *testing.T) {
	assert.Equal(t, contactSetKey([]string{"a", "b"}), contactSetKey([]string{"b", "a"}))
	assert.Equal(t, contactSetKey([]string{"a", "a", "b"}), contactSetKey([]string{"b", "a"}))
	assert.Equal(t, contactSetKey([]string{"a", "", "b"}), contactSetKey([]string{"a", "b"}))
	assert.NotEqual(t, contactSetKey([]string{"a"}), contactSetKey([]string{"a", "b"}))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default valid", func(*Config) {}, false},
		{"zero max suggestions", func(c *Config) { c.MaxSuggestions = 0 }, true},
		{"company floor below two", func(c *Config) { c.MinCompanyContacts = 1 }, true},
		{"domain floor below two", func(c *Config) { c.MinDomainContacts = 0 }, true},
		{"non-positive location radius", func(c *Config) { c.LocationRadiusMeters = 0 }, true},
		{"non-positive context radius", func(c *Config) { c.ContextRadiusMeters = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDescribeContacts(t *testing.T) {
	tests := []struct {
		name     string
		contacts []model.ContactRef
		expected string
	}{
		{
			"no names",
			[]model.ContactRef{{ID: "a"}, {ID: "b"}},
			"2 contacts",
		},
		{
			"few names",
			[]model.ContactRef{{ID: "a", Name: "Ana"}, {ID: "b", Name: "Ben"}},
			"Ana, Ben",
		},
		{
			"overflow names",
			[]model.ContactRef{
				{ID: "a", Name: "Ana"}, {ID: "b", Name: "Ben"},
				{ID: "c", Name: "Cam"}, {ID: "d", Name: "Dee"},
			},
			"Ana, Ben, Cam and 1 more",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describeContacts(tt.contacts))
		})
	}
}
