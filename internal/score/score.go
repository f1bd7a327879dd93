// Package score rates candidate venues for event likelihood.
package score

import (
	"strings"

	"github.com/contactmesh/geodetect/internal/model"
)

// Thresholds for the confidence tiers.
const (
	highConfidenceScore   = 0.7
	mediumConfidenceScore = 0.4
)

// Weights for each additive signal. The signals are not mutually exclusive;
// the final score is clamped to 1.0.
const (
	typeMatchWeight    = 0.5
	keywordMatchWeight = 0.3
	operationalWeight  = 0.1
	ratingWeight       = 0.1
	textSearchWeight   = 0.1

	goodRatingFloor = 4.0
)

// Config holds the tunable type/keyword tables. Values are configuration
// defaults from the source data, not hard invariants.
type Config struct {
	EventVenueTypes []string `mapstructure:"event_venue_types"`
	NameKeywords    []string `mapstructure:"name_keywords"`
}

// DefaultConfig returns the stock venue-type and keyword tables.
func DefaultConfig() Config {
	return Config{
		EventVenueTypes: []string{
			"convention_center", "event_venue", "concert_hall",
			"performing_arts_theater", "university", "stadium",
			"banquet_hall", "community_center",
		},
		NameKeywords: []string{
			"convention", "conference", "center", "hall", "arena", "theater",
			"expo", "summit",
		},
	}
}

// Result is the outcome of scoring a single venue.
type Result struct {
	Score      float64
	Confidence model.Confidence
	Indicators []string
}

// Scorer computes event scores for venues. Pure and side-effect-free: it never
// rejects input, only scores it. Acceptance thresholding belongs to the event
// factory's caller.
type Scorer struct {
	venueTypes map[string]bool
	keywords   []string
}

// New builds a Scorer from the given tables.
func New(cfg Config) *Scorer {
	types := make(map[string]bool, len(cfg.EventVenueTypes))
	for _, t := range cfg.EventVenueTypes {
		types[strings.ToLower(t)] = true
	}
	keywords := make([]string, 0, len(cfg.NameKeywords))
	for _, k := range cfg.NameKeywords {
		keywords = append(keywords, strings.ToLower(k))
	}
	return &Scorer{venueTypes: types, keywords: keywords}
}

// Score rates one place record given its discovery method.
func (s *Scorer) Score(place model.Place, method model.DiscoveryMethod) Result {
	var score float64
	var indicators []string

	for _, t := range place.Types {
		if s.venueTypes[strings.ToLower(t)] {
			score += typeMatchWeight
			indicators = append(indicators, "venue_type:"+strings.ToLower(t))
			break
		}
	}

	name := strings.ToLower(place.Name)
	for _, kw := range s.keywords {
		if strings.Contains(name, kw) {
			score += keywordMatchWeight
			indicators = append(indicators, "name_keyword:"+kw)
			break
		}
	}

	if place.BusinessStatus == model.StatusOperational {
		score += operationalWeight
		indicators = append(indicators, "operational")
	}

	if place.Rating != nil && *place.Rating >= goodRatingFloor {
		score += ratingWeight
		indicators = append(indicators, "well_rated")
	}

	// Text-search hits already passed a contextual query filter.
	if method == model.DiscoveryTextSearch {
		score += textSearchWeight
		indicators = append(indicators, "contextual_query")
	}

	if score > 1.0 {
		score = 1.0
	}

	return Result{
		Score:      score,
		Confidence: tier(score),
		Indicators: indicators,
	}
}

func tier(score float64) model.Confidence {
	switch {
	case score >= highConfidenceScore:
		return model.ConfidenceHigh
	case score >= mediumConfidenceScore:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
