package cluster

import (
	"math"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/contactmesh/geodetect/internal/model"
)

// Similarity weights. Type overlap dominates, venue-name closeness second;
// status and rating act as small confirmations.
const (
	typeOverlapWeight  = 0.5
	nameWeight         = 0.3
	statusMatchBonus   = 0.1
	ratingClosenessMax = 0.1
)

// similarity computes the pairwise similarity score between two events.
func similarity(a, b model.Event) float64 {
	score := typeOverlap(a.Types, b.Types) * typeOverlapWeight
	score += levenshtein.Similarity(strings.ToLower(a.Name), strings.ToLower(b.Name), nil) * nameWeight

	if a.BusinessStatus != model.StatusUnknown && a.BusinessStatus == b.BusinessStatus {
		score += statusMatchBonus
	}

	if a.Rating != nil && b.Rating != nil {
		closeness := 1 - math.Abs(*a.Rating-*b.Rating)/5
		if closeness < 0 {
			closeness = 0
		}
		score += closeness * ratingClosenessMax
	}

	return score
}

// typeOverlap returns |intersection| / |larger set| for two type lists.
func typeOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[strings.ToLower(t)] = true
	}
	inter := 0
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		lt := strings.ToLower(t)
		if setB[lt] {
			continue
		}
		setB[lt] = true
		if setA[lt] {
			inter++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(inter) / float64(larger)
}

// typesCompatible reports whether no type pair across the two events is
// marked mutually exclusive. The matrix is checked in both directions.
func typesCompatible(a, b []string, matrix map[string][]string) bool {
	return !hasExclusion(a, b, matrix) && !hasExclusion(b, a, matrix)
}

func hasExclusion(a, b []string, matrix map[string][]string) bool {
	for _, ta := range a {
		excluded, ok := matrix[strings.ToLower(ta)]
		if !ok {
			continue
		}
		for _, tb := range b {
			lb := strings.ToLower(tb)
			for _, ex := range excluded {
				if lb == ex {
					return true
				}
			}
		}
	}
	return false
}

// shareContactCompany reports whether the two events have at least one
// associated-contact company in common, compared case-insensitively.
func shareContactCompany(a, b model.Event) bool {
	companies := make(map[string]bool)
	for _, c := range a.ContactsNearby {
		if c.Company != "" {
			companies[strings.ToLower(c.Company)] = true
		}
	}
	if len(companies) == 0 {
		return false
	}
	for _, c := range b.ContactsNearby {
		if c.Company != "" && companies[strings.ToLower(c.Company)] {
			return true
		}
	}
	return false
}
