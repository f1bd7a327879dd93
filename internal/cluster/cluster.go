// Package cluster groups detected events into validated proximity clusters.
//
// Growth uses a context-aware radius (tight for known corporate campuses,
// looser for convention-scale venues), a pairwise similarity floor, and hard
// compatibility checks. A global coherence ceiling then guards against
// transitive radius-chaining; incoherent clusters are split locally rather
// than silently accepted.
package cluster

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contactmesh/geodetect/internal/geo"
	"github.com/contactmesh/geodetect/internal/model"
)

// Tightness bonuses applied to cluster confidence.
const (
	tightDistanceMeters = 200
	looseDistanceMeters = 400
	tightBonus          = 0.2
	looseBonus          = 0.1
)

// Clusterer converts a flat list of events into validated clusters.
type Clusterer struct {
	cfg      Config
	campuses []Campus
}

// Stats counts clustering outcomes for the run's analytics.
type Stats struct {
	Formed   int
	Split    int
	Rejected int
}

// New builds a Clusterer. Config defects and a broken campus table fail here,
// at construction, never per request.
func New(cfg Config) (*Clusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	campuses, err := LoadCampuses(cfg.CampusFile)
	if err != nil {
		return nil, err
	}
	return &Clusterer{cfg: cfg, campuses: campuses}, nil
}

// Cluster groups events into coherent clusters. Malformed or empty input
// yields an empty cluster list; all rejection is policy-driven filtering
// recorded in Stats, never an error.
func (c *Clusterer) Cluster(events []model.Event) ([]model.Cluster, Stats) {
	var out []model.Cluster
	var stats Stats
	if len(events) == 0 {
		return out, stats
	}

	idx := geo.NewEventIndex(events)
	assigned := make([]bool, len(events))

	for i := range events {
		if assigned[i] {
			continue
		}
		seed := events[i]
		assigned[i] = true
		if !geo.IsFinite(seed.Location.Latitude, seed.Location.Longitude) {
			continue
		}

		ctx := c.companyContext(seed)
		radius := c.growthRadius(seed, ctx)

		members := []int{i}
		for _, j := range idx.Within(seed.Location.Latitude, seed.Location.Longitude, radius, i) {
			if assigned[j] {
				continue
			}
			if !c.canMerge(ctx, seed, events[j]) {
				continue
			}
			members = append(members, j)
			assigned[j] = true
		}

		cl := c.build(events, members, radius, ctx)
		stats.Formed++

		if cl.Validation.Coherent {
			if c.accept(cl) {
				out = append(out, cl)
			} else {
				stats.Rejected++
			}
			continue
		}

		// Do not discard incoherent clusters silently: re-cluster the members
		// locally at a stricter radius.
		stats.Split++
		zap.L().Debug("cluster: splitting incoherent cluster",
			zap.String("seed", seed.Name),
			zap.Float64("max_distance", cl.Validation.MaxInternalDistance),
			zap.Float64("ceiling", c.cfg.MaxIntraClusterDistance),
		)
		splitRadius := math.Min(radius*0.5, c.cfg.SplitRadiusCapMeters)
		for _, sub := range splitMembers(events, members, splitRadius) {
			subCl := c.build(events, sub, splitRadius, ctx)
			if subCl.Validation.Coherent && len(subCl.ContactIDs) >= 2 {
				out = append(out, subCl)
			} else {
				stats.Rejected++
			}
		}
	}

	return out, stats
}

// canMerge applies every absorption check. All must pass; any single failing
// check rejects the merge.
func (c *Clusterer) canMerge(ctx *model.CompanyContext, seed, candidate model.Event) bool {
	if similarity(seed, candidate) <= c.cfg.MinSimilarity {
		return false
	}
	if !typesCompatible(seed.Types, candidate.Types, c.cfg.IncompatibleTypes) {
		return false
	}
	if ctx != nil && !shareContactCompany(seed, candidate) {
		return false
	}
	return true
}

// build assembles a cluster from member indices and validates its coherence.
func (c *Clusterer) build(events []model.Event, members []int, radius float64, ctx *model.CompanyContext) model.Cluster {
	memberEvents := make([]model.Event, 0, len(members))
	lats := make([]float64, 0, len(members))
	lngs := make([]float64, 0, len(members))
	for _, m := range members {
		memberEvents = append(memberEvents, events[m])
		lats = append(lats, events[m].Location.Latitude)
		lngs = append(lngs, events[m].Location.Longitude)
	}

	centerLat, centerLng := geo.Centroid(lats, lngs)
	maxDist, avgDist := pairwiseDistances(memberEvents)
	coherent := maxDist <= c.cfg.MaxIntraClusterDistance

	reason := "coherent"
	if !coherent {
		reason = fmt.Sprintf("max pairwise distance %.0fm exceeds ceiling %.0fm",
			maxDist, c.cfg.MaxIntraClusterDistance)
	}

	contacts, contactIDs := unionContacts(memberEvents)

	return model.Cluster{
		ID:           uuid.NewString(),
		PrimaryEvent: memberEvents[0],
		Events:       memberEvents,
		Contacts:     contacts,
		ContactIDs:   contactIDs,
		CenterPoint: model.Coordinate{
			Latitude:  centerLat,
			Longitude: centerLng,
		},
		RadiusMeters:   radius,
		Confidence:     clusterConfidence(memberEvents, maxDist),
		CompanyContext: ctx,
		Validation: model.ValidationResult{
			Coherent:            coherent,
			MaxInternalDistance: maxDist,
			AverageDistance:     avgDist,
			MaxAllowedDistance:  c.cfg.MaxIntraClusterDistance,
			Reason:              reason,
		},
	}
}

// accept applies the final acceptance rule: coherent AND (two or more
// contacts OR high confidence).
func (c *Clusterer) accept(cl model.Cluster) bool {
	return cl.Validation.Coherent &&
		(len(cl.ContactIDs) >= 2 || cl.Confidence == model.ConfidenceHigh)
}

// pairwiseDistances returns the maximum and average distance in meters over
// all member pairs. Single-member clusters report zero for both.
func pairwiseDistances(events []model.Event) (max, avg float64) {
	if len(events) < 2 {
		return 0, 0
	}
	var sum float64
	pairs := 0
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			d := geo.DistanceMeters(
				events[i].Location.Latitude, events[i].Location.Longitude,
				events[j].Location.Latitude, events[j].Location.Longitude,
			)
			sum += d
			pairs++
			if d > max {
				max = d
			}
		}
	}
	return max, sum / float64(pairs)
}

// unionContacts merges member contact lists, deduplicated by contact id.
func unionContacts(events []model.Event) ([]model.ContactRef, []string) {
	seen := make(map[string]bool)
	var contacts []model.ContactRef
	var ids []string
	for _, ev := range events {
		for _, c := range ev.ContactsNearby {
			if c.ID == "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			contacts = append(contacts, c)
			ids = append(ids, c.ID)
		}
		for _, id := range ev.ContactIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return contacts, ids
}

// clusterConfidence recomputes confidence from member event quality plus a
// tightness bonus.
func clusterConfidence(events []model.Event, maxDist float64) model.Confidence {
	if len(events) == 0 {
		return model.ConfidenceLow
	}
	var quality float64
	for _, ev := range events {
		var q float64
		if ev.Rating != nil {
			q += *ev.Rating / 5 * 0.4
		}
		if ev.UserRatingCount != nil && *ev.UserRatingCount >= 10 {
			q += 0.2
		}
		if ev.BusinessStatus == model.StatusOperational {
			q += 0.2
		}
		quality += q
	}
	quality /= float64(len(events))

	switch {
	case maxDist < tightDistanceMeters:
		quality += tightBonus
	case maxDist < looseDistanceMeters:
		quality += looseBonus
	}

	switch {
	case quality >= 0.7:
		return model.ConfidenceHigh
	case quality >= 0.4:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// splitMembers re-clusters member indices at a stricter radius. A candidate
// joins a group when it is within the radius of any current group member.
func splitMembers(events []model.Event, members []int, radiusMeters float64) [][]int {
	groups := make([][]int, 0, len(members))
	visited := make(map[int]bool, len(members))

	for _, m := range members {
		if visited[m] {
			continue
		}
		group := []int{m}
		visited[m] = true

		for _, n := range members {
			if visited[n] {
				continue
			}
			for _, g := range group {
				d := geo.DistanceMeters(
					events[n].Location.Latitude, events[n].Location.Longitude,
					events[g].Location.Latitude, events[g].Location.Longitude,
				)
				if d <= radiusMeters {
					group = append(group, n)
					visited[n] = true
					break
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// CampusFor exposes campus lookup for diagnostics and tests.
func (c *Clusterer) CampusFor(lat, lng float64) (string, bool) {
	campus := matchCampus(c.campuses, lat, lng)
	if campus == nil {
		return "", false
	}
	return strings.TrimSpace(campus.Company), true
}
