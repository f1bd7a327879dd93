// Package detect orchestrates one detection run: preprocess locations, search
// venues around each, score and filter them into events, cluster, and generate
// group suggestions.
package detect

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/contactmesh/geodetect/internal/cache"
	"github.com/contactmesh/geodetect/internal/cluster"
	"github.com/contactmesh/geodetect/internal/config"
	"github.com/contactmesh/geodetect/internal/event"
	"github.com/contactmesh/geodetect/internal/geo"
	"github.com/contactmesh/geodetect/internal/model"
	"github.com/contactmesh/geodetect/internal/preprocess"
	"github.com/contactmesh/geodetect/internal/score"
	"github.com/contactmesh/geodetect/internal/suggest"
	"github.com/contactmesh/geodetect/pkg/places"
)

// Detector runs the full detection pipeline. Safe for concurrent use.
type Detector struct {
	cfg        *config.Config
	places     places.Client
	cache      cache.Cache
	scorer     *score.Scorer
	thresholds event.Thresholds
	clusterer  *cluster.Clusterer
	suggester  *suggest.Generator
	limiter    *rate.Limiter
}

// New wires the pipeline stages from configuration. Construction validates
// every stage's config; a broken table fails here, never per request.
func New(cfg *config.Config, client places.Client, store cache.Cache) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clusterer, err := cluster.New(cfg.Cluster)
	if err != nil {
		return nil, err
	}
	suggester, err := suggest.New(cfg.Suggest)
	if err != nil {
		return nil, err
	}

	return &Detector{
		cfg:        cfg,
		places:     client,
		cache:      store,
		scorer:     score.New(cfg.Score),
		thresholds: event.Thresholds{Nearby: cfg.Event.NearbyThreshold, Text: cfg.Event.TextThreshold},
		clusterer:  clusterer,
		suggester:  suggester,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Detect.SearchesPerSecond), 1),
	}, nil
}

// locationResult holds the outcome of one location's venue search.
type locationResult struct {
	events   []model.Event
	scored   int
	rejected int
	cacheHit bool
	failed   bool
}

// Detect runs the pipeline for one request. Invalid or empty input degrades
// to fewer locations processed, never an error; individual location search
// failures are recorded in analytics and skipped.
func (d *Detector) Detect(ctx context.Context, req model.DetectionRequest) (*model.DetectionResult, error) {
	radius := req.RadiusMeters
	if radius <= 0 {
		radius = d.cfg.Detect.DefaultRadiusMeters
	}
	if radius > d.cfg.Detect.MaxRadiusMeters {
		radius = d.cfg.Detect.MaxRadiusMeters
	}

	eventTypes := req.EventTypes
	if len(eventTypes) == 0 {
		eventTypes = d.cfg.Score.EventVenueTypes
	}

	locations, removed := preprocess.Dedupe(req.Locations)

	analytics := model.Analytics{
		LocationsReceived:     len(req.Locations),
		LocationsProcessed:    len(locations),
		DuplicatePingsRemoved: removed,
	}

	results := make([]locationResult, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Detect.MaxConcurrent)
	for i := range locations {
		i := i
		g.Go(func() error {
			res, err := d.searchLocation(gctx, locations[i], radius, eventTypes, req.IncludeTextSearch)
			if err != nil {
				// Per-location failures are soft unless the context died.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.L().Warn("detect: location search failed",
					zap.Float64("lat", locations[i].Latitude),
					zap.Float64("lng", locations[i].Longitude),
					zap.Error(err),
				)
				results[i] = locationResult{failed: true}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "detect: search fan-out")
	}

	var allEvents []model.Event
	for _, res := range results {
		switch {
		case res.failed:
			analytics.SearchFailures++
		case res.cacheHit:
			analytics.CacheHits++
		default:
			analytics.CacheMisses++
		}
		analytics.VenuesScored += res.scored
		analytics.VenuesRejected += res.rejected
		allEvents = append(allEvents, res.events...)
	}

	events := mergeEvents(allEvents)
	analytics.EventsDetected = len(events)

	clusters, cstats := d.clusterer.Cluster(events)
	analytics.ClustersFormed = cstats.Formed
	analytics.ClustersSplit = cstats.Split
	analytics.ClustersRejected = cstats.Rejected

	contacts := unionContacts(locations)
	suggestions, sstats := d.suggester.Generate(clusters, contacts, events, req.ExistingGroups)
	analytics.SuggestionsGenerated = sstats.Generated
	analytics.SuggestionsDeduped = sstats.Deduped
	if req.MaxResults > 0 && len(suggestions) > req.MaxResults {
		suggestions = suggestions[:req.MaxResults]
	}

	return &model.DetectionResult{
		Events:      events,
		Clusters:    clusters,
		Suggestions: suggestions,
		Analytics:   analytics,
	}, nil
}

// searchLocation resolves one location's events, consulting the cache first.
// Cache failures are soft: log and recompute.
func (d *Detector) searchLocation(ctx context.Context, loc model.PreprocessedLocation, radius float64, eventTypes []string, textSearch bool) (locationResult, error) {
	key := cache.Key{
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		RadiusMeters: radius,
		EventTypes:   eventTypes,
	}

	if cached, ok, err := d.cache.Get(ctx, key); err != nil {
		zap.L().Warn("detect: cache read failed", zap.Error(err))
	} else if ok {
		return locationResult{
			events:   rebindContacts(cached, loc),
			cacheHit: true,
		}, nil
	}

	var res locationResult
	center := model.Coordinate{Latitude: loc.Latitude, Longitude: loc.Longitude}

	if err := d.limiter.Wait(ctx); err != nil {
		return res, eris.Wrap(err, "detect: rate limit wait")
	}
	found, err := d.places.SearchNearby(ctx, center, places.SearchOpts{
		RadiusMeters:   radius,
		IncludedTypes:  eventTypes,
		MaxResults:     d.cfg.Detect.MaxResultsPerSearch,
		RankPreference: "POPULARITY",
	})
	if err != nil {
		return res, eris.Wrap(err, "detect: nearby search")
	}
	d.collect(&res, found, model.DiscoveryNearbySearch, loc, "")

	if textSearch {
		if err := d.limiter.Wait(ctx); err != nil {
			return res, eris.Wrap(err, "detect: rate limit wait")
		}
		queryResults, err := d.places.ContextualTextSearch(ctx, center, places.TextSearchOpts{
			EventTypes: eventTypes,
			MaxResults: d.cfg.Detect.MaxResultsPerSearch,
		})
		if err != nil {
			return res, eris.Wrap(err, "detect: text search")
		}
		for _, qr := range queryResults {
			d.collect(&res, qr.Places, model.DiscoveryTextSearch, loc, qr.Query)
		}
	}

	if err := d.cache.Set(ctx, key, res.events, d.cfg.Cache.TTL); err != nil {
		zap.L().Warn("detect: cache write failed", zap.Error(err))
	}
	return res, nil
}

// collect scores candidate venues and appends the ones clearing the acceptance
// floor for their discovery method.
func (d *Detector) collect(res *locationResult, found []model.Place, method model.DiscoveryMethod, loc model.PreprocessedLocation, query string) {
	for _, place := range found {
		scored := d.scorer.Score(place, method)
		res.scored++
		if !d.thresholds.Accept(scored.Score, method) {
			res.rejected++
			continue
		}
		res.events = append(res.events, event.Build(place, scored, method, loc.Contacts, loc.ContactIDs, query))
	}
}

// rebindContacts rebinds cached events to the current request's contacts. The
// cached venue data is reusable; the contact association is not.
func rebindContacts(cached []model.Event, loc model.PreprocessedLocation) []model.Event {
	out := make([]model.Event, len(cached))
	for i, ev := range cached {
		ev.ContactsNearby = loc.Contacts
		ev.ContactIDs = loc.ContactIDs
		ev.Timestamp = time.Now().UTC()
		out[i] = ev
	}
	return out
}

// mergeEvents deduplicates events describing the same venue discovered from
// different search locations, unioning their contact sets. The first
// occurrence's score and metadata win.
func mergeEvents(events []model.Event) []model.Event {
	byVenue := make(map[string]int, len(events))
	var out []model.Event

	for _, ev := range events {
		key := ev.Name + "@" + geo.GridKey(ev.Location.Latitude, ev.Location.Longitude)
		idx, ok := byVenue[key]
		if !ok {
			byVenue[key] = len(out)
			out = append(out, ev)
			continue
		}

		kept := &out[idx]
		seen := make(map[string]bool, len(kept.ContactIDs))
		for _, id := range kept.ContactIDs {
			seen[id] = true
		}
		for _, c := range ev.ContactsNearby {
			if c.ID == "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			kept.ContactsNearby = append(kept.ContactsNearby, c)
			kept.ContactIDs = append(kept.ContactIDs, c.ID)
		}
		for _, id := range ev.ContactIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			kept.ContactIDs = append(kept.ContactIDs, id)
		}
	}
	return out
}

// unionContacts flattens per-location contact lists, deduplicated by id.
func unionContacts(locations []model.PreprocessedLocation) []model.ContactRef {
	seen := make(map[string]bool)
	var out []model.ContactRef
	for _, loc := range locations {
		for _, c := range loc.Contacts {
			if c.ID == "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}
