// Package places is the HTTP client for the Places API (New) used to discover
// candidate venues around contact locations.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/contactmesh/geodetect/internal/model"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

const fieldMask = "places.id,places.displayName,places.location,places.types," +
	"places.rating,places.userRatingCount,places.businessStatus," +
	"places.formattedAddress,places.shortFormattedAddress,places.photos"

// Client performs venue searches around a coordinate.
type Client interface {
	SearchNearby(ctx context.Context, center model.Coordinate, opts SearchOpts) ([]model.Place, error)
	ContextualTextSearch(ctx context.Context, center model.Coordinate, opts TextSearchOpts) ([]QueryResult, error)
}

// SearchOpts tunes a nearby search.
type SearchOpts struct {
	RadiusMeters   float64
	IncludedTypes  []string
	MaxResults     int
	RankPreference string
}

// TextSearchOpts tunes a contextual text search.
type TextSearchOpts struct {
	EventTypes []string
	Now        time.Time // zero means time.Now()
	MaxResults int
}

// QueryResult pairs a generated query with the places it surfaced, so the
// caller can attribute each venue to the search that found it.
type QueryResult struct {
	Query  string
	Places []model.Place
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type nearbySearchRequest struct {
	IncludedTypes       []string            `json:"includedTypes,omitempty"`
	MaxResultCount      int                 `json:"maxResultCount,omitempty"`
	RankPreference      string              `json:"rankPreference,omitempty"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type textSearchRequest struct {
	TextQuery      string               `json:"textQuery"`
	MaxResultCount int                  `json:"maxResultCount,omitempty"`
	LocationBias   *locationRestriction `json:"locationBias,omitempty"`
}

type searchResponse struct {
	Places []apiPlace `json:"places"`
}

type apiPlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Location              latLng   `json:"location"`
	Types                 []string `json:"types"`
	Rating                *float64 `json:"rating"`
	UserRatingCount       *int     `json:"userRatingCount"`
	BusinessStatus        string   `json:"businessStatus"`
	FormattedAddress      string   `json:"formattedAddress"`
	ShortFormattedAddress string   `json:"shortFormattedAddress"`
	Photos                []struct {
		Name string `json:"name"`
	} `json:"photos"`
}

func (p apiPlace) toModel() model.Place {
	out := model.Place{
		ID:   p.ID,
		Name: p.DisplayName.Text,
		Location: model.Coordinate{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		},
		Types:            p.Types,
		Rating:           p.Rating,
		UserRatingCount:  p.UserRatingCount,
		BusinessStatus:   model.BusinessStatus(p.BusinessStatus),
		Vicinity:         p.ShortFormattedAddress,
		FormattedAddress: p.FormattedAddress,
	}
	for _, photo := range p.Photos {
		out.PhotoRefs = append(out.PhotoRefs, photo.Name)
	}
	return out
}

// SearchNearby lists venues of the requested types inside a circle around the
// center.
func (c *httpClient) SearchNearby(ctx context.Context, center model.Coordinate, opts SearchOpts) ([]model.Place, error) {
	reqBody := nearbySearchRequest{
		IncludedTypes:  opts.IncludedTypes,
		MaxResultCount: opts.MaxResults,
		RankPreference: opts.RankPreference,
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: latLng{Latitude: center.Latitude, Longitude: center.Longitude},
				Radius: opts.RadiusMeters,
			},
		},
	}

	var resp searchResponse
	if err := c.post(ctx, "/places:searchNearby", reqBody, &resp); err != nil {
		return nil, err
	}

	places := make([]model.Place, 0, len(resp.Places))
	for _, p := range resp.Places {
		places = append(places, p.toModel())
	}
	return places, nil
}

// ContextualTextSearch runs one text search per generated contextual query and
// returns the results keyed by query.
func (c *httpClient) ContextualTextSearch(ctx context.Context, center model.Coordinate, opts TextSearchOpts) ([]QueryResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	bias := &locationRestriction{
		Circle: circle{
			Center: latLng{Latitude: center.Latitude, Longitude: center.Longitude},
			Radius: 2000,
		},
	}

	var out []QueryResult
	for _, query := range ContextualQueries(opts.EventTypes, now) {
		var resp searchResponse
		err := c.post(ctx, "/places:searchText", textSearchRequest{
			TextQuery:      query,
			MaxResultCount: opts.MaxResults,
			LocationBias:   bias,
		}, &resp)
		if err != nil {
			return nil, eris.Wrapf(err, "places: text search %q", query)
		}

		result := QueryResult{Query: query}
		for _, p := range resp.Places {
			result.Places = append(result.Places, p.toModel())
		}
		out = append(out, result)
	}
	return out, nil
}

// ContextualQueries builds the text-search queries for the requested event
// types, adding a seasonal term when the date suggests one.
func ContextualQueries(eventTypes []string, now time.Time) []string {
	terms := map[string]string{
		"convention_center":         "convention happening now",
		"event_venue":               "live event today",
		"concert_hall":              "concert tonight",
		"performing_arts_theater":   "show tonight",
		"stadium":                   "game today",
		"university":                "campus event today",
		"banquet_hall":              "reception today",
		"community_center":          "community event today",
	}

	var queries []string
	seen := make(map[string]bool)
	for _, t := range eventTypes {
		q, ok := terms[strings.ToLower(t)]
		if !ok {
			continue
		}
		if !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		queries = append(queries, "conference or convention happening now")
	}
	if seasonal := seasonalQuery(now); seasonal != "" {
		queries = append(queries, seasonal)
	}
	return queries
}

func seasonalQuery(now time.Time) string {
	switch now.Month() {
	case time.December, time.January:
		return "holiday party venue"
	case time.June, time.July, time.August:
		return "summer festival"
	case time.September, time.October:
		return "trade show this week"
	default:
		return ""
	}
}

func (c *httpClient) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}
	return nil
}
