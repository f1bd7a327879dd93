package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactmesh/geodetect/internal/model"
)

var vegasCenter = model.Coordinate{Latitude: 36.1316, Longitude: -115.1536}

func TestSearchNearby_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.businessStatus")

		var body nearbySearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"convention_center"}, body.IncludedTypes)
		assert.InDelta(t, 36.1316, body.LocationRestriction.Circle.Center.Latitude, 0.001)
		assert.InDelta(t, 500.0, body.LocationRestriction.Circle.Radius, 0.001)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"places": [{
				"id": "ChIJ-lvcc",
				"displayName": {"text": "Las Vegas Convention Center"},
				"location": {"latitude": 36.1316, "longitude": -115.1536},
				"types": ["convention_center", "event_venue"],
				"rating": 4.4,
				"userRatingCount": 12000,
				"businessStatus": "OPERATIONAL",
				"formattedAddress": "3150 Paradise Rd, Las Vegas, NV 89109, USA",
				"photos": [{"name": "places/x/photos/1"}, {"name": "places/x/photos/2"}]
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SearchNearby(context.Background(), vegasCenter, SearchOpts{
		RadiusMeters:  500,
		IncludedTypes: []string{"convention_center"},
		MaxResults:    20,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	place := got[0]
	assert.Equal(t, "ChIJ-lvcc", place.ID)
	assert.Equal(t, "Las Vegas Convention Center", place.Name)
	assert.Equal(t, []string{"convention_center", "event_venue"}, place.Types)
	require.NotNil(t, place.Rating)
	assert.InDelta(t, 4.4, *place.Rating, 0.001)
	require.NotNil(t, place.UserRatingCount)
	assert.Equal(t, 12000, *place.UserRatingCount)
	assert.Equal(t, model.StatusOperational, place.BusinessStatus)
	assert.Len(t, place.PhotoRefs, 2)
}

func TestSearchNearby_MissingOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places": [{"id": "x", "displayName": {"text": "Unrated Venue"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SearchNearby(context.Background(), vegasCenter, SearchOpts{RadiusMeters: 500})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Rating)
	assert.Nil(t, got[0].UserRatingCount)
	assert.Equal(t, model.StatusUnknown, got[0].BusinessStatus)
}

func TestSearchNearby_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SearchNearby(context.Background(), vegasCenter, SearchOpts{RadiusMeters: 500})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchNearby_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.SearchNearby(context.Background(), vegasCenter, SearchOpts{RadiusMeters: 500})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearchNearby_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SearchNearby(ctx, vegasCenter, SearchOpts{RadiusMeters: 500})

	assert.Error(t, err)
}

func TestContextualTextSearch(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchText", r.URL.Path)

		var body textSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		queries = append(queries, body.TextQuery)
		require.NotNil(t, body.LocationBias)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places": [{"id": "y", "displayName": {"text": "Found Venue"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.ContextualTextSearch(context.Background(), vegasCenter, TextSearchOpts{
		EventTypes: []string{"convention_center", "stadium"},
		Now:        time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"convention happening now", "game today"}, queries)
	for _, qr := range results {
		require.Len(t, qr.Places, 1)
		assert.Equal(t, "Found Venue", qr.Places[0].Name)
	}
}

func TestContextualQueries(t *testing.T) {
	march := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		types    []string
		now      time.Time
		expected []string
	}{
		{
			name:     "known types map to queries",
			types:    []string{"convention_center", "concert_hall"},
			now:      march,
			expected: []string{"convention happening now", "concert tonight"},
		},
		{
			name:     "unknown types fall back",
			types:    []string{"laundromat"},
			now:      march,
			expected: []string{"conference or convention happening now"},
		},
		{
			name:     "december adds a seasonal query",
			types:    []string{"stadium"},
			now:      time.Date(2026, time.December, 5, 12, 0, 0, 0, time.UTC),
			expected: []string{"game today", "holiday party venue"},
		},
		{
			name:     "duplicate queries collapse",
			types:    []string{"concert_hall", "concert_hall"},
			now:      march,
			expected: []string{"concert tonight"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContextualQueries(tt.types, tt.now))
		})
	}
}
