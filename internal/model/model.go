// Package model defines the entities flowing through the detection pipeline:
// location pings, venues, events, clusters, and group suggestions.
package model

import "time"

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ContactRef is a lightweight reference to a contact record. The full contact
// lives in the caller's store; the pipeline only needs identity, affiliation,
// and an optional submission coordinate/timestamp.
type ContactRef struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Email       string      `json:"email,omitempty"`
	Company     string      `json:"company,omitempty"`
	JobTitle    string      `json:"job_title,omitempty"`
	Location    *Coordinate `json:"location,omitempty"`
	SubmittedAt *time.Time  `json:"submitted_at,omitempty"`
}

// RawLocationPing is one inbound location observation (card scan or form
// submission). Consumed once by the preprocessor and discarded.
type RawLocationPing struct {
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	ContactIDs []string          `json:"contact_ids"`
	Contacts   []ContactRef      `json:"contacts,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// PreprocessedLocation is a deduplicated search location. At most one exists
// per rounded-coordinate grid cell within a preprocessing pass; pings mapping
// to the same cell are merged by unioning their contact-id sets.
type PreprocessedLocation struct {
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	ContactIDs []string          `json:"contact_ids"`
	Contacts   []ContactRef      `json:"contacts,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// BusinessStatus mirrors the places API operational status values.
type BusinessStatus string

const (
	StatusOperational       BusinessStatus = "OPERATIONAL"
	StatusClosedTemporarily BusinessStatus = "CLOSED_TEMPORARILY"
	StatusClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
	StatusUnknown           BusinessStatus = ""
)

// Place is a read-only venue record from the external places-search
// collaborator. Rating and UserRatingCount are optional upstream; absence is
// explicit here rather than hidden behind zero values.
type Place struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Location         Coordinate     `json:"location"`
	Types            []string       `json:"types"`
	Rating           *float64       `json:"rating,omitempty"`
	UserRatingCount  *int           `json:"user_rating_count,omitempty"`
	BusinessStatus   BusinessStatus `json:"business_status,omitempty"`
	Vicinity         string         `json:"vicinity,omitempty"`
	FormattedAddress string         `json:"formatted_address,omitempty"`
	PhotoRefs        []string       `json:"photo_refs,omitempty"`
}

// DiscoveryMethod identifies which upstream search surfaced a venue.
type DiscoveryMethod string

const (
	DiscoveryNearbySearch DiscoveryMethod = "nearby_search"
	DiscoveryTextSearch   DiscoveryMethod = "text_search"
)

// Confidence is a closed three-tier confidence classification.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank returns a numeric ordering for confidence tiers (low=0 .. high=2).
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// Event is a venue inferred to be hosting a gathering. Immutable after
// creation; consumed by the clusterer.
type Event struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Location             Coordinate      `json:"location"`
	Types                []string        `json:"types"`
	Rating               *float64        `json:"rating,omitempty"`
	UserRatingCount      *int            `json:"user_rating_count,omitempty"`
	BusinessStatus       BusinessStatus  `json:"business_status,omitempty"`
	ContactsNearby       []ContactRef    `json:"contacts_nearby,omitempty"`
	ContactIDs           []string        `json:"contact_ids,omitempty"`
	EventScore           float64         `json:"event_score"`
	Confidence           Confidence      `json:"confidence"`
	EventIndicators      []string        `json:"event_indicators,omitempty"`
	DiscoveryMethod      DiscoveryMethod `json:"discovery_method"`
	DistanceFromContacts *float64        `json:"distance_from_contacts,omitempty"`
	SearchQuery          string          `json:"search_query,omitempty"`
	PhotoRefs            []string        `json:"photo_refs,omitempty"`
	Vicinity             string          `json:"vicinity,omitempty"`
	FormattedAddress     string          `json:"formatted_address,omitempty"`
	IsActive             bool            `json:"is_active"`
	Timestamp            time.Time       `json:"timestamp"`
}

// CompanyContextSource records how a cluster's company affiliation was inferred.
type CompanyContextSource string

const (
	CompanySourceCampusTable     CompanyContextSource = "campus_table"
	CompanySourceContactMajority CompanyContextSource = "contact_majority"
)

// CompanyContext is the inferred organizational affiliation of a seed event,
// used to tighten the clustering radius.
type CompanyContext struct {
	Company         string               `json:"company"`
	Confidence      Confidence           `json:"confidence"`
	Source          CompanyContextSource `json:"source"`
	MaxRadiusMeters float64              `json:"max_radius_meters"`
}

// ValidationResult carries the coherence diagnostics for a cluster so callers
// and tests can assert on pipeline internals without parsing logs.
type ValidationResult struct {
	Coherent            bool    `json:"coherent"`
	MaxInternalDistance float64 `json:"max_internal_distance"`
	AverageDistance     float64 `json:"average_distance"`
	MaxAllowedDistance  float64 `json:"max_allowed_distance"`
	Reason              string  `json:"reason,omitempty"`
}

// Cluster is a validated, geographically and semantically coherent group of
// events sharing contacts.
type Cluster struct {
	ID             string           `json:"id"`
	PrimaryEvent   Event            `json:"primary_event"`
	Events         []Event          `json:"events"`
	Contacts       []ContactRef     `json:"contacts,omitempty"`
	ContactIDs     []string         `json:"contact_ids,omitempty"`
	CenterPoint    Coordinate       `json:"center_point"`
	RadiusMeters   float64          `json:"radius_meters"`
	Confidence     Confidence       `json:"confidence"`
	CompanyContext *CompanyContext  `json:"company_context,omitempty"`
	Validation     ValidationResult `json:"validation"`
}

// SuggestionType is the closed set of group-suggestion categories.
type SuggestionType string

const (
	SuggestionEvent    SuggestionType = "event"
	SuggestionCompany  SuggestionType = "company"
	SuggestionLocation SuggestionType = "location"
	SuggestionTemporal SuggestionType = "temporal"
	SuggestionIndustry SuggestionType = "industry"
	SuggestionContext  SuggestionType = "context"
)

// QualityMetrics summarizes why a suggestion ranked where it did.
type QualityMetrics struct {
	ContactCount     int      `json:"contact_count"`
	ClusterTightness *float64 `json:"cluster_tightness,omitempty"`
	EventScore       *float64 `json:"event_score,omitempty"`
}

// GroupSuggestion is a ranked, de-duplicated recommendation to group a set of
// contacts. Never mutated after creation.
type GroupSuggestion struct {
	ID          string          `json:"id"`
	Type        SuggestionType  `json:"type"`
	SubType     string          `json:"sub_type,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ContactIDs  []string        `json:"contact_ids"`
	Contacts    []ContactRef    `json:"contacts,omitempty"`
	Confidence  Confidence      `json:"confidence"`
	Reason      string          `json:"reason,omitempty"`
	Priority    float64         `json:"priority"`
	EventData   *Event          `json:"event_data,omitempty"`
	Quality     *QualityMetrics `json:"quality_metrics,omitempty"`
}

// DetectionRequest is the inbound payload for one detection run.
type DetectionRequest struct {
	Locations         []RawLocationPing `json:"locations"`
	RadiusMeters      float64           `json:"radius,omitempty"`
	EventTypes        []string          `json:"event_types,omitempty"`
	IncludeTextSearch bool              `json:"include_text_search,omitempty"`
	MaxResults        int               `json:"max_results,omitempty"`
	ExistingGroups    [][]string        `json:"existing_groups,omitempty"`
}

// Analytics holds the structured diagnostic counters for a detection run.
// These replace text logging as the observable record of pipeline internals.
type Analytics struct {
	LocationsReceived     int `json:"locations_received"`
	LocationsProcessed    int `json:"locations_processed"`
	DuplicatePingsRemoved int `json:"duplicate_pings_removed"`
	CacheHits             int `json:"cache_hits"`
	CacheMisses           int `json:"cache_misses"`
	SearchFailures        int `json:"search_failures"`
	VenuesScored          int `json:"venues_scored"`
	VenuesRejected        int `json:"venues_rejected"`
	EventsDetected        int `json:"events_detected"`
	ClustersFormed        int `json:"clusters_formed"`
	ClustersSplit         int `json:"clusters_split"`
	ClustersRejected      int `json:"clusters_rejected"`
	SuggestionsGenerated  int `json:"suggestions_generated"`
	SuggestionsDeduped    int `json:"suggestions_deduped"`
}

// DetectionResult is the outbound payload for one detection run.
type DetectionResult struct {
	Events      []Event           `json:"events"`
	Clusters    []Cluster         `json:"event_clusters"`
	Suggestions []GroupSuggestion `json:"auto_group_suggestions"`
	Analytics   Analytics         `json:"analytics"`
}
