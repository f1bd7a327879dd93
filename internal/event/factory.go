// Package event converts scored venues into normalized Event entities.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/contactmesh/geodetect/internal/geo"
	"github.com/contactmesh/geodetect/internal/model"
	"github.com/contactmesh/geodetect/internal/score"
)

// Acceptance thresholds per discovery method. Text search is a secondary,
// lower-precision signal and needs a higher bar.
const (
	DefaultNearbyThreshold = 0.3
	DefaultTextThreshold   = 0.4
)

const maxPhotoRefs = 3

// Thresholds holds the configurable acceptance floors.
type Thresholds struct {
	Nearby float64
	Text   float64
}

// DefaultThresholds returns the stock acceptance floors.
func DefaultThresholds() Thresholds {
	return Thresholds{Nearby: DefaultNearbyThreshold, Text: DefaultTextThreshold}
}

// Accept reports whether a scored venue clears the acceptance floor for its
// discovery method. Enforced by the factory's caller, not Build itself.
func (t Thresholds) Accept(eventScore float64, method model.DiscoveryMethod) bool {
	if method == model.DiscoveryTextSearch {
		return eventScore > t.Text
	}
	return eventScore > t.Nearby
}

// Build assembles an Event from a scored place and its associated contacts.
func Build(place model.Place, scored score.Result, method model.DiscoveryMethod, contacts []model.ContactRef, contactIDs []string, query string) model.Event {
	ev := model.Event{
		ID:               uuid.NewString(),
		Name:             place.Name,
		Location:         place.Location,
		Types:            place.Types,
		Rating:           place.Rating,
		UserRatingCount:  place.UserRatingCount,
		BusinessStatus:   place.BusinessStatus,
		ContactsNearby:   contacts,
		ContactIDs:       contactIDs,
		EventScore:       scored.Score,
		Confidence:       scored.Confidence,
		EventIndicators:  scored.Indicators,
		DiscoveryMethod:  method,
		SearchQuery:      query,
		Vicinity:         place.Vicinity,
		FormattedAddress: place.FormattedAddress,
		IsActive:         place.BusinessStatus == model.StatusOperational,
		Timestamp:        time.Now().UTC(),
	}

	if len(place.PhotoRefs) > maxPhotoRefs {
		ev.PhotoRefs = place.PhotoRefs[:maxPhotoRefs]
	} else {
		ev.PhotoRefs = place.PhotoRefs
	}

	// Display-only distance to the first contact carrying a coordinate.
	// Not used in any clustering decision.
	for _, c := range contacts {
		if c.Location == nil {
			continue
		}
		d := geo.DistanceMeters(
			place.Location.Latitude, place.Location.Longitude,
			c.Location.Latitude, c.Location.Longitude,
		)
		ev.DistanceFromContacts = &d
		break
	}

	return ev
}
