package geo

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/contactmesh/geodetect/internal/model"
)

const (
	indexTolerance   = 0.0001
	indexMinChildren = 8
	indexMaxChildren = 16
	indexDimensions  = 2
)

// eventItem wraps an event slice index for R-tree storage.
type eventItem struct {
	idx  int
	rect *rtreego.Rect
}

func (e *eventItem) Bounds() *rtreego.Rect {
	return e.rect
}

// EventIndex is an R-tree over event locations. It accelerates the clusterer's
// candidate lookup: a bounding-box search narrows the field, then an exact
// haversine check filters the corners of the box.
type EventIndex struct {
	tree   *rtreego.Rtree
	events []model.Event
}

// NewEventIndex builds an index over the given events. Events with non-finite
// coordinates are skipped.
func NewEventIndex(events []model.Event) *EventIndex {
	idx := &EventIndex{
		tree:   rtreego.NewTree(indexDimensions, indexMinChildren, indexMaxChildren),
		events: events,
	}
	for i, ev := range events {
		if !IsFinite(ev.Location.Latitude, ev.Location.Longitude) {
			continue
		}
		pt := rtreego.Point{ev.Location.Latitude, ev.Location.Longitude}
		rect := pt.ToRect(indexTolerance)
		idx.tree.Insert(&eventItem{idx: i, rect: rect})
	}
	return idx
}

// Within returns the indices of events within radiusMeters of the center,
// excluding the center index itself when exclude >= 0.
func (x *EventIndex) Within(lat, lng, radiusMeters float64, exclude int) []int {
	// Convert the radius to a degree envelope. Longitude degrees shrink with
	// latitude; guard the cosine near the poles.
	latDeg := radiusMeters / EarthRadiusMeters * 180 / math.Pi
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lngDeg := latDeg / cosLat

	bounds, err := rtreego.NewRect(
		rtreego.Point{lat - latDeg, lng - lngDeg},
		[]float64{2 * latDeg, 2 * lngDeg},
	)
	if err != nil {
		return nil
	}

	var out []int
	for _, hit := range x.tree.SearchIntersect(bounds) {
		item, ok := hit.(*eventItem)
		if !ok || item.idx == exclude {
			continue
		}
		ev := x.events[item.idx]
		d := DistanceMeters(lat, lng, ev.Location.Latitude, ev.Location.Longitude)
		if d <= radiusMeters {
			out = append(out, item.idx)
		}
	}
	return out
}
