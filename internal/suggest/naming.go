package suggest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/contactmesh/geodetect/internal/model"
)

var titleCaser = cases.Title(language.English)

// venueNameTable maps well-known venue keywords to a group-name suffix.
// Checked in order so the more specific entries win.
var venueNameTable = []struct {
	keyword string
	suffix  string
}{
	{"convention", "Conference"},
	{"conference", "Conference"},
	{"expo", "Expo"},
	{"summit", "Summit"},
	{"university", "Campus Meetup"},
	{"stadium", "Game Day"},
	{"arena", "Game Day"},
	{"theater", "Show"},
	{"hotel", "Networking Event"},
}

// eventGroupName builds a human-readable name for an event-based suggestion
// from venue keywords, falling back to "{venue or city} Event".
func eventGroupName(ev model.Event) string {
	lower := strings.ToLower(ev.Name)
	for _, entry := range venueNameTable {
		if strings.Contains(lower, entry.keyword) {
			return ev.Name + " " + entry.suffix
		}
	}
	if ev.Name != "" {
		return ev.Name + " Event"
	}
	if city := cityFromAddress(ev.FormattedAddress); city != "" {
		return titleCaser.String(city) + " Event"
	}
	return "Nearby Event"
}

// cityFromAddress extracts a lowercased city from a formatted address of the
// shape "street, city, region postal, country".
func cityFromAddress(addr string) string {
	parts := strings.Split(addr, ",")
	if len(parts) < 3 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-3]))
}
