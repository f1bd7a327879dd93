package cluster

import (
	"strings"

	"github.com/contactmesh/geodetect/internal/model"
)

// growthRadius selects the clustering radius for one seed event. Company
// context, when present, overrides the generic tables: a tight corporate
// office and a sprawling convention center must not share a radius.
func (c *Clusterer) growthRadius(seed model.Event, ctx *model.CompanyContext) float64 {
	if ctx != nil && ctx.MaxRadiusMeters > 0 {
		return ctx.MaxRadiusMeters
	}

	radius := c.cfg.CategoryRadii["default"]
	for _, t := range seed.Types {
		if r, ok := c.cfg.CategoryRadii[strings.ToLower(t)]; ok {
			radius = r
			break
		}
	}

	if city := cityFromAddress(seed.FormattedAddress); city != "" {
		if cap, ok := c.cfg.CityRadiusCaps[city]; ok && cap < radius {
			radius = cap
		}
	}
	return radius
}

// cityFromAddress extracts a lowercased city name from a formatted address of
// the shape "street, city, region postal, country". Returns "" when the
// address has too few segments to be trusted.
func cityFromAddress(addr string) string {
	parts := strings.Split(addr, ",")
	if len(parts) < 3 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-3]))
}
