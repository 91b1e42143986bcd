package analytics

import (
	"shortener-backend/internal/domain"
	"shortener-backend/pkg/geo"
	"shortener-backend/pkg/useragent"
)

// Enricher derives device and location columns for a click before it is stored.
// Both collaborators are optional.
type Enricher struct {
	ua  *useragent.Parser
	geo *geo.Resolver
}

func NewEnricher(ua *useragent.Parser, resolver *geo.Resolver) *Enricher {
	return &Enricher{ua: ua, geo: resolver}
}

// Enrich fills the derived fields of click in place.
func (e *Enricher) Enrich(click *domain.Click) {
	if e == nil {
		return
	}

	if e.ua != nil && click.UserAgent != nil && *click.UserAgent != "" {
		info := e.ua.Parse(*click.UserAgent)
		click.DeviceType = stringPtr(info.DeviceType)
		click.Browser = stringPtr(info.Browser)
		click.OS = stringPtr(info.OS)
	}

	if click.IPAddress != nil {
		loc := e.geo.Lookup(*click.IPAddress)
		if loc.Country != "" {
			click.Country = stringPtr(loc.Country)
		}
		if loc.City != "" {
			click.City = stringPtr(loc.City)
		}
	}
}

func stringPtr(s string) *string {
	return &s
}
