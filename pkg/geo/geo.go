package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Location is the coarse place an IP resolves to. Empty fields mean unknown.
type Location struct {
	Country string // ISO 3166-1 alpha-2
	City    string
}

// Resolver looks up IPs in a MaxMind City database.
// A nil *Resolver is valid and resolves nothing.
type Resolver struct {
	db *geoip2.Reader
}

// Open loads the .mmdb file at path.
func Open(path string) (*Resolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}
	return &Resolver{db: db}, nil
}

// Lookup resolves ip. Private, malformed or unknown addresses give an empty Location.
func (r *Resolver) Lookup(ip string) Location {
	if r == nil || r.db == nil {
		return Location{}
	}
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsPrivate() || parsed.IsLoopback() {
		return Location{}
	}

	record, err := r.db.City(parsed)
	if err != nil {
		return Location{}
	}

	loc := Location{Country: record.Country.IsoCode}
	if name, ok := record.City.Names["en"]; ok {
		loc.City = name
	}
	return loc
}

func (r *Resolver) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
