package domain

import (
	"strings"

	"github.com/geocoding-microservice/internal/pkg/utils"
)

// CityBoundary describes the target municipality for the bounds filter.
// A result is considered inside the city when its county component matches
// County, or, when the provider returned no address components, when its
// coordinates fall inside the boundary ring.
type CityBoundary struct {
	Name   string
	County string
	// Ring is a simplified boundary polygon as [lat, lon] vertices.
	Ring [][2]float64
}

// baltimoreRing is a coarse outline of the Baltimore City limits. It is
// intentionally simplified: the county field decides whenever the provider
// returns address components, the ring only backs up coordinate-only results.
var baltimoreRing = [][2]float64{
	{39.3722, -76.7112},
	{39.3720, -76.5295},
	{39.2100, -76.5295},
	{39.1972, -76.5800},
	{39.1972, -76.6110},
	{39.2330, -76.7112},
}

// BaltimoreCity returns the boundary definition for Baltimore City, MD.
// The county name is configurable because Geocod.io spells it "Baltimore
// city" while other sources use "BALTIMORE CITY".
func BaltimoreCity(county string) *CityBoundary {
	if county == "" {
		county = "Baltimore city"
	}
	return &CityBoundary{
		Name:   "Baltimore",
		County: county,
		Ring:   baltimoreRing,
	}
}

// Contains reports whether the coordinates fall inside the boundary ring.
func (b *CityBoundary) Contains(lat, lon float64) bool {
	return utils.PointInPolygon(lat, lon, b.Ring)
}

// MatchesCounty compares a result's county component against the target,
// ignoring case.
func (b *CityBoundary) MatchesCounty(county string) bool {
	return county != "" && strings.EqualFold(county, b.County)
}

// WithinCity is the bounds filter: county comparison when address components
// are present, point-in-polygon otherwise.
func (b *CityBoundary) WithinCity(res *GeocodeResult) bool {
	if res == nil {
		return false
	}
	if res.County != "" {
		return b.MatchesCounty(res.County)
	}
	return b.Contains(res.Latitude, res.Longitude)
}
