package domain

import (
	"math"
	"regexp"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/umahmood/haversine"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine library.
const EarthRadiusMeters = 6371000.0

// pointRe matches a WKT point literal anywhere in the input, e.g.
// "POINT(-3.7038 40.4168)" or "SRID=4326;point ( -3.7 40.4 )".
var pointRe = regexp.MustCompile(`(?i)POINT\s*\(\s*([-+\d.eE]+)\s+([-+\d.eE]+)\s*\)`)

// Point is a WGS-84 latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite and inside their ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Orb returns the point in orb's [lon, lat] order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// WKT renders the point as a WKT literal, longitude first.
func (p Point) WKT() string {
	return "POINT(" + strconv.FormatFloat(p.Lon, 'f', -1, 64) + " " + strconv.FormatFloat(p.Lat, 'f', -1, 64) + ")"
}

// ParseWKT extracts a point from a WKT literal. The second return value is
// false when the input holds no well-formed point; it never panics.
func ParseWKT(wkt string) (Point, bool) {
	if wkt == "" {
		return Point{}, false
	}
	m := pointRe.FindStringSubmatch(wkt)
	if m == nil {
		return Point{}, false
	}
	lon, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, false
	}
	lat, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Point{}, false
	}
	p := Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return Point{}, false
	}
	return p, true
}

// Distance returns the great-circle distance between a and b in meters.
// It assumes a spherical Earth; see the package documentation for the error bound.
func Distance(a, b Point) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return km * 1000
}
