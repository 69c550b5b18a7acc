package domain

import (
	"encoding/json"
	"math"
)

const (
	// DefaultRadiusMeters applies when a radius is missing, zero or negative.
	DefaultRadiusMeters = 200.0
	// DefaultSeverity is the weight of an accident without an injury level.
	DefaultSeverity = 1

	// Score weights. Changing either changes every published score.
	accidentWeight = 5
	severityWeight = 2
)

// NearestDistance is a distance in whole meters that may be unknown.
// Zero is a real distance, so absence is tracked separately.
type NearestDistance struct {
	Meters int
	Known  bool
}

// UnknownDistance is the value reported when no camera has a resolvable position.
var UnknownDistance = NearestDistance{}

func (d NearestDistance) MarshalJSON() ([]byte, error) {
	if !d.Known {
		return []byte("null"), nil
	}
	return json.Marshal(d.Meters)
}

func (d *NearestDistance) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = UnknownDistance
		return nil
	}
	var m int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*d = NearestDistance{Meters: m, Known: true}
	return nil
}

// RiskResult is the correlation of one anchor against incidents and sensors.
type RiskResult struct {
	Score         int             `json:"score"`
	NearbyCount   int             `json:"nearby_accidents"`
	TotalSeverity int             `json:"total_severity"`
	NearestSensor NearestDistance `json:"nearest_radar_m"`
}

// NormalizeRadius returns r, or DefaultRadiusMeters when r is not a positive finite number.
func NormalizeRadius(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return DefaultRadiusMeters
	}
	return r
}

type weightedPoint struct {
	Point
	weight int
}

// resolveIncidents parses incident positions once, dropping those without one.
func resolveIncidents[I Incident](incidents []I) []weightedPoint {
	out := make([]weightedPoint, 0, len(incidents))
	for _, inc := range incidents {
		if p, ok := inc.Location(); ok {
			out = append(out, weightedPoint{Point: p, weight: inc.SeverityWeight()})
		}
	}
	return out
}

func resolvePoints[S Locatable](items []S) []Point {
	out := make([]Point, 0, len(items))
	for _, it := range items {
		if p, ok := it.Location(); ok {
			out = append(out, p)
		}
	}
	return out
}

// Correlate scores anchor against incidents within radius meters and finds the
// nearest sensor. Incidents and sensors without a position are ignored.
//
// The nearest sensor is searched over the whole collection, not only inside
// the radius, so a school with no camera nearby still reports how far the
// closest one is.
func Correlate[I Incident, S Locatable](anchor Point, incidents []I, sensors []S, radius float64) RiskResult {
	return correlate(anchor, resolveIncidents(incidents), resolvePoints(sensors), NormalizeRadius(radius))
}

func correlate(anchor Point, incidents []weightedPoint, sensors []Point, radius float64) RiskResult {
	var res RiskResult
	for _, inc := range incidents {
		if Distance(anchor, inc.Point) <= radius {
			res.NearbyCount++
			res.TotalSeverity += inc.weight
		}
	}

	nearest := math.Inf(1)
	for _, s := range sensors {
		nearest = math.Min(nearest, Distance(anchor, s))
	}
	if !math.IsInf(nearest, 1) {
		res.NearestSensor = NearestDistance{Meters: int(math.Round(nearest)), Known: true}
	}

	res.Score = res.NearbyCount*accidentWeight + res.TotalSeverity*severityWeight
	return res
}
