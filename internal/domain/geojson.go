package domain

import (
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders ranked schools as GeoJSON points. Each feature
// carries the school identity and its risk fields as properties; the nearest
// camera distance is omitted when unknown.
func FeatureCollection(ranked []Scored[School]) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, r := range ranked {
		p, ok := r.Anchor.Location()
		if !ok {
			continue
		}
		f := geojson.NewFeature(p.Orb())
		f.ID = r.Anchor.Code
		f.Properties["rank"] = i + 1
		f.Properties["code"] = r.Anchor.Code
		f.Properties["name"] = r.Anchor.Name
		f.Properties["district"] = r.Anchor.DistrictName
		f.Properties["score"] = r.Score
		f.Properties["nearby_accidents"] = r.NearbyCount
		f.Properties["total_severity"] = r.TotalSeverity
		if r.NearestSensor.Known {
			f.Properties["nearest_radar_m"] = r.NearestSensor.Meters
		}
		fc.Append(f)
	}
	return fc
}
