// Package domain models the school road-safety datasets published by the
// Madrid open data portal and scores each school by the traffic risk around it.
//
// # Data Sources
//
// Three datasets are loaded into a GraphDB repository as RDF and queried over
// SPARQL: educational centers (safeschool:EducationalCenter), traffic accident
// records (safeschool:Accident) and fixed speed cameras (safeschool:SpeedCamera).
// Every record carries its position in a safeschool:wktGeometry literal.
//
// # Geometry Conventions
//
// Positions are WKT points with longitude first:
//
//	"POINT(-3.7038 40.4168)"  →  lat 40.4168, lon -3.7038
//
// Literals are not always canonical. The tag may be lower case, whitespace
// around the parentheses and between coordinates varies, and some exports
// prefix an SRID or wrap the literal in other text. [ParseWKT] searches for the
// first POINT(...) occurrence and reports absence for anything else, including
// out-of-range coordinates. Records without a resolvable point stay in plain
// listings but are skipped by every spatial computation.
//
// Distances use the haversine formula on a sphere with the mean Earth radius
// (6 371 000 m). Against the WGS-84 ellipsoid the error is below a few meters
// for the 50–1000 m radii used here, so results are approximate by
// construction and must not be read as surveyed distances.
//
// # Severity
//
// Accident injury level (injuryLevel) is a small positive integer. Missing or
// unparseable levels count as 1 when scoring. For filtering, levels map onto
// three bands:
//
//	low: < 4 (absent counts as 0) | medium: 4–5 | high: ≥ 6
//
// # Risk Score
//
// For a school and a radius (default [DefaultRadiusMeters]):
//
//	score = nearbyAccidents × 5 + totalSeverity × 2
//
// The weights are a heuristic carried over from the first published version
// of the ranking. They are not calibrated, and changing them changes every
// published score. The nearest speed camera is searched over all cameras, not
// only those inside the radius; see [Correlate].
package domain
