package domain

import (
	"cmp"
	"slices"
)

// DefaultTopN is the ranking size shown when the caller does not pick one.
const DefaultTopN = 10

// Scored pairs an anchor with its correlation result.
type Scored[A any] struct {
	Anchor A `json:"anchor"`
	RiskResult
}

// CorrelateAll correlates every anchor with a resolvable position against the
// same incidents and sensors. Output keeps input order; anchors without a
// position are left out. Positions are parsed once per call, not per anchor.
func CorrelateAll[A Locatable, I Incident, S Locatable](anchors []A, incidents []I, sensors []S, radius float64) []Scored[A] {
	if len(anchors) == 0 {
		return []Scored[A]{}
	}
	radius = NormalizeRadius(radius)
	resolvedIncidents := resolveIncidents(incidents)
	resolvedSensors := resolvePoints(sensors)

	out := make([]Scored[A], 0, len(anchors))
	for _, a := range anchors {
		p, ok := a.Location()
		if !ok {
			continue
		}
		out = append(out, Scored[A]{
			Anchor:     a,
			RiskResult: correlate(p, resolvedIncidents, resolvedSensors, radius),
		})
	}
	return out
}

// Rank orders scored anchors by score, highest first, and keeps at most n.
// Equal scores keep their input order. n <= 0 keeps everything.
// The input slice is not modified.
func Rank[A any](scored []Scored[A], n int) []Scored[A] {
	out := slices.Clone(scored)
	slices.SortStableFunc(out, func(a, b Scored[A]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
