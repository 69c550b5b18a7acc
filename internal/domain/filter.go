package domain

import (
	"slices"
	"strings"
)

// SeverityLevel is the band an injury level falls into.
type SeverityLevel string

const (
	SeverityLow    SeverityLevel = "low"
	SeverityMedium SeverityLevel = "medium"
	SeverityHigh   SeverityLevel = "high"
)

// LevelOf bands an injury level. Missing levels (<= 0) are low.
func LevelOf(severity int) SeverityLevel {
	switch {
	case severity >= 6:
		return SeverityHigh
	case severity >= 4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// SeverityFilter selects accidents by band. The zero value matches everything.
type SeverityFilter string

const (
	SeverityAll        SeverityFilter = "All"
	SeverityFilterLow  SeverityFilter = "Low"
	SeverityFilterMed  SeverityFilter = "Medium"
	SeverityFilterHigh SeverityFilter = "High"
)

// ParseSeverityFilter is case-insensitive; unknown values mean All.
func ParseSeverityFilter(s string) SeverityFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityFilterLow
	case "medium":
		return SeverityFilterMed
	case "high":
		return SeverityFilterHigh
	default:
		return SeverityAll
	}
}

// Matches reports whether an accident with the given injury level passes.
func (f SeverityFilter) Matches(severity int) bool {
	switch f {
	case SeverityFilterLow:
		return LevelOf(severity) == SeverityLow
	case SeverityFilterMed:
		return LevelOf(severity) == SeverityMedium
	case SeverityFilterHigh:
		return LevelOf(severity) == SeverityHigh
	default:
		return true
	}
}

// School type filter values.
const (
	SchoolTypePublic  = "Public"
	SchoolTypePrivate = "Private"
)

// SchoolFilter narrows the set of schools that get ranked.
// Empty lists match every school.
type SchoolFilter struct {
	Types     []string // SchoolTypePublic, SchoolTypePrivate
	Districts []string // exact district names
}

func (f SchoolFilter) Matches(s School) bool {
	typeMatch := len(f.Types) == 0 || slices.ContainsFunc(f.Types, func(t string) bool {
		switch {
		case strings.EqualFold(t, SchoolTypePublic):
			return s.IsPublic()
		case strings.EqualFold(t, SchoolTypePrivate):
			return s.IsPrivate()
		}
		return false
	})
	districtMatch := len(f.Districts) == 0 || slices.Contains(f.Districts, s.DistrictName)
	return typeMatch && districtMatch
}

// FilterSchools returns the schools matching f, in input order.
func FilterSchools(schools []School, f SchoolFilter) []School {
	out := make([]School, 0, len(schools))
	for _, s := range schools {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// FilterAccidents returns the accidents whose injury level passes f, in input order.
func FilterAccidents(accidents []Accident, f SeverityFilter) []Accident {
	out := make([]Accident, 0, len(accidents))
	for _, a := range accidents {
		if f.Matches(a.Severity) {
			out = append(out, a)
		}
	}
	return out
}
