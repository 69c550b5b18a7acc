package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchools() []School {
	return []School{
		{Code: 1, Name: "Colegio Sol", Geometry: "POINT(-3.7038 40.4168)"},
		{Code: 2, Name: "Sin geometria", Geometry: ""},
		{Code: 3, Name: "Colegio Retiro", Geometry: "POINT(-3.6835 40.4153)"},
		{Code: 4, Name: "Colegio Malformado", Geometry: "POINT(x y)"},
		{Code: 5, Name: "Colegio Sol Bis", Geometry: "POINT(-3.7038 40.4168)"},
	}
}

func testAccidents() []Accident {
	return []Accident{
		{CaseNumber: "A1", Geometry: "POINT(-3.7039 40.4169)", Severity: 2},
		{CaseNumber: "A2", Geometry: "POINT(-3.7037 40.4167)", Severity: 6},
		{CaseNumber: "A3", Geometry: "POINT(-3.6836 40.4154)"},
		{CaseNumber: "A4", Geometry: "not wkt", Severity: 9},
	}
}

func TestCorrelateAll(t *testing.T) {
	radars := []Radar{{Number: 1, Geometry: "POINT(-3.6900 40.4200)"}}

	got := CorrelateAll(testSchools(), testAccidents(), radars, 200)

	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 3, 5}, codes(got))

	assert.Equal(t, 2, got[0].NearbyCount)
	assert.Equal(t, 8, got[0].TotalSeverity)
	assert.Equal(t, 2*5+8*2, got[0].Score)
	assert.True(t, got[0].NearestSensor.Known)

	assert.Equal(t, 1, got[1].NearbyCount)
	assert.Equal(t, 1, got[1].TotalSeverity)
	assert.Equal(t, 7, got[1].Score)

	assert.Equal(t, got[0].RiskResult, got[2].RiskResult)
}

func TestCorrelateAll_MatchesCorrelate(t *testing.T) {
	radars := []Radar{{Geometry: "POINT(-3.6900 40.4200)"}}
	all := CorrelateAll(testSchools(), testAccidents(), radars, 350)

	for _, s := range all {
		p, ok := s.Anchor.Location()
		require.True(t, ok)
		assert.Equal(t, Correlate(p, testAccidents(), radars, 350), s.RiskResult)
	}
}

func TestCorrelateAll_EmptyAnchors(t *testing.T) {
	assert.NotPanics(t, func() {
		got := CorrelateAll([]School{}, testAccidents(), []Radar{}, 200)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})
	got := CorrelateAll[School, Accident, Radar](nil, nil, nil, 0)
	assert.Empty(t, got)
}

func TestCorrelateAll_NoIncidentsOrSensors(t *testing.T) {
	got := CorrelateAll(testSchools(), []Accident{}, []Radar{}, 200)
	require.Len(t, got, 3)
	for _, s := range got {
		assert.Zero(t, s.Score)
		assert.Equal(t, UnknownDistance, s.NearestSensor)
	}
}

func TestRank(t *testing.T) {
	scored := []Scored[School]{
		{Anchor: School{Code: 1}, RiskResult: RiskResult{Score: 5}},
		{Anchor: School{Code: 2}, RiskResult: RiskResult{Score: 20}},
		{Anchor: School{Code: 3}, RiskResult: RiskResult{Score: 5}},
		{Anchor: School{Code: 4}, RiskResult: RiskResult{Score: 0}},
		{Anchor: School{Code: 5}, RiskResult: RiskResult{Score: 20}},
	}

	t.Run("descending with stable ties", func(t *testing.T) {
		assert.Equal(t, []int{2, 5, 1, 3, 4}, codes(Rank(scored, 0)))
	})

	t.Run("truncates to n", func(t *testing.T) {
		assert.Equal(t, []int{2, 5, 1}, codes(Rank(scored, 3)))
	})

	t.Run("n larger than input", func(t *testing.T) {
		assert.Len(t, Rank(scored, 100), 5)
	})

	t.Run("input untouched", func(t *testing.T) {
		_ = Rank(scored, 2)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, codes(scored))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Rank([]Scored[School]{}, DefaultTopN))
	})
}

func TestRank_DefaultTopN(t *testing.T) {
	scored := make([]Scored[School], 25)
	for i := range scored {
		scored[i] = Scored[School]{Anchor: School{Code: i}, RiskResult: RiskResult{Score: i}}
	}

	got := Rank(scored, DefaultTopN)

	require.Len(t, got, 10)
	assert.Equal(t, 24, got[0].Anchor.Code)
	assert.Equal(t, 15, got[9].Anchor.Code)
}

func codes(scored []Scored[School]) []int {
	out := make([]int, len(scored))
	for i, s := range scored {
		out[i] = s.Anchor.Code
	}
	return out
}
