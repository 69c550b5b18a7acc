package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/school-risk-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/school-risk-service/internal/assessment"
	"github.com/couchcryptid/school-risk-service/internal/domain"
)

// --- mocks ---

type mockService struct {
	readyErr error
	err      error

	schools   []domain.School
	accidents []domain.Accident
	radars    []domain.Radar
	ranking   assessment.Ranking

	accidentRadius float64
	accidentOrigin string
	rankReq        assessment.RankRequest
}

func (m *mockService) CheckReadiness(context.Context) error { return m.readyErr }

func (m *mockService) Schools(context.Context) ([]domain.School, error) {
	return m.schools, m.err
}

func (m *mockService) Accidents(_ context.Context, radius float64, origin string) ([]domain.Accident, error) {
	m.accidentRadius, m.accidentOrigin = radius, origin
	return m.accidents, m.err
}

func (m *mockService) Radars(context.Context) ([]domain.Radar, error) {
	return m.radars, m.err
}

func (m *mockService) Rank(_ context.Context, req assessment.RankRequest) (assessment.Ranking, error) {
	m.rankReq = req
	return m.ranking, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(svc *mockService) *httpadapter.Server {
	return httpadapter.NewServer(":0", svc, discardLogger(), httpadapter.Options{})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func sampleRanking() assessment.Ranking {
	return assessment.Ranking{
		RadiusMeters: 200,
		Schools: []domain.Scored[domain.School]{
			{
				Anchor:     domain.School{Code: 1001, Name: "Colegio Uno", Geometry: "POINT(-3.7038 40.4168)"},
				RiskResult: domain.RiskResult{Score: 9, NearbyCount: 1, TotalSeverity: 2, NearestSensor: domain.NearestDistance{Meters: 150, Known: true}},
			},
			{
				Anchor:     domain.School{Code: 1002, Name: "Colegio Dos", Geometry: "POINT(-3.70 40.42)"},
				RiskResult: domain.RiskResult{NearestSensor: domain.UnknownDistance},
			},
		},
	}
}

// --- health ---

func TestAPIHealth(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}), "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReflectsService(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(t, newTestServer(&mockService{}), "/readyz").Code)

	notReady := &mockService{readyErr: errors.New("no successful graphdb query yet")}
	assert.Equal(t, http.StatusServiceUnavailable, get(t, newTestServer(notReady), "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- datasets ---

func TestSchools(t *testing.T) {
	svc := &mockService{schools: []domain.School{{Code: 1001, Name: "Colegio Uno"}}}
	rec := get(t, newTestServer(svc), "/api/schools")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Colegio Uno", body[0]["centro_nombre"])
}

func TestAccidents_PassesRadiusAndOrigin(t *testing.T) {
	svc := &mockService{accidents: []domain.Accident{{CaseNumber: "EXP-1"}}}
	rec := get(t, newTestServer(svc), "/api/accidents?radius=350&origin=%20POINT(-3.69%2040.42)%20")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 350.0, svc.accidentRadius, 1e-9)
	assert.Equal(t, "POINT(-3.69 40.42)", svc.accidentOrigin)
}

func TestAccidents_InvalidRadiusUsesDefault(t *testing.T) {
	for _, radius := range []string{"", "abc", "-5", "0", "NaN", "Inf"} {
		svc := &mockService{}
		rec := get(t, newTestServer(svc), "/api/accidents?radius="+radius)

		require.Equal(t, http.StatusOK, rec.Code, radius)
		assert.Zero(t, svc.accidentRadius, radius)
		assert.Empty(t, svc.accidentOrigin, radius)
	}
}

func TestRadars(t *testing.T) {
	svc := &mockService{radars: []domain.Radar{{Number: 5, Place: "M-30"}}}
	rec := get(t, newTestServer(svc), "/api/radar")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ubicacion":"M-30"`)
}

func TestUpstreamFailureReturns502(t *testing.T) {
	svc := &mockService{err: errors.New("graphdb request failed with 500: boom")}
	h := newTestServer(svc)

	for _, path := range []string{"/api/schools", "/api/accidents", "/api/radar", "/api/risk", "/api/risk/geojson"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusBadGateway, rec.Code, path)
		assert.JSONEq(t, `{"message":"Unable to retrieve data from GraphDB"}`, rec.Body.String(), path)
	}
}

// --- risk ---

func TestRisk(t *testing.T) {
	svc := &mockService{ranking: sampleRanking()}
	rec := get(t, newTestServer(svc), "/api/risk")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RadiusMeters float64 `json:"radius_m"`
		Results      []struct {
			Rank            int            `json:"rank"`
			School          map[string]any `json:"school"`
			Score           int            `json:"score"`
			NearbyAccidents int            `json:"nearby_accidents"`
			TotalSeverity   int            `json:"total_severity"`
			NearestRadar    *int           `json:"nearest_radar_m"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.InDelta(t, 200.0, body.RadiusMeters, 1e-9)
	require.Len(t, body.Results, 2)

	first := body.Results[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "Colegio Uno", first.School["centro_nombre"])
	assert.Equal(t, 9, first.Score)
	assert.Equal(t, 1, first.NearbyAccidents)
	assert.Equal(t, 2, first.TotalSeverity)
	require.NotNil(t, first.NearestRadar)
	assert.Equal(t, 150, *first.NearestRadar)

	assert.Equal(t, 2, body.Results[1].Rank)
	assert.Nil(t, body.Results[1].NearestRadar)
	assert.Contains(t, rec.Body.String(), `"nearest_radar_m":null`)
}

func TestRisk_ParsesQuery(t *testing.T) {
	svc := &mockService{ranking: assessment.Ranking{Schools: []domain.Scored[domain.School]{}}}
	rec := get(t, newTestServer(svc), "/api/risk?radius=500&limit=3&severity=HIGH&type=Public&type=&district=Centro&district=Retiro")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 500.0, svc.rankReq.Radius, 1e-9)
	assert.Equal(t, 3, svc.rankReq.Limit)
	assert.Equal(t, domain.SeverityFilterHigh, svc.rankReq.Severity)
	assert.Equal(t, []string{"Public"}, svc.rankReq.Filter.Types)
	assert.Equal(t, []string{"Centro", "Retiro"}, svc.rankReq.Filter.Districts)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
	assert.False(t, svc.rankReq.SkipPublish)
}

func TestRisk_DefaultsWhenQueryMissing(t *testing.T) {
	svc := &mockService{ranking: sampleRanking()}
	rec := get(t, newTestServer(svc), "/api/risk?limit=abc&severity=bogus")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, svc.rankReq.Radius)
	assert.Zero(t, svc.rankReq.Limit)
	assert.Equal(t, domain.SeverityAll, svc.rankReq.Severity)
	assert.Empty(t, svc.rankReq.Filter.Types)
	assert.Empty(t, svc.rankReq.Filter.Districts)
}

func TestRiskGeoJSON(t *testing.T) {
	svc := &mockService{ranking: sampleRanking()}
	rec := get(t, newTestServer(svc), "/api/risk/geojson?limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.InDeltaSlice(t, []float64{-3.7038, 40.4168}, fc.Features[0].Geometry.Coordinates, 1e-9)
	assert.InDelta(t, 9.0, fc.Features[0].Properties["score"], 1e-9)
	assert.Equal(t, 2, svc.rankReq.Limit)
	assert.True(t, svc.rankReq.SkipPublish, "geojson view must not publish the ranking again")
}

func TestCORSHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")

	newTestServer(&mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
