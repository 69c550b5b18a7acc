package httpadapter

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/school-risk-service/internal/assessment"
	"github.com/couchcryptid/school-risk-service/internal/domain"
)

const upstreamFailureMessage = "Unable to retrieve data from GraphDB"

// riskItem is one row of the /api/risk response.
type riskItem struct {
	Rank   int           `json:"rank"`
	School domain.School `json:"school"`
	domain.RiskResult
}

type riskResponse struct {
	RadiusMeters float64    `json:"radius_m"`
	Results      []riskItem `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := s.svc.Schools(r.Context())
	if err != nil {
		s.upstreamFailure(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, schools)
}

func (s *Server) handleAccidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accidents, err := s.svc.Accidents(r.Context(), parseRadius(q.Get("radius")), strings.TrimSpace(q.Get("origin")))
	if err != nil {
		s.upstreamFailure(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, accidents)
}

func (s *Server) handleRadars(w http.ResponseWriter, r *http.Request) {
	radars, err := s.svc.Radars(r.Context())
	if err != nil {
		s.upstreamFailure(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, radars)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	ranking, err := s.svc.Rank(r.Context(), rankRequest(r))
	if err != nil {
		s.upstreamFailure(w, r, err)
		return
	}

	items := make([]riskItem, len(ranking.Schools))
	for i, sc := range ranking.Schools {
		items[i] = riskItem{Rank: i + 1, School: sc.Anchor, RiskResult: sc.RiskResult}
	}
	sharedobs.WriteJSON(w, http.StatusOK, riskResponse{RadiusMeters: ranking.RadiusMeters, Results: items})
}

func (s *Server) handleRiskGeoJSON(w http.ResponseWriter, r *http.Request) {
	req := rankRequest(r)
	req.SkipPublish = true
	ranking, err := s.svc.Rank(r.Context(), req)
	if err != nil {
		s.upstreamFailure(w, r, err)
		return
	}

	body, err := domain.FeatureCollection(ranking.Schools).MarshalJSON()
	if err != nil {
		s.logger.Error("encode geojson failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Unable to encode response"})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client may have gone away
}

func (s *Server) upstreamFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("graphdb query failed", "error", err, "path", r.URL.Path)
	sharedobs.WriteJSON(w, http.StatusBadGateway, map[string]string{"message": upstreamFailureMessage})
}

func rankRequest(r *http.Request) assessment.RankRequest {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return assessment.RankRequest{
		Radius:   parseRadius(q.Get("radius")),
		Limit:    limit,
		Severity: domain.ParseSeverityFilter(q.Get("severity")),
		Filter: domain.SchoolFilter{
			Types:     nonEmpty(q["type"]),
			Districts: nonEmpty(q["district"]),
		},
	}
}

// parseRadius returns 0, meaning "use the default", for anything that is not
// a positive finite number.
func parseRadius(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return f
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
