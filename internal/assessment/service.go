// Package assessment fetches schools, accidents, and speed cameras from the
// knowledge graph and turns them into a ranked school risk assessment.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/school-risk-service/internal/adapter/graphdb"
	"github.com/couchcryptid/school-risk-service/internal/domain"
	"github.com/couchcryptid/school-risk-service/internal/observability"
)

const defaultPublishTimeout = 5 * time.Second

// Publisher delivers a finished ranking downstream.
type Publisher interface {
	Publish(ctx context.Context, assessments []domain.Assessment) error
}

// Options tunes ranking defaults. Zero values fall back to the domain defaults.
type Options struct {
	RadiusMeters   float64
	TopN           int
	PublishTimeout time.Duration
	Clock          clockwork.Clock
}

// RankRequest selects the radius, size, and filters of one ranking.
type RankRequest struct {
	Radius   float64 // <= 0 uses the service default
	Limit    int     // <= 0 uses the service default
	Severity domain.SeverityFilter
	Filter   domain.SchoolFilter

	// SkipPublish computes the ranking without publishing it, for alternate
	// renderings of a ranking the JSON view already publishes.
	SkipPublish bool
}

// Ranking is the result of Rank.
type Ranking struct {
	RadiusMeters float64
	Schools      []domain.Scored[domain.School]
}

// Service orchestrates fetch, correlate, rank, and publish.
type Service struct {
	selector       graphdb.Selector
	publisher      Publisher
	logger         *slog.Logger
	metrics        *observability.Metrics
	clock          clockwork.Clock
	radius         float64
	topN           int
	publishTimeout time.Duration
	ready          atomic.Bool
}

// New creates a Service. Pass a nil publisher to disable publishing.
func New(sel graphdb.Selector, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Service {
	s := &Service{
		selector:       sel,
		publisher:      pub,
		logger:         logger,
		metrics:        metrics,
		clock:          opts.Clock,
		radius:         domain.NormalizeRadius(opts.RadiusMeters),
		topN:           opts.TopN,
		publishTimeout: opts.PublishTimeout,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.topN <= 0 {
		s.topN = domain.DefaultTopN
	}
	if s.publishTimeout <= 0 {
		s.publishTimeout = defaultPublishTimeout
	}
	return s
}

// CheckReadiness returns nil once at least one upstream query has succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no successful graphdb query yet")
	}
	return nil
}

// DefaultRadius is the radius used when a request does not choose one.
func (s *Service) DefaultRadius() float64 { return s.radius }

// Schools returns every educational center.
func (s *Service) Schools(ctx context.Context) ([]domain.School, error) {
	rows, err := s.selectRows(ctx, graphdb.SchoolsQuery())
	if err != nil {
		return nil, fmt.Errorf("fetch schools: %w", err)
	}
	return graphdb.MapSchools(rows), nil
}

// Accidents returns the accidents within radius meters of originWKT.
// A blank origin means the city center; radius <= 0 means the service default.
func (s *Service) Accidents(ctx context.Context, radius float64, originWKT string) ([]domain.Accident, error) {
	if radius <= 0 {
		radius = s.radius
	}
	rows, err := s.selectRows(ctx, graphdb.AccidentsQuery(radius, originWKT))
	if err != nil {
		return nil, fmt.Errorf("fetch accidents: %w", err)
	}
	return graphdb.MapAccidents(rows), nil
}

// Radars returns every speed camera.
func (s *Service) Radars(ctx context.Context) ([]domain.Radar, error) {
	rows, err := s.selectRows(ctx, graphdb.RadarsQuery())
	if err != nil {
		return nil, fmt.Errorf("fetch radars: %w", err)
	}
	return graphdb.MapRadars(rows), nil
}

// Rank fetches the three datasets concurrently, applies the request filters,
// scores every remaining school, and returns the top of the ranking. When a
// publisher is configured and the request does not skip publishing, the
// ranking is also published; publish failures are logged and do not fail the call.
func (s *Service) Rank(ctx context.Context, req RankRequest) (Ranking, error) {
	start := s.clock.Now()
	radius := s.radius
	if req.Radius > 0 {
		radius = domain.NormalizeRadius(req.Radius)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.topN
	}

	var (
		schools   []domain.School
		accidents []domain.Accident
		radars    []domain.Radar
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schools, err = s.Schools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		accidents, err = s.Accidents(gctx, radius, "")
		return err
	})
	g.Go(func() error {
		var err error
		radars, err = s.Radars(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Ranking{}, err
	}

	schools = domain.FilterSchools(schools, req.Filter)
	accidents = domain.FilterAccidents(accidents, req.Severity)

	scored := domain.CorrelateAll(schools, accidents, radars, radius)
	s.metrics.AnchorsScored.Add(float64(len(scored)))
	ranked := domain.Rank(scored, limit)
	s.metrics.RankingDuration.Observe(s.clock.Since(start).Seconds())

	s.logger.Debug("ranking computed",
		"radius_m", radius,
		"schools", len(schools),
		"accidents", len(accidents),
		"radars", len(radars),
		"scored", len(scored),
		"returned", len(ranked),
	)

	if !req.SkipPublish {
		s.publish(ctx, ranked, radius)
	}

	return Ranking{RadiusMeters: radius, Schools: ranked}, nil
}

func (s *Service) selectRows(ctx context.Context, q graphdb.Query) (graphdb.BindingSet, error) {
	rows, err := s.selector.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	s.ready.Store(true)
	return rows, nil
}

func (s *Service) publish(ctx context.Context, ranked []domain.Scored[domain.School], radius float64) {
	if s.publisher == nil || len(ranked) == 0 {
		return
	}
	assessments := ToAssessments(ranked, radius, s.clock.Now().UTC())

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pctx, assessments); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Error("publish assessments failed", "error", err, "count", len(assessments))
		return
	}
	s.metrics.AssessmentsPublished.Add(float64(len(assessments)))
}

// ToAssessments numbers a ranking from 1 and stamps it for publication.
func ToAssessments(ranked []domain.Scored[domain.School], radius float64, at time.Time) []domain.Assessment {
	out := make([]domain.Assessment, len(ranked))
	for i, r := range ranked {
		out[i] = domain.Assessment{
			School:       r.Anchor,
			Risk:         r.RiskResult,
			Rank:         i + 1,
			RadiusMeters: radius,
			AssessedAt:   at,
		}
	}
	return out
}
