package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/school-risk-service/internal/adapter/graphdb"
	"github.com/couchcryptid/school-risk-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/school-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/school-risk-service/internal/assessment"
	"github.com/couchcryptid/school-risk-service/internal/cache"
	"github.com/couchcryptid/school-risk-service/internal/config"
	"github.com/couchcryptid/school-risk-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := graphdb.NewClient(cfg.GraphDBEndpoint(), cfg.GraphDBTimeout, metrics, logger)
	results := cache.New[graphdb.BindingSet](cfg.CacheTTL, nil)
	selector := graphdb.NewCachedClient(client, results, metrics, logger)
	logger.Info("graphdb configured",
		"endpoint", cfg.GraphDBEndpoint(),
		"timeout", cfg.GraphDBTimeout,
		"cache_ttl", cfg.CacheTTL,
	)

	// Publishing is feature-flagged via KAFKA_BROKERS.
	var (
		publisher assessment.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("assessment publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAssessmentTopic)
	} else {
		logger.Info("assessment publishing disabled")
	}

	svc := assessment.New(selector, publisher, logger, metrics, assessment.Options{
		RadiusMeters: cfg.RiskRadiusMeters,
		TopN:         cfg.RiskTopN,
	})

	var opts httpadapter.Options
	if cfg.ProxyEnabled {
		proxy, err := httpadapter.NewGraphDBProxy(cfg.GraphDBEndpoint(), cfg.ProxyPath, logger)
		if err != nil {
			logger.Error("failed to create graphdb proxy", "error", err)
			os.Exit(1)
		}
		opts = httpadapter.Options{ProxyPath: cfg.ProxyPath, Proxy: proxy}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
