package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/school-risk-service/internal/cache"
	"github.com/couchcryptid/school-risk-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// GraphDB upstream configuration.
	GraphDBURL        string
	GraphDBRepository string
	GraphDBTimeout    time.Duration
	CacheTTL          time.Duration // 0 disables the result cache
	ProxyPath         string
	ProxyEnabled      bool

	// Ranking defaults.
	RiskRadiusMeters float64
	RiskTopN         int

	// Assessment publishing, enabled when brokers are set.
	KafkaBrokers         []string
	KafkaAssessmentTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	graphdbTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GRAPHDB_TIMEOUT", "10s"))
	if err != nil || graphdbTimeout <= 0 {
		return nil, errors.New("invalid GRAPHDB_TIMEOUT")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GraphDBURL:        strings.TrimRight(sharedcfg.EnvOrDefault("GRAPHDB_URL", "http://localhost:7200"), "/"),
		GraphDBRepository: sharedcfg.EnvOrDefault("GRAPHDB_REPOSITORY", "safeschool"),
		GraphDBTimeout:    graphdbTimeout,
		CacheTTL:          parseCacheTTL(),
		ProxyPath:         sharedcfg.EnvOrDefault("GRAPHDB_PROXY_PATH", "/graphdb"),
		ProxyEnabled:      sharedcfg.EnvOrDefault("GRAPHDB_PROXY_ENABLED", "true") == "true",

		RiskRadiusMeters: parseRadius(),
		RiskTopN:         parseTopN(),

		KafkaAssessmentTopic: sharedcfg.EnvOrDefault("KAFKA_ASSESSMENT_TOPIC", "school-risk-assessments"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); strings.TrimSpace(brokers) != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.GraphDBRepository == "" {
		return nil, errors.New("GRAPHDB_REPOSITORY is required")
	}
	if cfg.ProxyEnabled && !strings.HasPrefix(cfg.ProxyPath, "/") {
		return nil, errors.New("GRAPHDB_PROXY_PATH must start with /")
	}
	if cfg.KafkaEnabled() && cfg.KafkaAssessmentTopic == "" {
		return nil, errors.New("KAFKA_ASSESSMENT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// GraphDBEndpoint is the SPARQL endpoint of the configured repository.
func (c *Config) GraphDBEndpoint() string {
	return c.GraphDBURL + "/repositories/" + c.GraphDBRepository
}

// KafkaEnabled reports whether rankings are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// parseCacheTTL reads GRAPHDB_CACHE_TTL_MS. Unparseable values keep the
// five-minute default; parseable non-positive or non-finite values disable caching.
func parseCacheTTL() time.Duration {
	const defaultTTLMillis = 5 * 60 * 1000
	s := os.Getenv("GRAPHDB_CACHE_TTL_MS")
	if s == "" {
		return cache.TTLFromMillis(defaultTTLMillis)
	}
	ms, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return cache.TTLFromMillis(defaultTTLMillis)
	}
	return cache.TTLFromMillis(ms)
}

func parseRadius() float64 {
	if s := os.Getenv("RISK_RADIUS_METERS"); s != "" {
		if r, err := strconv.ParseFloat(s, 64); err == nil {
			return domain.NormalizeRadius(r)
		}
	}
	return domain.DefaultRadiusMeters
}

func parseTopN() int {
	if s := os.Getenv("RISK_TOP_N"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return domain.DefaultTopN
}
