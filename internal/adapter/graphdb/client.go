package graphdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/school-risk-service/internal/observability"
)

// Binding is one result row: variable name to lexical value. Unbound
// (OPTIONAL) variables are absent keys.
type Binding map[string]string

// BindingSet is the decoded body of a SPARQL SELECT response.
type BindingSet []Binding

// Selector runs SELECT queries against the triple store.
type Selector interface {
	Select(ctx context.Context, q Query) (BindingSet, error)
}

// QueryError is returned when GraphDB answers with a non-2xx status.
type QueryError struct {
	Status int
	Body   string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("graphdb request failed with %d: %s", e.Status, e.Body)
}

// Client implements Selector over the SPARQL 1.1 protocol.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for a repository endpoint such as
// http://localhost:7200/repositories/safeschool.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Select posts the query text and decodes the JSON bindings.
func (c *Client) Select(ctx context.Context, q Query) (BindingSet, error) {
	start := time.Now()
	rows, err := c.doRequest(ctx, q.Text)
	c.metrics.UpstreamDuration.WithLabelValues(string(q.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamQueries.WithLabelValues(string(q.Kind), "error").Inc()
		return nil, err
	}
	c.metrics.UpstreamQueries.WithLabelValues(string(q.Kind), "success").Inc()
	c.logger.Debug("graphdb query completed", "kind", q.Kind, "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}

func (c *Client) doRequest(ctx context.Context, query string) (BindingSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/sparql-query")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &QueryError{Status: resp.StatusCode, Body: string(body)}
	}

	var sr selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	rows := make(BindingSet, 0, len(sr.Results.Bindings))
	for _, b := range sr.Results.Bindings {
		row := make(Binding, len(b))
		for name, term := range b {
			row[name] = term.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SPARQL 1.1 Query Results JSON types.

type selectResponse struct {
	Results struct {
		Bindings []map[string]term `json:"bindings"`
	} `json:"results"`
}

type term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
}
