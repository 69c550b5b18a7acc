package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewGraphDBProxy forwards requests under prefix to the repository endpoint,
// replacing prefix with the repository path: "/graphdb/statements" becomes
// "/repositories/<repo>/statements".
func NewGraphDBProxy(repositoryEndpoint, prefix string, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(repositoryEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse graphdb endpoint: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("graphdb endpoint %q is not absolute", repositoryEndpoint)
	}
	prefix = strings.TrimRight(prefix, "/")

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = target.Scheme
			pr.Out.URL.Host = target.Host
			pr.Out.URL.Path = target.Path + strings.TrimPrefix(pr.In.URL.Path, prefix)
			pr.Out.URL.RawPath = ""
			pr.Out.Host = target.Host
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("graphdb proxy failed", "error", err, "path", r.URL.Path)
			sharedobs.WriteJSON(w, http.StatusBadGateway, map[string]string{"message": upstreamFailureMessage})
		},
	}, nil
}
