package server

import (
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"dbnc/internal/metrics"
	"dbnc/pkg/debounce"
)

type ResolveResponse struct {
	Matched  bool   `json:"matched"`
	Redirect string `json:"redirect,omitempty"`
}

func (s *Server) resolve(rawURL string) debounce.Result {
	rs := s.Engine.Load()
	if rs == nil {
		return debounce.Result{Rule: -1}
	}

	start := time.Now()
	res := rs.Resolve(rawURL)

	outcome := metrics.OutcomeNoMatch
	switch {
	case res.Redirect != "":
		outcome = metrics.OutcomeRedirected
	case res.Matched:
		outcome = metrics.OutcomeMatched
	}
	metrics.ResolutionsTotal.WithLabelValues(outcome).Inc()
	metrics.ResolveDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if res.Redirect != "" {
		if u, err := url.Parse(rawURL); err == nil {
			if tracker := debounce.RegistrableDomain(u.Hostname()); tracker != "" {
				metrics.RedirectsTotal.WithLabelValues(tracker).Inc()
			}
		}
	}

	if s.Verbose {
		log.Info().Msgf("Resolved %s: matched=%v rule=%d", rawURL, res.Matched, res.Rule)
	}
	return res
}

// handleResolve returns the verdict for a candidate URL as JSON.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeBadRequest, "resolver").Inc()
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}

	res := s.resolve(rawURL)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ResolveResponse{
		Matched:  res.Matched,
		Redirect: res.Redirect,
	}); err != nil {
		log.Err(err).Msg("Error encoding resolve response:")
	}
}

// handleBounce redirects the client to the debounced target when one
// exists, and back to the original URL otherwise. Continuing the original
// navigation is the safe default.
func (s *Server) handleBounce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeBadRequest, "resolver").Inc()
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}

	location := rawURL
	if res := s.resolve(rawURL); res.Redirect != "" {
		location = res.Redirect
	}
	http.Redirect(w, r, location, http.StatusFound)
}
