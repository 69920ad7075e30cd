package client

import (
	"crypto/tls"
	"dbnc/internal/metrics"
	"dbnc/pkg/debounce"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

func NewFetcher(controllerURL string, fetchInterval *time.Duration, verbose bool, updateChannel chan []debounce.RuleSpec, cachePath string, tlsConfig *tls.Config) *Fetcher {
	transport := &http.Transport{
		TLSClientConfig:   tlsConfig,
		ForceAttemptHTTP2: true,
	}
	return &Fetcher{
		controllerURL: controllerURL,
		fetchInterval: fetchInterval,
		verbose:       verbose,
		updateChannel: updateChannel,
		cachePath:     cachePath,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (f *Fetcher) Start() {
	if f.verbose {
		log.Info().Msgf("Starting policy fetcher, controller: %s, interval: %v", f.controllerURL, *f.fetchInterval)
	}

	ticker := time.NewTicker(*f.fetchInterval)
	defer ticker.Stop()

	// Fetch immediately on start
	f.fetchPolicy()

	current := *f.fetchInterval
	for range ticker.C {
		f.fetchPolicy()
		// The controller can change its own poll interval through the policy
		if *f.fetchInterval != current && *f.fetchInterval > 0 {
			current = *f.fetchInterval
			ticker.Reset(current)
			log.Info().Msgf("Fetch interval changed to %v", current)
		}
	}
}

// fetchPolicy pulls the current policy from the controller. Every failure
// keeps the last good rule set: a broken refresh must never break browsing.
func (f *Fetcher) fetchPolicy() {
	if f.verbose {
		log.Info().Msgf("Fetching policy from controller: %s", f.controllerURL)
	}

	url := fmt.Sprintf("%s/api/policy", f.controllerURL)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		log.Err(err).Msg("Error building policy request:")
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypePolicyFetch, "policy_upstream").Inc()
		return
	}
	if f.etag != "" {
		req.Header.Set("If-None-Match", f.etag)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Err(err).Msg("Error fetching policy:")
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypePolicyFetch, "policy_upstream").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		if f.verbose {
			log.Info().Msg("Policy unchanged (304), keeping current rule set")
		}
		return
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypePolicyFetch, "policy_upstream_http_err").Inc()
		log.Error().Msgf("Unexpected status code from controller: %d", resp.StatusCode)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypePolicyFetch, "policy_upstream").Inc()
		log.Err(err).Msg("Error reading policy response:")
		return
	}

	var controllerResp ControllerResponse
	if err := json.Unmarshal(body, &controllerResp); err != nil {
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypePolicyDecode, "policy_upstream_decode_err").Inc()
		log.Err(err).Msg("Error decoding policy response:")
		return
	}

	f.etag = resp.Header.Get("ETag")

	rules := controllerResp.Policy.Spec.Rules
	f.updateChannel <- rules

	if f.cachePath != "" {
		f.saveCache(body)
	}

	if iv := controllerResp.Policy.Spec.Interval; iv > 0 {
		*f.fetchInterval = time.Duration(iv) * time.Second
	}

	if f.verbose {
		log.Info().Msgf("Policy fetched successfully: %d rules", len(rules))
	}
}
