package client

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"dbnc/internal/metrics"
	"dbnc/pkg/debounce"
)

// LoadCachedRules reads the last good policy document from path, so a
// restart does not lose rules while the controller is unreachable.
func LoadCachedRules(path string) ([]debounce.RuleSpec, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var resp ControllerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode cached policy: %w", err)
	}
	return resp.Policy.Spec.Rules, nil
}

// saveCache persists the raw policy document. Temp file plus rename, so a
// crash mid-write never truncates the cache.
func (f *Fetcher) saveCache(body []byte) {
	tmp := f.cachePath + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeCacheWrite, "policy_cache").Inc()
		log.Err(err).Msgf("Error writing policy cache %s:", tmp)
		return
	}
	if err := os.Rename(tmp, f.cachePath); err != nil {
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeCacheWrite, "policy_cache").Inc()
		log.Err(err).Msgf("Error replacing policy cache %s:", f.cachePath)
		return
	}
	if f.verbose {
		log.Info().Msgf("Policy cached to %s", f.cachePath)
	}
}
