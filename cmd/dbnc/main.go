package main

import (
	"crypto/tls"
	"os"

	"dbnc/internal/api"
	"dbnc/internal/client"
	"dbnc/internal/config"
	"dbnc/internal/metrics"
	"dbnc/internal/server"
	"dbnc/pkg/debounce"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	log.Info().Msg("Debounce Resolver v1.0.0 (Sidecar Mode)")
	log.Info().Msgf("Listening on: %s", cfg.ListenAddr)
	log.Info().Msgf("API on: %s", cfg.APIAddr)
	if cfg.ControllerURL != "" {
		log.Info().Msgf("Controller URL: %s", cfg.ControllerURL)
		log.Info().Msgf("Fetch Interval: %v", cfg.FetchInterval)
	}
	log.Info().Msgf("Metrics endpoint: http://%s/metrics", cfg.MetricsAddr)
	log.Info().Msg("Starting debounce resolver...")

	// Start metrics server in background
	go func() {
		if err := metrics.StartMetricsServer(cfg.MetricsAddr); err != nil {
			log.Err(err).Msg("Metrics server error:")
		}
	}()

	var initial []debounce.RuleSpec
	if cfg.CachePath != "" {
		rules, err := client.LoadCachedRules(cfg.CachePath)
		switch {
		case err == nil:
			initial = rules
			log.Info().Msgf("Loaded %d cached rules from %s", len(rules), cfg.CachePath)
		case os.IsNotExist(err):
			log.Info().Msgf("No policy cache at %s yet", cfg.CachePath)
		default:
			metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeCacheRead, "policy_cache").Inc()
			log.Err(err).Msg("Error loading policy cache:")
		}
	}

	engine := &debounce.AtomicEngine{}
	rs := debounce.BuildRuleSet(initial)
	engine.Store(rs)
	metrics.RulesLoaded.Set(float64(rs.Len()))

	updateChannel := make(chan []debounce.RuleSpec, 10)

	go func() {
		for newRules := range updateChannel {
			if cfg.Verbose {
				log.Info().Msgf("Received rule set update with %d rules", len(newRules))
			}
			set := debounce.BuildRuleSet(newRules)
			engine.Store(set)
			metrics.RulesLoaded.Set(float64(set.Len()))

			log.Info().Msgf("Rule set updated successfully with %d rules", set.Len())
		}
	}()

	if cfg.ControllerURL != "" {
		var tlsConfig *tls.Config
		if cfg.CACertPath != "" || cfg.ClientCertPath != "" || cfg.InsecureSkipVerify {
			var err error
			tlsConfig, err = client.LoadTLSConfig(cfg.CACertPath, cfg.ClientCertPath, cfg.ClientKeyPath, cfg.InsecureSkipVerify)
			if err != nil {
				log.Err(err).Msg("Error loading controller TLS configuration, using defaults")
				tlsConfig = nil
			}
		}
		fetcher := client.NewFetcher(cfg.ControllerURL, &cfg.FetchInterval, cfg.Verbose, updateChannel, cfg.CachePath, tlsConfig)
		go fetcher.Start()
	} else {
		log.Info().Msg("Warning: No controller URL specified, running without policy updates")
	}

	apiServer := api.NewServer(cfg.APIAddr, cfg.Verbose, updateChannel)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Err(err).Msg("API server error:")
		}
	}()

	srv := server.New(cfg.ListenAddr, engine, cfg.Verbose)
	if err := srv.Start(); err != nil {
		log.Err(err).Msg("Resolver server error:")
	}
}
