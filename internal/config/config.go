package config

import (
	"flag"
	"time"
)

type Config struct {
	ListenAddr    string
	APIAddr       string
	MetricsAddr   string
	Verbose       bool
	ControllerURL string
	FetchInterval time.Duration
	CachePath     string

	// mTLS material for the controller connection, all optional.
	CACertPath         string
	ClientCertPath     string
	ClientKeyPath      string
	InsecureSkipVerify bool
}

func Load() *Config {
	cfg := &Config{}
	fetchIntervalSec := 0

	flag.StringVar(&cfg.ListenAddr, "listen", ":8053", "Address for the resolver endpoints (default :8053)")
	flag.StringVar(&cfg.APIAddr, "api", ":8054", "Address for the admin API (default :8054)")
	flag.StringVar(&cfg.MetricsAddr, "metrics", ":9090", "Metrics HTTP server address (default :9090)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&cfg.ControllerURL, "controller", "", "Controller URL to fetch debounce policy from")
	flag.IntVar(&fetchIntervalSec, "fetch-interval", 30, "Policy fetch interval in seconds (default 30)")
	flag.StringVar(&cfg.CachePath, "cache", "", "Path for caching the last good policy document")
	flag.StringVar(&cfg.CACertPath, "ca-cert", "", "CA certificate for the controller connection")
	flag.StringVar(&cfg.ClientCertPath, "client-cert", "", "Client certificate for mTLS with the controller")
	flag.StringVar(&cfg.ClientKeyPath, "client-key", "", "Client key for mTLS with the controller")
	flag.BoolVar(&cfg.InsecureSkipVerify, "insecure-skip-verify", false, "Skip TLS verification of the controller (insecure)")
	flag.Parse()

	cfg.FetchInterval = time.Duration(fetchIntervalSec) * time.Second

	return cfg
}
