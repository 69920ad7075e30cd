package client

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// LoadTLSConfig builds the TLS client configuration for the controller
// connection, optionally with a private CA and an mTLS client certificate.
func LoadTLSConfig(caCertPath, clientCertPath, clientKeyPath string, insecureSkipVerify bool) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify,
	}

	if caCertPath != "" {
		caCert, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}

		tlsConfig.RootCAs = caCertPool
		log.Info().Msgf("Loaded CA certificate from %s", caCertPath)
	}

	if clientCertPath != "" && clientKeyPath != "" {
		clientCert, err := tls.LoadX509KeyPair(clientCertPath, clientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}

		tlsConfig.Certificates = []tls.Certificate{clientCert}
		log.Info().Msgf("Loaded client certificate from %s", clientCertPath)
	}

	if insecureSkipVerify {
		log.Warn().Msg("TLS certificate verification is disabled (insecure)")
	}

	return tlsConfig, nil
}
