// Package transport builds the HTTP client the session client sends
// requests through.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// NewHTTPClient returns a client with the given timeout. When caFileName is
// set, only the PEM certificates in it are trusted.
func NewHTTPClient(timeout time.Duration, caFileName string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if caFileName != "" {
		tlsConfig, err := loadTLSConfig(caFileName)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

func loadTLSConfig(caFileName string) (*tls.Config, error) {
	pem, err := os.ReadFile(caFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA file %s: no certificates found", caFileName)
	}

	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
