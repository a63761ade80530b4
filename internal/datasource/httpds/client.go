// Package httpds reads snapshot objects over HTTP(S), for example a mirror
// of the public extract or an internal artifact server.
package httpds

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout bounds a whole request, body included. Snapshot files can be
	// large; zero means 5 minutes.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Headers are sent with every request (e.g. Authorization).
	Headers http.Header

	// Transport overrides the default *http.Transport.
	Transport http.RoundTripper
}

// newHTTPClient builds the client used by Store, applying defaults for zero
// values.
func newHTTPClient(cfg Config) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
			},
		}
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: transport}
}
