// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package confighttp defines the HTTP client and server settings shared by
// components that talk HTTP: the push receiver, the push exporters and the
// health check extension.
package confighttp // import "github.com/signalpipe/signalpipe/config/confighttp"

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
)

// AuthSettings carries the credential attached to every outgoing request.
// Bearer token and basic auth are mutually exclusive.
type AuthSettings struct {
	// BearerToken is sent as "Authorization: Bearer <token>".
	BearerToken string `mapstructure:"bearer_token"`

	// Username/Password are sent as basic auth.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Validate checks that at most one credential kind is configured.
func (as *AuthSettings) Validate() error {
	if as.BearerToken != "" && as.Username != "" {
		return errors.New("bearer_token and username/password are mutually exclusive")
	}
	return nil
}

// HTTPClientSettings defines settings for creating an HTTP client.
type HTTPClientSettings struct {
	// Endpoint is the target URL to send data to (e.g. https://host:4318).
	Endpoint string `mapstructure:"endpoint"`

	// Timeout bounds every request, see http.Client.Timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are additional headers attached to every request.
	Headers map[string]string `mapstructure:"headers"`

	// Auth is the credential attached to every request.
	Auth AuthSettings `mapstructure:"auth"`
}

// Validate checks the client settings.
func (hcs *HTTPClientSettings) Validate() error {
	if hcs.Endpoint == "" {
		return errors.New("endpoint must be specified")
	}
	return hcs.Auth.Validate()
}

// ToClient creates an HTTP client that injects the configured headers and
// credentials into every request.
func (hcs *HTTPClientSettings) ToClient() (*http.Client, error) {
	if err := hcs.Validate(); err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Transport: headerRoundTripper{
			transport: transport,
			headers:   hcs.Headers,
			auth:      hcs.Auth,
		},
		Timeout: hcs.Timeout,
	}, nil
}

type headerRoundTripper struct {
	transport http.RoundTripper
	headers   map[string]string
	auth      AuthSettings
}

func (hrt headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range hrt.headers {
		req.Header.Set(k, v)
	}
	switch {
	case hrt.auth.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+hrt.auth.BearerToken)
	case hrt.auth.Username != "":
		req.SetBasicAuth(hrt.auth.Username, hrt.auth.Password)
	}
	return hrt.transport.RoundTrip(req)
}

// HTTPServerSettings defines settings for creating an HTTP server.
type HTTPServerSettings struct {
	// Endpoint is the listening address, e.g. "0.0.0.0:4318".
	Endpoint string `mapstructure:"endpoint"`

	// CORSAllowedOrigins enables CORS for browser clients when non-empty.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// ToListener binds the configured address.
func (hss *HTTPServerSettings) ToListener() (net.Listener, error) {
	return net.Listen("tcp", hss.Endpoint)
}

// ToServer wraps the handler with CORS when configured.
func (hss *HTTPServerSettings) ToServer(handler http.Handler) *http.Server {
	if len(hss.CORSAllowedOrigins) > 0 {
		co := cors.New(cors.Options{
			AllowedOrigins: hss.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodPost, http.MethodGet},
			AllowedHeaders: []string{"*"},
		})
		handler = co.Handler(handler)
	}
	return &http.Server{
		Handler: handler,
	}
}
