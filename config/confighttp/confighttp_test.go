// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package confighttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthSettingsValidate(t *testing.T) {
	assert.NoError(t, (&AuthSettings{}).Validate())
	assert.NoError(t, (&AuthSettings{BearerToken: "tok"}).Validate())
	assert.NoError(t, (&AuthSettings{Username: "u", Password: "p"}).Validate())
	assert.Error(t, (&AuthSettings{BearerToken: "tok", Username: "u"}).Validate())
}

func TestHTTPClientSettingsValidate(t *testing.T) {
	assert.Error(t, (&HTTPClientSettings{}).Validate())
	assert.NoError(t, (&HTTPClientSettings{Endpoint: "http://localhost:4318"}).Validate())
}

func TestToClientInjectsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = req.Header.Clone()
	}))
	defer srv.Close()

	hcs := &HTTPClientSettings{
		Endpoint: srv.URL,
		Headers:  map[string]string{"X-Tenant": "shop"},
		Auth:     AuthSettings{BearerToken: "secret"},
	}
	client, err := hcs.ToClient()
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, "shop", got.Get("X-Tenant"))
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
}

func TestToClientBasicAuth(t *testing.T) {
	var user, pass string
	var ok bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, pass, ok = req.BasicAuth()
	}))
	defer srv.Close()

	hcs := &HTTPClientSettings{
		Endpoint: srv.URL,
		Auth:     AuthSettings{Username: "u", Password: "p"},
	}
	client, err := hcs.ToClient()
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	require.True(t, ok)
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", pass)
}

func TestToClientInvalidAuth(t *testing.T) {
	hcs := &HTTPClientSettings{
		Endpoint: "http://localhost:4318",
		Auth:     AuthSettings{BearerToken: "tok", Username: "u"},
	}
	_, err := hcs.ToClient()
	assert.Error(t, err)
}

func TestServerCORS(t *testing.T) {
	hss := &HTTPServerSettings{
		Endpoint:           "localhost:0",
		CORSAllowedOrigins: []string{"https://app.example.com"},
	}
	srv := hss.ToServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/traces", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
