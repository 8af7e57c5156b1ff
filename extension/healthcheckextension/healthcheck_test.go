// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package healthcheckextension

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/component/componenttest"
	"github.com/signalpipe/signalpipe/internal/testutil"
)

func TestCreateDefaultConfig(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	assert.Equal(t, "0.0.0.0:13133", cfg.Endpoint)
	assert.Equal(t, "/", cfg.Path)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = createDefaultConfig().(*Config)
	cfg.Path = "healthz"
	assert.Error(t, cfg.Validate())
}

func probe(t *testing.T, url string) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp.StatusCode
}

func TestHealthCheckLifecycle(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = testutil.GetAvailableLocalAddress(t)

	set := component.CreateSettings{TelemetrySettings: componenttest.NewNopTelemetrySettings()}
	ext, err := createExtension(context.Background(), set, cfg)
	require.NoError(t, err)

	require.NoError(t, ext.Start(context.Background(), componenttest.NewNopHost()))
	defer func() { require.NoError(t, ext.Shutdown(context.Background())) }()

	url := "http://" + cfg.Endpoint + cfg.Path

	// Unhealthy until the pipelines are up.
	assert.Equal(t, http.StatusServiceUnavailable, probe(t, url))

	watcher := ext.(component.PipelineWatcher)
	require.NoError(t, watcher.Ready())
	assert.Equal(t, http.StatusOK, probe(t, url))

	require.NoError(t, watcher.NotReady())
	assert.Equal(t, http.StatusServiceUnavailable, probe(t, url))
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = testutil.GetAvailableLocalAddress(t)

	set := component.CreateSettings{TelemetrySettings: componenttest.NewNopTelemetrySettings()}
	ext, err := createExtension(context.Background(), set, cfg)
	require.NoError(t, err)

	require.NoError(t, ext.Start(context.Background(), componenttest.NewNopHost()))
	defer func() { require.NoError(t, ext.Shutdown(context.Background())) }()

	assert.Equal(t, http.StatusOK, probe(t, "http://"+cfg.Endpoint+"/metrics"))
}
