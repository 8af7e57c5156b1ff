// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package scrapereceiver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/component/componenttest"
	"github.com/signalpipe/signalpipe/consumer/consumertest"
	"github.com/signalpipe/signalpipe/model"
)

const testExposition = `# TYPE http_requests_total counter
http_requests_total{code="200"} 10
# TYPE process_cpu gauge
process_cpu 21.5
# TYPE latency histogram
latency_bucket{le="0.1"} 1
latency_bucket{le="1"} 3
latency_bucket{le="+Inf"} 4
latency_sum 2.5
latency_count 4
# TYPE rpc_duration summary
rpc_duration{quantile="0.5"} 0.05
rpc_duration_sum 17
rpc_duration_count 100
queue_depth 7
`

func TestCreateDefaultConfig(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	assert.Equal(t, 30*time.Second, cfg.CollectionInterval)
	assert.Equal(t, 10*time.Second, cfg.ScrapeTimeout)
	// No targets configured yet.
	assert.Error(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	cfg.Targets = []string{"http://localhost:9100/metrics"}
	assert.NoError(t, cfg.Validate())

	cfg.Targets = []string{"not a url"}
	assert.Error(t, cfg.Validate())

	cfg.Targets = []string{"http://localhost:9100/metrics"}
	cfg.CollectionInterval = 0
	assert.Error(t, cfg.Validate())
}

func TestParseExposition(t *testing.T) {
	now := time.Unix(100, 0).UTC()
	samples, err := parseExposition(strings.NewReader(testExposition), now)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	byName := make(map[string]*model.MetricSample, len(samples))
	for _, s := range samples {
		byName[s.Name] = s
	}

	counter := byName["http_requests_total"]
	require.NotNil(t, counter)
	assert.Equal(t, model.MetricKindCounter, counter.Kind)
	assert.Equal(t, 10.0, counter.Value)
	assert.Equal(t, map[string]string{"code": "200"}, counter.Tags)
	assert.Equal(t, now, counter.Timestamp)

	gauge := byName["process_cpu"]
	require.NotNil(t, gauge)
	assert.Equal(t, model.MetricKindGauge, gauge.Kind)
	assert.Equal(t, 21.5, gauge.Value)

	// Untyped metrics come through as gauges.
	untyped := byName["queue_depth"]
	require.NotNil(t, untyped)
	assert.Equal(t, model.MetricKindGauge, untyped.Kind)
	assert.Equal(t, 7.0, untyped.Value)

	hist := byName["latency"]
	require.NotNil(t, hist)
	assert.Equal(t, model.MetricKindHistogram, hist.Kind)
	require.NotNil(t, hist.Histogram)
	assert.Equal(t, []float64{0.1, 1}, hist.Histogram.Bounds)
	assert.Equal(t, []uint64{1, 2, 1}, hist.Histogram.Counts)
	assert.Equal(t, 2.5, hist.Histogram.Sum)
	assert.Equal(t, uint64(4), hist.Histogram.Count)

	// Summaries are dropped.
	assert.NotContains(t, byName, "rpc_duration")
}

func TestParseExpositionInvalid(t *testing.T) {
	_, err := parseExposition(strings.NewReader("http_requests_total{ 10\n"), time.Now())
	assert.Error(t, err)
}

func startScraper(t *testing.T, cfg *Config, sink *consumertest.Sink) func() {
	set := component.CreateSettings{TelemetrySettings: componenttest.NewNopTelemetrySettings()}
	recv, err := createReceiver(context.Background(), set, cfg, sink)
	require.NoError(t, err)
	require.NoError(t, recv.Start(context.Background(), componenttest.NewNopHost()))
	return func() {
		require.NoError(t, recv.Shutdown(context.Background()))
	}
}

func TestScrapeTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testExposition))
	}))
	defer srv.Close()

	cfg := createDefaultConfig().(*Config)
	cfg.CollectionInterval = 10 * time.Millisecond
	cfg.Targets = []string{srv.URL}
	cfg.Labels = map[string]string{"env": "test"}

	sink := new(consumertest.Sink)
	stop := startScraper(t, cfg, sink)
	defer stop()

	assert.Eventually(t, func() bool {
		return sink.RecordCount() >= 4
	}, time.Second, 10*time.Millisecond)

	batch := sink.Batches()[0]
	assert.Equal(t, model.MetricsSignal, batch.Signal())
	res := batch.Records()[0].Resource()
	v, ok := res.Get("env")
	assert.True(t, ok)
	assert.Equal(t, "test", v)
	_, ok = res.Get("scrape.target")
	assert.True(t, ok)
}

func TestScrapeFailingTargetDoesNotBlockOthers(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("up_metric 1\n"))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	cfg := createDefaultConfig().(*Config)
	cfg.CollectionInterval = 10 * time.Millisecond
	cfg.Targets = []string{bad.URL, good.URL}

	sink := new(consumertest.Sink)
	stop := startScraper(t, cfg, sink)
	defer stop()

	// The failing target produces no records while the healthy one keeps
	// getting scraped on schedule.
	assert.Eventually(t, func() bool {
		return sink.RecordCount() >= 2
	}, time.Second, 10*time.Millisecond)
	for _, batch := range sink.Batches() {
		for _, rec := range batch.Records() {
			target, ok := rec.Resource().Get("scrape.target")
			require.True(t, ok)
			assert.Equal(t, good.URL, target)
		}
	}
}
