// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package otlpexporter sends record batches as JSON to an OTLP-style HTTP
// endpoint, one path per signal type, with the credentials configured in the
// client settings.
package otlpexporter // import "github.com/signalpipe/signalpipe/exporter/otlpexporter"

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/model"
	"github.com/signalpipe/signalpipe/model/otlp"
)

type exporter struct {
	cfg    *Config
	client *http.Client
	logger *zap.Logger

	tracesURL  string
	metricsURL string
	logsURL    string
}

func newExporter(cfg *Config, set component.CreateSettings) (*exporter, error) {
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	return &exporter{
		cfg:        cfg,
		logger:     set.Logger,
		tracesURL:  cfg.Endpoint + "/v1/traces",
		metricsURL: cfg.Endpoint + "/v1/metrics",
		logsURL:    cfg.Endpoint + "/v1/logs",
	}, nil
}

func (e *exporter) start(context.Context, component.Host) error {
	client, err := e.cfg.HTTPClientSettings.ToClient()
	if err != nil {
		return err
	}
	e.client = client
	return nil
}

func (e *exporter) pushRecords(ctx context.Context, batch model.Batch) error {
	body, err := otlp.MarshalBatch(batch)
	if err != nil {
		return consumererror.NewPermanent(err)
	}

	var targetURL string
	switch batch.Signal() {
	case model.TracesSignal:
		targetURL = e.tracesURL
	case model.MetricsSignal:
		targetURL = e.metricsURL
	default:
		targetURL = e.logsURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return consumererror.NewPermanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		// Transport level failure, worth retrying.
		return fmt.Errorf("failed to make an HTTP request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	respErr := fmt.Errorf("error exporting records, request to %s responded with HTTP Status Code %d", targetURL, resp.StatusCode)
	if !isRetryableStatusCode(resp.StatusCode) {
		return consumererror.NewPermanent(respErr)
	}
	if delay := retryAfter(resp); delay > 0 {
		return consumererror.NewThrottleRetry(respErr, delay)
	}
	return respErr
}

func isRetryableStatusCode(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	default:
		return code >= 500
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0
	}
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
