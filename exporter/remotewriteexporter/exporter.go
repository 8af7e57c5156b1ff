// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package remotewriteexporter converts metric samples to Prometheus remote
// write time series and pushes them, snappy-compressed, to the configured
// endpoint.
package remotewriteexporter // import "github.com/signalpipe/signalpipe/exporter/remotewriteexporter"

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/gogo/protobuf/proto"
	"github.com/golang/snappy"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/model"
)

type exporter struct {
	cfg         *Config
	endpointURL *url.URL
	client      *http.Client
	logger      *zap.Logger
}

func newExporter(cfg *Config, set component.CreateSettings) (*exporter, error) {
	endpointURL, err := url.ParseRequestURI(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	return &exporter{
		cfg:         cfg,
		endpointURL: endpointURL,
		logger:      set.Logger,
	}, nil
}

func (prwe *exporter) start(context.Context, component.Host) error {
	client, err := prwe.cfg.HTTPClientSettings.ToClient()
	if err != nil {
		return err
	}
	prwe.client = client
	return nil
}

func (prwe *exporter) pushRecords(ctx context.Context, batch model.Batch) error {
	if batch.Signal() != model.MetricsSignal {
		return consumererror.NewPermanent(fmt.Errorf("remote write cannot carry signal %q", batch.Signal()))
	}

	wr := batchToWriteRequest(batch, prwe.cfg.Namespace, prwe.cfg.ExternalLabels)
	if len(wr.Timeseries) == 0 {
		return nil
	}

	data, err := proto.Marshal(wr)
	if err != nil {
		return consumererror.NewPermanent(err)
	}
	compressed := snappy.Encode(nil, data)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, prwe.endpointURL.String(), bytes.NewReader(compressed))
	if err != nil {
		return consumererror.NewPermanent(err)
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("Content-Encoding", "snappy")
	req.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := prwe.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make an HTTP request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	respErr := fmt.Errorf("remote write returned HTTP Status Code %d", resp.StatusCode)
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return respErr
	}
	return consumererror.NewPermanent(respErr)
}
