// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package healthcheckextension serves a liveness probe reflecting the state
// of the pipelines, plus the collector's own metrics on /metrics.
package healthcheckextension // import "github.com/signalpipe/signalpipe/extension/healthcheckextension"

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/internal/obsreport"
)

type healthCheckExtension struct {
	cfg    *Config
	logger *zap.Logger

	ready  *atomic.Bool
	server *http.Server

	shutdownWG sync.WaitGroup
}

var (
	_ component.Extension       = (*healthCheckExtension)(nil)
	_ component.PipelineWatcher = (*healthCheckExtension)(nil)
)

func newExtension(cfg *Config, set component.CreateSettings) *healthCheckExtension {
	return &healthCheckExtension{
		cfg:    cfg,
		logger: set.Logger,
		ready:  atomic.NewBool(false),
	}
}

// Start binds the configured endpoint and begins answering probes. The
// extension reports unhealthy until Ready is called.
func (hc *healthCheckExtension) Start(_ context.Context, host component.Host) error {
	hc.logger.Info("Starting health check extension", zap.String("endpoint", hc.cfg.Endpoint))
	ln, err := hc.cfg.ToListener()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc(hc.cfg.Path, hc.handler)
	mux.Handle("/metrics", promhttp.HandlerFor(obsreport.Registry(), promhttp.HandlerOpts{}))

	hc.server = hc.cfg.ToServer(mux)
	hc.shutdownWG.Add(1)
	go func() {
		defer hc.shutdownWG.Done()
		if errHTTP := hc.server.Serve(ln); errHTTP != nil && !errors.Is(errHTTP, http.ErrServerClosed) {
			host.ReportFatalError(errHTTP)
		}
	}()
	return nil
}

// Shutdown stops the probe server.
func (hc *healthCheckExtension) Shutdown(ctx context.Context) error {
	if hc.server == nil {
		return nil
	}
	err := hc.server.Shutdown(ctx)
	hc.shutdownWG.Wait()
	return err
}

// Ready is called once all pipelines are running.
func (hc *healthCheckExtension) Ready() error {
	hc.ready.Store(true)
	return nil
}

// NotReady is called when the service starts draining or a component reports
// a fatal error.
func (hc *healthCheckExtension) NotReady() error {
	hc.ready.Store(false)
	return nil
}

func (hc *healthCheckExtension) handler(w http.ResponseWriter, _ *http.Request) {
	if hc.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Server available"))
		return
	}
	http.Error(w, "Server not available", http.StatusServiceUnavailable)
}
