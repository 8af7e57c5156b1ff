// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package otlpreceiver accepts telemetry pushed over HTTP as JSON on the
// /v1/traces, /v1/metrics and /v1/logs routes.
package otlpreceiver // import "github.com/signalpipe/signalpipe/receiver/otlpreceiver"

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/model"
	"github.com/signalpipe/signalpipe/model/otlp"
)

type unmarshalFunc func(data []byte) (model.Batch, error)

type otlpReceiver struct {
	cfg          *Config
	logger       *zap.Logger
	nextConsumer consumer.Records
	obsrep       *obsreport.Receiver

	server     *http.Server
	shutdownWG sync.WaitGroup
}

func newReceiver(cfg *Config, set component.CreateSettings, nextConsumer consumer.Records) *otlpReceiver {
	return &otlpReceiver{
		cfg:          cfg,
		logger:       set.Logger,
		nextConsumer: nextConsumer,
		obsrep:       obsreport.NewReceiver(cfg.ID()),
	}
}

// Start binds the configured endpoint and begins serving push requests.
func (r *otlpReceiver) Start(_ context.Context, host component.Host) error {
	ln, err := r.cfg.ToListener()
	if err != nil {
		return err
	}

	router := mux.NewRouter()
	router.HandleFunc("/v1/traces", r.newSignalHandler(otlp.UnmarshalTraces)).Methods(http.MethodPost)
	router.HandleFunc("/v1/metrics", r.newSignalHandler(otlp.UnmarshalMetrics)).Methods(http.MethodPost)
	router.HandleFunc("/v1/logs", r.newSignalHandler(otlp.UnmarshalLogs)).Methods(http.MethodPost)

	r.server = r.cfg.ToServer(router)
	r.shutdownWG.Add(1)
	go func() {
		defer r.shutdownWG.Done()
		if errHTTP := r.server.Serve(ln); errHTTP != nil && !errors.Is(errHTTP, http.ErrServerClosed) {
			host.ReportFatalError(errHTTP)
		}
	}()
	return nil
}

// Shutdown stops the HTTP server and waits for in-flight requests.
func (r *otlpReceiver) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	err := r.server.Shutdown(ctx)
	r.shutdownWG.Wait()
	return err
}

func (r *otlpReceiver) newSignalHandler(unmarshal unmarshalFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, err := ioutil.ReadAll(req.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		batch, err := unmarshal(body)
		if err != nil {
			r.obsrep.RefusedRecords(0)
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if batch.Len() == 0 {
			writeOK(w)
			return
		}

		if err := r.nextConsumer.ConsumeRecords(req.Context(), batch); err != nil {
			r.obsrep.RefusedRecords(batch.Len())
			switch {
			case consumererror.IsResourceExhausted(err):
				writeError(w, http.StatusServiceUnavailable, err)
			case consumererror.IsPermanent(err):
				writeError(w, http.StatusBadRequest, err)
			default:
				r.logger.Warn("Failed to consume pushed records", zap.Error(err))
				writeError(w, http.StatusInternalServerError, err)
			}
			return
		}
		r.obsrep.AcceptedRecords(batch.Len())
		writeOK(w)
	}
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	http.Error(w, err.Error(), statusCode)
}
