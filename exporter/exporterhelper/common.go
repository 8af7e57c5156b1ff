// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package exporterhelper implements the delivery machinery shared by all
// exporters: a bounded sending queue, retry with exponential backoff and a
// per-attempt timeout. Concrete exporters only provide the push function that
// encodes and transmits one batch.
package exporterhelper // import "github.com/signalpipe/signalpipe/exporter/exporterhelper"

import (
	"context"
	"errors"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/model"
)

var errNilPushRecords = errors.New("nil push records func")

// PushRecordsFunc encodes and transmits one batch to the backend. Transient
// failures are returned plainly, unrecoverable ones wrapped with
// consumererror.NewPermanent.
type PushRecordsFunc func(ctx context.Context, batch model.Batch) error

// TimeoutSettings bounds one export attempt.
type TimeoutSettings struct {
	// Timeout is the per-attempt bound. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewDefaultTimeoutSettings returns the default per-attempt timeout.
func NewDefaultTimeoutSettings() TimeoutSettings {
	return TimeoutSettings{Timeout: 5 * time.Second}
}

// QueueSettings defines the bounded queue between the pipeline and the
// sender workers. A full queue refuses new batches, which surfaces as
// backpressure at the receivers.
type QueueSettings struct {
	// Enabled turns queueing on.
	Enabled bool `mapstructure:"enabled"`
	// NumConsumers is the number of workers draining the queue.
	NumConsumers int `mapstructure:"num_consumers"`
	// QueueSize is the maximum number of batches held.
	QueueSize int `mapstructure:"queue_size"`
}

// NewDefaultQueueSettings returns the default queue settings.
func NewDefaultQueueSettings() QueueSettings {
	return QueueSettings{
		Enabled:      true,
		NumConsumers: 10,
		// At 100 batches/sec this buys about 50s of backend outage.
		QueueSize: 5000,
	}
}

// RetrySettings defines the exponential backoff applied to retryable export
// failures.
type RetrySettings struct {
	// Enabled turns retrying on.
	Enabled bool `mapstructure:"enabled"`
	// InitialInterval is the wait after the first failure.
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	// MaxInterval caps the wait between consecutive retries.
	MaxInterval time.Duration `mapstructure:"max_interval"`
	// MaxElapsedTime bounds the total time spent on one batch including
	// retries. Once exceeded the batch is dropped.
	MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"`
	// MaxAttempts bounds the number of tries per batch. Zero means bounded
	// by MaxElapsedTime only.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// NewDefaultRetrySettings returns the default retry settings.
func NewDefaultRetrySettings() RetrySettings {
	return RetrySettings{
		Enabled:         true,
		InitialInterval: 5 * time.Second,
		MaxInterval:     30 * time.Second,
		MaxElapsedTime:  5 * time.Minute,
	}
}

// request is one batch travelling down the sender chain.
type request struct {
	ctx   context.Context
	batch model.Batch
}

func (r *request) count() int {
	return r.batch.Len()
}

// requestSender is one stage of the sender chain.
type requestSender interface {
	send(req *request) error
}

// Option applies a change to the exporter built by NewExporter.
type Option func(*baseExporter)

// WithStart sets a function run when the exporter starts.
func WithStart(start component.StartFunc) Option {
	return func(be *baseExporter) {
		be.StartFunc = start
	}
}

// WithShutdown sets a function run when the exporter shuts down.
func WithShutdown(shutdown component.ShutdownFunc) Option {
	return func(be *baseExporter) {
		be.ShutdownFunc = shutdown
	}
}

// WithTimeout overrides the default per-attempt timeout.
func WithTimeout(timeoutSettings TimeoutSettings) Option {
	return func(be *baseExporter) {
		be.timeoutSender.cfg = timeoutSettings
	}
}

// WithRetry overrides the default retry settings.
func WithRetry(retrySettings RetrySettings) Option {
	return func(be *baseExporter) {
		be.retryCfg = retrySettings
	}
}

// WithQueue overrides the default queue settings.
func WithQueue(queueSettings QueueSettings) Option {
	return func(be *baseExporter) {
		be.queueCfg = queueSettings
	}
}

// baseExporter ties the sender chain together and implements
// component.Exporter.
type baseExporter struct {
	component.StartFunc
	component.ShutdownFunc

	id     config.ComponentID
	obsrep *obsreport.Exporter

	queueCfg QueueSettings
	retryCfg RetrySettings

	qrSender      *queuedRetrySender
	timeoutSender *timeoutSender
}

var _ component.Exporter = (*baseExporter)(nil)

// NewExporter wraps a push function with the queue/retry/timeout chain.
func NewExporter(cfg config.Exporter, set component.CreateSettings, push PushRecordsFunc, options ...Option) (component.Exporter, error) {
	if push == nil {
		return nil, errNilPushRecords
	}

	be := &baseExporter{
		id:            cfg.ID(),
		obsrep:        obsreport.NewExporter(cfg.ID()),
		queueCfg:      NewDefaultQueueSettings(),
		retryCfg:      NewDefaultRetrySettings(),
		timeoutSender: &timeoutSender{cfg: NewDefaultTimeoutSettings(), push: push},
	}
	for _, op := range options {
		op(be)
	}

	be.qrSender = newQueuedRetrySender(be.id, be.queueCfg, be.retryCfg, be.timeoutSender, be.obsrep, set.Logger)
	return be, nil
}

func (be *baseExporter) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

func (be *baseExporter) ConsumeRecords(ctx context.Context, batch model.Batch) error {
	return be.qrSender.send(&request{ctx: ctx, batch: batch})
}

func (be *baseExporter) Start(ctx context.Context, host component.Host) error {
	if err := be.StartFunc.Start(ctx, host); err != nil {
		return err
	}
	be.qrSender.start()
	return nil
}

func (be *baseExporter) Shutdown(ctx context.Context) error {
	// Stop retrying first so queue workers cannot block on backoff waits,
	// then drain the queue, then shut down the wrapped exporter.
	be.qrSender.shutdown()
	return be.ShutdownFunc.Shutdown(ctx)
}
