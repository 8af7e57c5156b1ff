// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/signalpipe/signalpipe/exporter/exporterhelper"

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jaegertracing/jaeger/pkg/queue"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/internal/obsreport"
)

var errSendingQueueFull = errors.New("sending queue is full")

// queuedRetrySender enqueues requests into a bounded queue drained by worker
// goroutines, each of which runs the retry loop.
type queuedRetrySender struct {
	cfg         QueueSettings
	retrySender *retrySender
	queue       *queue.BoundedQueue
	obsrep      *obsreport.Exporter
}

func newQueuedRetrySender(id config.ComponentID, qCfg QueueSettings, rCfg RetrySettings, nextSender requestSender, obsrep *obsreport.Exporter, logger *zap.Logger) *queuedRetrySender {
	return &queuedRetrySender{
		cfg: qCfg,
		retrySender: &retrySender{
			id:         id,
			cfg:        rCfg,
			nextSender: nextSender,
			stopCh:     make(chan struct{}),
			obsrep:     obsrep,
			logger:     logger,
		},
		queue:  queue.NewBoundedQueue(qCfg.QueueSize, func(item interface{}) {}),
		obsrep: obsrep,
	}
}

// start spawns the queue workers.
func (qrs *queuedRetrySender) start() {
	if !qrs.cfg.Enabled {
		return
	}
	qrs.queue.StartConsumers(qrs.cfg.NumConsumers, func(item interface{}) {
		req := item.(*request)
		_ = qrs.retrySender.send(req)
	})
}

func (qrs *queuedRetrySender) send(req *request) error {
	if !qrs.cfg.Enabled {
		return qrs.retrySender.send(req)
	}

	// The enqueued request must not carry the caller's context: the producer
	// returns immediately and its context may be cancelled long before the
	// workers get to the item.
	req.ctx = context.Background()

	if !qrs.queue.Produce(req) {
		qrs.obsrep.EnqueueFailed(req.count())
		return consumererror.NewResourceExhausted(errSendingQueueFull)
	}
	return nil
}

// shutdown stops the retry loops first so queue workers cannot be parked in a
// backoff wait, then drains the queue.
func (qrs *queuedRetrySender) shutdown() {
	close(qrs.retrySender.stopCh)
	if qrs.cfg.Enabled {
		qrs.queue.Stop()
	}
}

// retrySender retries a request with exponential backoff and jitter until it
// succeeds, fails permanently, or exhausts its bounds.
type retrySender struct {
	id         config.ComponentID
	cfg        RetrySettings
	nextSender requestSender
	stopCh     chan struct{}
	obsrep     *obsreport.Exporter
	logger     *zap.Logger
}

func (rs *retrySender) send(req *request) error {
	if !rs.cfg.Enabled {
		err := rs.nextSender.send(req)
		if err != nil {
			rs.obsrep.FailedSend()
			rs.obsrep.DroppedRecords(req.count(), dropReason(err))
			return err
		}
		rs.obsrep.SentRecords(req.count())
		return nil
	}

	expBackoff := backoff.ExponentialBackOff{
		InitialInterval:     rs.cfg.InitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         rs.cfg.MaxInterval,
		MaxElapsedTime:      rs.cfg.MaxElapsedTime,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	expBackoff.Reset()

	attempts := 0
	for {
		err := rs.nextSender.send(req)
		if err == nil {
			rs.obsrep.SentRecords(req.count())
			return nil
		}
		rs.obsrep.FailedSend()
		attempts++

		if consumererror.IsPermanent(err) {
			rs.logger.Error("Exporting failed. The error is not retryable. Dropping data.",
				zap.String("exporter", rs.id.String()), zap.Error(err), zap.Int("dropped_records", req.count()))
			rs.obsrep.DroppedRecords(req.count(), obsreport.ReasonPermanent)
			return err
		}

		if rs.cfg.MaxAttempts > 0 && attempts >= rs.cfg.MaxAttempts {
			rs.logger.Error("Exporting failed. Attempt limit reached. Dropping data.",
				zap.String("exporter", rs.id.String()), zap.Error(err), zap.Int("dropped_records", req.count()))
			rs.obsrep.DroppedRecords(req.count(), obsreport.ReasonRetryExhausted)
			return fmt.Errorf("max attempts reached: %w", err)
		}

		backoffDelay := expBackoff.NextBackOff()
		if backoffDelay == backoff.Stop {
			rs.logger.Error("Exporting failed. Retry elapsed time expired. Dropping data.",
				zap.String("exporter", rs.id.String()), zap.Error(err), zap.Int("dropped_records", req.count()))
			rs.obsrep.DroppedRecords(req.count(), obsreport.ReasonRetryExhausted)
			return fmt.Errorf("max elapsed time expired: %w", err)
		}

		if throttleDelay, ok := consumererror.ThrottleDelay(err); ok && throttleDelay > backoffDelay {
			backoffDelay = throttleDelay
		}

		rs.logger.Info("Exporting failed. Will retry the request after interval.",
			zap.String("exporter", rs.id.String()), zap.Error(err), zap.Duration("interval", backoffDelay))

		// Back off, but give up on shutdown or when the request's context ends.
		select {
		case <-req.ctx.Done():
			rs.obsrep.DroppedRecords(req.count(), obsreport.ReasonShutdown)
			return fmt.Errorf("request is cancelled or timed out: %w", err)
		case <-rs.stopCh:
			rs.obsrep.DroppedRecords(req.count(), obsreport.ReasonShutdown)
			return fmt.Errorf("interrupted due to shutdown: %w", err)
		case <-time.After(backoffDelay):
		}
	}
}

func dropReason(err error) string {
	if consumererror.IsPermanent(err) {
		return obsreport.ReasonPermanent
	}
	return obsreport.ReasonRetryExhausted
}

// timeoutSender bounds one attempt and invokes the exporter's push function.
type timeoutSender struct {
	cfg  TimeoutSettings
	push PushRecordsFunc
}

func (ts *timeoutSender) send(req *request) error {
	ctx := req.ctx
	if ts.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ts.cfg.Timeout)
		defer cancel()
	}
	return ts.push(ctx, req.batch)
}
