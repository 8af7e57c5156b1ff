// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package obsreport counts what the collector does to the data it carries.
// Every accepted, refused, sent, dropped or retried record increments a
// counter here: telemetry loss is never silent. The health check extension
// serves the registry over /metrics.
package obsreport // import "github.com/signalpipe/signalpipe/internal/obsreport"

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/signalpipe/signalpipe/config"
)

var (
	registry = prometheus.NewRegistry()

	receiverAcceptedRecords = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_receiver_accepted_records_total",
		Help: "Records successfully pushed into the pipeline.",
	}, []string{"receiver"})
	receiverRefusedRecords = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_receiver_refused_records_total",
		Help: "Records that could not be pushed into the pipeline.",
	}, []string{"receiver"})
	scrapeErrors = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_scrape_errors_total",
		Help: "Failed scrape attempts.",
	}, []string{"receiver"})

	processorBatchSendSize = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_processor_batch_sent_records_total",
		Help: "Records flushed by the batch processor.",
	}, []string{"processor"})
	processorBatchTriggerSend = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_processor_batch_trigger_send_total",
		Help: "Batch flushes by trigger cause.",
	}, []string{"processor", "trigger"})

	exporterSentRecords = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_exporter_sent_records_total",
		Help: "Records successfully delivered to the backend.",
	}, []string{"exporter"})
	exporterSendFailed = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_exporter_send_failed_total",
		Help: "Export attempts that failed.",
	}, []string{"exporter"})
	exporterDroppedRecords = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_exporter_dropped_records_total",
		Help: "Records dropped after exhausting retries or on permanent errors.",
	}, []string{"exporter", "reason"})
	exporterEnqueueFailed = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "signalpipe_exporter_enqueue_failed_records_total",
		Help: "Records refused because the sending queue was full.",
	}, []string{"exporter"})
)

// Registry returns the registry holding the collector's own metrics.
func Registry() *prometheus.Registry {
	return registry
}

// Receiver reports ingestion outcomes for one receiver instance.
type Receiver struct {
	id string
}

// NewReceiver creates the reporter for the given receiver id.
func NewReceiver(id config.ComponentID) *Receiver {
	return &Receiver{id: id.String()}
}

// AcceptedRecords counts records pushed into the pipeline.
func (r *Receiver) AcceptedRecords(n int) {
	receiverAcceptedRecords.WithLabelValues(r.id).Add(float64(n))
}

// RefusedRecords counts records the pipeline did not take.
func (r *Receiver) RefusedRecords(n int) {
	receiverRefusedRecords.WithLabelValues(r.id).Add(float64(n))
}

// ScrapeError counts one failed scrape attempt.
func (r *Receiver) ScrapeError() {
	scrapeErrors.WithLabelValues(r.id).Inc()
}

// Processor reports batching outcomes for one processor instance.
type Processor struct {
	id string
}

// NewProcessor creates the reporter for the given processor id.
func NewProcessor(id config.ComponentID) *Processor {
	return &Processor{id: id.String()}
}

// Flush trigger causes.
const (
	TriggerSize     = "size"
	TriggerTimeout  = "timeout"
	TriggerShutdown = "shutdown"
)

// BatchSent counts one flush of n records caused by the given trigger.
func (p *Processor) BatchSent(n int, trigger string) {
	processorBatchSendSize.WithLabelValues(p.id).Add(float64(n))
	processorBatchTriggerSend.WithLabelValues(p.id, trigger).Inc()
}

// Exporter reports delivery outcomes for one exporter instance.
type Exporter struct {
	id string
}

// NewExporter creates the reporter for the given exporter id.
func NewExporter(id config.ComponentID) *Exporter {
	return &Exporter{id: id.String()}
}

// Drop reasons.
const (
	ReasonPermanent      = "permanent"
	ReasonRetryExhausted = "retry_exhausted"
	ReasonShutdown       = "shutdown"
)

// SentRecords counts records the backend accepted.
func (e *Exporter) SentRecords(n int) {
	exporterSentRecords.WithLabelValues(e.id).Add(float64(n))
}

// FailedSend counts one failed export attempt.
func (e *Exporter) FailedSend() {
	exporterSendFailed.WithLabelValues(e.id).Inc()
}

// DroppedRecords counts records discarded for the given reason.
func (e *Exporter) DroppedRecords(n int, reason string) {
	exporterDroppedRecords.WithLabelValues(e.id, reason).Add(float64(n))
}

// EnqueueFailed counts records refused because the queue was full.
func (e *Exporter) EnqueueFailed(n int) {
	exporterEnqueueFailed.WithLabelValues(e.id).Add(float64(n))
}
