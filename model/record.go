// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package model defines the unified in-memory representation of telemetry:
// spans, metric samples and log entries, each carrying a shared Resource
// describing its origin. Records are value objects; stages that mutate tags
// must work on a copy (see Batch.Clone) rather than alias the original.
package model // import "github.com/signalpipe/signalpipe/model"

import "time"

// Signal is the telemetry data type a pipeline carries.
type Signal string

const (
	// TracesSignal is the signal tag for trace spans.
	TracesSignal Signal = "traces"
	// MetricsSignal is the signal tag for metric samples.
	MetricsSignal Signal = "metrics"
	// LogsSignal is the signal tag for log entries.
	LogsSignal Signal = "logs"
)

// SpanKind describes the relationship between a span and its parent.
type SpanKind int32

const (
	SpanKindInternal SpanKind = iota
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

var spanKindNames = map[SpanKind]string{
	SpanKindInternal: "internal",
	SpanKindServer:   "server",
	SpanKindClient:   "client",
	SpanKindProducer: "producer",
	SpanKindConsumer: "consumer",
}

func (k SpanKind) String() string {
	if s, ok := spanKindNames[k]; ok {
		return s
	}
	return "internal"
}

// SpanKindFromString maps a wire name to a SpanKind, defaulting to internal.
func SpanKindFromString(s string) SpanKind {
	for k, name := range spanKindNames {
		if name == s {
			return k
		}
	}
	return SpanKindInternal
}

// StatusCode is the result classification of a finished span.
type StatusCode int32

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOK
	StatusCodeError
)

// Status is the outcome attached to a finished span.
type Status struct {
	Code    StatusCode
	Message string
}

// Span is a timed unit of work within a distributed trace.
type Span struct {
	TraceID      TraceID
	SpanID       SpanID
	ParentSpanID SpanID
	Name         string
	Kind         SpanKind
	StartTime    time.Time
	EndTime      time.Time
	Tags         map[string]string
	Status       Status
}

// Open reports whether the span has not been closed yet. Open spans are never
// exported.
func (s *Span) Open() bool {
	return s.EndTime.IsZero()
}

// Duration returns the elapsed time of a closed span.
func (s *Span) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// MetricKind describes the aggregation semantics of a metric sample.
type MetricKind int32

const (
	MetricKindGauge MetricKind = iota
	MetricKindCounter
	MetricKindHistogram
)

var metricKindNames = map[MetricKind]string{
	MetricKindGauge:     "gauge",
	MetricKindCounter:   "counter",
	MetricKindHistogram: "histogram",
}

func (k MetricKind) String() string {
	if s, ok := metricKindNames[k]; ok {
		return s
	}
	return "gauge"
}

// MetricKindFromString maps a wire name to a MetricKind, defaulting to gauge.
func MetricKindFromString(s string) MetricKind {
	for k, name := range metricKindNames {
		if name == s {
			return k
		}
	}
	return MetricKindGauge
}

// HistogramData carries the bucket layout of a histogram sample. Bounds are
// the inclusive upper bucket boundaries, Counts has one extra entry for the
// overflow bucket.
type HistogramData struct {
	Bounds []float64
	Counts []uint64
	Sum    float64
	Count  uint64
}

// MetricSample is a single observed value of a named metric.
type MetricSample struct {
	Name      string
	Kind      MetricKind
	Value     float64
	Histogram *HistogramData
	Timestamp time.Time
	Tags      map[string]string
}

// Severity is the log level of a log entry.
type Severity int32

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
	SeverityFatal
)

var severityNames = map[Severity]string{
	SeverityTrace: "trace",
	SeverityDebug: "debug",
	SeverityInfo:  "info",
	SeverityWarn:  "warn",
	SeverityError: "error",
	SeverityFatal: "fatal",
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return "info"
}

// SeverityFromString maps a wire name to a Severity, defaulting to info.
func SeverityFromString(s string) Severity {
	for sev, name := range severityNames {
		if name == s {
			return sev
		}
	}
	return SeverityInfo
}

// LogEntry is a single log line, optionally correlated to a trace.
type LogEntry struct {
	Timestamp time.Time
	Severity  Severity
	Body      string
	TraceID   TraceID
	Tags      map[string]string
}

// Record is the tagged variant flowing through pipelines: exactly one of
// span, metric or log is set, plus the Resource of its origin.
type Record struct {
	resource *Resource
	span     *Span
	metric   *MetricSample
	log      *LogEntry
}

// NewSpanRecord wraps a span and its origin resource into a Record.
func NewSpanRecord(span *Span, resource *Resource) Record {
	return Record{resource: orEmpty(resource), span: span}
}

// NewMetricRecord wraps a metric sample and its origin resource into a Record.
func NewMetricRecord(sample *MetricSample, resource *Resource) Record {
	return Record{resource: orEmpty(resource), metric: sample}
}

// NewLogRecord wraps a log entry and its origin resource into a Record.
func NewLogRecord(entry *LogEntry, resource *Resource) Record {
	return Record{resource: orEmpty(resource), log: entry}
}

func orEmpty(r *Resource) *Resource {
	if r == nil {
		return emptyResource
	}
	return r
}

// Signal returns the data type of the record.
func (r Record) Signal() Signal {
	switch {
	case r.span != nil:
		return TracesSignal
	case r.metric != nil:
		return MetricsSignal
	default:
		return LogsSignal
	}
}

// Resource returns the origin attributes of the record, never nil.
func (r Record) Resource() *Resource {
	return orEmpty(r.resource)
}

// WithResource returns a copy of the record pointing at the given resource.
func (r Record) WithResource(res *Resource) Record {
	r.resource = orEmpty(res)
	return r
}

// Span returns the span variant, or false if the record holds another signal.
func (r Record) Span() (*Span, bool) {
	return r.span, r.span != nil
}

// Metric returns the metric variant, or false if the record holds another signal.
func (r Record) Metric() (*MetricSample, bool) {
	return r.metric, r.metric != nil
}

// Log returns the log variant, or false if the record holds another signal.
func (r Record) Log() (*LogEntry, bool) {
	return r.log, r.log != nil
}

// Clone deep-copies the record so a downstream stage can mutate tags without
// affecting siblings in another pipeline. The Resource stays shared: it is
// immutable.
func (r Record) Clone() Record {
	c := Record{resource: r.resource}
	switch {
	case r.span != nil:
		span := *r.span
		span.Tags = cloneTags(r.span.Tags)
		c.span = &span
	case r.metric != nil:
		metric := *r.metric
		metric.Tags = cloneTags(r.metric.Tags)
		if r.metric.Histogram != nil {
			h := *r.metric.Histogram
			h.Bounds = append([]float64(nil), r.metric.Histogram.Bounds...)
			h.Counts = append([]uint64(nil), r.metric.Histogram.Counts...)
			metric.Histogram = &h
		}
		c.metric = &metric
	case r.log != nil:
		log := *r.log
		log.Tags = cloneTags(r.log.Tags)
		c.log = &log
	}
	return c
}

func cloneTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	c := make(map[string]string, len(tags))
	for k, v := range tags {
		c[k] = v
	}
	return c
}
