// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package otlp implements the JSON wire encoding of the record model used by
// the push receiver and the push exporter. Records are grouped by their shared
// Resource so attributes are transmitted once per origin.
package otlp // import "github.com/signalpipe/signalpipe/model/otlp"

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/model"
)

var (
	errOpenSpan     = errors.New("span has no end time")
	errSpanTimes    = errors.New("span end time is before its start time")
	errEmptyTraceID = errors.New("span has an empty trace id")
)

type resourceSpans struct {
	Resource map[string]string `json:"resource,omitempty"`
	Spans    []jsonSpan        `json:"spans"`
}

type resourceMetrics struct {
	Resource map[string]string `json:"resource,omitempty"`
	Metrics  []jsonMetric      `json:"metrics"`
}

type resourceLogs struct {
	Resource map[string]string `json:"resource,omitempty"`
	Logs     []jsonLog         `json:"logs"`
}

type tracesPayload struct {
	ResourceSpans []resourceSpans `json:"resource_spans"`
}

type metricsPayload struct {
	ResourceMetrics []resourceMetrics `json:"resource_metrics"`
}

type logsPayload struct {
	ResourceLogs []resourceLogs `json:"resource_logs"`
}

type jsonStatus struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type jsonSpan struct {
	TraceID      string            `json:"trace_id"`
	SpanID       string            `json:"span_id"`
	ParentSpanID string            `json:"parent_span_id,omitempty"`
	Name         string            `json:"name"`
	Kind         string            `json:"kind,omitempty"`
	StartTime    int64             `json:"start_time_unix_nano"`
	EndTime      int64             `json:"end_time_unix_nano"`
	Tags         map[string]string `json:"tags,omitempty"`
	Status       *jsonStatus       `json:"status,omitempty"`
}

type jsonHistogram struct {
	Bounds []float64 `json:"bounds,omitempty"`
	Counts []uint64  `json:"counts,omitempty"`
	Sum    float64   `json:"sum"`
	Count  uint64    `json:"count"`
}

type jsonMetric struct {
	Name      string            `json:"name"`
	Kind      string            `json:"kind,omitempty"`
	Value     float64           `json:"value,omitempty"`
	Histogram *jsonHistogram    `json:"histogram,omitempty"`
	Timestamp int64             `json:"time_unix_nano"`
	Tags      map[string]string `json:"tags,omitempty"`
}

type jsonLog struct {
	Timestamp int64             `json:"time_unix_nano"`
	Severity  string            `json:"severity,omitempty"`
	Body      string            `json:"body"`
	TraceID   string            `json:"trace_id,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// MarshalBatch encodes a batch into the signal-specific JSON envelope.
func MarshalBatch(b model.Batch) ([]byte, error) {
	switch b.Signal() {
	case model.TracesSignal:
		return marshalTraces(b)
	case model.MetricsSignal:
		return marshalMetrics(b)
	case model.LogsSignal:
		return marshalLogs(b)
	}
	return nil, fmt.Errorf("unknown signal %q", b.Signal())
}

// groupByResource splits the batch records into runs sharing one Resource,
// preserving first-seen order.
func groupByResource(b model.Batch) ([]*model.Resource, map[*model.Resource][]model.Record) {
	var order []*model.Resource
	groups := make(map[*model.Resource][]model.Record)
	for _, rec := range b.Records() {
		res := rec.Resource()
		if _, ok := groups[res]; !ok {
			order = append(order, res)
		}
		groups[res] = append(groups[res], rec)
	}
	return order, groups
}

func resourceAttrs(res *model.Resource) map[string]string {
	if res.Len() == 0 {
		return nil
	}
	return res.Attributes()
}

func marshalTraces(b model.Batch) ([]byte, error) {
	var payload tracesPayload
	order, groups := groupByResource(b)
	for _, res := range order {
		group := resourceSpans{Resource: resourceAttrs(res), Spans: []jsonSpan{}}
		for _, rec := range groups[res] {
			span, ok := rec.Span()
			if !ok {
				continue
			}
			group.Spans = append(group.Spans, spanToJSON(span))
		}
		payload.ResourceSpans = append(payload.ResourceSpans, group)
	}
	return json.Marshal(payload)
}

func spanToJSON(span *model.Span) jsonSpan {
	js := jsonSpan{
		TraceID:   span.TraceID.String(),
		SpanID:    span.SpanID.String(),
		Name:      span.Name,
		Kind:      span.Kind.String(),
		StartTime: span.StartTime.UnixNano(),
		EndTime:   span.EndTime.UnixNano(),
		Tags:      span.Tags,
	}
	if !span.ParentSpanID.IsEmpty() {
		js.ParentSpanID = span.ParentSpanID.String()
	}
	if span.Status.Code != model.StatusCodeUnset || span.Status.Message != "" {
		js.Status = &jsonStatus{Code: statusCodeName(span.Status.Code), Message: span.Status.Message}
	}
	return js
}

func marshalMetrics(b model.Batch) ([]byte, error) {
	var payload metricsPayload
	order, groups := groupByResource(b)
	for _, res := range order {
		group := resourceMetrics{Resource: resourceAttrs(res), Metrics: []jsonMetric{}}
		for _, rec := range groups[res] {
			sample, ok := rec.Metric()
			if !ok {
				continue
			}
			jm := jsonMetric{
				Name:      sample.Name,
				Kind:      sample.Kind.String(),
				Value:     sample.Value,
				Timestamp: sample.Timestamp.UnixNano(),
				Tags:      sample.Tags,
			}
			if sample.Histogram != nil {
				jm.Histogram = &jsonHistogram{
					Bounds: sample.Histogram.Bounds,
					Counts: sample.Histogram.Counts,
					Sum:    sample.Histogram.Sum,
					Count:  sample.Histogram.Count,
				}
			}
			group.Metrics = append(group.Metrics, jm)
		}
		payload.ResourceMetrics = append(payload.ResourceMetrics, group)
	}
	return json.Marshal(payload)
}

func marshalLogs(b model.Batch) ([]byte, error) {
	var payload logsPayload
	order, groups := groupByResource(b)
	for _, res := range order {
		group := resourceLogs{Resource: resourceAttrs(res), Logs: []jsonLog{}}
		for _, rec := range groups[res] {
			entry, ok := rec.Log()
			if !ok {
				continue
			}
			jl := jsonLog{
				Timestamp: entry.Timestamp.UnixNano(),
				Severity:  entry.Severity.String(),
				Body:      entry.Body,
				Tags:      entry.Tags,
			}
			if !entry.TraceID.IsEmpty() {
				jl.TraceID = entry.TraceID.String()
			}
			group.Logs = append(group.Logs, jl)
		}
		payload.ResourceLogs = append(payload.ResourceLogs, group)
	}
	return json.Marshal(payload)
}

// UnmarshalTraces decodes a traces payload. Open spans and spans that end
// before they start are rejected: the whole payload is a decode error.
func UnmarshalTraces(data []byte) (model.Batch, error) {
	var payload tracesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Batch{}, err
	}
	batch := model.NewBatch(model.TracesSignal)
	for _, group := range payload.ResourceSpans {
		res := model.NewResource(group.Resource)
		for _, js := range group.Spans {
			span, err := spanFromJSON(js)
			if err != nil {
				return model.Batch{}, err
			}
			batch = batch.Append(model.NewSpanRecord(span, res))
		}
	}
	return batch, nil
}

func spanFromJSON(js jsonSpan) (*model.Span, error) {
	traceID, err := model.TraceIDFromHex(js.TraceID)
	if err != nil {
		return nil, err
	}
	if traceID.IsEmpty() {
		return nil, errEmptyTraceID
	}
	spanID, err := model.SpanIDFromHex(js.SpanID)
	if err != nil {
		return nil, err
	}
	span := &model.Span{
		TraceID:   traceID,
		SpanID:    spanID,
		Name:      js.Name,
		Kind:      model.SpanKindFromString(js.Kind),
		StartTime: time.Unix(0, js.StartTime),
		EndTime:   time.Unix(0, js.EndTime),
		Tags:      js.Tags,
	}
	if js.ParentSpanID != "" {
		if span.ParentSpanID, err = model.SpanIDFromHex(js.ParentSpanID); err != nil {
			return nil, err
		}
	}
	if js.EndTime == 0 {
		return nil, fmt.Errorf("span %q: %w", js.Name, errOpenSpan)
	}
	if span.EndTime.Before(span.StartTime) {
		return nil, fmt.Errorf("span %q: %w", js.Name, errSpanTimes)
	}
	if js.Status != nil {
		span.Status = model.Status{Code: statusCodeFromName(js.Status.Code), Message: js.Status.Message}
	}
	return span, nil
}

// UnmarshalMetrics decodes a metrics payload.
func UnmarshalMetrics(data []byte) (model.Batch, error) {
	var payload metricsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Batch{}, err
	}
	batch := model.NewBatch(model.MetricsSignal)
	for _, group := range payload.ResourceMetrics {
		res := model.NewResource(group.Resource)
		for _, jm := range group.Metrics {
			sample := &model.MetricSample{
				Name:      jm.Name,
				Kind:      model.MetricKindFromString(jm.Kind),
				Value:     jm.Value,
				Timestamp: time.Unix(0, jm.Timestamp),
				Tags:      jm.Tags,
			}
			if jm.Histogram != nil {
				sample.Histogram = &model.HistogramData{
					Bounds: jm.Histogram.Bounds,
					Counts: jm.Histogram.Counts,
					Sum:    jm.Histogram.Sum,
					Count:  jm.Histogram.Count,
				}
			}
			batch = batch.Append(model.NewMetricRecord(sample, res))
		}
	}
	return batch, nil
}

// UnmarshalLogs decodes a logs payload.
func UnmarshalLogs(data []byte) (model.Batch, error) {
	var payload logsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Batch{}, err
	}
	batch := model.NewBatch(model.LogsSignal)
	for _, group := range payload.ResourceLogs {
		res := model.NewResource(group.Resource)
		for _, jl := range group.Logs {
			entry := &model.LogEntry{
				Timestamp: time.Unix(0, jl.Timestamp),
				Severity:  model.SeverityFromString(jl.Severity),
				Body:      jl.Body,
				Tags:      jl.Tags,
			}
			if jl.TraceID != "" {
				traceID, err := model.TraceIDFromHex(jl.TraceID)
				if err != nil {
					return model.Batch{}, err
				}
				entry.TraceID = traceID
			}
			batch = batch.Append(model.NewLogRecord(entry, res))
		}
	}
	return batch, nil
}

func statusCodeName(code model.StatusCode) string {
	switch code {
	case model.StatusCodeOK:
		return "ok"
	case model.StatusCodeError:
		return "error"
	}
	return "unset"
}

func statusCodeFromName(name string) model.StatusCode {
	switch name {
	case "ok":
		return model.StatusCodeOK
	case "error":
		return model.StatusCodeError
	}
	return model.StatusCodeUnset
}
