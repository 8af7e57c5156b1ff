// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package otlp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/model"
)

func TestTracesRoundTrip(t *testing.T) {
	res := model.NewResource(map[string]string{"service.name": "checkout"})
	parent := &model.Span{
		TraceID:   model.TraceID{1},
		SpanID:    model.SpanID{1},
		Name:      "parent",
		Kind:      model.SpanKindServer,
		StartTime: time.Unix(0, 100),
		EndTime:   time.Unix(0, 400),
		Tags:      map[string]string{"http.method": "GET"},
		Status:    model.Status{Code: model.StatusCodeError, Message: "boom"},
	}
	child := &model.Span{
		TraceID:      model.TraceID{1},
		SpanID:       model.SpanID{2},
		ParentSpanID: model.SpanID{1},
		Name:         "child",
		Kind:         model.SpanKindClient,
		StartTime:    time.Unix(0, 150),
		EndTime:      time.Unix(0, 300),
	}
	batch := model.NewBatchFromRecords(model.TracesSignal, []model.Record{
		model.NewSpanRecord(parent, res),
		model.NewSpanRecord(child, res),
	})

	data, err := MarshalBatch(batch)
	require.NoError(t, err)

	decoded, err := UnmarshalTraces(data)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Len())
	assert.Equal(t, model.TracesSignal, decoded.Signal())

	gotParent, ok := decoded.Records()[0].Span()
	require.True(t, ok)
	assert.Equal(t, parent, gotParent)
	gotChild, ok := decoded.Records()[1].Span()
	require.True(t, ok)
	assert.Equal(t, child.ParentSpanID, gotChild.ParentSpanID)

	v, _ := decoded.Records()[0].Resource().Get("service.name")
	assert.Equal(t, "checkout", v)
}

func TestMetricsRoundTrip(t *testing.T) {
	gauge := &model.MetricSample{
		Name:      "queue_depth",
		Kind:      model.MetricKindGauge,
		Value:     7,
		Timestamp: time.Unix(0, 100),
		Tags:      map[string]string{"queue": "retries"},
	}
	hist := &model.MetricSample{
		Name:      "latency",
		Kind:      model.MetricKindHistogram,
		Timestamp: time.Unix(0, 100),
		Histogram: &model.HistogramData{
			Bounds: []float64{0.1, 1},
			Counts: []uint64{1, 2, 3},
			Sum:    2.5,
			Count:  6,
		},
	}
	batch := model.NewBatchFromRecords(model.MetricsSignal, []model.Record{
		model.NewMetricRecord(gauge, nil),
		model.NewMetricRecord(hist, nil),
	})

	data, err := MarshalBatch(batch)
	require.NoError(t, err)
	decoded, err := UnmarshalMetrics(data)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Len())

	got, ok := decoded.Records()[1].Metric()
	require.True(t, ok)
	assert.Equal(t, hist, got)
}

func TestLogsRoundTrip(t *testing.T) {
	entry := &model.LogEntry{
		Timestamp: time.Unix(0, 100),
		Severity:  model.SeverityError,
		Body:      "request failed",
		TraceID:   model.TraceID{1},
		Tags:      map[string]string{"component": "billing"},
	}
	batch := model.NewBatchFromRecords(model.LogsSignal, []model.Record{model.NewLogRecord(entry, nil)})

	data, err := MarshalBatch(batch)
	require.NoError(t, err)
	decoded, err := UnmarshalLogs(data)
	require.NoError(t, err)
	require.Equal(t, 1, decoded.Len())

	got, ok := decoded.Records()[0].Log()
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestUnmarshalTracesRejectsInvalidSpans(t *testing.T) {
	traceID := model.TraceID{1}.String()
	spanID := model.SpanID{1}.String()

	tests := []struct {
		name string
		span string
	}{
		{
			name: "open_span",
			span: fmt.Sprintf(`{"trace_id":%q,"span_id":%q,"name":"open","start_time_unix_nano":100}`, traceID, spanID),
		},
		{
			name: "end_before_start",
			span: fmt.Sprintf(`{"trace_id":%q,"span_id":%q,"name":"rev","start_time_unix_nano":200,"end_time_unix_nano":100}`, traceID, spanID),
		},
		{
			name: "empty_trace_id",
			span: fmt.Sprintf(`{"trace_id":%q,"span_id":%q,"name":"x","start_time_unix_nano":100,"end_time_unix_nano":200}`, model.TraceID{}.String(), spanID),
		},
		{
			name: "bad_span_id",
			span: fmt.Sprintf(`{"trace_id":%q,"span_id":"zz","name":"x","start_time_unix_nano":100,"end_time_unix_nano":200}`, traceID),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := fmt.Sprintf(`{"resource_spans":[{"spans":[%s]}]}`, tt.span)
			_, err := UnmarshalTraces([]byte(payload))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalInvalidJSON(t *testing.T) {
	_, err := UnmarshalTraces([]byte("{"))
	assert.Error(t, err)
	_, err = UnmarshalMetrics([]byte("["))
	assert.Error(t, err)
	_, err = UnmarshalLogs([]byte("nope"))
	assert.Error(t, err)
}

func TestMarshalGroupsByResource(t *testing.T) {
	resA := model.NewResource(map[string]string{"service.name": "a"})
	resB := model.NewResource(map[string]string{"service.name": "b"})
	mk := func(name string, res *model.Resource) model.Record {
		return model.NewSpanRecord(&model.Span{
			TraceID:   model.TraceID{1},
			SpanID:    model.SpanID{1},
			Name:      name,
			StartTime: time.Unix(0, 1),
			EndTime:   time.Unix(0, 2),
		}, res)
	}
	batch := model.NewBatchFromRecords(model.TracesSignal, []model.Record{
		mk("a1", resA), mk("b1", resB), mk("a2", resA),
	})
	data, err := MarshalBatch(batch)
	require.NoError(t, err)

	decoded, err := UnmarshalTraces(data)
	require.NoError(t, err)
	require.Equal(t, 3, decoded.Len())
	// Records sharing a resource are transmitted under one group.
	assert.Contains(t, string(data), `"spans"`)
	counts := map[string]int{}
	for _, rec := range decoded.Records() {
		v, _ := rec.Resource().Get("service.name")
		counts[v]++
	}
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}
