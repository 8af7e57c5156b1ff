// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDHex(t *testing.T) {
	id, err := TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", id.String())
	assert.False(t, id.IsEmpty())
	assert.True(t, TraceID{}.IsEmpty())

	_, err = TraceIDFromHex("0102")
	assert.Error(t, err)
	_, err = TraceIDFromHex("not-hex")
	assert.Error(t, err)
}

func TestSpanIDHex(t *testing.T) {
	id, err := SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	assert.Equal(t, "0102030405060708", id.String())

	_, err = SpanIDFromHex("01")
	assert.Error(t, err)
}

func TestResourceImmutableMerge(t *testing.T) {
	res := NewResource(map[string]string{"service.name": "checkout"})

	merged := res.Merge(map[string]string{"service.name": "other", "region": "eu"})
	// First write wins, the existing key stays.
	v, _ := merged.Get("service.name")
	assert.Equal(t, "checkout", v)
	v, _ = merged.Get("region")
	assert.Equal(t, "eu", v)

	// The original is untouched.
	_, ok := res.Get("region")
	assert.False(t, ok)
	assert.Equal(t, 1, res.Len())

	// Merging nothing new returns the receiver itself.
	same := merged.Merge(map[string]string{"region": "us"})
	assert.Equal(t, merged, same)
}

func TestResourceCopiesInput(t *testing.T) {
	attrs := map[string]string{"k": "v"}
	res := NewResource(attrs)
	attrs["k"] = "changed"
	v, _ := res.Get("k")
	assert.Equal(t, "v", v)
}

func TestRecordSignal(t *testing.T) {
	span := &Span{Name: "op"}
	rec := NewSpanRecord(span, nil)
	assert.Equal(t, TracesSignal, rec.Signal())
	got, ok := rec.Span()
	assert.True(t, ok)
	assert.Equal(t, span, got)
	_, ok = rec.Metric()
	assert.False(t, ok)
	assert.Equal(t, 0, rec.Resource().Len())

	metric := &MetricSample{Name: "m"}
	assert.Equal(t, MetricsSignal, NewMetricRecord(metric, nil).Signal())
	entry := &LogEntry{Body: "x"}
	assert.Equal(t, LogsSignal, NewLogRecord(entry, nil).Signal())
}

func TestRecordCloneIsolation(t *testing.T) {
	span := &Span{Name: "op", Tags: map[string]string{"k": "v"}}
	rec := NewSpanRecord(span, nil)

	clone := rec.Clone()
	clonedSpan, ok := clone.Span()
	require.True(t, ok)
	clonedSpan.Tags["k"] = "mutated"
	clonedSpan.Name = "renamed"

	assert.Equal(t, "v", span.Tags["k"])
	assert.Equal(t, "op", span.Name)
}

func TestRecordCloneHistogram(t *testing.T) {
	metric := &MetricSample{
		Name: "latency",
		Kind: MetricKindHistogram,
		Histogram: &HistogramData{
			Bounds: []float64{0.1, 1},
			Counts: []uint64{1, 2, 3},
			Sum:    2.5,
			Count:  6,
		},
	}
	rec := NewMetricRecord(metric, nil)
	clone := rec.Clone()
	clonedMetric, ok := clone.Metric()
	require.True(t, ok)
	clonedMetric.Histogram.Counts[0] = 99
	assert.Equal(t, uint64(1), metric.Histogram.Counts[0])
}

func TestBatchClone(t *testing.T) {
	span := &Span{Name: "op", Tags: map[string]string{"k": "v"}}
	batch := NewBatchFromRecords(TracesSignal, []Record{NewSpanRecord(span, nil)})

	clone := batch.Clone()
	clonedSpan, _ := clone.Records()[0].Span()
	clonedSpan.Tags["k"] = "mutated"

	original, _ := batch.Records()[0].Span()
	assert.Equal(t, "v", original.Tags["k"])
	assert.Equal(t, batch.Signal(), clone.Signal())
}

func TestSpanOpenAndDuration(t *testing.T) {
	span := &Span{StartTime: time.Unix(0, 100)}
	assert.True(t, span.Open())
	span.EndTime = time.Unix(0, 300)
	assert.False(t, span.Open())
	assert.Equal(t, 200*time.Nanosecond, span.Duration())
}

func TestTraceIndex(t *testing.T) {
	root := &Span{SpanID: SpanID{1}, Name: "root"}
	child := &Span{SpanID: SpanID{2}, ParentSpanID: SpanID{1}, Name: "child"}
	orphan := &Span{SpanID: SpanID{3}, ParentSpanID: SpanID{9}, Name: "orphan"}

	ti := NewTraceIndex()
	// Children can arrive before parents.
	ti.Add(child)
	ti.Add(orphan)
	ti.Add(root)
	ti.Add(&Span{}) // empty id, ignored
	assert.Equal(t, 3, ti.Len())

	parent, ok := ti.Parent(child)
	require.True(t, ok)
	assert.Equal(t, root, parent)

	// An unresolved parent does not block anything.
	_, ok = ti.Parent(orphan)
	assert.False(t, ok)
	_, ok = ti.Parent(root)
	assert.False(t, ok)

	roots := ti.Roots()
	assert.Len(t, roots, 2)

	children := ti.Children(SpanID{1})
	require.Len(t, children, 1)
	assert.Equal(t, child, children[0])
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "server", SpanKindServer.String())
	assert.Equal(t, SpanKindClient, SpanKindFromString("client"))
	assert.Equal(t, SpanKindInternal, SpanKindFromString("bogus"))

	assert.Equal(t, "histogram", MetricKindHistogram.String())
	assert.Equal(t, MetricKindCounter, MetricKindFromString("counter"))
	assert.Equal(t, MetricKindGauge, MetricKindFromString("bogus"))

	assert.Equal(t, "warn", SeverityWarn.String())
	assert.Equal(t, SeverityError, SeverityFromString("error"))
	assert.Equal(t, SeverityInfo, SeverityFromString("bogus"))
}
