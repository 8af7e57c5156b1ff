// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package remotewriteexporter

import (
	"context"
	"io/ioutil"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/prometheus/prompb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/component/componenttest"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/model"
)

func testCreateSettings() component.CreateSettings {
	return component.CreateSettings{TelemetrySettings: componenttest.NewNopTelemetrySettings()}
}

func counterRecord(name string, value float64, tags map[string]string, res *model.Resource) model.Record {
	return model.NewMetricRecord(&model.MetricSample{
		Name:      name,
		Kind:      model.MetricKindCounter,
		Value:     value,
		Timestamp: time.Unix(10, 0),
		Tags:      tags,
	}, res)
}

func metricsBatch(records ...model.Record) model.Batch {
	return model.NewBatchFromRecords(model.MetricsSignal, records)
}

func seriesByName(t *testing.T, wr *prompb.WriteRequest, name string) prompb.TimeSeries {
	for _, ts := range wr.Timeseries {
		for _, l := range ts.Labels {
			if l.Name == nameLabel && l.Value == name {
				return ts
			}
		}
	}
	t.Fatalf("no series named %q", name)
	return prompb.TimeSeries{}
}

func labelValue(ts prompb.TimeSeries, name string) string {
	for _, l := range ts.Labels {
		if l.Name == name {
			return l.Value
		}
	}
	return ""
}

func TestBatchToWriteRequestCounter(t *testing.T) {
	res := model.NewResource(map[string]string{"service.name": "shop"})
	batch := metricsBatch(counterRecord("http_requests_total", 42, map[string]string{"code": "200"}, res))

	wr := batchToWriteRequest(batch, "", nil)
	require.Len(t, wr.Timeseries, 1)

	ts := wr.Timeseries[0]
	assert.Equal(t, "http_requests_total", labelValue(ts, nameLabel))
	assert.Equal(t, "200", labelValue(ts, "code"))
	assert.Equal(t, "shop", labelValue(ts, "service_name"))
	require.Len(t, ts.Samples, 1)
	assert.Equal(t, float64(42), ts.Samples[0].Value)
	assert.Equal(t, int64(10000), ts.Samples[0].Timestamp)
}

func TestBatchToWriteRequestNamespace(t *testing.T) {
	batch := metricsBatch(counterRecord("requests_total", 1, nil, nil))
	wr := batchToWriteRequest(batch, "shop", nil)
	require.Len(t, wr.Timeseries, 1)
	assert.Equal(t, "shop_requests_total", labelValue(wr.Timeseries[0], nameLabel))
}

func TestBatchToWriteRequestLabelPrecedence(t *testing.T) {
	res := model.NewResource(map[string]string{"env": "resource", "region": "eu"})
	batch := metricsBatch(counterRecord("m", 1, map[string]string{"env": "tag"}, res))

	wr := batchToWriteRequest(batch, "", map[string]string{"env": "external"})
	require.Len(t, wr.Timeseries, 1)
	ts := wr.Timeseries[0]
	// External labels win over tags, tags win over resource attributes.
	assert.Equal(t, "external", labelValue(ts, "env"))
	assert.Equal(t, "eu", labelValue(ts, "region"))
}

func TestBatchToWriteRequestHistogram(t *testing.T) {
	sample := &model.MetricSample{
		Name:      "request_duration_seconds",
		Kind:      model.MetricKindHistogram,
		Timestamp: time.Unix(10, 0),
		Tags:      map[string]string{"method": "GET"},
		Histogram: &model.HistogramData{
			Bounds: []float64{0.1, 0.5},
			Counts: []uint64{3, 2, 1},
			Sum:    1.9,
			Count:  6,
		},
	}
	batch := metricsBatch(model.NewMetricRecord(sample, nil))

	wr := batchToWriteRequest(batch, "", nil)
	// Buckets merge into one _bucket series per le value plus _sum and _count.
	require.Len(t, wr.Timeseries, 5)

	// Every series carries its labels sorted by name, the wire format the
	// remote write protocol demands even with tags sorting after "le".
	for _, ts := range wr.Timeseries {
		names := make([]string, 0, len(ts.Labels))
		for _, l := range ts.Labels {
			names = append(names, l.Name)
		}
		assert.True(t, sort.StringsAreSorted(names), "unsorted labels: %v", names)
	}

	var bucketValues = map[string]float64{}
	for _, ts := range wr.Timeseries {
		if labelValue(ts, nameLabel) != "request_duration_seconds_bucket" {
			continue
		}
		require.Len(t, ts.Samples, 1)
		bucketValues[labelValue(ts, leLabel)] = ts.Samples[0].Value
	}
	// Bucket counts are cumulative on the wire.
	assert.Equal(t, map[string]float64{
		"0.1":  3,
		"0.5":  5,
		"+Inf": 6,
	}, bucketValues)

	sum := seriesByName(t, wr, "request_duration_seconds_sum")
	assert.Equal(t, 1.9, sum.Samples[0].Value)
	count := seriesByName(t, wr, "request_duration_seconds_count")
	assert.Equal(t, float64(6), count.Samples[0].Value)
}

func TestBatchToWriteRequestSeriesMerging(t *testing.T) {
	batch := metricsBatch(
		counterRecord("m", 1, map[string]string{"code": "200"}, nil),
		counterRecord("m", 2, map[string]string{"code": "200"}, nil),
		counterRecord("m", 3, map[string]string{"code": "500"}, nil),
	)

	wr := batchToWriteRequest(batch, "", nil)
	require.Len(t, wr.Timeseries, 2)

	// Same label set merges into one series, arrival order preserved.
	first := wr.Timeseries[0]
	require.Len(t, first.Samples, 2)
	assert.Equal(t, float64(1), first.Samples[0].Value)
	assert.Equal(t, float64(2), first.Samples[1].Value)

	second := wr.Timeseries[1]
	require.Len(t, second.Samples, 1)
	assert.Equal(t, float64(3), second.Samples[0].Value)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "http_requests_total", sanitize("http.requests-total"))
	assert.Equal(t, "_9rate", sanitize("9rate"))
	assert.Equal(t, "system:cpu", sanitize("system:cpu"))
}

func TestFormatBound(t *testing.T) {
	assert.Equal(t, "0.5", formatBound(0.5))
	assert.Equal(t, "+Inf", formatBound(math.Inf(1)))
}

func TestPushRecordsWrongSignal(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = "http://localhost:9009/api/v1/push"
	prwe, err := newExporter(cfg, testCreateSettings())
	require.NoError(t, err)

	span := &model.Span{TraceID: model.NewTraceID([16]byte{1}), SpanID: model.NewSpanID([8]byte{2}), Name: "op", StartTime: time.Unix(0, 1), EndTime: time.Unix(0, 2)}
	batch := model.NewBatchFromRecords(model.TracesSignal, []model.Record{model.NewSpanRecord(span, nil)})

	err = prwe.pushRecords(context.Background(), batch)
	require.Error(t, err)
	assert.True(t, consumererror.IsPermanent(err))
}

func TestPushRecordsWire(t *testing.T) {
	var gotHeaders http.Header
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotHeaders = req.Header.Clone()
		gotBody, _ = ioutil.ReadAll(req.Body)
	}))
	defer srv.Close()

	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = srv.URL
	prwe, err := newExporter(cfg, testCreateSettings())
	require.NoError(t, err)
	require.NoError(t, prwe.start(context.Background(), componenttest.NewNopHost()))

	batch := metricsBatch(counterRecord("requests_total", 7, nil, nil))
	require.NoError(t, prwe.pushRecords(context.Background(), batch))

	assert.Equal(t, "application/x-protobuf", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "snappy", gotHeaders.Get("Content-Encoding"))
	assert.Equal(t, "0.1.0", gotHeaders.Get("X-Prometheus-Remote-Write-Version"))

	raw, err := snappy.Decode(nil, gotBody)
	require.NoError(t, err)
	var wr prompb.WriteRequest
	require.NoError(t, proto.Unmarshal(raw, &wr))
	require.Len(t, wr.Timeseries, 1)
	assert.Equal(t, float64(7), wr.Timeseries[0].Samples[0].Value)
}

func TestPushRecordsEmptyBatchSkipsRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		requests++
	}))
	defer srv.Close()

	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = srv.URL
	prwe, err := newExporter(cfg, testCreateSettings())
	require.NoError(t, err)
	require.NoError(t, prwe.start(context.Background(), componenttest.NewNopHost()))

	require.NoError(t, prwe.pushRecords(context.Background(), metricsBatch()))
	assert.Zero(t, requests)
}

func TestPushRecordsStatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		permanent bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusInternalServerError, false},
		{http.StatusTooManyRequests, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		cfg := createDefaultConfig().(*Config)
		cfg.Endpoint = srv.URL
		prwe, err := newExporter(cfg, testCreateSettings())
		require.NoError(t, err)
		require.NoError(t, prwe.start(context.Background(), componenttest.NewNopHost()))

		err = prwe.pushRecords(context.Background(), metricsBatch(counterRecord("m", 1, nil, nil)))
		require.Error(t, err)
		assert.Equal(t, tt.permanent, consumererror.IsPermanent(err), "status %d", tt.status)
		srv.Close()
	}
}
