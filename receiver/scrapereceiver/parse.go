// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package scrapereceiver // import "github.com/signalpipe/signalpipe/receiver/scrapereceiver"

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/signalpipe/signalpipe/model"
)

// parseExposition reads the Prometheus text exposition format and converts
// each metric into a sample. Summaries are skipped: the unified model has no
// quantile aggregation.
func parseExposition(body io.Reader, scrapeTime time.Time) ([]*model.MetricSample, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exposition: %w", err)
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	var samples []*model.MetricSample
	for _, name := range names {
		family := families[name]
		for _, m := range family.GetMetric() {
			sample := convertMetric(name, family.GetType(), m, scrapeTime)
			if sample != nil {
				samples = append(samples, sample)
			}
		}
	}
	return samples, nil
}

func convertMetric(name string, mtype dto.MetricType, m *dto.Metric, scrapeTime time.Time) *model.MetricSample {
	sample := &model.MetricSample{
		Name:      name,
		Timestamp: metricTimestamp(m, scrapeTime),
		Tags:      labelsToTags(m.GetLabel()),
	}
	switch mtype {
	case dto.MetricType_COUNTER:
		sample.Kind = model.MetricKindCounter
		sample.Value = m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		sample.Kind = model.MetricKindGauge
		sample.Value = m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		sample.Kind = model.MetricKindGauge
		sample.Value = m.GetUntyped().GetValue()
	case dto.MetricType_HISTOGRAM:
		sample.Kind = model.MetricKindHistogram
		sample.Histogram = convertHistogram(m.GetHistogram())
	default:
		return nil
	}
	return sample
}

// convertHistogram de-cumulates the exposition buckets: the model carries
// per-bucket counts with a trailing overflow entry instead of cumulative
// counts per upper bound.
func convertHistogram(h *dto.Histogram) *model.HistogramData {
	data := &model.HistogramData{
		Sum:   h.GetSampleSum(),
		Count: h.GetSampleCount(),
	}
	var cumulative uint64
	for _, bucket := range h.GetBucket() {
		if math.IsInf(bucket.GetUpperBound(), 1) {
			continue
		}
		data.Bounds = append(data.Bounds, bucket.GetUpperBound())
		data.Counts = append(data.Counts, bucket.GetCumulativeCount()-cumulative)
		cumulative = bucket.GetCumulativeCount()
	}
	data.Counts = append(data.Counts, data.Count-cumulative)
	return data
}

func metricTimestamp(m *dto.Metric, scrapeTime time.Time) time.Time {
	if ms := m.GetTimestampMs(); ms != 0 {
		return time.Unix(0, ms*int64(time.Millisecond)).UTC()
	}
	return scrapeTime
}

func labelsToTags(pairs []*dto.LabelPair) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		tags[pair.GetName()] = pair.GetValue()
	}
	return tags
}
