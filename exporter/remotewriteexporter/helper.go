// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package remotewriteexporter // import "github.com/signalpipe/signalpipe/exporter/remotewriteexporter"

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/prometheus/prompb"

	"github.com/signalpipe/signalpipe/model"
)

const (
	nameLabel      = "__name__"
	bucketSuffix   = "_bucket"
	sumSuffix      = "_sum"
	countSuffix    = "_count"
	leLabel        = "le"
	infBucketBound = "+Inf"
)

// batchToWriteRequest converts the metric records of a batch into a remote
// write request. Series carrying the same label set are merged, samples keep
// arrival order within a series.
func batchToWriteRequest(batch model.Batch, namespace string, externalLabels map[string]string) *prompb.WriteRequest {
	builder := newSeriesBuilder()
	for _, rec := range batch.Records() {
		sample, ok := rec.Metric()
		if !ok {
			continue
		}
		baseLabels := collectLabels(sample, rec.Resource(), externalLabels)
		name := metricName(namespace, sample.Name)
		ts := sample.Timestamp.UnixNano() / int64(1000000)

		if sample.Kind == model.MetricKindHistogram && sample.Histogram != nil {
			appendHistogram(builder, name, baseLabels, ts, sample.Histogram)
			continue
		}
		builder.add(withName(baseLabels, name), prompb.Sample{Value: sample.Value, Timestamp: ts})
	}
	return &prompb.WriteRequest{Timeseries: builder.series()}
}

func appendHistogram(builder *seriesBuilder, name string, baseLabels []prompb.Label, ts int64, h *model.HistogramData) {
	cumulative := uint64(0)
	for i, bound := range h.Bounds {
		if i < len(h.Counts) {
			cumulative += h.Counts[i]
		}
		bucketLabels := withName(baseLabels, name+bucketSuffix)
		bucketLabels = append(bucketLabels, prompb.Label{Name: leLabel, Value: formatBound(bound)})
		builder.add(bucketLabels, prompb.Sample{Value: float64(cumulative), Timestamp: ts})
	}
	// Overflow bucket carries the total count.
	infLabels := withName(baseLabels, name+bucketSuffix)
	infLabels = append(infLabels, prompb.Label{Name: leLabel, Value: infBucketBound})
	builder.add(infLabels, prompb.Sample{Value: float64(h.Count), Timestamp: ts})

	builder.add(withName(baseLabels, name+sumSuffix), prompb.Sample{Value: h.Sum, Timestamp: ts})
	builder.add(withName(baseLabels, name+countSuffix), prompb.Sample{Value: float64(h.Count), Timestamp: ts})
}

func formatBound(bound float64) string {
	if math.IsInf(bound, 1) {
		return infBucketBound
	}
	return strconv.FormatFloat(bound, 'f', -1, 64)
}

// collectLabels merges resource attributes, sample tags and external labels.
// Sample tags win over resource attributes, external labels win over both.
func collectLabels(sample *model.MetricSample, res *model.Resource, externalLabels map[string]string) []prompb.Label {
	merged := make(map[string]string, res.Len()+len(sample.Tags)+len(externalLabels))
	for k, v := range res.Attributes() {
		merged[sanitize(k)] = v
	}
	for k, v := range sample.Tags {
		merged[sanitize(k)] = v
	}
	for k, v := range externalLabels {
		merged[sanitize(k)] = v
	}
	labels := make([]prompb.Label, 0, len(merged))
	for k, v := range merged {
		labels = append(labels, prompb.Label{Name: k, Value: v})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels
}

func withName(baseLabels []prompb.Label, name string) []prompb.Label {
	labels := make([]prompb.Label, 0, len(baseLabels)+2)
	labels = append(labels, prompb.Label{Name: nameLabel, Value: name})
	labels = append(labels, baseLabels...)
	return labels
}

func metricName(namespace, name string) string {
	if namespace != "" {
		return sanitize(namespace) + "_" + sanitize(name)
	}
	return sanitize(name)
}

// sanitize replaces characters Prometheus does not allow in names.
func sanitize(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// seriesBuilder merges samples into series keyed by their label signature.
type seriesBuilder struct {
	order []string
	byKey map[string]*prompb.TimeSeries
}

func newSeriesBuilder() *seriesBuilder {
	return &seriesBuilder{byKey: make(map[string]*prompb.TimeSeries)}
}

func (sb *seriesBuilder) add(labels []prompb.Label, sample prompb.Sample) {
	// Remote write requires labels sorted by name; strict backends reject
	// unsorted label sets with 400.
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	var key strings.Builder
	for _, l := range labels {
		key.WriteString(l.Name)
		key.WriteByte(0xff)
		key.WriteString(l.Value)
		key.WriteByte(0xff)
	}
	k := key.String()
	ts, ok := sb.byKey[k]
	if !ok {
		ts = &prompb.TimeSeries{Labels: labels}
		sb.byKey[k] = ts
		sb.order = append(sb.order, k)
	}
	ts.Samples = append(ts.Samples, sample)
}

func (sb *seriesBuilder) series() []prompb.TimeSeries {
	out := make([]prompb.TimeSeries, 0, len(sb.order))
	for _, k := range sb.order {
		out = append(out, *sb.byKey[k])
	}
	return out
}
