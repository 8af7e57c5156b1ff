// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package resourceprocessor enriches the resource of every record passing
// through with attributes discovered at startup. Existing attributes are
// never overwritten: explicit configuration wins over detectors, earlier
// detectors win over later ones, and attributes already present on a record
// always stay as they are.
package resourceprocessor // import "github.com/signalpipe/signalpipe/processor/resourceprocessor"

import (
	"context"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/model"
)

type resourceProcessor struct {
	cfg          *Config
	logger       *zap.Logger
	nextConsumer consumer.Records

	// detected is resolved once in Start and read-only afterwards.
	detected map[string]string
}

var _ component.Processor = (*resourceProcessor)(nil)

func newResourceProcessor(cfg *Config, set component.CreateSettings, nextConsumer consumer.Records) *resourceProcessor {
	return &resourceProcessor{
		cfg:          cfg,
		logger:       set.Logger,
		nextConsumer: nextConsumer,
	}
}

func (rp *resourceProcessor) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: false}
}

// Start runs the configured detectors and fixes the attribute set applied to
// all subsequent records.
func (rp *resourceProcessor) Start(ctx context.Context, _ component.Host) error {
	ctx, cancel := context.WithTimeout(ctx, rp.cfg.Timeout)
	defer cancel()

	detected := make(map[string]string, len(rp.cfg.Attributes))
	for k, v := range rp.cfg.Attributes {
		detected[k] = v
	}
	for _, name := range rp.cfg.Detectors {
		det, err := newDetector(name, rp.cfg)
		if err != nil {
			return err
		}
		// A failing detector contributes no attributes; the pipeline starts
		// without them.
		attrs, err := det.Detect(ctx)
		if err != nil {
			rp.logger.Warn("Resource detector failed, attributes omitted",
				zap.String("detector", name), zap.Error(err))
			continue
		}
		added := 0
		for k, v := range attrs {
			if _, exists := detected[k]; !exists {
				detected[k] = v
				added++
			}
		}
		rp.logger.Info("Resource detector ran",
			zap.String("detector", name), zap.Int("attributes", added))
	}
	rp.detected = detected
	return nil
}

func (rp *resourceProcessor) Shutdown(context.Context) error {
	return nil
}

func (rp *resourceProcessor) ConsumeRecords(ctx context.Context, batch model.Batch) error {
	if len(rp.detected) == 0 || batch.Len() == 0 {
		return rp.nextConsumer.ConsumeRecords(ctx, batch)
	}
	records := make([]model.Record, batch.Len())
	for i, rec := range batch.Records() {
		merged := rec.Resource().Merge(rp.detected)
		records[i] = rec.WithResource(merged)
	}
	return rp.nextConsumer.ConsumeRecords(ctx, model.NewBatchFromRecords(batch.Signal(), records))
}
