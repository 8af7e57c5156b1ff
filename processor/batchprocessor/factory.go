// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/signalpipe/signalpipe/processor/batchprocessor"

import (
	"context"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
)

const (
	typeStr = "batch"

	defaultSendBatchSize = uint32(8192)
	defaultTimeout       = 10 * time.Second
)

// NewFactory creates the factory for the batch processor.
func NewFactory() component.ProcessorFactory {
	return component.NewProcessorFactory(typeStr, createDefaultConfig, createProcessor)
}

func createDefaultConfig() config.Processor {
	return &Config{
		ProcessorSettings: config.NewProcessorSettings(config.NewComponentID(typeStr)),
		SendBatchSize:     defaultSendBatchSize,
		Timeout:           defaultTimeout,
	}
}

func createProcessor(_ context.Context, set component.CreateSettings, cfg config.Processor, nextConsumer consumer.Records) (component.Processor, error) {
	bCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	return newBatchProcessor(bCfg, set, nextConsumer), nil
}
