// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package resourceprocessor // import "github.com/signalpipe/signalpipe/processor/resourceprocessor"

import (
	"context"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
)

const (
	typeStr = "resource"

	defaultTimeout = 5 * time.Second
)

// NewFactory creates the factory for the resource detection processor.
func NewFactory() component.ProcessorFactory {
	return component.NewProcessorFactory(typeStr, createDefaultConfig, createProcessor)
}

func createDefaultConfig() config.Processor {
	return &Config{
		ProcessorSettings: config.NewProcessorSettings(config.NewComponentID(typeStr)),
		Detectors:         []string{detectorEnv},
		Timeout:           defaultTimeout,
	}
}

func createProcessor(_ context.Context, set component.CreateSettings, cfg config.Processor, nextConsumer consumer.Records) (component.Processor, error) {
	rCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	return newResourceProcessor(rCfg, set, nextConsumer), nil
}
