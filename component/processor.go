// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import (
	"context"

	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
)

// ProcessorFactory creates processors of one type.
//
// Use NewProcessorFactory to implement it.
type ProcessorFactory interface {
	// Type returns the type name the factory registers under.
	Type() config.Type

	// CreateDefaultConfig creates the default configuration for the processor.
	CreateDefaultConfig() config.Processor

	// CreateProcessor creates a processor that forwards its output to
	// nextConsumer. A processor instance is private to one pipeline.
	CreateProcessor(ctx context.Context, set CreateSettings, cfg config.Processor, nextConsumer consumer.Records) (Processor, error)
}

// CreateDefaultProcessorConfigFunc is the functional counterpart of
// ProcessorFactory.CreateDefaultConfig.
type CreateDefaultProcessorConfigFunc func() config.Processor

// CreateProcessorFunc is the functional counterpart of
// ProcessorFactory.CreateProcessor.
type CreateProcessorFunc func(ctx context.Context, set CreateSettings, cfg config.Processor, nextConsumer consumer.Records) (Processor, error)

type processorFactory struct {
	cfgType       config.Type
	createDefault CreateDefaultProcessorConfigFunc
	create        CreateProcessorFunc
}

func (f *processorFactory) Type() config.Type {
	return f.cfgType
}

func (f *processorFactory) CreateDefaultConfig() config.Processor {
	return f.createDefault()
}

func (f *processorFactory) CreateProcessor(ctx context.Context, set CreateSettings, cfg config.Processor, nextConsumer consumer.Records) (Processor, error) {
	return f.create(ctx, set, cfg, nextConsumer)
}

// NewProcessorFactory returns a ProcessorFactory built from the given
// functions.
func NewProcessorFactory(cfgType config.Type, createDefault CreateDefaultProcessorConfigFunc, create CreateProcessorFunc) ProcessorFactory {
	return &processorFactory{cfgType: cfgType, createDefault: createDefault, create: create}
}
