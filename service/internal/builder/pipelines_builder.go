// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package builder // import "github.com/signalpipe/signalpipe/service/internal/builder"

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/model"
	"github.com/signalpipe/signalpipe/service/internal/fanoutconsumer"
)

// builtPipeline is one pipeline built from config. Its first consumer is the
// entry point receivers feed: the first processor, or the exporter fan-out
// when the pipeline has no processors.
type builtPipeline struct {
	logger *zap.Logger

	signal        model.Signal
	firstConsumer consumer.Records

	// mutatesData is set when any processor in the chain mutates the records
	// passing through, so the receiver fan-out hands this pipeline a copy.
	mutatesData bool

	processors []component.Processor
}

// BuiltPipelines is a map of built pipelines keyed by pipeline name.
type BuiltPipelines map[string]*builtPipeline

// StartProcessors starts the processors of every pipeline, beginning at the
// back of each chain so a processor never sends to a peer that is not yet
// running.
func (bps BuiltPipelines) StartProcessors(ctx context.Context, host component.Host) error {
	for name, bp := range bps {
		bp.logger.Info("Pipeline is starting...")
		for i := len(bp.processors) - 1; i >= 0; i-- {
			if err := bp.processors[i].Start(ctx, host); err != nil {
				return fmt.Errorf("failed to start pipeline %q: %w", name, err)
			}
		}
		bp.logger.Info("Pipeline is started.")
	}
	return nil
}

// ShutdownProcessors stops the processors front to back so each one can flush
// what it holds into a still-running successor.
func (bps BuiltPipelines) ShutdownProcessors(ctx context.Context) error {
	var errs error
	for _, bp := range bps {
		bp.logger.Info("Pipeline is shutting down...")
		for _, p := range bp.processors {
			errs = multierr.Append(errs, p.Shutdown(ctx))
		}
		bp.logger.Info("Pipeline is shutdown.")
	}
	return errs
}

// BuildPipelines builds the processor chains of all configured pipelines.
// Requires exporters to be already built via BuildExporters.
func BuildPipelines(
	logger *zap.Logger,
	buildInfo component.BuildInfo,
	cfg *config.Config,
	exporters *Exporters,
	factories map[config.Type]component.ProcessorFactory,
) (BuiltPipelines, error) {
	pipelines := make(BuiltPipelines, len(cfg.Service.Pipelines))
	for name, pipelineCfg := range cfg.Service.Pipelines {
		bp, err := buildPipeline(logger, buildInfo, cfg, pipelineCfg, exporters, factories)
		if err != nil {
			return nil, fmt.Errorf("failed to build pipeline %q: %w", name, err)
		}
		pipelines[name] = bp
	}
	return pipelines, nil
}

func buildPipeline(
	logger *zap.Logger,
	buildInfo component.BuildInfo,
	cfg *config.Config,
	pipelineCfg *config.Pipeline,
	exporters *Exporters,
	factories map[config.Type]component.ProcessorFactory,
) (*builtPipeline, error) {
	expConsumers, err := exporters.Consumers(pipelineCfg.Exporters)
	if err != nil {
		return nil, err
	}
	nextConsumer := fanoutconsumer.NewRecords(expConsumers)

	// Build the chain backwards so each processor is created with its
	// successor as the next consumer.
	mutatesData := false
	processors := make([]component.Processor, len(pipelineCfg.Processors))
	for i := len(pipelineCfg.Processors) - 1; i >= 0; i-- {
		procID := pipelineCfg.Processors[i]
		procCfg, ok := cfg.Processors[procID]
		if !ok {
			return nil, fmt.Errorf("processor %q is not configured", procID)
		}
		factory, ok := factories[procID.Type()]
		if !ok {
			return nil, fmt.Errorf("processor factory not found for type %q", procID.Type())
		}
		set := component.CreateSettings{
			TelemetrySettings: component.TelemetrySettings{
				Logger: componentLogger(logger, "processor", procID).With(zap.String("pipeline", pipelineCfg.Name)),
			},
			BuildInfo: buildInfo,
		}
		proc, err := factory.CreateProcessor(context.Background(), set, procCfg, nextConsumer)
		if err != nil {
			return nil, fmt.Errorf("failed to create processor %q: %w", procID, err)
		}
		mutatesData = mutatesData || proc.Capabilities().MutatesData
		processors[i] = proc
		nextConsumer = proc
	}

	return &builtPipeline{
		logger:        logger.With(zap.String("pipeline", pipelineCfg.Name)),
		signal:        pipelineCfg.Signal,
		firstConsumer: nextConsumer,
		mutatesData:   mutatesData,
		processors:    processors,
	}, nil
}
