// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package builder turns a validated configuration into running component
// instances, wiring receivers through processor chains into exporters.
package builder // import "github.com/signalpipe/signalpipe/service/internal/builder"

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
)

// Exporters holds the exporters created from exporter configs.
type Exporters struct {
	logger    *zap.Logger
	exporters map[config.ComponentID]component.Exporter
}

// StartAll starts all exporters.
func (exps *Exporters) StartAll(ctx context.Context, host component.Host) error {
	for expID, exp := range exps.exporters {
		expLogger := componentLogger(exps.logger, "exporter", expID)
		expLogger.Info("Exporter is starting...")
		if err := exp.Start(ctx, host); err != nil {
			return fmt.Errorf("failed to start exporter %q: %w", expID, err)
		}
		expLogger.Info("Exporter started.")
	}
	return nil
}

// ShutdownAll stops all exporters, draining their queues.
func (exps *Exporters) ShutdownAll(ctx context.Context) error {
	var errs error
	for _, exp := range exps.exporters {
		errs = multierr.Append(errs, exp.Shutdown(ctx))
	}
	return errs
}

// Consumers resolves the given exporter ids to their record consumers.
func (exps *Exporters) Consumers(ids []config.ComponentID) ([]consumer.Records, error) {
	rcs := make([]consumer.Records, 0, len(ids))
	for _, id := range ids {
		exp, ok := exps.exporters[id]
		if !ok {
			return nil, fmt.Errorf("exporter %q is not built", id)
		}
		rcs = append(rcs, exp)
	}
	return rcs, nil
}

// BuildExporters creates one exporter instance per exporter config. An
// exporter referenced by several pipelines is shared between them.
func BuildExporters(
	logger *zap.Logger,
	buildInfo component.BuildInfo,
	cfg *config.Config,
	factories map[config.Type]component.ExporterFactory,
) (*Exporters, error) {
	exporters := make(map[config.ComponentID]component.Exporter, len(cfg.Exporters))
	for expID, expCfg := range cfg.Exporters {
		factory, ok := factories[expID.Type()]
		if !ok {
			return nil, fmt.Errorf("exporter factory not found for type %q", expID.Type())
		}
		set := component.CreateSettings{
			TelemetrySettings: component.TelemetrySettings{
				Logger: componentLogger(logger, "exporter", expID),
			},
			BuildInfo: buildInfo,
		}
		exp, err := factory.CreateExporter(context.Background(), set, expCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter %q: %w", expID, err)
		}
		exporters[expID] = exp
	}
	return &Exporters{logger: logger, exporters: exporters}, nil
}

func componentLogger(logger *zap.Logger, kind string, id config.ComponentID) *zap.Logger {
	return logger.With(zap.String("kind", kind), zap.String("name", id.String()))
}
