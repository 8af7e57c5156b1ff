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
)

// Extensions holds the extensions created from extension configs, in their
// configured order.
type Extensions struct {
	logger *zap.Logger
	order  []config.ComponentID
	extMap map[config.ComponentID]component.Extension
}

// StartAll starts the extensions in configured order, before any pipeline
// component.
func (exts *Extensions) StartAll(ctx context.Context, host component.Host) error {
	for _, extID := range exts.order {
		extLogger := componentLogger(exts.logger, "extension", extID)
		extLogger.Info("Extension is starting...")
		if err := exts.extMap[extID].Start(ctx, host); err != nil {
			return fmt.Errorf("failed to start extension %q: %w", extID, err)
		}
		extLogger.Info("Extension started.")
	}
	return nil
}

// ShutdownAll stops the extensions in reverse order, after every pipeline
// component is down.
func (exts *Extensions) ShutdownAll(ctx context.Context) error {
	var errs error
	for i := len(exts.order) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, exts.extMap[exts.order[i]].Shutdown(ctx))
	}
	return errs
}

// NotifyPipelineReady tells watching extensions the pipelines take data now.
func (exts *Extensions) NotifyPipelineReady() error {
	for _, extID := range exts.order {
		if watcher, ok := exts.extMap[extID].(component.PipelineWatcher); ok {
			if err := watcher.Ready(); err != nil {
				return fmt.Errorf("extension %q failed to become ready: %w", extID, err)
			}
		}
	}
	return nil
}

// NotifyPipelineNotReady tells watching extensions the pipelines stopped
// taking data.
func (exts *Extensions) NotifyPipelineNotReady() error {
	var errs error
	for _, extID := range exts.order {
		if watcher, ok := exts.extMap[extID].(component.PipelineWatcher); ok {
			errs = multierr.Append(errs, watcher.NotReady())
		}
	}
	return errs
}

// BuildExtensions creates the extensions listed in the service config.
func BuildExtensions(
	logger *zap.Logger,
	buildInfo component.BuildInfo,
	cfg *config.Config,
	factories map[config.Type]component.ExtensionFactory,
) (*Extensions, error) {
	extMap := make(map[config.ComponentID]component.Extension, len(cfg.Service.Extensions))
	for _, extID := range cfg.Service.Extensions {
		extCfg, ok := cfg.Extensions[extID]
		if !ok {
			return nil, fmt.Errorf("extension %q is not configured", extID)
		}
		factory, ok := factories[extID.Type()]
		if !ok {
			return nil, fmt.Errorf("extension factory not found for type %q", extID.Type())
		}
		set := component.CreateSettings{
			TelemetrySettings: component.TelemetrySettings{
				Logger: componentLogger(logger, "extension", extID),
			},
			BuildInfo: buildInfo,
		}
		ext, err := factory.CreateExtension(context.Background(), set, extCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create extension %q: %w", extID, err)
		}
		extMap[extID] = ext
	}
	return &Extensions{logger: logger, order: cfg.Service.Extensions, extMap: extMap}, nil
}
