// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package service orchestrates the lifecycle of the configured components:
// extensions first, then exporters, processors and receivers, so data can
// only start flowing once everything downstream is ready, and drains in the
// opposite order on shutdown.
package service // import "github.com/signalpipe/signalpipe/service"

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/service/internal/builder"
)

// State is the lifecycle phase of the service.
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Draining
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Draining:
		return "Draining"
	}
	return "Unknown"
}

// Settings holds everything needed to assemble a service.
type Settings struct {
	// BuildInfo identifies the binary.
	BuildInfo component.BuildInfo

	// Factories are the available component factories.
	Factories component.Factories

	// Config is the validated collector configuration.
	Config *config.Config

	// Logger is the root logger, components get named children of it.
	Logger *zap.Logger
}

// Service runs the configured pipelines.
type Service struct {
	buildInfo component.BuildInfo
	factories component.Factories
	cfg       *config.Config
	logger    *zap.Logger

	extensions *builder.Extensions
	exporters  *builder.Exporters
	pipelines  builder.BuiltPipelines
	receivers  *builder.Receivers

	state             *atomic.Int32
	asyncErrorChannel chan error
}

var _ component.Host = (*Service)(nil)

// New creates a stopped service. Call Start to bring the pipelines up.
func New(set Settings) (*Service, error) {
	if set.Config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := set.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := set.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		buildInfo:         set.BuildInfo,
		factories:         set.Factories,
		cfg:               set.Config,
		logger:            logger,
		state:             atomic.NewInt32(int32(Stopped)),
		asyncErrorChannel: make(chan error, 1),
	}, nil
}

// Start builds and starts all components back to front. On failure the
// service stays in Starting, call Shutdown to tear down whatever came up.
func (srv *Service) Start(ctx context.Context) error {
	if !srv.state.CAS(int32(Stopped), int32(Starting)) {
		return fmt.Errorf("service cannot start from state %q", srv.State())
	}
	srv.logger.Info("Starting service...",
		zap.String("version", srv.buildInfo.Version), zap.String("instance", srv.buildInfo.InstanceID))

	var err error
	if srv.extensions, err = builder.BuildExtensions(srv.logger, srv.buildInfo, srv.cfg, srv.factories.Extensions); err != nil {
		return fmt.Errorf("cannot build extensions: %w", err)
	}
	if err = srv.extensions.StartAll(ctx, srv); err != nil {
		return fmt.Errorf("cannot start extensions: %w", err)
	}

	if srv.exporters, err = builder.BuildExporters(srv.logger, srv.buildInfo, srv.cfg, srv.factories.Exporters); err != nil {
		return fmt.Errorf("cannot build exporters: %w", err)
	}
	if err = srv.exporters.StartAll(ctx, srv); err != nil {
		return fmt.Errorf("cannot start exporters: %w", err)
	}

	if srv.pipelines, err = builder.BuildPipelines(srv.logger, srv.buildInfo, srv.cfg, srv.exporters, srv.factories.Processors); err != nil {
		return fmt.Errorf("cannot build pipelines: %w", err)
	}
	if err = srv.pipelines.StartProcessors(ctx, srv); err != nil {
		return fmt.Errorf("cannot start pipelines: %w", err)
	}

	if srv.receivers, err = builder.BuildReceivers(srv.logger, srv.buildInfo, srv.cfg, srv.pipelines, srv.factories.Receivers); err != nil {
		return fmt.Errorf("cannot build receivers: %w", err)
	}
	if err = srv.receivers.StartAll(ctx, srv); err != nil {
		return fmt.Errorf("cannot start receivers: %w", err)
	}

	if err = srv.extensions.NotifyPipelineReady(); err != nil {
		return err
	}

	srv.state.Store(int32(Running))
	srv.logger.Info("Service started.")
	return nil
}

// Shutdown drains and stops all components front to back: receivers stop
// taking data, processors flush, exporters drain their queues, extensions go
// down last.
func (srv *Service) Shutdown(ctx context.Context) error {
	switch srv.State() {
	case Stopped:
		return nil
	case Draining:
		return errors.New("service is already draining")
	}
	srv.state.Store(int32(Draining))
	srv.logger.Info("Draining service...")

	var errs error
	if srv.extensions != nil {
		errs = multierr.Append(errs, srv.extensions.NotifyPipelineNotReady())
	}
	if srv.receivers != nil {
		errs = multierr.Append(errs, srv.receivers.ShutdownAll(ctx))
	}
	if srv.pipelines != nil {
		errs = multierr.Append(errs, srv.pipelines.ShutdownProcessors(ctx))
	}
	if srv.exporters != nil {
		errs = multierr.Append(errs, srv.exporters.ShutdownAll(ctx))
	}
	if srv.extensions != nil {
		errs = multierr.Append(errs, srv.extensions.ShutdownAll(ctx))
	}

	srv.state.Store(int32(Stopped))
	srv.logger.Info("Service stopped.")
	return errs
}

// State returns the current lifecycle phase.
func (srv *Service) State() State {
	return State(srv.state.Load())
}

// ReportFatalError is called by components that hit an unrecoverable error
// after startup. The first report wins, the rest are dropped.
func (srv *Service) ReportFatalError(err error) {
	select {
	case srv.asyncErrorChannel <- err:
	default:
	}
}

// AsyncErrors exposes fatal component errors, the caller is expected to shut
// the service down when one arrives.
func (srv *Service) AsyncErrors() <-chan error {
	return srv.asyncErrorChannel
}
