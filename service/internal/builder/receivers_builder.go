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
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/model"
	"github.com/signalpipe/signalpipe/service/internal/fanoutconsumer"
)

// Receivers holds the receivers created from receiver configs. A receiver
// referenced by several pipelines exists once and fans out to all of them.
type Receivers struct {
	logger    *zap.Logger
	receivers map[config.ComponentID]component.Receiver
}

// StartAll starts all receivers. Called last during startup, once the rest of
// the pipeline is ready to take data.
func (rcvs *Receivers) StartAll(ctx context.Context, host component.Host) error {
	for rcvID, rcv := range rcvs.receivers {
		rcvLogger := componentLogger(rcvs.logger, "receiver", rcvID)
		rcvLogger.Info("Receiver is starting...")
		if err := rcv.Start(ctx, host); err != nil {
			return fmt.Errorf("failed to start receiver %q: %w", rcvID, err)
		}
		rcvLogger.Info("Receiver started.")
	}
	return nil
}

// ShutdownAll stops all receivers. Called first during shutdown so no new
// data enters the draining pipelines.
func (rcvs *Receivers) ShutdownAll(ctx context.Context) error {
	var errs error
	for _, rcv := range rcvs.receivers {
		errs = multierr.Append(errs, rcv.Shutdown(ctx))
	}
	return errs
}

// BuildReceivers creates one receiver instance per receiver config referenced
// by at least one pipeline. The receiver's consumer routes each batch by
// signal to the fan-out of the pipelines attached for that signal.
func BuildReceivers(
	logger *zap.Logger,
	buildInfo component.BuildInfo,
	cfg *config.Config,
	pipelines BuiltPipelines,
	factories map[config.Type]component.ReceiverFactory,
) (*Receivers, error) {
	// Group the attached pipelines of every used receiver by signal.
	attached := make(map[config.ComponentID]map[model.Signal][]consumer.Records)
	for _, pipelineCfg := range cfg.Service.Pipelines {
		bp := pipelines[pipelineCfg.Name]
		for _, rcvID := range pipelineCfg.Receivers {
			bySignal, ok := attached[rcvID]
			if !ok {
				bySignal = make(map[model.Signal][]consumer.Records)
				attached[rcvID] = bySignal
			}
			bySignal[bp.signal] = append(bySignal[bp.signal], &pipelineConsumer{bp: bp})
		}
	}

	receivers := make(map[config.ComponentID]component.Receiver, len(attached))
	for rcvID, bySignal := range attached {
		rcvCfg, ok := cfg.Receivers[rcvID]
		if !ok {
			return nil, fmt.Errorf("receiver %q is not configured", rcvID)
		}
		factory, ok := factories[rcvID.Type()]
		if !ok {
			return nil, fmt.Errorf("receiver factory not found for type %q", rcvID.Type())
		}

		routes := make(map[model.Signal]consumer.Records, len(bySignal))
		for signal, rcs := range bySignal {
			routes[signal] = fanoutconsumer.NewRecords(rcs)
		}

		set := component.CreateSettings{
			TelemetrySettings: component.TelemetrySettings{
				Logger: componentLogger(logger, "receiver", rcvID),
			},
			BuildInfo: buildInfo,
		}
		rcv, err := factory.CreateReceiver(context.Background(), set, rcvCfg, signalRouter(routes))
		if err != nil {
			return nil, fmt.Errorf("failed to create receiver %q: %w", rcvID, err)
		}
		receivers[rcvID] = rcv
	}
	return &Receivers{logger: logger, receivers: receivers}, nil
}

// pipelineConsumer presents a pipeline's entry point with the aggregated
// mutation capability of its whole processor chain, so the receiver fan-out
// clones for pipelines that mutate anywhere down the chain.
type pipelineConsumer struct {
	bp *builtPipeline
}

var _ consumer.Records = (*pipelineConsumer)(nil)

func (pc *pipelineConsumer) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: pc.bp.mutatesData}
}

func (pc *pipelineConsumer) ConsumeRecords(ctx context.Context, batch model.Batch) error {
	return pc.bp.firstConsumer.ConsumeRecords(ctx, batch)
}

// signalRouter sends each batch to the pipelines of its signal. A batch for
// a signal no pipeline carries is a permanent error, push receivers answer it
// with a client error.
type signalRouter map[model.Signal]consumer.Records

var _ consumer.Records = (signalRouter)(nil)

func (r signalRouter) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: false}
}

func (r signalRouter) ConsumeRecords(ctx context.Context, batch model.Batch) error {
	rc, ok := r[batch.Signal()]
	if !ok {
		return consumererror.NewPermanent(fmt.Errorf("no pipeline configured for signal %q", batch.Signal()))
	}
	return rc.ConsumeRecords(ctx, batch)
}
