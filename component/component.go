// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package component holds the interfaces every pipeline building block
// implements, and the factory registry the orchestrator wires them from.
// New component types are added by registering a factory, the orchestrator
// itself never changes.
package component // import "github.com/signalpipe/signalpipe/component"

import (
	"context"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/consumer"
)

// Component is the shared lifecycle contract. Start must return quickly: long
// running work happens on goroutines the component owns and tears down in
// Shutdown. Shutdown must finish or abort in-flight work within the grace
// period carried by its context.
type Component interface {
	// Start begins the component's work. The Host can be used to report
	// fatal runtime errors discovered after startup.
	Start(ctx context.Context, host Host) error

	// Shutdown stops the component, draining in-flight data where the
	// component buffers any.
	Shutdown(ctx context.Context) error
}

// StartFunc is a nil-safe functional implementation of Start.
type StartFunc func(ctx context.Context, host Host) error

// Start calls f if non-nil.
func (f StartFunc) Start(ctx context.Context, host Host) error {
	if f == nil {
		return nil
	}
	return f(ctx, host)
}

// ShutdownFunc is a nil-safe functional implementation of Shutdown.
type ShutdownFunc func(ctx context.Context) error

// Shutdown calls f if non-nil.
func (f ShutdownFunc) Shutdown(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// Host is the component's view of the process hosting it.
type Host interface {
	// ReportFatalError is called by a component when it hits an unrecoverable
	// runtime fault. The fault degrades the service's health, it does not
	// tear down unrelated pipelines.
	ReportFatalError(err error)
}

// Receiver ingests data from the outside and emits record batches into the
// pipelines that declare it.
type Receiver interface {
	Component
}

// Processor consumes batches, transforms or buffers them, and forwards them
// to the next stage it was created with.
type Processor interface {
	Component
	consumer.Records
}

// Exporter consumes batches and transmits them to an external backend.
type Exporter interface {
	Component
	consumer.Records
}

// Extension is a service-level component outside any pipeline, e.g. the
// health check endpoint.
type Extension interface {
	Component
}

// PipelineWatcher is implemented by extensions that care about the moment the
// pipelines start and stop accepting data.
type PipelineWatcher interface {
	// Ready is called once all pipelines are running.
	Ready() error

	// NotReady is called when the service begins draining, and when a fatal
	// component fault degrades the service.
	NotReady() error
}

// TelemetrySettings carries the ambient facilities handed to components.
type TelemetrySettings struct {
	// Logger scoped to the component.
	Logger *zap.Logger
}

// CreateSettings is passed to every factory create call.
type CreateSettings struct {
	TelemetrySettings

	// BuildInfo describes the running binary.
	BuildInfo BuildInfo
}
