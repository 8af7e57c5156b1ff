// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package consumer contains the interface that receives telemetry batches as
// they flow from one pipeline stage to the next.
package consumer // import "github.com/signalpipe/signalpipe/consumer"

import (
	"context"
	"errors"

	"github.com/signalpipe/signalpipe/model"
)

// Capabilities describes how a consumer treats the batches it receives.
type Capabilities struct {
	// MutatesData is set to true if ConsumeRecords modifies the records. The
	// fan-out layer uses this to hand mutating consumers a deep copy.
	MutatesData bool
}

// Records is the interface implemented by every pipeline stage that accepts
// batches: processors, exporters and the fan-out junctions between them.
type Records interface {
	// Capabilities reports whether the consumer mutates the batches.
	Capabilities() Capabilities

	// ConsumeRecords receives one batch. The call may block while downstream
	// applies backpressure; the context bounds the wait.
	ConsumeRecords(ctx context.Context, batch model.Batch) error
}

var errNilFunc = errors.New("nil consumer func")

// ConsumeRecordsFunc is a helper to build a Records from a function.
type ConsumeRecordsFunc func(ctx context.Context, batch model.Batch) error

// ConsumeRecords calls f(ctx, batch).
func (f ConsumeRecordsFunc) ConsumeRecords(ctx context.Context, batch model.Batch) error {
	if f == nil {
		return errNilFunc
	}
	return f(ctx, batch)
}

type baseConsumer struct {
	ConsumeRecordsFunc
	capabilities Capabilities
}

func (b baseConsumer) Capabilities() Capabilities {
	return b.capabilities
}

// Option applies a change to the consumer built by NewRecords.
type Option func(*baseConsumer)

// WithCapabilities overrides the default non-mutating capabilities.
func WithCapabilities(capabilities Capabilities) Option {
	return func(b *baseConsumer) {
		b.capabilities = capabilities
	}
}

// NewRecords builds a Records from a consume function.
func NewRecords(consume ConsumeRecordsFunc, options ...Option) (Records, error) {
	if consume == nil {
		return nil, errNilFunc
	}
	bc := baseConsumer{ConsumeRecordsFunc: consume}
	for _, op := range options {
		op(&bc)
	}
	return bc, nil
}
