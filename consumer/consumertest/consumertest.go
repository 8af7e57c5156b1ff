// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package consumertest provides consumers used in tests of pipeline
// components.
package consumertest // import "github.com/signalpipe/signalpipe/consumer/consumertest"

import (
	"context"
	"sync"

	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/model"
)

// Sink is a consumer that stores every batch it receives.
type Sink struct {
	mu      sync.Mutex
	batches []model.Batch
	count   int
}

var _ consumer.Records = (*Sink)(nil)

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

func (s *Sink) ConsumeRecords(_ context.Context, batch model.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	s.count += batch.Len()
	return nil
}

// Batches returns a copy of the received batches in arrival order.
func (s *Sink) Batches() []model.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Batch(nil), s.batches...)
}

// RecordCount returns the total number of records received.
func (s *Sink) RecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Reset drops everything received so far.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = nil
	s.count = 0
}

type errConsumer struct {
	err error
}

func (e errConsumer) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

func (e errConsumer) ConsumeRecords(context.Context, model.Batch) error {
	return e.err
}

// NewErr returns a consumer that always fails with the given error.
func NewErr(err error) consumer.Records {
	return errConsumer{err: err}
}

type nopConsumer struct{}

func (nopConsumer) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

func (nopConsumer) ConsumeRecords(context.Context, model.Batch) error {
	return nil
}

// NewNop returns a consumer that accepts and discards everything.
func NewNop() consumer.Records {
	return nopConsumer{}
}
