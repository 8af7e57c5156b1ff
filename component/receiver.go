// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import (
	"context"

	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
)

// ReceiverFactory creates receivers of one type.
//
// Use NewReceiverFactory to implement it.
type ReceiverFactory interface {
	// Type returns the type name the factory registers under.
	Type() config.Type

	// CreateDefaultConfig creates the default configuration for the receiver.
	// It can be called multiple times and must not cause side effects.
	CreateDefaultConfig() config.Receiver

	// CreateReceiver creates a receiver that emits decoded batches to
	// nextConsumer. The next consumer already fans out to every pipeline that
	// declares this receiver.
	CreateReceiver(ctx context.Context, set CreateSettings, cfg config.Receiver, nextConsumer consumer.Records) (Receiver, error)
}

// CreateDefaultReceiverConfigFunc is the functional counterpart of
// ReceiverFactory.CreateDefaultConfig.
type CreateDefaultReceiverConfigFunc func() config.Receiver

// CreateReceiverFunc is the functional counterpart of
// ReceiverFactory.CreateReceiver.
type CreateReceiverFunc func(ctx context.Context, set CreateSettings, cfg config.Receiver, nextConsumer consumer.Records) (Receiver, error)

type receiverFactory struct {
	cfgType       config.Type
	createDefault CreateDefaultReceiverConfigFunc
	create        CreateReceiverFunc
}

func (f *receiverFactory) Type() config.Type {
	return f.cfgType
}

func (f *receiverFactory) CreateDefaultConfig() config.Receiver {
	return f.createDefault()
}

func (f *receiverFactory) CreateReceiver(ctx context.Context, set CreateSettings, cfg config.Receiver, nextConsumer consumer.Records) (Receiver, error) {
	return f.create(ctx, set, cfg, nextConsumer)
}

// NewReceiverFactory returns a ReceiverFactory built from the given functions.
func NewReceiverFactory(cfgType config.Type, createDefault CreateDefaultReceiverConfigFunc, create CreateReceiverFunc) ReceiverFactory {
	return &receiverFactory{cfgType: cfgType, createDefault: createDefault, create: create}
}
