// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package otlpreceiver // import "github.com/signalpipe/signalpipe/receiver/otlpreceiver"

import (
	"context"
	"fmt"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/confighttp"
	"github.com/signalpipe/signalpipe/consumer"
)

const (
	typeStr = "otlp"

	defaultEndpoint = "0.0.0.0:4318"
)

// NewFactory creates the factory for the OTLP-style HTTP receiver.
func NewFactory() component.ReceiverFactory {
	return component.NewReceiverFactory(typeStr, createDefaultConfig, createReceiver)
}

func createDefaultConfig() config.Receiver {
	return &Config{
		ReceiverSettings: config.NewReceiverSettings(config.NewComponentID(typeStr)),
		HTTPServerSettings: confighttp.HTTPServerSettings{
			Endpoint: defaultEndpoint,
		},
	}
}

func createReceiver(_ context.Context, set component.CreateSettings, cfg config.Receiver, nextConsumer consumer.Records) (component.Receiver, error) {
	rCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	return newReceiver(rCfg, set, nextConsumer), nil
}
