// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package scrapereceiver // import "github.com/signalpipe/signalpipe/receiver/scrapereceiver"

import (
	"context"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/consumer"
)

const (
	typeStr = "prometheusscrape"

	defaultCollectionInterval = 30 * time.Second
	defaultScrapeTimeout      = 10 * time.Second
)

// NewFactory creates the factory for the Prometheus scrape receiver.
func NewFactory() component.ReceiverFactory {
	return component.NewReceiverFactory(typeStr, createDefaultConfig, createReceiver)
}

func createDefaultConfig() config.Receiver {
	return &Config{
		ReceiverSettings:   config.NewReceiverSettings(config.NewComponentID(typeStr)),
		CollectionInterval: defaultCollectionInterval,
		ScrapeTimeout:      defaultScrapeTimeout,
	}
}

func createReceiver(_ context.Context, set component.CreateSettings, cfg config.Receiver, nextConsumer consumer.Records) (component.Receiver, error) {
	sCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	return newReceiver(sCfg, set, nextConsumer), nil
}
