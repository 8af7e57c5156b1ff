// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package scrapereceiver // import "github.com/signalpipe/signalpipe/receiver/scrapereceiver"

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/signalpipe/signalpipe/config"
)

// Config defines the configuration for the Prometheus scrape receiver.
type Config struct {
	config.ReceiverSettings `mapstructure:",squash"`

	// CollectionInterval is the time between the start of two scrape rounds.
	CollectionInterval time.Duration `mapstructure:"collection_interval"`

	// ScrapeTimeout bounds each individual target scrape.
	ScrapeTimeout time.Duration `mapstructure:"scrape_timeout"`

	// Targets are the URLs of the exposition endpoints to scrape.
	Targets []string `mapstructure:"targets"`

	// Labels are attached to the resource of every scraped record.
	Labels map[string]string `mapstructure:"labels"`
}

var _ config.Receiver = (*Config)(nil)

// Validate checks the receiver configuration.
func (cfg *Config) Validate() error {
	if cfg.CollectionInterval <= 0 {
		return errors.New(`"collection_interval" must be positive`)
	}
	if cfg.ScrapeTimeout <= 0 {
		return errors.New(`"scrape_timeout" must be positive`)
	}
	if len(cfg.Targets) == 0 {
		return errors.New(`requires at least one entry in "targets"`)
	}
	for _, target := range cfg.Targets {
		if _, err := url.ParseRequestURI(target); err != nil {
			return fmt.Errorf("invalid target %q: %w", target, err)
		}
	}
	return nil
}
