// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package otlpreceiver // import "github.com/signalpipe/signalpipe/receiver/otlpreceiver"

import (
	"errors"

	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/confighttp"
)

// Config defines the configuration for the OTLP-style HTTP receiver.
type Config struct {
	config.ReceiverSettings       `mapstructure:",squash"`
	confighttp.HTTPServerSettings `mapstructure:",squash"`
}

var _ config.Receiver = (*Config)(nil)

// Validate checks the receiver configuration.
func (cfg *Config) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New(`requires a non-empty "endpoint"`)
	}
	return nil
}
