// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/signalpipe/signalpipe/exporter/otlpexporter"

import (
	"errors"

	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/confighttp"
	"github.com/signalpipe/signalpipe/exporter/exporterhelper"
)

// Config defines the configuration for the OTLP-style HTTP exporter.
type Config struct {
	config.ExporterSettings       `mapstructure:",squash"`
	confighttp.HTTPClientSettings `mapstructure:",squash"`

	RetrySettings exporterhelper.RetrySettings `mapstructure:"retry_on_failure"`
	QueueSettings exporterhelper.QueueSettings `mapstructure:"sending_queue"`
}

var _ config.Exporter = (*Config)(nil)

// Validate checks the exporter configuration.
func (cfg *Config) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New(`requires a non-empty "endpoint"`)
	}
	return cfg.HTTPClientSettings.Validate()
}
