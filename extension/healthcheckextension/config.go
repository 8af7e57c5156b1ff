// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package healthcheckextension // import "github.com/signalpipe/signalpipe/extension/healthcheckextension"

import (
	"errors"

	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/confighttp"
)

// Config defines the configuration for the health check extension.
type Config struct {
	config.ExtensionSettings      `mapstructure:",squash"`
	confighttp.HTTPServerSettings `mapstructure:",squash"`

	// Path is the route answering health probes.
	Path string `mapstructure:"path"`
}

var _ config.Extension = (*Config)(nil)

// Validate checks the extension configuration.
func (cfg *Config) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New(`requires a non-empty "endpoint"`)
	}
	if cfg.Path == "" || cfg.Path[0] != '/' {
		return errors.New(`"path" must start with "/"`)
	}
	return nil
}
