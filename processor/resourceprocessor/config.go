// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package resourceprocessor // import "github.com/signalpipe/signalpipe/processor/resourceprocessor"

import (
	"errors"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/config"
)

// Detector names accepted in the "detectors" list.
const (
	detectorEnv      = "env"
	detectorSystem   = "system"
	detectorMetadata = "metadata"
)

// Config defines the configuration for the resource detection processor.
type Config struct {
	config.ProcessorSettings `mapstructure:",squash"`

	// Detectors run in order at startup, earlier detectors win conflicting
	// keys.
	Detectors []string `mapstructure:"detectors"`

	// Attributes are set explicitly and take precedence over every detector.
	Attributes map[string]string `mapstructure:"attributes"`

	// MetadataEndpoint is the URL the metadata detector queries for a JSON
	// object of attributes.
	MetadataEndpoint string `mapstructure:"metadata_endpoint"`

	// Timeout bounds the whole detection phase at startup.
	Timeout time.Duration `mapstructure:"timeout"`
}

var _ config.Processor = (*Config)(nil)

// Validate checks the processor configuration.
func (cfg *Config) Validate() error {
	if cfg.Timeout <= 0 {
		return errors.New(`"timeout" must be positive`)
	}
	for _, name := range cfg.Detectors {
		switch name {
		case detectorEnv, detectorSystem:
		case detectorMetadata:
			if cfg.MetadataEndpoint == "" {
				return errors.New(`the metadata detector requires "metadata_endpoint"`)
			}
		default:
			return fmt.Errorf("unknown detector %q", name)
		}
	}
	return nil
}
