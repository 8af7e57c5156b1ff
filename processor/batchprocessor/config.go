// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/signalpipe/signalpipe/processor/batchprocessor"

import (
	"errors"
	"time"

	"github.com/signalpipe/signalpipe/config"
)

// Config defines the configuration for the batch processor.
type Config struct {
	config.ProcessorSettings `mapstructure:",squash"`

	// Timeout is how long an incomplete batch may wait before it is sent
	// regardless of size.
	Timeout time.Duration `mapstructure:"timeout"`

	// SendBatchSize is the number of records at which the accumulated batch
	// is sent downstream.
	SendBatchSize uint32 `mapstructure:"send_batch_size"`
}

var _ config.Processor = (*Config)(nil)

// Validate checks the processor configuration.
func (cfg *Config) Validate() error {
	if cfg.Timeout <= 0 {
		return errors.New(`"timeout" must be positive`)
	}
	if cfg.SendBatchSize == 0 {
		return errors.New(`"send_batch_size" must be positive`)
	}
	return nil
}
