// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package config defines the data model for the collector configuration:
// the top-level Config, the polymorphic per-component settings and the
// pipeline wiring. Component-specific settings embed the common
// ReceiverSettings/ProcessorSettings/ExporterSettings/ExtensionSettings
// structs and extend them with their own fields.
package config // import "github.com/signalpipe/signalpipe/config"

import (
	"errors"
	"fmt"

	"github.com/signalpipe/signalpipe/model"
)

var (
	errMissingReceivers        = errors.New("config must have at least one receiver")
	errMissingExporters        = errors.New("config must have at least one exporter")
	errMissingServicePipelines = errors.New("service must have at least one pipeline")
)

type identifiable interface {
	ID() ComponentID
	SetID(id ComponentID)
}

type validatable interface {
	Validate() error
}

// Receiver is the configuration of a receiver instance.
type Receiver interface {
	identifiable
	validatable
}

// Processor is the configuration of a processor instance.
type Processor interface {
	identifiable
	validatable
}

// Exporter is the configuration of an exporter instance.
type Exporter interface {
	identifiable
	validatable
}

// Extension is the configuration of an extension instance.
type Extension interface {
	identifiable
	validatable
}

type settings struct {
	id ComponentID `mapstructure:"-"`
}

func (s *settings) ID() ComponentID {
	return s.id
}

func (s *settings) SetID(id ComponentID) {
	s.id = id
}

func (s *settings) Validate() error {
	return nil
}

// ReceiverSettings defines common settings of a Receiver configuration.
type ReceiverSettings struct {
	settings `mapstructure:",squash"`
}

// NewReceiverSettings returns ReceiverSettings with the given id.
func NewReceiverSettings(id ComponentID) ReceiverSettings {
	return ReceiverSettings{settings{id: id}}
}

// ProcessorSettings defines common settings of a Processor configuration.
type ProcessorSettings struct {
	settings `mapstructure:",squash"`
}

// NewProcessorSettings returns ProcessorSettings with the given id.
func NewProcessorSettings(id ComponentID) ProcessorSettings {
	return ProcessorSettings{settings{id: id}}
}

// ExporterSettings defines common settings of an Exporter configuration.
type ExporterSettings struct {
	settings `mapstructure:",squash"`
}

// NewExporterSettings returns ExporterSettings with the given id.
func NewExporterSettings(id ComponentID) ExporterSettings {
	return ExporterSettings{settings{id: id}}
}

// ExtensionSettings defines common settings of an Extension configuration.
type ExtensionSettings struct {
	settings `mapstructure:",squash"`
}

// NewExtensionSettings returns ExtensionSettings with the given id.
func NewExtensionSettings(id ComponentID) ExtensionSettings {
	return ExtensionSettings{settings{id: id}}
}

// Receivers is a map of receiver configurations keyed by id.
type Receivers map[ComponentID]Receiver

// Processors is a map of processor configurations keyed by id.
type Processors map[ComponentID]Processor

// Exporters is a map of exporter configurations keyed by id.
type Exporters map[ComponentID]Exporter

// Extensions is a map of extension configurations keyed by id.
type Extensions map[ComponentID]Extension

// Pipeline is one ordered chain receivers -> processors -> exporters for a
// single signal type.
type Pipeline struct {
	Name       string
	Signal     model.Signal
	Receivers  []ComponentID
	Processors []ComponentID
	Exporters  []ComponentID
}

// Pipelines is a map of pipelines keyed by their full name.
type Pipelines map[string]*Pipeline

// Service holds the pipelines and the extensions enabled for the collector.
type Service struct {
	Extensions []ComponentID
	Pipelines  Pipelines
}

// Config is the root of the collector configuration.
type Config struct {
	Receivers  Receivers
	Processors Processors
	Exporters  Exporters
	Extensions Extensions
	Service    Service
}

// Validate performs the structural checks done before any component is
// started: unknown references and empty sections are rejected here, so the
// orchestrator never reaches Running with a broken wiring.
func (cfg *Config) Validate() error {
	if len(cfg.Receivers) == 0 {
		return errMissingReceivers
	}
	if len(cfg.Exporters) == 0 {
		return errMissingExporters
	}

	for id, rCfg := range cfg.Receivers {
		if err := rCfg.Validate(); err != nil {
			return fmt.Errorf("receiver %q: %w", id, err)
		}
	}
	for id, pCfg := range cfg.Processors {
		if err := pCfg.Validate(); err != nil {
			return fmt.Errorf("processor %q: %w", id, err)
		}
	}
	for id, eCfg := range cfg.Exporters {
		if err := eCfg.Validate(); err != nil {
			return fmt.Errorf("exporter %q: %w", id, err)
		}
	}
	for id, eCfg := range cfg.Extensions {
		if err := eCfg.Validate(); err != nil {
			return fmt.Errorf("extension %q: %w", id, err)
		}
	}

	for _, ref := range cfg.Service.Extensions {
		if cfg.Extensions[ref] == nil {
			return fmt.Errorf("service references extension %q which does not exist", ref)
		}
	}

	return cfg.validateServicePipelines()
}

func (cfg *Config) validateServicePipelines() error {
	if len(cfg.Service.Pipelines) == 0 {
		return errMissingServicePipelines
	}

	for name, pipeline := range cfg.Service.Pipelines {
		if len(pipeline.Receivers) == 0 {
			return fmt.Errorf("pipeline %q must have at least one receiver", name)
		}
		for _, ref := range pipeline.Receivers {
			if cfg.Receivers[ref] == nil {
				return fmt.Errorf("pipeline %q references receiver %q which does not exist", name, ref)
			}
		}
		seen := make(map[ComponentID]struct{}, len(pipeline.Processors))
		for _, ref := range pipeline.Processors {
			if cfg.Processors[ref] == nil {
				return fmt.Errorf("pipeline %q references processor %q which does not exist", name, ref)
			}
			// A processor instance holds per-pipeline state, referencing it
			// twice in one chain would make it consume its own output.
			if _, ok := seen[ref]; ok {
				return fmt.Errorf("pipeline %q references processor %q more than once", name, ref)
			}
			seen[ref] = struct{}{}
		}
		if len(pipeline.Exporters) == 0 {
			return fmt.Errorf("pipeline %q must have at least one exporter", name)
		}
		for _, ref := range pipeline.Exporters {
			if cfg.Exporters[ref] == nil {
				return fmt.Errorf("pipeline %q references exporter %q which does not exist", name, ref)
			}
		}
	}
	return nil
}
