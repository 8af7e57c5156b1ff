// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package configunmarshaler decodes the raw configuration map into typed
// component configurations using the factory registry. Unknown component
// types and malformed sections are configuration errors: they are rejected
// here, before anything is started.
package configunmarshaler // import "github.com/signalpipe/signalpipe/config/configunmarshaler"

import (
	"fmt"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/model"
)

type configSettings struct {
	Receivers  map[string]map[string]interface{} `mapstructure:"receivers"`
	Processors map[string]map[string]interface{} `mapstructure:"processors"`
	Exporters  map[string]map[string]interface{} `mapstructure:"exporters"`
	Extensions map[string]map[string]interface{} `mapstructure:"extensions"`
	Service    serviceSettings                   `mapstructure:"service"`
}

type serviceSettings struct {
	Extensions []string                    `mapstructure:"extensions"`
	Pipelines  map[string]pipelineSettings `mapstructure:"pipelines"`
}

type pipelineSettings struct {
	Receivers  []string `mapstructure:"receivers"`
	Processors []string `mapstructure:"processors"`
	Exporters  []string `mapstructure:"exporters"`
}

// Unmarshal decodes the raw map into a Config. The result still needs
// Validate() to be called on it.
func Unmarshal(v *config.Map, factories component.Factories) (*config.Config, error) {
	var rawCfg configSettings
	if err := v.UnmarshalExact(&rawCfg); err != nil {
		return nil, fmt.Errorf("error reading top level configuration sections: %w", err)
	}

	var cfg config.Config
	var err error

	if cfg.Receivers, err = unmarshalReceivers(rawCfg.Receivers, factories.Receivers); err != nil {
		return nil, err
	}
	if cfg.Processors, err = unmarshalProcessors(rawCfg.Processors, factories.Processors); err != nil {
		return nil, err
	}
	if cfg.Exporters, err = unmarshalExporters(rawCfg.Exporters, factories.Exporters); err != nil {
		return nil, err
	}
	if cfg.Extensions, err = unmarshalExtensions(rawCfg.Extensions, factories.Extensions); err != nil {
		return nil, err
	}
	if cfg.Service, err = unmarshalService(rawCfg.Service); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func unmarshalReceivers(raw map[string]map[string]interface{}, factories map[config.Type]component.ReceiverFactory) (config.Receivers, error) {
	receivers := make(config.Receivers, len(raw))
	for key, section := range raw {
		id, err := config.ParseComponentID(key)
		if err != nil {
			return nil, fmt.Errorf("invalid receiver id %q: %w", key, err)
		}
		factory, ok := factories[id.Type()]
		if !ok {
			return nil, fmt.Errorf("unknown receiver type %q for %q", id.Type(), id)
		}
		cfg := factory.CreateDefaultConfig()
		cfg.SetID(id)
		if err := config.Decode(section, cfg); err != nil {
			return nil, fmt.Errorf("error reading receiver configuration for %q: %w", id, err)
		}
		receivers[id] = cfg
	}
	return receivers, nil
}

func unmarshalProcessors(raw map[string]map[string]interface{}, factories map[config.Type]component.ProcessorFactory) (config.Processors, error) {
	processors := make(config.Processors, len(raw))
	for key, section := range raw {
		id, err := config.ParseComponentID(key)
		if err != nil {
			return nil, fmt.Errorf("invalid processor id %q: %w", key, err)
		}
		factory, ok := factories[id.Type()]
		if !ok {
			return nil, fmt.Errorf("unknown processor type %q for %q", id.Type(), id)
		}
		cfg := factory.CreateDefaultConfig()
		cfg.SetID(id)
		if err := config.Decode(section, cfg); err != nil {
			return nil, fmt.Errorf("error reading processor configuration for %q: %w", id, err)
		}
		processors[id] = cfg
	}
	return processors, nil
}

func unmarshalExporters(raw map[string]map[string]interface{}, factories map[config.Type]component.ExporterFactory) (config.Exporters, error) {
	exporters := make(config.Exporters, len(raw))
	for key, section := range raw {
		id, err := config.ParseComponentID(key)
		if err != nil {
			return nil, fmt.Errorf("invalid exporter id %q: %w", key, err)
		}
		factory, ok := factories[id.Type()]
		if !ok {
			return nil, fmt.Errorf("unknown exporter type %q for %q", id.Type(), id)
		}
		cfg := factory.CreateDefaultConfig()
		cfg.SetID(id)
		if err := config.Decode(section, cfg); err != nil {
			return nil, fmt.Errorf("error reading exporter configuration for %q: %w", id, err)
		}
		exporters[id] = cfg
	}
	return exporters, nil
}

func unmarshalExtensions(raw map[string]map[string]interface{}, factories map[config.Type]component.ExtensionFactory) (config.Extensions, error) {
	extensions := make(config.Extensions, len(raw))
	for key, section := range raw {
		id, err := config.ParseComponentID(key)
		if err != nil {
			return nil, fmt.Errorf("invalid extension id %q: %w", key, err)
		}
		factory, ok := factories[id.Type()]
		if !ok {
			return nil, fmt.Errorf("unknown extension type %q for %q", id.Type(), id)
		}
		cfg := factory.CreateDefaultConfig()
		cfg.SetID(id)
		if err := config.Decode(section, cfg); err != nil {
			return nil, fmt.Errorf("error reading extension configuration for %q: %w", id, err)
		}
		extensions[id] = cfg
	}
	return extensions, nil
}

func unmarshalService(raw serviceSettings) (config.Service, error) {
	var svc config.Service
	for _, key := range raw.Extensions {
		id, err := config.ParseComponentID(key)
		if err != nil {
			return svc, fmt.Errorf("invalid service extension id %q: %w", key, err)
		}
		svc.Extensions = append(svc.Extensions, id)
	}

	svc.Pipelines = make(config.Pipelines, len(raw.Pipelines))
	for name, rawPipe := range raw.Pipelines {
		pipeline, err := unmarshalPipeline(name, rawPipe)
		if err != nil {
			return svc, err
		}
		svc.Pipelines[name] = pipeline
	}
	return svc, nil
}

// Pipeline names are "<signal>" or "<signal>/<name>", the signal part selects
// the data type the pipeline carries.
func unmarshalPipeline(name string, raw pipelineSettings) (*config.Pipeline, error) {
	id, err := config.ParseComponentID(name)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline name %q: %w", name, err)
	}
	var signal model.Signal
	switch model.Signal(id.Type()) {
	case model.TracesSignal:
		signal = model.TracesSignal
	case model.MetricsSignal:
		signal = model.MetricsSignal
	case model.LogsSignal:
		signal = model.LogsSignal
	default:
		return nil, fmt.Errorf("pipeline %q: unknown signal type %q", name, id.Type())
	}

	pipeline := &config.Pipeline{Name: name, Signal: signal}
	if pipeline.Receivers, err = parseIDs("receiver", name, raw.Receivers); err != nil {
		return nil, err
	}
	if pipeline.Processors, err = parseIDs("processor", name, raw.Processors); err != nil {
		return nil, err
	}
	if pipeline.Exporters, err = parseIDs("exporter", name, raw.Exporters); err != nil {
		return nil, err
	}
	return pipeline, nil
}

func parseIDs(kind, pipeline string, keys []string) ([]config.ComponentID, error) {
	ids := make([]config.ComponentID, 0, len(keys))
	for _, key := range keys {
		id, err := config.ParseComponentID(key)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: invalid %s reference %q: %w", pipeline, kind, key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
