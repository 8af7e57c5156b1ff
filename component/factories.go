// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import (
	"fmt"

	"github.com/signalpipe/signalpipe/config"
)

// Factories is the registry of component constructors keyed by type. The
// configuration refers to components by type name, the orchestrator resolves
// them here.
type Factories struct {
	Receivers  map[config.Type]ReceiverFactory
	Processors map[config.Type]ProcessorFactory
	Exporters  map[config.Type]ExporterFactory
	Extensions map[config.Type]ExtensionFactory
}

// MakeReceiverFactoryMap builds the registry map, rejecting duplicate types.
func MakeReceiverFactoryMap(factories ...ReceiverFactory) (map[config.Type]ReceiverFactory, error) {
	fMap := make(map[config.Type]ReceiverFactory, len(factories))
	for _, f := range factories {
		if _, ok := fMap[f.Type()]; ok {
			return nil, fmt.Errorf("duplicate receiver factory %q", f.Type())
		}
		fMap[f.Type()] = f
	}
	return fMap, nil
}

// MakeProcessorFactoryMap builds the registry map, rejecting duplicate types.
func MakeProcessorFactoryMap(factories ...ProcessorFactory) (map[config.Type]ProcessorFactory, error) {
	fMap := make(map[config.Type]ProcessorFactory, len(factories))
	for _, f := range factories {
		if _, ok := fMap[f.Type()]; ok {
			return nil, fmt.Errorf("duplicate processor factory %q", f.Type())
		}
		fMap[f.Type()] = f
	}
	return fMap, nil
}

// MakeExporterFactoryMap builds the registry map, rejecting duplicate types.
func MakeExporterFactoryMap(factories ...ExporterFactory) (map[config.Type]ExporterFactory, error) {
	fMap := make(map[config.Type]ExporterFactory, len(factories))
	for _, f := range factories {
		if _, ok := fMap[f.Type()]; ok {
			return nil, fmt.Errorf("duplicate exporter factory %q", f.Type())
		}
		fMap[f.Type()] = f
	}
	return fMap, nil
}

// MakeExtensionFactoryMap builds the registry map, rejecting duplicate types.
func MakeExtensionFactoryMap(factories ...ExtensionFactory) (map[config.Type]ExtensionFactory, error) {
	fMap := make(map[config.Type]ExtensionFactory, len(factories))
	for _, f := range factories {
		if _, ok := fMap[f.Type()]; ok {
			return nil, fmt.Errorf("duplicate extension factory %q", f.Type())
		}
		fMap[f.Type()] = f
	}
	return fMap, nil
}
