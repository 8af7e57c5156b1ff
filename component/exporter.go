// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import (
	"context"

	"github.com/signalpipe/signalpipe/config"
)

// ExporterFactory creates exporters of one type.
//
// Use NewExporterFactory to implement it.
type ExporterFactory interface {
	// Type returns the type name the factory registers under.
	Type() config.Type

	// CreateDefaultConfig creates the default configuration for the exporter.
	CreateDefaultConfig() config.Exporter

	// CreateExporter creates an exporter. An exporter instance may be shared
	// by several pipelines.
	CreateExporter(ctx context.Context, set CreateSettings, cfg config.Exporter) (Exporter, error)
}

// CreateDefaultExporterConfigFunc is the functional counterpart of
// ExporterFactory.CreateDefaultConfig.
type CreateDefaultExporterConfigFunc func() config.Exporter

// CreateExporterFunc is the functional counterpart of
// ExporterFactory.CreateExporter.
type CreateExporterFunc func(ctx context.Context, set CreateSettings, cfg config.Exporter) (Exporter, error)

type exporterFactory struct {
	cfgType       config.Type
	createDefault CreateDefaultExporterConfigFunc
	create        CreateExporterFunc
}

func (f *exporterFactory) Type() config.Type {
	return f.cfgType
}

func (f *exporterFactory) CreateDefaultConfig() config.Exporter {
	return f.createDefault()
}

func (f *exporterFactory) CreateExporter(ctx context.Context, set CreateSettings, cfg config.Exporter) (Exporter, error) {
	return f.create(ctx, set, cfg)
}

// NewExporterFactory returns an ExporterFactory built from the given
// functions.
func NewExporterFactory(cfgType config.Type, createDefault CreateDefaultExporterConfigFunc, create CreateExporterFunc) ExporterFactory {
	return &exporterFactory{cfgType: cfgType, createDefault: createDefault, create: create}
}
