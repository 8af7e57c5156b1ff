// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package defaultcomponents registers the component factories shipped in the
// default build of the collector.
package defaultcomponents // import "github.com/signalpipe/signalpipe/service/defaultcomponents"

import (
	"go.uber.org/multierr"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/exporter/otlpexporter"
	"github.com/signalpipe/signalpipe/exporter/remotewriteexporter"
	"github.com/signalpipe/signalpipe/extension/healthcheckextension"
	"github.com/signalpipe/signalpipe/processor/batchprocessor"
	"github.com/signalpipe/signalpipe/processor/resourceprocessor"
	"github.com/signalpipe/signalpipe/receiver/otlpreceiver"
	"github.com/signalpipe/signalpipe/receiver/scrapereceiver"
)

// Components returns the factories of all default components.
func Components() (component.Factories, error) {
	var errs error

	receivers, err := component.MakeReceiverFactoryMap(
		otlpreceiver.NewFactory(),
		scrapereceiver.NewFactory(),
	)
	errs = multierr.Append(errs, err)

	processors, err := component.MakeProcessorFactoryMap(
		batchprocessor.NewFactory(),
		resourceprocessor.NewFactory(),
	)
	errs = multierr.Append(errs, err)

	exporters, err := component.MakeExporterFactoryMap(
		otlpexporter.NewFactory(),
		remotewriteexporter.NewFactory(),
	)
	errs = multierr.Append(errs, err)

	extensions, err := component.MakeExtensionFactoryMap(
		healthcheckextension.NewFactory(),
	)
	errs = multierr.Append(errs, err)

	return component.Factories{
		Receivers:  receivers,
		Processors: processors,
		Exporters:  exporters,
		Extensions: extensions,
	}, errs
}
