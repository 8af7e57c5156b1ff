// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package otlpexporter // import "github.com/signalpipe/signalpipe/exporter/otlpexporter"

import (
	"context"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/confighttp"
	"github.com/signalpipe/signalpipe/exporter/exporterhelper"
)

const typeStr = "otlp"

// NewFactory creates the factory for the OTLP-style HTTP exporter.
func NewFactory() component.ExporterFactory {
	return component.NewExporterFactory(typeStr, createDefaultConfig, createExporter)
}

func createDefaultConfig() config.Exporter {
	return &Config{
		ExporterSettings: config.NewExporterSettings(config.NewComponentID(typeStr)),
		HTTPClientSettings: confighttp.HTTPClientSettings{
			Timeout: 30 * time.Second,
		},
		RetrySettings: exporterhelper.NewDefaultRetrySettings(),
		QueueSettings: exporterhelper.NewDefaultQueueSettings(),
	}
}

func createExporter(_ context.Context, set component.CreateSettings, cfg config.Exporter) (component.Exporter, error) {
	oCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	oce, err := newExporter(oCfg, set)
	if err != nil {
		return nil, err
	}
	return exporterhelper.NewExporter(cfg, set, oce.pushRecords,
		exporterhelper.WithTimeout(exporterhelper.TimeoutSettings{Timeout: oCfg.Timeout}),
		exporterhelper.WithRetry(oCfg.RetrySettings),
		exporterhelper.WithQueue(oCfg.QueueSettings),
		exporterhelper.WithStart(oce.start),
	)
}
