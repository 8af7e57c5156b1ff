// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package remotewriteexporter // import "github.com/signalpipe/signalpipe/exporter/remotewriteexporter"

import (
	"context"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/confighttp"
	"github.com/signalpipe/signalpipe/exporter/exporterhelper"
)

const typeStr = "prometheusremotewrite"

// NewFactory creates the factory for the Prometheus remote write exporter.
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
	rwCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	prwe, err := newExporter(rwCfg, set)
	if err != nil {
		return nil, err
	}
	return exporterhelper.NewExporter(cfg, set, prwe.pushRecords,
		exporterhelper.WithTimeout(exporterhelper.TimeoutSettings{Timeout: rwCfg.Timeout}),
		exporterhelper.WithRetry(rwCfg.RetrySettings),
		exporterhelper.WithQueue(rwCfg.QueueSettings),
		exporterhelper.WithStart(prwe.start),
	)
}
