// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package configunmarshaler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/exporter/otlpexporter"
	"github.com/signalpipe/signalpipe/model"
	"github.com/signalpipe/signalpipe/processor/batchprocessor"
	"github.com/signalpipe/signalpipe/processor/resourceprocessor"
	"github.com/signalpipe/signalpipe/receiver/scrapereceiver"
	"github.com/signalpipe/signalpipe/service/defaultcomponents"
)

func testFactories(t *testing.T) component.Factories {
	factories, err := defaultcomponents.Components()
	require.NoError(t, err)
	return factories
}

func loadMap(t *testing.T, name string) *config.Map {
	m, err := config.NewMapFromFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return m
}

func TestUnmarshal(t *testing.T) {
	cfg, err := Unmarshal(loadMap(t, "valid.yaml"), testFactories(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Receivers, 2)
	scrapeCfg := cfg.Receivers[config.NewComponentID("prometheusscrape")].(*scrapereceiver.Config)
	assert.Equal(t, 15*time.Second, scrapeCfg.CollectionInterval)
	assert.Equal(t, []string{"http://localhost:9100/metrics"}, scrapeCfg.Targets)
	assert.Equal(t, map[string]string{"env": "staging"}, scrapeCfg.Labels)

	batchCfg := cfg.Processors[config.NewComponentID("batch")].(*batchprocessor.Config)
	assert.Equal(t, uint32(512), batchCfg.SendBatchSize)
	assert.Equal(t, 2*time.Second, batchCfg.Timeout)

	resCfg := cfg.Processors[config.NewComponentID("resource")].(*resourceprocessor.Config)
	assert.Equal(t, []string{"env", "system"}, resCfg.Detectors)
	assert.Equal(t, map[string]string{"service.namespace": "shop"}, resCfg.Attributes)

	expID := config.NewComponentIDWithName("otlp", "primary")
	expCfg := cfg.Exporters[expID].(*otlpexporter.Config)
	assert.Equal(t, expID, expCfg.ID())
	assert.Equal(t, "https://collector.example.com:4318", expCfg.Endpoint)
	assert.Equal(t, map[string]string{"x-tenant": "shop"}, expCfg.Headers)

	require.Len(t, cfg.Service.Pipelines, 2)
	scraped := cfg.Service.Pipelines["metrics/scraped"]
	require.NotNil(t, scraped)
	assert.Equal(t, model.MetricsSignal, scraped.Signal)
	assert.Equal(t, []config.ComponentID{
		config.NewComponentID("resource"),
		config.NewComponentID("batch"),
	}, scraped.Processors)
	assert.Equal(t, []config.ComponentID{config.NewComponentID("health_check")}, cfg.Service.Extensions)
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{
			name: "unknown_receiver_type",
			raw: map[string]interface{}{
				"receivers": map[string]interface{}{"zipkin": nil},
			},
		},
		{
			name: "unknown_processor_type",
			raw: map[string]interface{}{
				"processors": map[string]interface{}{"sampling": nil},
			},
		},
		{
			name: "unknown_exporter_type",
			raw: map[string]interface{}{
				"exporters": map[string]interface{}{"kafka": nil},
			},
		},
		{
			name: "unknown_extension_type",
			raw: map[string]interface{}{
				"extensions": map[string]interface{}{"zpages": nil},
			},
		},
		{
			name: "unknown_component_field",
			raw: map[string]interface{}{
				"receivers": map[string]interface{}{
					"otlp": map[string]interface{}{"portt": 1234},
				},
			},
		},
		{
			name: "unknown_pipeline_signal",
			raw: map[string]interface{}{
				"service": map[string]interface{}{
					"pipelines": map[string]interface{}{
						"profiles": map[string]interface{}{},
					},
				},
			},
		},
		{
			name: "invalid_component_id",
			raw: map[string]interface{}{
				"receivers": map[string]interface{}{"otlp/": nil},
			},
		},
		{
			name: "unknown_top_level_section",
			raw: map[string]interface{}{
				"connectors": map[string]interface{}{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(config.NewMapFromStringMap(tt.raw), testFactories(t))
			assert.Error(t, err)
		})
	}
}
