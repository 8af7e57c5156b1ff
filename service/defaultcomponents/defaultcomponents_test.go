// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package defaultcomponents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/config"
)

func TestDefaultComponents(t *testing.T) {
	factories, err := Components()
	require.NoError(t, err)

	for _, typ := range []string{"otlp", "prometheusscrape"} {
		factory, ok := factories.Receivers[config.Type(typ)]
		require.True(t, ok, "missing receiver factory %q", typ)
		assert.Equal(t, config.Type(typ), factory.Type())
		assert.Equal(t, config.NewComponentID(config.Type(typ)), factory.CreateDefaultConfig().ID())
	}
	assert.Contains(t, factories.Processors, config.Type("batch"))
	assert.Contains(t, factories.Processors, config.Type("resource"))
	assert.Contains(t, factories.Exporters, config.Type("otlp"))
	assert.Contains(t, factories.Exporters, config.Type("prometheusremotewrite"))
	assert.Contains(t, factories.Extensions, config.Type("health_check"))
}
