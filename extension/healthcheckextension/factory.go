// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package healthcheckextension // import "github.com/signalpipe/signalpipe/extension/healthcheckextension"

import (
	"context"
	"fmt"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/confighttp"
)

const (
	typeStr = "health_check"

	defaultEndpoint = "0.0.0.0:13133"
	defaultPath     = "/"
)

// NewFactory creates the factory for the health check extension.
func NewFactory() component.ExtensionFactory {
	return component.NewExtensionFactory(typeStr, createDefaultConfig, createExtension)
}

func createDefaultConfig() config.Extension {
	return &Config{
		ExtensionSettings: config.NewExtensionSettings(config.NewComponentID(typeStr)),
		HTTPServerSettings: confighttp.HTTPServerSettings{
			Endpoint: defaultEndpoint,
		},
		Path: defaultPath,
	}
}

func createExtension(_ context.Context, set component.CreateSettings, cfg config.Extension) (component.Extension, error) {
	hCfg, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	return newExtension(hCfg, set), nil
}
