// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import (
	"context"

	"github.com/signalpipe/signalpipe/config"
)

// ExtensionFactory creates extensions of one type.
//
// Use NewExtensionFactory to implement it.
type ExtensionFactory interface {
	// Type returns the type name the factory registers under.
	Type() config.Type

	// CreateDefaultConfig creates the default configuration for the extension.
	CreateDefaultConfig() config.Extension

	// CreateExtension creates the extension.
	CreateExtension(ctx context.Context, set CreateSettings, cfg config.Extension) (Extension, error)
}

// CreateDefaultExtensionConfigFunc is the functional counterpart of
// ExtensionFactory.CreateDefaultConfig.
type CreateDefaultExtensionConfigFunc func() config.Extension

// CreateExtensionFunc is the functional counterpart of
// ExtensionFactory.CreateExtension.
type CreateExtensionFunc func(ctx context.Context, set CreateSettings, cfg config.Extension) (Extension, error)

type extensionFactory struct {
	cfgType       config.Type
	createDefault CreateDefaultExtensionConfigFunc
	create        CreateExtensionFunc
}

func (f *extensionFactory) Type() config.Type {
	return f.cfgType
}

func (f *extensionFactory) CreateDefaultConfig() config.Extension {
	return f.createDefault()
}

func (f *extensionFactory) CreateExtension(ctx context.Context, set CreateSettings, cfg config.Extension) (Extension, error) {
	return f.create(ctx, set, cfg)
}

// NewExtensionFactory returns an ExtensionFactory built from the given
// functions.
func NewExtensionFactory(cfgType config.Type, createDefault CreateDefaultExtensionConfigFunc, create CreateExtensionFunc) ExtensionFactory {
	return &extensionFactory{cfgType: cfgType, createDefault: createDefault, create: create}
}
