// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import "github.com/google/uuid"

// BuildInfo describes the collector binary for informational purposes.
type BuildInfo struct {
	// Command is the executable name.
	Command string

	// Description is a human readable one-liner.
	Description string

	// Version of the binary.
	Version string

	// InstanceID uniquely identifies this process run.
	InstanceID string
}

// NewDefaultBuildInfo returns the build information of a development build
// with a fresh instance id.
func NewDefaultBuildInfo() BuildInfo {
	return BuildInfo{
		Command:     "signalpipe",
		Description: "SignalPipe telemetry collector",
		Version:     "latest",
		InstanceID:  uuid.NewString(),
	}
}
