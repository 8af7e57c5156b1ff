// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package componenttest // import "github.com/signalpipe/signalpipe/component/componenttest"

import (
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
)

// NewNopTelemetrySettings returns TelemetrySettings with a no-op logger, for
// use in tests.
func NewNopTelemetrySettings() component.TelemetrySettings {
	return component.TelemetrySettings{
		Logger: zap.NewNop(),
	}
}
