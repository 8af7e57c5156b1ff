// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds small helpers shared by component tests.
package testutil // import "github.com/signalpipe/signalpipe/internal/testutil"

import (
	"net"
	"testing"
)

// GetAvailableLocalAddress finds a free local TCP address to listen on.
// The port is released before returning, a parallel test could in principle
// grab it, which is acceptable for tests.
func GetAvailableLocalAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("failed to find an available address: %v", err)
	}
	defer ln.Close()
	return ln.Addr().String()
}
