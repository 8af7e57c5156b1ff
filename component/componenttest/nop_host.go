// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package componenttest provides hosts used in tests of components.
package componenttest // import "github.com/signalpipe/signalpipe/component/componenttest"

import (
	"sync"

	"github.com/signalpipe/signalpipe/component"
)

type nopHost struct{}

func (nopHost) ReportFatalError(error) {}

// NewNopHost returns a Host that ignores all events.
func NewNopHost() component.Host {
	return nopHost{}
}

// ErrorHost records fatal errors reported by components under test.
type ErrorHost struct {
	mu   sync.Mutex
	errs []error
}

var _ component.Host = (*ErrorHost)(nil)

// NewErrorHost returns an empty ErrorHost.
func NewErrorHost() *ErrorHost {
	return &ErrorHost{}
}

func (h *ErrorHost) ReportFatalError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

// Errors returns the fatal errors reported so far.
func (h *ErrorHost) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}
