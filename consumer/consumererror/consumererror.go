// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package consumererror classifies errors that flow upstream through a
// pipeline. The retry layer keys its behavior off this classification:
// permanent errors are never retried, resource-exhaustion errors turn into
// backpressure at the receiver, everything else is considered transient.
package consumererror // import "github.com/signalpipe/signalpipe/consumer/consumererror"

import (
	"errors"
	"time"
)

type permanent struct {
	err error
}

func (p permanent) Error() string {
	return "Permanent error: " + p.err.Error()
}

func (p permanent) Unwrap() error {
	return p.err
}

// NewPermanent wraps an error to indicate that retrying cannot help: the
// payload itself is at fault (encoding error, rejected 4xx).
func NewPermanent(err error) error {
	return permanent{err: err}
}

// IsPermanent checks if an error was wrapped with NewPermanent anywhere in its
// chain.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var p permanent
	return errors.As(err, &p)
}

type resourceExhausted struct {
	err error
}

func (r resourceExhausted) Error() string {
	return "Resource exhausted: " + r.err.Error()
}

func (r resourceExhausted) Unwrap() error {
	return r.err
}

// NewResourceExhausted wraps an error to indicate that a bounded queue or
// buffer is full and the caller should slow down or reject new input.
func NewResourceExhausted(err error) error {
	return resourceExhausted{err: err}
}

// IsResourceExhausted checks if an error was wrapped with NewResourceExhausted
// anywhere in its chain.
func IsResourceExhausted(err error) bool {
	if err == nil {
		return false
	}
	var r resourceExhausted
	return errors.As(err, &r)
}

type throttle struct {
	err   error
	delay time.Duration
}

func (t throttle) Error() string {
	return "Throttled (retry after " + t.delay.String() + "): " + t.err.Error()
}

func (t throttle) Unwrap() error {
	return t.err
}

// NewThrottleRetry wraps a retryable error with a minimum delay the backend
// asked for, e.g. from a Retry-After header.
func NewThrottleRetry(err error, delay time.Duration) error {
	return throttle{err: err, delay: delay}
}

// ThrottleDelay extracts the backend-requested delay, if any.
func ThrottleDelay(err error) (time.Duration, bool) {
	var t throttle
	if errors.As(err, &t) {
		return t.delay, true
	}
	return 0, false
}
