// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package model // import "github.com/signalpipe/signalpipe/model"

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var errInvalidIDLength = errors.New("id does not have the expected length")

// TraceID is a 128-bit identifier shared by all spans of one logical request.
type TraceID [16]byte

// NewTraceID copies the given bytes into a TraceID.
func NewTraceID(bytes [16]byte) TraceID {
	return TraceID(bytes)
}

// TraceIDFromHex parses a 32-character hex string into a TraceID.
func TraceIDFromHex(s string) (TraceID, error) {
	var id TraceID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != 16 {
		return id, fmt.Errorf("trace id %q: %w", s, errInvalidIDLength)
	}
	copy(id[:], b)
	return id, nil
}

// IsEmpty returns true if the id is all zeros.
func (t TraceID) IsEmpty() bool {
	return t == TraceID{}
}

func (t TraceID) String() string {
	return hex.EncodeToString(t[:])
}

// SpanID is a 64-bit identifier of a single span.
type SpanID [8]byte

// NewSpanID copies the given bytes into a SpanID.
func NewSpanID(bytes [8]byte) SpanID {
	return SpanID(bytes)
}

// SpanIDFromHex parses a 16-character hex string into a SpanID.
func SpanIDFromHex(s string) (SpanID, error) {
	var id SpanID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != 8 {
		return id, fmt.Errorf("span id %q: %w", s, errInvalidIDLength)
	}
	copy(id[:], b)
	return id, nil
}

// IsEmpty returns true if the id is all zeros.
func (s SpanID) IsEmpty() bool {
	return s == SpanID{}
}

func (s SpanID) String() string {
	return hex.EncodeToString(s[:])
}
