// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package model // import "github.com/signalpipe/signalpipe/model"

// TraceIndex resolves parent/child relations across spans that may arrive in
// any order. It keeps an index from span id to span instead of materializing a
// tree: a parent reference is a relation plus a lookup, not ownership, so
// cross-process parents that never arrive stay unresolved without blocking
// ingestion.
type TraceIndex struct {
	spans map[SpanID]*Span
}

// NewTraceIndex creates an empty index.
func NewTraceIndex() *TraceIndex {
	return &TraceIndex{spans: make(map[SpanID]*Span)}
}

// Add registers a span. Spans with an empty id are ignored.
func (ti *TraceIndex) Add(span *Span) {
	if span == nil || span.SpanID.IsEmpty() {
		return
	}
	ti.spans[span.SpanID] = span
}

// Len returns the number of indexed spans.
func (ti *TraceIndex) Len() int {
	return len(ti.spans)
}

// Lookup returns the span with the given id, if observed.
func (ti *TraceIndex) Lookup(id SpanID) (*Span, bool) {
	s, ok := ti.spans[id]
	return s, ok
}

// Parent resolves the parent of the given span lazily. It returns false for
// root spans and for parents that have not been observed yet.
func (ti *TraceIndex) Parent(span *Span) (*Span, bool) {
	if span == nil || span.ParentSpanID.IsEmpty() {
		return nil, false
	}
	return ti.Lookup(span.ParentSpanID)
}

// Roots returns all spans whose parent is absent: either true roots or spans
// whose parent has not arrived.
func (ti *TraceIndex) Roots() []*Span {
	var roots []*Span
	for _, s := range ti.spans {
		if _, ok := ti.Parent(s); !ok {
			roots = append(roots, s)
		}
	}
	return roots
}

// Children returns the observed direct children of the given span id.
func (ti *TraceIndex) Children(id SpanID) []*Span {
	var children []*Span
	for _, s := range ti.spans {
		if s.ParentSpanID == id {
			children = append(children, s)
		}
	}
	return children
}
