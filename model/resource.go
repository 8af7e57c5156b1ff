// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package model // import "github.com/signalpipe/signalpipe/model"

import "sort"

// Resource describes the origin of a batch of records: host, service name,
// environment and similar attributes. A Resource is immutable once created and
// is shared by reference across all records from one origin. Extending a
// Resource produces a new value, existing keys are never overwritten.
type Resource struct {
	attrs map[string]string
}

var emptyResource = &Resource{}

// NewResource creates a Resource from the given attributes. The map is copied.
func NewResource(attrs map[string]string) *Resource {
	if len(attrs) == 0 {
		return emptyResource
	}
	c := make(map[string]string, len(attrs))
	for k, v := range attrs {
		c[k] = v
	}
	return &Resource{attrs: c}
}

// EmptyResource returns the shared Resource with no attributes.
func EmptyResource() *Resource {
	return emptyResource
}

// Get returns the value of the attribute with the given key.
func (r *Resource) Get(key string) (string, bool) {
	v, ok := r.attrs[key]
	return v, ok
}

// Len returns the number of attributes.
func (r *Resource) Len() int {
	return len(r.attrs)
}

// Keys returns the attribute keys in sorted order.
func (r *Resource) Keys() []string {
	keys := make([]string, 0, len(r.attrs))
	for k := range r.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Attributes returns a copy of the attribute map.
func (r *Resource) Attributes() map[string]string {
	c := make(map[string]string, len(r.attrs))
	for k, v := range r.attrs {
		c[k] = v
	}
	return c
}

// Merge returns a Resource extended with the given attributes. Keys already
// present keep their value: attributes attached earlier always win. The
// receiver is returned unchanged when the merge adds nothing.
func (r *Resource) Merge(attrs map[string]string) *Resource {
	added := 0
	for k := range attrs {
		if _, ok := r.attrs[k]; !ok {
			added++
		}
	}
	if added == 0 {
		return r
	}
	merged := make(map[string]string, len(r.attrs)+added)
	for k, v := range r.attrs {
		merged[k] = v
	}
	for k, v := range attrs {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return &Resource{attrs: merged}
}
