// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package config // import "github.com/signalpipe/signalpipe/config"

import (
	"errors"
	"fmt"
	"strings"
)

// typeAndNameSeparator is the separator between type and name in an id.
const typeAndNameSeparator = "/"

// Type is the component type as it appears in the configuration, e.g. "batch"
// or "otlp". It identifies a factory in the registry.
type Type string

// ComponentID identifies one configured instance of a component: a type plus
// an optional instance name, rendered as "type" or "type/name".
type ComponentID struct {
	typeVal Type
	nameVal string
}

// NewComponentID returns an id without an instance name.
func NewComponentID(typeVal Type) ComponentID {
	return ComponentID{typeVal: typeVal}
}

// NewComponentIDWithName returns an id with an instance name.
func NewComponentIDWithName(typeVal Type, nameVal string) ComponentID {
	return ComponentID{typeVal: typeVal, nameVal: nameVal}
}

// ParseComponentID parses "type" or "type/name". Both parts must be non-empty
// after trimming.
func ParseComponentID(s string) (ComponentID, error) {
	typeStr := s
	nameStr := ""
	if idx := strings.Index(s, typeAndNameSeparator); idx != -1 {
		typeStr = s[:idx]
		nameStr = strings.TrimSpace(s[idx+1:])
		if nameStr == "" {
			return ComponentID{}, fmt.Errorf("id %q: name part must not be empty", s)
		}
	}
	typeStr = strings.TrimSpace(typeStr)
	if typeStr == "" {
		return ComponentID{}, errors.New("id must not be empty")
	}
	return ComponentID{typeVal: Type(typeStr), nameVal: nameStr}, nil
}

// Type returns the component type of the id.
func (id ComponentID) Type() Type {
	return id.typeVal
}

// Name returns the instance name, possibly empty.
func (id ComponentID) Name() string {
	return id.nameVal
}

func (id ComponentID) String() string {
	if id.nameVal == "" {
		return string(id.typeVal)
	}
	return string(id.typeVal) + typeAndNameSeparator + id.nameVal
}
