// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package config // import "github.com/signalpipe/signalpipe/config"

import (
	"fmt"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/mitchellh/mapstructure"
)

// KeyDelimiter is used as the default key delimiter in the nested
// configuration map.
const KeyDelimiter = "::"

// Map represents the raw configuration document: a hierarchy of string keys
// loaded from YAML before it is decoded into component configs.
type Map struct {
	k *koanf.Koanf
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{k: koanf.New(KeyDelimiter)}
}

// NewMapFromFile loads a YAML document from the given path.
func NewMapFromFile(fileName string) (*Map, error) {
	m := NewMap()
	if err := m.k.Load(file.Provider(fileName), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("unable to read the file %v: %w", fileName, err)
	}
	return m, nil
}

// NewMapFromStringMap creates a Map from a raw nested map.
func NewMapFromStringMap(data map[string]interface{}) *Map {
	m := NewMap()
	// Cannot fail, the confmap provider never returns an error.
	_ = m.k.Load(confmap.Provider(data, KeyDelimiter), nil)
	return m
}

// ToStringMap returns the nested raw map.
func (m *Map) ToStringMap() map[string]interface{} {
	return m.k.Raw()
}

// IsSet checks if a key exists in the map.
func (m *Map) IsSet(key string) bool {
	return m.k.Exists(key)
}

// UnmarshalExact decodes the map into the given struct, failing on keys the
// struct does not know about. Durations may be given as strings ("10s").
func (m *Map) UnmarshalExact(rawVal interface{}) error {
	return decodeStrict(m.ToStringMap(), rawVal)
}

// Decode decodes a raw component section into its typed config struct with
// the same decoder settings as UnmarshalExact.
func Decode(input interface{}, rawVal interface{}) error {
	return decodeStrict(input, rawVal)
}

func decodeStrict(input interface{}, rawVal interface{}) error {
	dc := &mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      rawVal,
		Metadata:    nil,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}
	decoder, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
