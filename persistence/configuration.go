package persistence

import (
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"

	"github.com/wasmflow/wasmflow/types"
)

// Flatten normalizes a typed configuration value (a plain struct, as a
// caller building a node programmatically might supply) into the generic
// types.Configuration map the save format actually persists. Fields tagged
// `structs:"-"` are dropped (GraphNode tags its memoization fields that
// way); the node encoder itself copies fields explicitly and does not go
// through Flatten.
func Flatten(v any) types.Configuration {
	if v == nil {
		return nil
	}
	if cfg, ok := v.(types.Configuration); ok {
		return cfg
	}
	if m, ok := v.(map[string]any); ok {
		return types.Configuration(m)
	}
	return types.Configuration(structs.Map(v))
}

// DecodeConfiguration decodes a node's generic Configuration map into a
// caller-supplied typed struct, used by components that declare a typed
// configuration shape instead of reading the map directly.
func DecodeConfiguration(cfg types.Configuration, out any) error {
	if cfg == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return types.WrapError(types.ErrInvalidFormat, "build configuration decoder", err)
	}
	if err := dec.Decode(map[string]any(cfg)); err != nil {
		return types.WrapError(types.ErrInvalidFormat, "decode configuration", err)
	}
	return nil
}
