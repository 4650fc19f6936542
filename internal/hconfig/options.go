package hconfig

import (
	"github.com/go-viper/mapstructure/v2"
)

// DecodeOptions decodes a free-form options map into T. Duration fields
// accept strings like "150ms", unknown keys are rejected.
func DecodeOptions[T any](options map[string]any) (T, error) {
	var out T

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &out,
	})
	if err != nil {
		return out, err
	}

	err = dec.Decode(options)
	if err != nil {
		return out, err
	}

	return out, nil
}
