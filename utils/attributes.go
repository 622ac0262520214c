package utils

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a convenience wrapper for model specific configuration attributes, as decoded
// from a json config file.
type AttributeMap map[string]interface{}

// Has returns whether or not the given name is in the map.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// TransformAttributeMapToStruct uses an attribute map to transform attributes to the prescribed
// format. Keys are matched against the `json` struct tags of `to`.
func TransformAttributeMapToStruct(to interface{}, attributes AttributeMap) (interface{}, error) {
	md := mapstructure.Metadata{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		Metadata:         &md,
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "error decoding attributes")
	}
	if len(md.Unused) > 0 {
		return nil, errors.Errorf("unknown attributes %v", md.Unused)
	}
	return to, nil
}
