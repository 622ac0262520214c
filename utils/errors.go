package utils

import "github.com/pkg/errors"

// NewUnknownModelError is used when a config names a model nothing registered.
func NewUnknownModelError(api, model string) error {
	return errors.Errorf("unknown %s model %q", api, model)
}
