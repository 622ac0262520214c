package board

import (
	"go.viam.com/utils"
)

// DigitalInterruptConfig describes the configuration of digital interrupt for a board.
type DigitalInterruptConfig struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
	// Edges closer together than this are treated as contact bounce and dropped.
	DebounceMicros int `json:"debounce_micros,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *DigitalInterruptConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.Pin == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "pin")
	}
	if config.DebounceMicros < 0 {
		return utils.NewConfigValidationError(path, errDebounceNegative)
	}
	return nil
}
