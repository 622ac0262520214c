package genericlinux

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/chipurobo/rdk/components/board"
)

// DefaultGPIOChip is the character device that numbered pins resolve against. On a Raspberry Pi
// its line offsets are the BCM pin numbers.
const DefaultGPIOChip = "/dev/gpiochip0"

// A Config describes the configuration of a board and all of its connected parts.
type Config struct {
	// GPIOChip is used for pins given by number that have no entry in Pins.
	GPIOChip          string                         `json:"gpio_chip,omitempty"`
	Pins              map[string]GPIOBoardMapping    `json:"pins,omitempty"`
	DigitalInterrupts []board.DigitalInterruptConfig `json:"digital_interrupts,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for name, m := range conf.Pins {
		if err := m.Validate(fmt.Sprintf("%s.%s.%s", path, "pins", name)); err != nil {
			return err
		}
	}
	for idx, c := range conf.DigitalInterrupts {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "digital_interrupts", idx)); err != nil {
			return err
		}
	}
	return nil
}

// Mapping returns where the named pin lives. Names with an entry in Pins use it; bare line
// numbers resolve against GPIOChip.
func (conf *Config) Mapping(name string) (GPIOBoardMapping, error) {
	if m, ok := conf.Pins[name]; ok {
		if m.GPIOChipDev == "" {
			m.GPIOChipDev = conf.chip()
		}
		return m, nil
	}
	line, err := strconv.Atoi(name)
	if err != nil || line < 0 {
		return GPIOBoardMapping{}, errors.Errorf("unknown pin %q", name)
	}
	return GPIOBoardMapping{GPIOChipDev: conf.chip(), GPIO: line}, nil
}

func (conf *Config) chip() string {
	if conf.GPIOChip == "" {
		return DefaultGPIOChip
	}
	return conf.GPIOChip
}

// GPIOBoardMapping represents a GPIO pin's location locally within a GPIO chip.
type GPIOBoardMapping struct {
	GPIOChipDev string `json:"chip,omitempty"`
	GPIO        int    `json:"line"`
}

// Validate ensures the mapping points at a real line.
func (m GPIOBoardMapping) Validate(path string) error {
	if m.GPIO < 0 {
		return utils.NewConfigValidationError(path, errors.New("line cannot be negative"))
	}
	return nil
}
