// Package gpio provides pin capabilities with hardware abstraction.
// Backends acquire lines from the Linux GPIO character device, /dev/gpiomem
// or periph.io. The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Mode is the direction a bidirectional line is configured for.
type Mode int

const (
	ModeInput Mode = iota
	ModeOutput
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeOutput:
		return "output"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// InputPin senses a logic level.
type InputPin interface {
	IsHigh() bool
	IsLow() bool
}

// OutputPin drives a logic level.
type OutputPin interface {
	SetHigh()
	SetLow()
}

// IOPin can both sense and drive. The TM16xx data line needs this.
type IOPin interface {
	InputPin
	OutputPin
}

// ModalPin is a bidirectional hardware line whose direction is switched
// explicitly. Writes only reach the wire while in ModeOutput.
type ModalPin interface {
	SetMode(m Mode)
	// Read returns the sensed level, true = high.
	Read() bool
	SetHigh()
	SetLow()
}

// Controller hands out lines from a platform pin controller.
// Pin numbers are BCM numbers.
type Controller interface {
	// Output acquires an output-only line, initially low.
	Output(pin uint8) (OutputPin, error)

	// Bidirectional acquires a line that can switch direction, initially input.
	Bidirectional(pin uint8) (ModalPin, error)

	// Close releases every acquired line.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendCdev   = "cdev"
	BackendRpio   = "rpio"
	BackendPeriph = "periph"
)

// DefaultChip is the GPIO character device of the Raspberry Pi header.
const DefaultChip = "gpiochip0"

// Open returns the named pin controller. chip is only used by the cdev backend.
func Open(backend, chip string) (Controller, error) {
	switch backend {
	case BackendCdev, "":
		c, err := NewCdevController(chip)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRpio:
		c, err := NewRpioController()
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendPeriph:
		c, err := NewPeriphController()
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown gpio backend %q", backend)
}
