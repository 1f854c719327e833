//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RpioController drives lines through the memory-mapped GPIO registers
// (/dev/gpiomem). Mode switches are single register writes, which makes this
// the fastest backend for the bit-banged buses.
type RpioController struct {
	pins []rpio.Pin
}

// NewRpioController maps the GPIO registers.
func NewRpioController() (*RpioController, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}
	return &RpioController{}, nil
}

// Output configures pin as an output driven low.
func (c *RpioController) Output(pin uint8) (OutputPin, error) {
	p := rpio.Pin(pin)
	p.Output()
	p.Low()
	c.pins = append(c.pins, p)
	return rpioPin{pin: p}, nil
}

// Bidirectional configures pin as an input.
func (c *RpioController) Bidirectional(pin uint8) (ModalPin, error) {
	p := rpio.Pin(pin)
	p.Input()
	c.pins = append(c.pins, p)
	return rpioPin{pin: p}, nil
}

// Close reverts all pins to input and unmaps the registers.
func (c *RpioController) Close() error {
	for _, p := range c.pins {
		p.Input()
	}
	c.pins = nil
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}

// rpioPin writes go to the output latch regardless of direction, so a level
// set while in input mode is what the line drives once switched to output.
type rpioPin struct {
	pin rpio.Pin
}

func (p rpioPin) SetMode(m Mode) {
	if m == ModeOutput {
		p.pin.Output()
		return
	}
	p.pin.Input()
}

func (p rpioPin) Read() bool { return p.pin.Read() == rpio.High }

func (p rpioPin) SetHigh() { p.pin.High() }

func (p rpioPin) SetLow() { p.pin.Low() }
