//go:build !linux

package gpio

import "errors"

// CdevController is not available on non-Linux platforms.
type CdevController struct{}

// NewCdevController returns an error on non-Linux platforms.
func NewCdevController(chip string) (*CdevController, error) {
	return nil, errors.New("gpio: character device not supported on this platform (requires Linux)")
}

// Output is not implemented on non-Linux platforms.
func (c *CdevController) Output(pin uint8) (OutputPin, error) {
	return nil, errors.New("gpio: not supported")
}

// Bidirectional is not implemented on non-Linux platforms.
func (c *CdevController) Bidirectional(pin uint8) (ModalPin, error) {
	return nil, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (c *CdevController) Close() error {
	return nil
}

// RpioController is not available on non-Linux platforms.
type RpioController struct{}

// NewRpioController returns an error on non-Linux platforms.
func NewRpioController() (*RpioController, error) {
	return nil, errors.New("gpio: /dev/gpiomem not supported on this platform (requires Linux)")
}

// Output is not implemented on non-Linux platforms.
func (c *RpioController) Output(pin uint8) (OutputPin, error) {
	return nil, errors.New("gpio: not supported")
}

// Bidirectional is not implemented on non-Linux platforms.
func (c *RpioController) Bidirectional(pin uint8) (ModalPin, error) {
	return nil, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (c *RpioController) Close() error {
	return nil
}
