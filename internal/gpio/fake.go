package gpio

import "fmt"

// FakePin is a test double for a GPIO line. It implements ModalPin and
// OutputPin and records every operation.
type FakePin struct {
	// Mode is the current direction.
	Mode Mode

	// Level is the output latch, true = high.
	Level bool

	// ModeChanges counts SetMode calls.
	ModeChanges int

	// Log records operations in order: "input", "output", "high", "low".
	Log []string

	// Input, if set, supplies the sensed level while in ModeInput.
	// A nil Input reads high, as if the line had a pull-up.
	Input func() bool

	// OnWrite, if set, is called after every SetHigh/SetLow.
	OnWrite func(high bool)

	// OnMode, if set, is called after every SetMode.
	OnMode func(m Mode)

	// Closed tracks if the owning controller was closed.
	Closed bool
}

// NewFakePin creates a FakePin in input mode.
func NewFakePin() *FakePin {
	return &FakePin{Mode: ModeInput}
}

// SetMode records a direction change.
func (f *FakePin) SetMode(m Mode) {
	f.Mode = m
	f.ModeChanges++
	f.Log = append(f.Log, m.String())
	if f.OnMode != nil {
		f.OnMode(m)
	}
}

// Read returns the latch in output mode and the sensed level in input mode.
func (f *FakePin) Read() bool {
	if f.Mode == ModeOutput {
		return f.Level
	}
	if f.Input != nil {
		return f.Input()
	}
	return true
}

// IsHigh is Read.
func (f *FakePin) IsHigh() bool { return f.Read() }

// IsLow is !Read.
func (f *FakePin) IsLow() bool { return !f.Read() }

// SetHigh sets the output latch high.
func (f *FakePin) SetHigh() { f.write(true) }

// SetLow sets the output latch low.
func (f *FakePin) SetLow() { f.write(false) }

func (f *FakePin) write(high bool) {
	f.Level = high
	if high {
		f.Log = append(f.Log, "high")
	} else {
		f.Log = append(f.Log, "low")
	}
	if f.OnWrite != nil {
		f.OnWrite(high)
	}
}

// Reset clears recorded operations and counters.
func (f *FakePin) Reset() {
	f.ModeChanges = 0
	f.Log = nil
}

// FakeController hands out FakePins.
type FakeController struct {
	// Pins contains every acquired pin by number.
	Pins map[uint8]*FakePin

	// Fail, if it contains a pin number, makes acquiring that pin fail.
	Fail map[uint8]error

	// Acquired lists pin numbers in acquisition order.
	Acquired []uint8

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeController creates an empty FakeController.
func NewFakeController() *FakeController {
	return &FakeController{
		Pins: make(map[uint8]*FakePin),
		Fail: make(map[uint8]error),
	}
}

// Output acquires pin as an output, initially low.
func (c *FakeController) Output(pin uint8) (OutputPin, error) {
	p, err := c.acquire(pin)
	if err != nil {
		return nil, err
	}
	p.Mode = ModeOutput
	return p, nil
}

// Bidirectional acquires pin in input mode.
func (c *FakeController) Bidirectional(pin uint8) (ModalPin, error) {
	p, err := c.acquire(pin)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *FakeController) acquire(pin uint8) (*FakePin, error) {
	if err := c.Fail[pin]; err != nil {
		return nil, err
	}
	if _, ok := c.Pins[pin]; ok {
		return nil, fmt.Errorf("pin %d already acquired", pin)
	}
	p := NewFakePin()
	c.Pins[pin] = p
	c.Acquired = append(c.Acquired, pin)
	return p, nil
}

// Close marks the controller and all pins as closed.
func (c *FakeController) Close() error {
	c.Closed = true
	for _, p := range c.Pins {
		p.Closed = true
	}
	return nil
}
