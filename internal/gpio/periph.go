package gpio

import (
	"fmt"
	"log"
	"strconv"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphController looks pins up in the periph.io registry after loading
// the host drivers.
type PeriphController struct {
	pins []pgpio.PinIO
}

// NewPeriphController initializes periph.io host drivers.
func NewPeriphController() (*PeriphController, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph.io: %w", err)
	}
	return &PeriphController{}, nil
}

func (c *PeriphController) lookup(pin uint8) (pgpio.PinIO, error) {
	p := gpioreg.ByName(strconv.Itoa(int(pin)))
	if p == nil {
		return nil, fmt.Errorf("no gpio pin %d", pin)
	}
	return p, nil
}

// Output configures pin as an output driven low.
func (c *PeriphController) Output(pin uint8) (OutputPin, error) {
	p, err := c.lookup(pin)
	if err != nil {
		return nil, err
	}
	if err := p.Out(pgpio.Low); err != nil {
		return nil, fmt.Errorf("configure output pin %d: %w", pin, err)
	}
	c.pins = append(c.pins, p)
	return &periphPin{pin: p, mode: ModeOutput}, nil
}

// Bidirectional configures pin as an input without changing its pull.
func (c *PeriphController) Bidirectional(pin uint8) (ModalPin, error) {
	p, err := c.lookup(pin)
	if err != nil {
		return nil, err
	}
	if err := p.In(pgpio.PullNoChange, pgpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure io pin %d: %w", pin, err)
	}
	c.pins = append(c.pins, p)
	return &periphPin{pin: p, mode: ModeInput}, nil
}

// Close reverts all pins to input. periph.io has no per-pin release.
func (c *PeriphController) Close() error {
	var errs []error
	for _, p := range c.pins {
		if err := p.In(pgpio.PullNoChange, pgpio.NoEdge); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", p.Name(), err))
		}
	}
	c.pins = nil
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// periphPin keeps its own output latch since PinOut.Out sets direction
// and level together.
type periphPin struct {
	pin    pgpio.PinIO
	mode   Mode
	level  pgpio.Level
	failed bool
}

func (p *periphPin) SetMode(m Mode) {
	p.mode = m
	if m == ModeOutput {
		p.check(p.pin.Out(p.level))
		return
	}
	p.check(p.pin.In(pgpio.PullNoChange, pgpio.NoEdge))
}

func (p *periphPin) Read() bool { return p.pin.Read() == pgpio.High }

func (p *periphPin) SetHigh() { p.set(pgpio.High) }

func (p *periphPin) SetLow() { p.set(pgpio.Low) }

func (p *periphPin) set(l pgpio.Level) {
	p.level = l
	if p.mode != ModeOutput {
		return
	}
	p.check(p.pin.Out(l))
}

func (p *periphPin) check(err error) {
	if err == nil || p.failed {
		return
	}
	p.failed = true
	log.Printf("gpio: %s: %v", p.pin.Name(), err)
}
