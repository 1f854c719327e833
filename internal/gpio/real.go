//go:build linux

package gpio

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "tm16xx-scan"

// CdevController acquires lines from the Linux GPIO character device.
type CdevController struct {
	chip  *gpiocdev.Chip
	lines []*cdevLine
}

// NewCdevController opens the named GPIO chip, e.g. "gpiochip0".
func NewCdevController(chip string) (*CdevController, error) {
	if chip == "" {
		chip = DefaultChip
	}
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}
	return &CdevController{chip: c}, nil
}

// Output requests pin as an output driven low.
func (c *CdevController) Output(pin uint8) (OutputPin, error) {
	l, err := c.chip.RequestLine(int(pin), gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	line := &cdevLine{line: l, pin: pin, mode: ModeOutput}
	c.lines = append(c.lines, line)
	return line, nil
}

// Bidirectional requests pin as an input with the bias left to the board.
func (c *CdevController) Bidirectional(pin uint8) (ModalPin, error) {
	l, err := c.chip.RequestLine(int(pin), gpiocdev.AsInput)
	if err != nil {
		return nil, fmt.Errorf("request io pin %d: %w", pin, err)
	}
	line := &cdevLine{line: l, pin: pin, mode: ModeInput}
	c.lines = append(c.lines, line)
	return line, nil
}

// Close reverts every line to input before releasing it, so nothing is left
// driving the bus after exit.
func (c *CdevController) Close() error {
	var errs []error

	for _, l := range c.lines {
		if err := l.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", l.pin, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", l.pin, err))
		}
	}
	c.lines = nil
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// cdevLine adapts a requested line to ModalPin. level is the output latch;
// it is applied when the line is switched to output.
type cdevLine struct {
	line   *gpiocdev.Line
	pin    uint8
	mode   Mode
	level  int
	failed bool
}

func (l *cdevLine) SetMode(m Mode) {
	var err error
	if m == ModeOutput {
		err = l.line.Reconfigure(gpiocdev.AsOutput(l.level))
	} else {
		err = l.line.Reconfigure(gpiocdev.AsInput)
	}
	l.mode = m
	l.check(err)
}

func (l *cdevLine) Read() bool {
	v, err := l.line.Value()
	l.check(err)
	return v == 1
}

func (l *cdevLine) SetHigh() { l.set(1) }

func (l *cdevLine) SetLow() { l.set(0) }

func (l *cdevLine) set(v int) {
	l.level = v
	if l.mode != ModeOutput {
		return
	}
	l.check(l.line.SetValue(v))
}

// check logs the first failure on a line. Once acquired, a line only fails
// if the chip disappears; the protocol layer sees that as a NACK.
func (l *cdevLine) check(err error) {
	if err == nil || l.failed {
		return
	}
	l.failed = true
	log.Printf("gpio: pin %d: %v", l.pin, err)
}
