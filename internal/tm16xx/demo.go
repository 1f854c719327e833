package tm16xx

import (
	"fmt"
	"strings"
)

// chaseSegments is the number of outer segments (A-F) the chase runs over.
const chaseSegments = 6

// Demo lights the display and polls keys. Every Next advances a single lit
// segment around the digits so a working display is obvious at a glance.
type Demo struct {
	Digits     int
	Brightness byte

	step int
}

// NewDemo returns a demo for a display with the given number of digits.
func NewDemo(digits int) *Demo {
	return &Demo{Digits: digits, Brightness: DefaultBrightness}
}

// Init turns the display on and shows each digit's index.
func (d *Demo) Init(dev Device) error {
	if err := dev.Command(DisplayControl(true, d.Brightness)); err != nil {
		return fmt.Errorf("display on: %w", err)
	}
	if err := dev.Show(Encode(d.indexText(), d.Digits)); err != nil {
		return fmt.Errorf("show digits: %w", err)
	}
	d.step = 0
	return nil
}

// Next shows the next animation frame and reads the keys.
func (d *Demo) Next(dev Device) ([]byte, error) {
	if err := dev.Show(d.Frame()); err != nil {
		return nil, fmt.Errorf("show frame: %w", err)
	}
	d.step++
	return dev.ReadKeys()
}

// Frame returns the segments for the current animation step.
func (d *Demo) Frame() []byte {
	frame := make([]byte, d.Digits)
	if d.Digits == 0 {
		return frame
	}
	pos := d.step % (d.Digits * chaseSegments)
	frame[pos/chaseSegments] = 1 << (pos % chaseSegments)
	return frame
}

func (d *Demo) indexText() string {
	var sb strings.Builder
	for i := 0; i < d.Digits; i++ {
		sb.WriteByte(byte('0' + i%10))
	}
	return sb.String()
}
