// Package tm16xx drives TM1637 (2-wire) and TM1638 (3-wire) LED and key-scan
// controllers over bit-banged GPIO lines.
package tm16xx

import "errors"

// Commands shared by both chips.
const (
	CmdDataWrite   byte = 0x40 // Data command: write display registers, auto-increment address
	CmdKeyRead     byte = 0x42 // Data command: read key-scan data
	CmdDisplayBase byte = 0x80 // Display control; bit 3 = on, bits 0-2 = brightness
	CmdAddressBase byte = 0xC0 // Address command for register 0

	displayOn byte = 0x08

	MaxBrightness     byte = 7
	DefaultBrightness byte = 2
)

// Minimum half-period of each bus, in microseconds.
const (
	TM1637BusDelayUs uint16 = 10
	TM1638BusDelayUs uint16 = 1
)

var (
	// ErrAck is returned when the TM1637 does not pull DIO low on the ninth clock.
	ErrAck = errors.New("tm16xx: no acknowledge")

	// ErrBus is returned when DIO reads low while released before a frame,
	// meaning something else is holding the line.
	ErrBus = errors.New("tm16xx: bus held low")
)

// Device is one chip on its bus.
type Device interface {
	// Command sends a single command byte in its own frame.
	Command(cmd byte) error

	// Show writes one segment byte per digit starting at digit 0.
	Show(segments []byte) error

	// ReadKeys returns the raw key-scan frame: 1 byte for the TM1637,
	// 4 bytes for the TM1638.
	ReadKeys() ([]byte, error)
}

// DisplayControl returns the display control command for the given state.
// Brightness above MaxBrightness is clamped.
func DisplayControl(on bool, brightness byte) byte {
	if brightness > MaxBrightness {
		brightness = MaxBrightness
	}
	cmd := CmdDisplayBase | brightness
	if on {
		cmd |= displayOn
	}
	return cmd
}
