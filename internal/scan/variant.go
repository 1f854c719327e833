// Package scan runs the key-scan demo: it initialises a TM16xx display, polls
// its keys and reports every change.
package scan

import (
	"fmt"
	"time"

	"github.com/sweeney/tm16xx-scan/internal/tm16xx"
)

// Variant describes one supported chip wiring.
type Variant struct {
	Name       string // "2-wire" or "3-wire"
	Chip       string
	Wires      int
	Digits     int
	FrameSize  int // bytes returned by one key read
	Poll       time.Duration
	BusDelayUs uint16
}

// TwoWire is a TM1637 on CLK and DIO.
var TwoWire = Variant{
	Name:       "2-wire",
	Chip:       "TM1637",
	Wires:      2,
	Digits:     4,
	FrameSize:  1,
	Poll:       75 * time.Millisecond,
	BusDelayUs: tm16xx.TM1637BusDelayUs,
}

// ThreeWire is a TM1638 on CLK, DIO and STB.
var ThreeWire = Variant{
	Name:       "3-wire",
	Chip:       "TM1638",
	Wires:      3,
	Digits:     8,
	FrameSize:  4,
	Poll:       100 * time.Millisecond,
	BusDelayUs: tm16xx.TM1638BusDelayUs,
}

// Banner is the line printed before the demo starts.
func (v Variant) Banner() string {
	return fmt.Sprintf("Starting %d wire demo (%s)", v.Wires, v.Chip)
}
