// Package logic contains pure key-scan change detection.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Frame is one key-scan snapshot as read from the chip.
type Frame []byte

// Equal reports whether f and o hold the same bytes.
func (f Frame) Equal(o Frame) bool {
	return bytes.Equal(f, o)
}

// String renders each byte as two binary nibbles, e.g. "0001_0010",
// joined with ", ".
func (f Frame) String() string {
	parts := make([]string, len(f))
	for i, b := range f {
		parts[i] = fmt.Sprintf("%04b_%04b", b>>4, b&0x0f)
	}
	return strings.Join(parts, ", ")
}

// Input represents the outcome of a single poll.
type Input struct {
	Frame Frame
	Err   error // non-nil if the poll failed; Frame is ignored
	Time  time.Time
}

// Event represents a key-scan change to be reported.
type Event struct {
	Timestamp time.Time
	Frame     Frame
	Previous  Frame
}

// Counts tracks poll outcomes since startup.
type Counts struct {
	Polls   int
	Changes int
	Errors  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
