// Package status provides a thread-safe status tracker for the key-scan demo.
// It is read by the HTTP handlers and the MQTT startup/shutdown snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/tm16xx-scan/internal/logic"
)

// Pins records which GPIO lines the demo drives. STB is nil for 2-wire chips.
type Pins struct {
	CLK uint8
	DIO uint8
	STB *uint8
}

// Config contains demo configuration for display.
type Config struct {
	Variant     string // "2-wire" or "3-wire"
	Chip        string // "TM1637" or "TM1638"
	Backend     string
	Pins        Pins
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of demo state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	InitResult    string // "" until init ran, then "ok" or the error text
	LastFrame     logic.Frame
	LastChange    time.Time // poll time of the last reported change; zero if none
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the demo started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable demo state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetInit records the outcome of display initialisation.
func (t *Tracker) SetInit(err error) {
	result := "ok"
	if err != nil {
		result = err.Error()
	}
	t.mu.Lock()
	t.snap.InitResult = result
	t.mu.Unlock()
}

// Update sets the detector's current frame and poll counters.
// Called from the runner after every poll. It never moves LastChange.
func (t *Tracker) Update(last logic.Frame, counts logic.Counts) {
	t.mu.Lock()
	t.snap.LastFrame = append(logic.Frame(nil), last...)
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordChange stamps LastChange with the time of a reported key change.
func (t *Tracker) RecordChange(event logic.Event) {
	t.mu.Lock()
	t.snap.LastFrame = append(logic.Frame(nil), event.Frame...)
	t.snap.LastChange = event.Timestamp
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the demo state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.LastFrame = append(logic.Frame(nil), t.snap.LastFrame...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
