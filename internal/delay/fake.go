package delay

import "time"

// Recorder is a test double that records requested delays without waiting.
type Recorder struct {
	// Waits contains every requested delay in call order.
	Waits []time.Duration
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// DelayUs records a microsecond wait.
func (r *Recorder) DelayUs(us uint16) {
	r.Waits = append(r.Waits, time.Duration(us)*time.Microsecond)
}

// DelayMs records a millisecond wait.
func (r *Recorder) DelayMs(ms uint16) {
	r.Waits = append(r.Waits, time.Duration(ms)*time.Millisecond)
}

// Total returns the sum of all recorded waits.
func (r *Recorder) Total() time.Duration {
	var total time.Duration
	for _, w := range r.Waits {
		total += w
	}
	return total
}

// Reset clears recorded waits.
func (r *Recorder) Reset() {
	r.Waits = nil
}
