package logic

import "time"

// Detector remembers the last reported frame and detects changes.
type Detector struct {
	last          Frame
	startTime     time.Time
	counts        Counts
	lastHeartbeat time.Time
}

// NewDetector creates a detector whose last reported frame is initial.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(initial Frame, startTime time.Time) *Detector {
	return &Detector{
		last:          append(Frame(nil), initial...),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a poll result and returns an event if the frame differs from
// the last reported one. Failed polls are counted and never change the
// last frame.
func (d *Detector) Process(input Input) *Event {
	d.counts.Polls++

	if input.Err != nil {
		d.counts.Errors++
		return nil
	}

	if input.Frame.Equal(d.last) {
		return nil
	}

	event := &Event{
		Timestamp: input.Time,
		Frame:     append(Frame(nil), input.Frame...),
		Previous:  d.last,
	}
	d.last = event.Frame
	d.counts.Changes++
	return event
}

// Last returns a copy of the last reported frame.
func (d *Detector) Last() Frame {
	return append(Frame(nil), d.last...)
}

// Counts returns poll counters since startup.
func (d *Detector) Counts() Counts {
	return d.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.counts,
	}
}
