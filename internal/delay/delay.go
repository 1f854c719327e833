// Package delay provides blocking waits accurate enough for bit-banged buses.
// time.Sleep on a general purpose kernel overshoots by tens of microseconds,
// so the tail of every wait is spent in a busy loop.
package delay

import "time"

// DefaultNativeThreshold is the portion of a wait that is always spun.
const DefaultNativeThreshold = time.Millisecond

// Delayer blocks the calling goroutine for at least the requested time.
type Delayer interface {
	DelayUs(us uint16)
	DelayMs(ms uint16)
}

// Spin sleeps natively for the bulk of long waits and spins the rest.
// The zero value spins every wait in full.
type Spin struct {
	// NativeThreshold is how much of each wait is spun. Waits shorter than
	// this never touch the scheduler.
	NativeThreshold time.Duration

	spin  func(time.Duration) // nil means busyWait
	sleep func(time.Duration) // nil means time.Sleep
}

// NewSpin returns a Spin using DefaultNativeThreshold.
func NewSpin() *Spin {
	return &Spin{NativeThreshold: DefaultNativeThreshold}
}

// DelayUs waits at least us microseconds.
func (s *Spin) DelayUs(us uint16) {
	s.wait(time.Duration(us) * time.Microsecond)
}

// DelayMs waits at least ms milliseconds.
func (s *Spin) DelayMs(ms uint16) {
	s.wait(time.Duration(ms) * time.Millisecond)
}

func (s *Spin) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	spin, sleep := s.spin, s.sleep
	if spin == nil {
		spin = busyWait
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	deadline := time.Now().Add(d)
	if d > s.NativeThreshold {
		sleep(d - s.NativeThreshold)
	}
	if rest := time.Until(deadline); rest > 0 {
		spin(rest)
	}
}

// busyWait burns CPU on the calling goroutine until d has elapsed. It never
// enters a kernel sleep.
func busyWait(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}
