package mqtt

import (
	"github.com/sweeney/tm16xx-scan/internal/logic"
)

// FakePublisher keeps every key-scan change and lifecycle event in memory,
// along with the exact bytes a broker would have received.
type FakePublisher struct {
	Variant string // "2-wire" or "3-wire", stamped into each key-scan payload

	Events   []logic.Event // key-scan changes, oldest first
	Payloads [][]byte      // FormatPayload output, parallel to Events

	SystemEvents   []SystemEvent // STARTUP, HEARTBEAT, SHUTDOWN...
	SystemPayloads [][]byte      // parallel to SystemEvents

	// Injected failures. A failed call records nothing.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool // returned by IsConnected
}

// NewFakePublisher returns an empty, disconnected FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish formats the change for the configured variant and keeps it.
func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(f.Variant, event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem keeps a lifecycle event and its payload.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Bits returns the rendered frame of every published change, e.g.
// "0001_0010".
func (f *FakePublisher) Bits() []string {
	out := make([]string, len(f.Events))
	for i, e := range f.Events {
		out[i] = e.Frame.String()
	}
	return out
}

// LastSystemEvent returns the most recent lifecycle event, or false if none
// was published.
func (f *FakePublisher) LastSystemEvent() (SystemEvent, bool) {
	if len(f.SystemEvents) == 0 {
		return SystemEvent{}, false
	}
	return f.SystemEvents[len(f.SystemEvents)-1], true
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset forgets everything recorded and clears injected failures.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{Variant: f.Variant}
}
