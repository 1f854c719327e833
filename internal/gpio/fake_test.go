package gpio

import (
	"errors"
	"testing"
)

func TestFakePinDefaultsToPullUp(t *testing.T) {
	p := NewFakePin()

	if !p.Read() {
		t.Error("expected released fake pin to read high")
	}
}

func TestFakePinOutputReadsLatch(t *testing.T) {
	p := NewFakePin()
	p.Input = func() bool { return true }
	p.SetMode(ModeOutput)
	p.SetLow()

	if p.Read() {
		t.Error("expected output pin to read its latch")
	}
	if p.ModeChanges != 1 {
		t.Errorf("expected 1 mode change, got %d", p.ModeChanges)
	}
}

func TestFakePinCallbacks(t *testing.T) {
	p := NewFakePin()
	var writes []bool
	var modes []Mode
	p.OnWrite = func(high bool) { writes = append(writes, high) }
	p.OnMode = func(m Mode) { modes = append(modes, m) }

	p.SetMode(ModeOutput)
	p.SetHigh()
	p.SetLow()

	if len(writes) != 2 || !writes[0] || writes[1] {
		t.Errorf("unexpected writes: %v", writes)
	}
	if len(modes) != 1 || modes[0] != ModeOutput {
		t.Errorf("unexpected modes: %v", modes)
	}
}

func TestFakeControllerAcquire(t *testing.T) {
	c := NewFakeController()

	out, err := c.Output(23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	io, err := c.Bidirectional(24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Pins[23] != out.(*FakePin) {
		t.Error("output pin not recorded")
	}
	if c.Pins[23].Mode != ModeOutput {
		t.Errorf("expected output mode, got %s", c.Pins[23].Mode)
	}
	if c.Pins[24] != io.(*FakePin) {
		t.Error("io pin not recorded")
	}
	if c.Pins[24].Mode != ModeInput {
		t.Errorf("expected input mode, got %s", c.Pins[24].Mode)
	}
	if len(c.Acquired) != 2 || c.Acquired[0] != 23 || c.Acquired[1] != 24 {
		t.Errorf("unexpected acquisition order: %v", c.Acquired)
	}
}

func TestFakeControllerDoubleAcquire(t *testing.T) {
	c := NewFakeController()
	if _, err := c.Output(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Bidirectional(5); err == nil {
		t.Error("expected error acquiring the same pin twice")
	}
}

func TestFakeControllerFail(t *testing.T) {
	c := NewFakeController()
	c.Fail[7] = errors.New("busy")

	_, err := c.Output(7)
	if err == nil || err.Error() != "busy" {
		t.Errorf("expected scripted error, got %v", err)
	}
}

func TestFakeControllerClose(t *testing.T) {
	c := NewFakeController()
	c.Output(1)

	if err := c.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !c.Closed || !c.Pins[1].Closed {
		t.Error("expected controller and pins to be closed")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("bogus", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
