package status

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/tm16xx-scan/internal/logic"
)

func u8(v uint8) *uint8 { return &v }

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Variant: "2-wire", Chip: "TM1637", PollMs: 75, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 75 {
		t.Errorf("Config.PollMs: got %d, want 75", snap.Config.PollMs)
	}
	if snap.InitResult != "" {
		t.Errorf("expected empty InitResult initially, got %q", snap.InitResult)
	}
	if len(snap.LastFrame) != 0 {
		t.Errorf("expected no frame initially, got %v", snap.LastFrame)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestSetInit(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetInit(nil)
	if got := tr.Snapshot().InitResult; got != "ok" {
		t.Errorf("InitResult: got %q, want ok", got)
	}

	tr.SetInit(errors.New("no ack"))
	if got := tr.Snapshot().InitResult; got != "no ack" {
		t.Errorf("InitResult: got %q, want %q", got, "no ack")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(logic.Frame{0x12}, logic.Counts{Polls: 3, Changes: 1, Errors: 1})

	snap := tr.Snapshot()
	if !snap.LastFrame.Equal(logic.Frame{0x12}) {
		t.Errorf("LastFrame: got %v, want [0x12]", snap.LastFrame)
	}
	if snap.Counts.Polls != 3 || snap.Counts.Changes != 1 || snap.Counts.Errors != 1 {
		t.Errorf("Counts: got %+v", snap.Counts)
	}
}

func TestUpdateNeverSetsLastChange(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	// The first poll of an idle keypad moves the frame from nothing to all
	// zero; that is not a key change.
	tr.Update(logic.Frame{0, 0, 0, 0}, logic.Counts{Polls: 1})
	tr.Update(logic.Frame{0, 0, 0, 0}, logic.Counts{Polls: 2})

	if lc := tr.Snapshot().LastChange; !lc.IsZero() {
		t.Errorf("LastChange set without a key change: %v", lc)
	}
}

func TestRecordChangeUsesEventTime(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

	tr.RecordChange(logic.Event{Timestamp: at, Frame: logic.Frame{1}, Previous: logic.Frame{0}})
	tr.Update(logic.Frame{1}, logic.Counts{Polls: 5, Changes: 1})

	snap := tr.Snapshot()
	if !snap.LastChange.Equal(at) {
		t.Errorf("LastChange: got %v, want %v", snap.LastChange, at)
	}
	if !snap.LastFrame.Equal(logic.Frame{1}) {
		t.Errorf("LastFrame: got %v, want [1]", snap.LastFrame)
	}
	if snap.Counts.Polls != 5 {
		t.Errorf("Counts.Polls: got %d, want 5", snap.Counts.Polls)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	frame := logic.Frame{0, 0, 0, 1}
	tr.Update(frame, logic.Counts{Changes: 1})

	snap1 := tr.Snapshot()
	frame[3] = 0xff
	snap1.LastFrame[0] = 0xee

	snap2 := tr.Snapshot()
	if !snap2.LastFrame.Equal(logic.Frame{0, 0, 0, 1}) {
		t.Errorf("tracker frame was aliased: %v", snap2.LastFrame)
	}

	tr.Update(logic.Frame{0, 0, 0, 2}, logic.Counts{Changes: 2})
	if snap2.LastFrame[3] != 1 {
		t.Error("snapshot should be a copy; frame was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		InitResult:    "ok",
		LastFrame:     logic.Frame{0x12},
		Counts:        logic.Counts{Polls: 100, Changes: 2, Errors: 1},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config: Config{
			Variant:  "2-wire",
			Chip:     "TM1637",
			Backend:  "cdev",
			Pins:     Pins{CLK: 17, DIO: 27},
			PollMs:   75,
			Broker:   "tcp://localhost:1883",
			HTTPAddr: ":8080",
		},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Variant != "2-wire" || parsed.Status.Chip != "TM1637" {
		t.Errorf("variant/chip: got %q/%q", parsed.Status.Variant, parsed.Status.Chip)
	}
	if parsed.Status.Display != "ok" {
		t.Errorf("Display: got %q, want ok", parsed.Status.Display)
	}
	if parsed.Status.Bits != "0001_0010" {
		t.Errorf("Bits: got %q, want 0001_0010", parsed.Status.Bits)
	}
	if len(parsed.Status.Frame) != 1 || parsed.Status.Frame[0] != 0x12 {
		t.Errorf("Frame: got %v", parsed.Status.Frame)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if parsed.Status.Counts.Polls != 100 || parsed.Status.Counts.Errors != 1 {
		t.Errorf("Counts: got %+v", parsed.Status.Counts)
	}
	if parsed.Status.Pins.CLK != 17 || parsed.Status.Pins.DIO != 27 || parsed.Status.Pins.STB != nil {
		t.Errorf("Pins: got %+v", parsed.Status.Pins)
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" || parsed.Status.Reason != "" {
		t.Errorf("expected empty Event/Reason for web format, got %q/%q", parsed.Status.Event, parsed.Status.Reason)
	}
}

func TestFormatJSONPendingAndEmptyFrame(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	st := raw["status"]
	if st["display"] != "PENDING" {
		t.Errorf("display: got %v, want PENDING", st["display"])
	}
	if frame, ok := st["frame"].([]interface{}); !ok || len(frame) != 0 {
		t.Errorf("frame: got %v, want []", st["frame"])
	}
	if _, exists := st["last_change"]; exists {
		t.Error("last_change should be omitted before any change")
	}
}

func TestFormatJSONThreeWirePins(t *testing.T) {
	snap := Snapshot{
		LastFrame: logic.Frame{0, 0, 0, 1},
		Config:    Config{Variant: "3-wire", Pins: Pins{CLK: 17, DIO: 27, STB: u8(22)}},
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Pins.STB == nil || *parsed.Status.Pins.STB != 22 {
		t.Errorf("Pins.STB: got %v, want 22", parsed.Status.Pins.STB)
	}
	if parsed.Status.Bits != "0000_0000, 0000_0000, 0000_0000, 0000_0001" {
		t.Errorf("Bits: got %q", parsed.Status.Bits)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		InitResult: "ok",
		Counts:     logic.Counts{Polls: 3},
		StartTime:  start,
		Now:        start.Add(15 * time.Minute),
		Config:     Config{PollMs: 100, Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(logic.Frame{byte(i)}, logic.Counts{Polls: i})
			tr.SetMQTTConnected(i%2 == 0)
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
