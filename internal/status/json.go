package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Variant       string     `json:"variant"`
	Chip          string     `json:"chip"`
	Backend       string     `json:"backend"`
	Pins          PinsJSON   `json:"pins"`
	Display       string     `json:"display"`
	Frame         []int      `json:"frame"`
	Bits          string     `json:"bits"`
	LastChange    string     `json:"last_change,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// PinsJSON is the JSON representation of the pin assignment.
type PinsJSON struct {
	CLK uint8  `json:"clk"`
	DIO uint8  `json:"dio"`
	STB *uint8 `json:"stb,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of poll counters.
type CountsJSON struct {
	Polls   int `json:"polls"`
	Changes int `json:"changes"`
	Errors  int `json:"errors"`
}

// ConfigJSON is the JSON representation of demo config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	display := snap.InitResult
	if display == "" {
		display = "PENDING"
	}

	frame := make([]int, len(snap.LastFrame))
	for i, b := range snap.LastFrame {
		frame[i] = int(b)
	}

	inner := StatusInner{
		Variant:       snap.Config.Variant,
		Chip:          snap.Config.Chip,
		Backend:       snap.Config.Backend,
		Pins:          PinsJSON{CLK: snap.Config.Pins.CLK, DIO: snap.Config.Pins.DIO, STB: snap.Config.Pins.STB},
		Display:       display,
		Frame:         frame,
		Bits:          snap.LastFrame.String(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Polls:   snap.Counts.Polls,
			Changes: snap.Counts.Changes,
			Errors:  snap.Counts.Errors,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if !snap.LastChange.IsZero() {
		inner.LastChange = snap.LastChange.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
