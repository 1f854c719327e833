// Package mqtt publishes key-scan changes with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/tm16xx-scan/internal/logic"
)

// Topic is the MQTT topic for key-scan change events.
const Topic = "tm16xx/scan/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "tm16xx/scan/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a key-scan change to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT", "MQTT_DISCONNECT"
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	KeyScan KeyScanPayload `json:"keyscan"`
}

// KeyScanPayload contains the key-scan change details. Frames are encoded as
// number arrays rather than base64.
type KeyScanPayload struct {
	Timestamp string `json:"timestamp"`
	Variant   string `json:"variant"`
	Frame     []int  `json:"frame"`
	Previous  []int  `json:"previous"`
	Bits      string `json:"bits"`
}

func frameInts(f logic.Frame) []int {
	out := make([]int, len(f))
	for i, b := range f {
		out[i] = int(b)
	}
	return out
}

// FormatPayload creates the JSON payload for a key-scan change.
func FormatPayload(variant string, event logic.Event) ([]byte, error) {
	payload := Payload{
		KeyScan: KeyScanPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Variant:   variant,
			Frame:     frameInts(event.Frame),
			Previous:  frameInts(event.Previous),
			Bits:      event.Frame.String(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
