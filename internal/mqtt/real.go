package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/tm16xx-scan/internal/logic"
)

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	Variant    string // "2-wire" or "3-wire", included in every payload
	BufferSize int    // messages held while disconnected; 0 means DefaultBufferSize
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are queued and replayed after reconnecting.
type RealPublisher struct {
	client  paho.Client
	topic   string
	variant string

	mu              sync.Mutex
	outbox          *outbox
	connectedBefore bool
}

// NewRealPublisher creates a publisher for the given broker. If the broker is
// unreachable the client keeps retrying in the background and messages are
// queued meanwhile.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.ClientID == "" {
		o.ClientID = "tm16xx-scan"
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	// The handler only runs after Connect, by which time p is set.
	var p *RealPublisher
	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		}).
		SetOnConnectHandler(func(paho.Client) {
			p.onConnect()
		})

	p = newRealPublisher(paho.NewClient(opts), o)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: %s not reachable yet, retrying in background", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// newRealPublisher wraps an already configured client. The client's
// on-connect handler must call onConnect.
func newRealPublisher(client paho.Client, o Options) *RealPublisher {
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	return &RealPublisher{
		client:  client,
		topic:   Topic,
		variant: o.Variant,
		outbox:  newOutbox(o.BufferSize),
	}
}

// Publish sends a key-scan change to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(p.variant, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	if err := p.send(message{topic: p.topic, payload: payload}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	msg := message{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained}
	if err := p.send(msg); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) send(m message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.client.IsConnectionOpen() {
		p.outbox.push(m)
		return nil
	}
	return p.publish(m)
}

func (p *RealPublisher) publish(m message) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout")
	}
	return token.Error()
}

// onConnect replays queued messages in order. From the second connection
// on it then announces the reconnect.
func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	defer p.mu.Unlock()

	reconnect := p.connectedBefore
	p.connectedBefore = true

	if queued := p.outbox.drain(); len(queued) > 0 {
		log.Printf("mqtt: connected, replaying %d queued messages", len(queued))
		for _, m := range queued {
			if err := p.publish(m); err != nil {
				log.Printf("mqtt: replay to %s failed: %v", m.topic, err)
			}
		}
	}
	if !reconnect {
		return
	}

	payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
	if err != nil {
		return
	}
	if err := p.publish(message{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
		log.Printf("mqtt: publish reconnect event: %v", err)
	}
}
