package mqtt

import "log"

// DefaultBufferSize is how many messages are held while the broker is away.
const DefaultBufferSize = 100

// message is a serialized MQTT publish waiting for the broker.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO that drops the oldest message when full.
// Not safe for concurrent use; RealPublisher holds its mutex around it.
type outbox struct {
	msgs    []message
	next    int // slot for the next push
	size    int
	dropped int // messages lost since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{msgs: make([]message, capacity)}
}

func (o *outbox) push(m message) {
	o.msgs[o.next] = m
	o.next = (o.next + 1) % len(o.msgs)
	if o.size < len(o.msgs) {
		o.size++
		return
	}
	if o.dropped == 0 {
		log.Printf("mqtt: outbox full (%d messages), dropping oldest", len(o.msgs))
	}
	o.dropped++
}

// drain returns queued messages oldest first and empties the outbox.
func (o *outbox) drain() []message {
	if o.size == 0 {
		return nil
	}

	out := make([]message, o.size)
	first := (o.next - o.size + len(o.msgs)) % len(o.msgs)
	for i := range out {
		out[i] = o.msgs[(first+i)%len(o.msgs)]
	}

	if o.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while disconnected", o.dropped)
	}
	o.next, o.size, o.dropped = 0, 0, 0
	return out
}

func (o *outbox) len() int {
	return o.size
}
