// Package broadcast fans engine state transitions out to subscribers.
//
// Publish never blocks on a consumer: each subscription owns a bounded
// buffer, and when it fills the oldest buffered event is dropped in favor of
// the new one (drop-oldest). A subscriber therefore always sees a suffix of
// the published sequence, in publish order.
package broadcast

import (
	"sync"

	"github.com/google/uuid"

	"paperdesk/internal/logger"
)

type Channel string

const (
	ChannelMarket    Channel = "market"
	ChannelTrade     Channel = "trade"
	ChannelPortfolio Channel = "portfolio"
)

// Event is the tagged envelope delivered to subscribers. Seq is assigned at
// publish time and is strictly increasing across all channels.
type Event struct {
	Channel Channel `json:"channel"`
	Seq     uint64  `json:"seq"`
	Payload any     `json:"payload"`
}

// Subscription is one observer's handle. Events arrives in publish order;
// the channel is closed by Unsubscribe or hub Close.
type Subscription struct {
	ID     string
	Events chan Event
}

// Hub is the publish/subscribe fan-out.
type Hub struct {
	mu         sync.Mutex
	subs       map[string]*Subscription
	bufferSize int
	seq        uint64
	dropped    uint64
	closed     bool
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Hub{
		subs:       make(map[string]*Subscription),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new observer. Returns nil after Close.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	sub := &Subscription{
		ID:     uuid.NewString(),
		Events: make(chan Event, h.bufferSize),
	}
	h.subs[sub.ID] = sub
	return sub
}

// Unsubscribe removes the observer and closes its event channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.Events)
}

// Publish delivers the event to every current subscriber and returns
// immediately. Full buffers shed their oldest event first.
func (h *Hub) Publish(channel Channel, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.seq++
	evt := Event{Channel: channel, Seq: h.seq, Payload: payload}
	for _, sub := range h.subs {
		select {
		case sub.Events <- evt:
			continue
		default:
		}
		// Buffer full: drop the oldest retained event, then retry once.
		select {
		case <-sub.Events:
			h.dropped++
		default:
		}
		select {
		case sub.Events <- evt:
		default:
			h.dropped++
		}
	}
}

// Dropped reports how many events were shed across all subscribers.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close removes and closes every subscription; further Publish and
// Subscribe calls are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.Events)
	}
	logger.Debugf("broadcast hub closed, %d events dropped in total", h.dropped)
}
