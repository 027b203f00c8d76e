package network

import (
	"sync"

	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/cbodonnell/tabletop/pkg/metrics"
)

const (
	// SubscriberBufferSize is the number of messages a subscriber may fall behind
	// before new messages for it are dropped
	SubscriberBufferSize = 16
)

// Subscriber receives the state snapshots of one game
type Subscriber struct {
	ID     uint32
	GameID string
	send   chan *messages.Message
}

// Messages returns the channel snapshots are delivered on. It is closed when
// the subscriber is removed from the hub.
func (s *Subscriber) Messages() <-chan *messages.Message {
	return s.send
}

// Hub manages realtime subscribers grouped by game
type Hub struct {
	subscribers     map[uint32]*Subscriber
	subscribersLock sync.RWMutex
	nextID          uint32
	metrics         *metrics.Metrics
}

// NewHub creates a new Hub
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		subscribers: make(map[uint32]*Subscriber),
		nextID:      1,
		metrics:     m,
	}
}

// Subscribe adds a subscriber for gameID
func (h *Hub) Subscribe(gameID string) *Subscriber {
	h.subscribersLock.Lock()
	defer h.subscribersLock.Unlock()

	s := &Subscriber{
		ID:     h.nextID,
		GameID: gameID,
		send:   make(chan *messages.Message, SubscriberBufferSize),
	}
	h.nextID++
	h.subscribers[s.ID] = s
	h.metrics.SetSubscribers(len(h.subscribers))
	log.Debug("Subscriber %d added for game %s", s.ID, gameID)
	return s
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(id uint32) {
	h.subscribersLock.Lock()
	defer h.subscribersLock.Unlock()

	s, ok := h.subscribers[id]
	if !ok {
		return
	}
	delete(h.subscribers, id)
	close(s.send)
	h.metrics.SetSubscribers(len(h.subscribers))
	log.Debug("Subscriber %d removed", id)
}

// Publish delivers msg to every subscriber of gameID without blocking and
// returns how many subscribers received it. Subscribers whose buffer is full
// miss the message.
func (h *Hub) Publish(gameID string, msg *messages.Message) int {
	h.subscribersLock.RLock()
	defer h.subscribersLock.RUnlock()

	delivered := 0
	for _, s := range h.subscribers {
		if s.GameID != gameID {
			continue
		}
		select {
		case s.send <- msg:
			delivered++
		default:
			log.Warn("Subscriber %d is too slow, dropping snapshot of game %s", s.ID, gameID)
		}
	}
	return delivered
}

// Count returns the number of subscribers of gameID
func (h *Hub) Count(gameID string) int {
	h.subscribersLock.RLock()
	defer h.subscribersLock.RUnlock()

	n := 0
	for _, s := range h.subscribers {
		if s.GameID == gameID {
			n++
		}
	}
	return n
}

// Close removes every subscriber
func (h *Hub) Close() {
	h.subscribersLock.Lock()
	defer h.subscribersLock.Unlock()

	for id, s := range h.subscribers {
		delete(h.subscribers, id)
		close(s.send)
	}
	h.metrics.SetSubscribers(0)
}
