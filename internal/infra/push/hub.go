package push

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSubscriberSaturated = errors.New("subscriber buffer is full")

const subscriberBuffer = 16

// Hub is the in-process live-push fan-out backing the SSE stream. It is
// strictly best effort: publishes to absent or saturated subscribers are
// dropped, durability comes from the notifications table alone.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan []byte]struct{}),
	}
}

// Subscribe registers a listener for one recipient. The returned cancel
// func must be called when the consumer goes away.
func (h *Hub) Subscribe(recipientID uuid.UUID) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan []byte]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subscribers[recipientID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subscribers, recipientID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers to every connected listener of the recipient without
// blocking. An offline recipient is not an error.
func (h *Hub) Publish(recipientID uuid.UUID, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set, ok := h.subscribers[recipientID]
	if !ok {
		return nil
	}

	var saturated bool
	for ch := range set {
		select {
		case ch <- payload:
		default:
			saturated = true
		}
	}
	if saturated {
		return ErrSubscriberSaturated
	}
	return nil
}
