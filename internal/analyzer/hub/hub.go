package hub

import (
	"sync"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"github.com/google/uuid"
)

// Subscriber is one connected listener with its own delivery queue.
// The queue is owned by the subscriber's drain loop; the hub is the
// only other party allowed to enqueue into it.
type Subscriber struct {
	ID          string
	ConnectedAt time.Time

	queue chan dto.Event
	gone  chan struct{}
	once  sync.Once
}

// Events exposes the receive side of the delivery queue.
func (s *Subscriber) Events() <-chan dto.Event {
	return s.queue
}

// Gone is closed when the subscriber has been removed from the hub.
func (s *Subscriber) Gone() <-chan struct{} {
	return s.gone
}

func (s *Subscriber) markGone() {
	s.once.Do(func() { close(s.gone) })
}

// Receive blocks for the next event, synthesizing a heartbeat when
// nothing arrives within the timeout. The second return is false once
// the subscriber has been disconnected and its queue drained.
func (s *Subscriber) Receive(heartbeat time.Duration) (dto.Event, bool) {
	timer := time.NewTimer(heartbeat)
	defer timer.Stop()

	select {
	case ev := <-s.queue:
		return ev, true
	default:
	}

	select {
	case ev := <-s.queue:
		return ev, true
	case <-s.gone:
		// Drain anything enqueued before removal.
		select {
		case ev := <-s.queue:
			return ev, true
		default:
			return dto.Event{}, false
		}
	case <-timer.C:
		return dto.NewEvent(dto.EventHeartbeat, "", dto.HeartbeatPayload{Timestamp: time.Now()}), true
	}
}

// EventHub fans pipeline events out to connected subscribers. Sends
// are non-blocking from the emitter's point of view: a full queue
// drops the oldest event rather than stalling a worker.
type EventHub struct {
	log       *logger.Logger
	queueSize int

	mu          sync.RWMutex
	subscribers map[string]*Subscriber
}

// New creates an EventHub whose subscriber queues hold queueSize
// events.
func New(queueSize int, log *logger.Logger) *EventHub {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &EventHub{
		log:         log,
		queueSize:   queueSize,
		subscribers: make(map[string]*Subscriber),
	}
}

// Connect registers a new subscriber with an empty queue and returns
// it. The caller presents the returned ID on every subsequent call.
func (h *EventHub) Connect() *Subscriber {
	sub := &Subscriber{
		ID:          uuid.New().String(),
		ConnectedAt: time.Now(),
		queue:       make(chan dto.Event, h.queueSize),
		gone:        make(chan struct{}),
	}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	h.log.Debug("subscriber connected", logger.StringField("subscriber_id", sub.ID), logger.IntField("total", count))
	return sub
}

// Get returns a connected subscriber by id.
func (h *EventHub) Get(id string) (*Subscriber, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sub, ok := h.subscribers[id]
	return sub, ok
}

// Disconnect removes a subscriber. Removing an unknown id is a no-op,
// and later SendTo calls for it simply report failure.
func (h *EventHub) Disconnect(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		sub.markGone()
		h.log.Debug("subscriber disconnected", logger.StringField("subscriber_id", id), logger.IntField("total", count))
	}
}

// SendTo enqueues an event for exactly one subscriber. Returns false
// when the subscriber is unknown; that is delivery failure, not an
// error, and it never reaches the emitting job.
func (h *EventHub) SendTo(id string, ev dto.Event) bool {
	h.mu.RLock()
	sub, ok := h.subscribers[id]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	h.enqueue(sub, ev)
	return true
}

// Broadcast enqueues the event to every currently connected
// subscriber. Subscribers joining mid-call are not guaranteed a copy.
func (h *EventHub) Broadcast(ev dto.Event) {
	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		h.enqueue(sub, ev)
	}
}

// enqueue never blocks: when the queue is full it drops the oldest
// event so the freshest progress survives.
func (h *EventHub) enqueue(sub *Subscriber, ev dto.Event) {
	select {
	case sub.queue <- ev:
		return
	default:
	}

	select {
	case dropped := <-sub.queue:
		h.log.Warn("subscriber queue full, dropping oldest event",
			logger.StringField("subscriber_id", sub.ID),
			logger.StringField("dropped_type", string(dropped.Type)))
	default:
	}

	select {
	case sub.queue <- ev:
	default:
		h.log.Warn("subscriber queue still full, dropping event",
			logger.StringField("subscriber_id", sub.ID),
			logger.StringField("event_type", string(ev.Type)))
	}
}

// Count returns the number of connected subscribers.
func (h *EventHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
