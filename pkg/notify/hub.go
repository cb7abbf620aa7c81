package notify

import (
	"fmt"
	"sync"
	"time"

	"digital.vasic.defecthunt/pkg/logging"
)

// HubStats holds aggregate counters for a Hub.
type HubStats struct {
	Total     int       `json:"total"`
	Rewards   int       `json:"rewards"`
	Badges    int       `json:"badges"`
	Learners  int       `json:"learners"`
	StartTime time.Time `json:"start_time"`
	LastEvent time.Time `json:"last_event,omitempty"`
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger logs handler panics on l.
func WithHubLogger(l logging.Logger) HubOption {
	return func(h *Hub) {
		h.log = logging.OrNull(l)
	}
}

// WithHistoryLimit keeps at most n events in memory. Older
// events are discarded first. Zero means unlimited.
func WithHistoryLimit(n int) HubOption {
	return func(h *Hub) {
		h.limit = n
	}
}

// Hub records events and dispatches them to registered handlers.
// It is itself a Sink.
type Hub struct {
	mu       sync.RWMutex
	events   []Event
	handlers []func(Event)
	learners map[string]struct{}
	stats    HubStats
	limit    int
	log      logging.Logger
}

// NewHub creates an empty Hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		events:   make([]Event, 0, 64),
		learners: make(map[string]struct{}),
		stats:    HubStats{StartTime: time.Now()},
		log:      logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnEvent registers a handler called for each event after it
// has been recorded.
func (h *Hub) OnEvent(handler func(Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, handler)
}

// Notify records event and calls every handler. A panicking
// handler is logged and does not affect the others.
func (h *Hub) Notify(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	h.mu.Lock()
	h.events = append(h.events, event)
	if h.limit > 0 && len(h.events) > h.limit {
		h.events = append(h.events[:0:0], h.events[len(h.events)-h.limit:]...)
	}
	h.stats.Total++
	switch event.Kind {
	case KindReward:
		h.stats.Rewards++
	case KindBadge:
		h.stats.Badges++
	}
	h.learners[event.LearnerID] = struct{}{}
	h.stats.Learners = len(h.learners)
	h.stats.LastEvent = event.Timestamp
	handlers := make([]func(Event), len(h.handlers))
	copy(handlers, h.handlers)
	h.mu.Unlock()

	for _, handler := range handlers {
		h.dispatch(handler, event)
	}
}

func (h *Hub) dispatch(handler func(Event), event Event) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("notification handler panicked",
				logging.StringField("event_id", event.ID),
				logging.StringField("panic", fmt.Sprint(r)),
			)
		}
	}()
	handler(event)
}

// Events returns a copy of the recorded events.
func (h *Hub) Events() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	result := make([]Event, len(h.events))
	copy(result, h.events)
	return result
}

// EventsFor returns the recorded events of one learner.
func (h *Hub) EventsFor(learnerID string) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var result []Event
	for _, e := range h.events {
		if e.LearnerID == learnerID {
			result = append(result, e)
		}
	}
	return result
}

// Stats returns the current counters.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

// Reset clears recorded events and counters. Handlers stay
// registered.
func (h *Hub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = h.events[:0]
	h.learners = make(map[string]struct{})
	h.stats = HubStats{StartTime: time.Now()}
}
