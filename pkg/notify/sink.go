package notify

import "sync/atomic"

// Sink receives events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Notify(event Event)
}

// FuncSink adapts a function to Sink.
type FuncSink func(Event)

// Notify calls f(event).
func (f FuncSink) Notify(event Event) { f(event) }

// Discard drops every event.
var Discard Sink = FuncSink(func(Event) {})

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// ChannelSink forwards events to a buffered channel. When the
// buffer is full the event is dropped and counted rather than
// blocking the caller.
type ChannelSink struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewChannelSink creates a ChannelSink with the given buffer
// size. A size below 1 is raised to 1.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Notify enqueues event without blocking.
func (s *ChannelSink) Notify(event Event) {
	select {
	case s.ch <- event:
	default:
		s.dropped.Add(1)
	}
}

// Events returns the receive side of the channel.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

// Dropped returns how many events were discarded.
func (s *ChannelSink) Dropped() int64 { return s.dropped.Load() }

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

// Notify delivers event to every non-nil sink.
func (m MultiSink) Notify(event Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(event)
		}
	}
}
