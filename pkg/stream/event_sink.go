package stream

import (
	"context"
	"io"
	"sync"

	"jyotchat-be/pkg/events"
)

// EventSink bridges the engine's push-style progress callbacks into a
// pull-style sequence. OnEvent never blocks; Next blocks until an event is
// buffered or MarkDone has been called and the buffer is drained.
//
// EventSink supports any number of producers and a single consumer.
type EventSink struct {
	notify chan struct{}

	mu      sync.Mutex
	buf     []events.Progress
	done    bool
	dropped int
}

func NewEventSink() *EventSink {
	return &EventSink{
		notify: make(chan struct{}, 1),
	}
}

// OnEvent buffers e. Events arriving after MarkDone are counted and dropped.
func (s *EventSink) OnEvent(e events.Progress) {
	s.mu.Lock()
	if s.done {
		s.dropped++
		s.mu.Unlock()
		return
	}
	s.buf = append(s.buf, e)
	s.mu.Unlock()
	s.wake()
}

// MarkDone signals that no further events will arrive. Idempotent.
func (s *EventSink) MarkDone() {
	s.mu.Lock()
	already := s.done
	s.done = true
	s.mu.Unlock()
	if !already {
		s.wake()
	}
}

// Done reports whether MarkDone has been called.
func (s *EventSink) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Dropped returns the number of events discarded because they arrived late.
func (s *EventSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Next returns the next buffered event in arrival order. It returns io.EOF
// once the sink is done and drained, or ctx.Err() if ctx ends while waiting.
func (s *EventSink) Next(ctx context.Context) (events.Progress, error) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			e := s.buf[0]
			s.buf[0] = events.Progress{}
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return e, nil
		}
		if s.done {
			s.mu.Unlock()
			return events.Progress{}, io.EOF
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-ctx.Done():
			return events.Progress{}, ctx.Err()
		}
	}
}

func (s *EventSink) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
