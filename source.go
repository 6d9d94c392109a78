// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"sync"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// queueCapacity is the default bounded capacity for queue sources.
// Matches the session-transport choice: small enough to keep ring
// buffers within a cache line, large enough to amortize producer-side
// cached-index refresh.
const queueCapacity = 4

// Source is a readiness source watched by [EventLoop.WaitReady] and
// the [Poller]. Poll is non-blocking: nil means the source is ready,
// iox.ErrWouldBlock means not ready yet, and any other error is a
// failure of the source itself.
//
// Readiness is level-triggered: a source keeps reporting ready until
// whatever made it ready is consumed.
type Source interface {
	Poll() error
}

// Queue is an in-process message source over a bounded lock-free SPSC
// queue. One producer calls Push; the consumer side (poller rounds and
// the dispatch wire's Take) observes readiness and drains.
//
// Poll buffers one dequeued element in a lookahead slot so that
// checking readiness never loses data. A poller's Poll and a dispatch
// wire's Take overlap in time, so the whole consumer side is
// serialized under one mutex; Push stays on the lock-free producer
// path.
type Queue[T any] struct {
	q    lfq.SPSC[T]
	send T

	mu   sync.Mutex
	slot T
	full bool
}

// NewQueue creates a queue source with the given bounded capacity.
// A capacity of zero or less uses the default.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = queueCapacity
	}
	s := &Queue[T]{}
	s.q.Init(capacity)
	return s
}

// Push enqueues v from the producer side.
// Non-blocking: returns iox.ErrWouldBlock if the bounded queue is full.
func (s *Queue[T]) Push(v T) error {
	s.send = v
	return s.q.Enqueue(&s.send)
}

// Poll implements [Source]. Ready when an element is buffered or can
// be dequeued; iox.ErrWouldBlock when the queue is empty.
func (s *Queue[T]) Poll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return nil
	}
	v, err := s.q.Dequeue()
	if err != nil {
		return err
	}
	s.slot = v
	s.full = true
	return nil
}

// Take removes and returns the next element, preferring the lookahead
// slot filled by Poll. Returns false when nothing is pending.
func (s *Queue[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		s.full = false
		return s.slot, true
	}
	v, err := s.q.Dequeue()
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Chan is a readiness source over a Go receive channel. Ready when a
// value can be received; a closed and drained channel fails the wait
// with [ErrSourceClosed] so pollers do not spin on it. The consumer
// side is serialized like [Queue]'s, which keeps delivery FIFO when a
// poller's Poll overlaps a dispatch wire's Take.
type Chan[T any] struct {
	ch <-chan T

	mu   sync.Mutex
	slot T
	full bool
}

// WatchChan creates a channel source.
func WatchChan[T any](ch <-chan T) *Chan[T] {
	return &Chan[T]{ch: ch}
}

// Poll implements [Source].
func (s *Chan[T]) Poll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return nil
	}
	select {
	case v, ok := <-s.ch:
		if !ok {
			return ErrSourceClosed
		}
		s.slot = v
		s.full = true
		return nil
	default:
		return iox.ErrWouldBlock
	}
}

// Take removes and returns the next received value, preferring the
// lookahead slot filled by Poll. Returns false when nothing is
// pending.
func (s *Chan[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		s.full = false
		return s.slot, true
	}
	select {
	case v, ok := <-s.ch:
		if ok {
			return v, true
		}
	default:
	}
	var zero T
	return zero, false
}

// Ticker is an edge-triggered time source: ready once per interval,
// with Poll itself consuming the tick. Only the polling goroutine may
// call Poll.
type Ticker struct {
	next     time.Time
	interval time.Duration
}

// NewTicker creates a time source that first becomes ready one
// interval from now.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{next: time.Now().Add(interval), interval: interval}
}

// Poll implements [Source].
func (s *Ticker) Poll() error {
	now := time.Now()
	if now.Before(s.next) {
		return iox.ErrWouldBlock
	}
	s.next = now.Add(s.interval)
	return nil
}
