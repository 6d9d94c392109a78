// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// FailurePolicy selects how the scheduler reacts to a task failure.
type FailurePolicy uint8

const (
	// FailFast cancels every sibling task on the first propagated
	// failure and returns it after teardown.
	FailFast FailurePolicy = iota
	// Isolate records per-task failures and lets siblings continue;
	// the collected errors are joined and returned when the scope
	// drains. Malformed continuations remain fatal.
	Isolate
)

// Option configures an [EventLoop] at construction.
type Option func(*EventLoop)

// WithTimeout bounds the total lifetime of a [EventLoop.Run] scope.
// Expiry is not an error: it triggers orderly cancellation of every
// still-live task and a clean scope exit.
func WithTimeout(d time.Duration) Option {
	return func(ev *EventLoop) { ev.timeout = d }
}

// WithPolicy selects the failure policy. The default is [FailFast].
func WithPolicy(p FailurePolicy) Option {
	return func(ev *EventLoop) { ev.policy = p }
}

// EventLoop drives concurrent wire executions to completion or
// cancellation. It is an explicit scoped resource: construct with
// [New], register work with [Start], run within a bounded scope with
// [Run]. The zero policy is fail-fast with no deadline.
//
// Each task invocation runs on its own goroutine, but a capacity-1
// gate serializes all non-suspended wire code: at most one wire's
// logic runs at any instant, and the suspension primitives release
// the gate for the duration of their blocking region. The EventLoop
// handle shared by all wires therefore needs no further
// synchronization inside wire code.
type EventLoop struct {
	gate     chan struct{}
	outcomes chan outcome
	timeout  time.Duration
	policy   FailurePolicy

	mu      sync.Mutex
	ctx     context.Context // non-nil while a Run scope is open
	pending []*task
	live    int
}

// task binds one in-flight wire invocation to its scheduling record.
// Owned exclusively by the scheduler.
type task struct {
	w    Wire
	args []any
	id   Serial
}

// outcome is the result of one task invocation, delivered to the
// trampoline over the outcomes channel.
type outcome struct {
	cont Continuation
	err  error
	id   Serial
}

// New creates an event loop. No goroutines are spawned until work is
// started within a [Run] scope.
func New(opts ...Option) *EventLoop {
	ev := &EventLoop{
		gate:     make(chan struct{}, 1),
		outcomes: make(chan outcome),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Start registers a new concurrent execution of w with the given
// positional arguments. It returns immediately without waiting for
// completion and may be called before a run (the task is held until
// the scope opens) or during one (the task is launched at once,
// including from inside another wire's Execute). A nil wire is a
// no-op.
func (ev *EventLoop) Start(w Wire, args ...any) {
	if w == nil {
		return
	}
	t := &task{w: w, args: args, id: nextSerial()}
	ev.mu.Lock()
	if ev.ctx != nil {
		ev.live++
		ctx := ev.ctx
		ev.mu.Unlock()
		go ev.run(ctx, t)
		return
	}
	ev.pending = append(ev.pending, t)
	ev.mu.Unlock()
}

// Timeout returns the configured bound on a Run scope's lifetime.
// Zero means unbounded.
func (ev *EventLoop) Timeout() time.Duration {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.timeout
}

// SetTimeout replaces the configured bound. It takes effect when the
// next Run scope opens; an already-open scope keeps its deadline.
func (ev *EventLoop) SetTimeout(d time.Duration) {
	ev.mu.Lock()
	ev.timeout = d
	ev.mu.Unlock()
}

// Run opens the scheduling scope and drives the trampoline: it
// repeatedly waits for any live task to produce an outcome, discards
// the task on Done, and schedules the proposed next wire on Continue.
// Execution depth stays constant regardless of how many continuations
// a wire chain produces.
//
// Run returns when no tasks remain live, when the configured deadline
// expires (nil error), when ctx is cancelled (the context's error),
// or when a task failure becomes fatal under the failure policy. On
// every exit path all still-live tasks are cancelled at their current
// suspension point and the scope waits for them to settle before
// returning.
func (ev *EventLoop) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var cancel context.CancelFunc
	if d := ev.Timeout(); d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	ev.mu.Lock()
	ev.ctx = ctx
	pending := ev.pending
	ev.pending = nil
	ev.live += len(pending)
	ev.mu.Unlock()
	for _, t := range pending {
		go ev.run(ctx, t)
	}

	var fatal error
	var isolated []error
loop:
	for ev.liveTasks() > 0 {
		select {
		case out := <-ev.outcomes:
			ev.retire()
			if out.err != nil {
				if ctx.Err() != nil && errors.Is(out.err, ctx.Err()) {
					// The task observed the scope's own cancellation
					// at its suspension point; not a failure.
					break loop
				}
				if ev.policy == Isolate && !errors.Is(out.err, ErrMalformedContinuation) {
					isolated = append(isolated, out.err)
					continue
				}
				fatal = out.err
				break loop
			}
			if !out.cont.IsDone() {
				ev.Start(out.cont.Next(), out.cont.Args()...)
			}
		case <-ctx.Done():
			break loop
		}
	}

	scopeErr := ctx.Err()
	cancel()
	ev.drain()
	ev.mu.Lock()
	ev.ctx = nil
	ev.mu.Unlock()

	if fatal != nil {
		return fatal
	}
	if len(isolated) > 0 {
		return errors.Join(isolated...)
	}
	// Reaching a deadline is a clean scope exit; an outer cancellation
	// is reported so callers can tell the two apart.
	if errors.Is(scopeErr, context.Canceled) {
		return scopeErr
	}
	return nil
}

// run executes one task invocation on its own goroutine and delivers
// exactly one outcome. The gate is held for the whole non-suspended
// region of Execute; primitives release it while blocked.
func (ev *EventLoop) run(ctx context.Context, t *task) {
	select {
	case ev.gate <- struct{}{}:
	case <-ctx.Done():
		ev.outcomes <- outcome{id: t.id, err: ctx.Err()}
		return
	}
	cont, err := ev.protect(t)
	<-ev.gate
	if err == nil {
		err = cont.validate()
	}
	if err != nil {
		err = fmt.Errorf("wire: task %d: %w", t.id, err)
	}
	ev.outcomes <- outcome{id: t.id, cont: cont, err: err}
}

// protect invokes the wire, converting a panic into a task failure.
func (ev *EventLoop) protect(t *task) (cont Continuation, err error) {
	defer func() {
		if p := recover(); p != nil {
			cont, err = Done(), newPanicError(p)
		}
	}()
	return t.w.Execute(ev, t.args...)
}

// liveTasks reads the live-task count under the scheduler lock.
func (ev *EventLoop) liveTasks() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.live
}

// retire accounts for one delivered outcome.
func (ev *EventLoop) retire() {
	ev.mu.Lock()
	ev.live--
	ev.mu.Unlock()
}

// drain waits for every still-live task to settle after cancellation.
// Each task delivers exactly one outcome; their teardown errors are
// cancellation noise and are dropped.
func (ev *EventLoop) drain() {
	for ev.liveTasks() > 0 {
		<-ev.outcomes
		ev.retire()
	}
}

// acquire takes the execution gate.
func (ev *EventLoop) acquire() {
	ev.gate <- struct{}{}
}

// release yields the execution gate.
func (ev *EventLoop) release() {
	<-ev.gate
}

// runningCtx returns the context of the open Run scope, or Background
// when called outside one.
func (ev *EventLoop) runningCtx() context.Context {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if ev.ctx != nil {
		return ev.ctx
	}
	return context.Background()
}
