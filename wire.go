// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// Wire is a schedulable unit of cooperative work.
//
// Execute performs one step of the unit's behavior and reports how
// scheduling should proceed: the zero Continuation (Done) retires the
// task, while Continue requests that another wire be invoked next with
// the given positional arguments.
//
// Execute may suspend on the loop's primitives ([EventLoop.Sleep],
// [EventLoop.RunProcess], [EventLoop.WaitReady]) between entry and
// return; suspension yields the execution gate so other tasks can run
// meanwhile. An error returned from Execute is a propagated failure,
// not a result.
//
// A Wire value is an immutable description of behavior. It may be
// shared across compositions and scheduled any number of times;
// per-invocation state belongs in successor instances, never in
// mutation of the receiver.
type Wire interface {
	Execute(ev *EventLoop, args ...any) (Continuation, error)
}

// Continuation is the tagged result of a wire invocation.
// The zero value is Done. A non-zero value carries the next wire and
// the positional arguments it should be invoked with.
type Continuation struct {
	next     Wire
	args     []any
	cont bool
}

// Done reports that the invocation is finished and no further work
// should be scheduled on its behalf.
func Done() Continuation {
	return Continuation{}
}

// Continue requests that next be invoked with args on a following
// trampoline step. A nil next wire makes the continuation malformed;
// the violation surfaces as [ErrMalformedContinuation] when the result
// is consumed.
func Continue(next Wire, args ...any) Continuation {
	return Continuation{next: next, args: args, cont: true}
}

// IsDone reports whether the continuation signals completion.
func (c Continuation) IsDone() bool {
	return !c.cont
}

// Next returns the proposed next wire, or nil for Done.
func (c Continuation) Next() Wire {
	return c.next
}

// Args returns the positional arguments for the next invocation.
func (c Continuation) Args() []any {
	return c.args
}

// validate rejects a Continue carrying no next wire.
func (c Continuation) validate() error {
	if c.cont && c.next == nil {
		return ErrMalformedContinuation
	}
	return nil
}

// Func adapts a plain function to the [Wire] contract.
type Func func(ev *EventLoop, args ...any) (Continuation, error)

// Execute implements [Wire] by calling the function itself.
func (f Func) Execute(ev *EventLoop, args ...any) (Continuation, error) {
	return f(ev, args...)
}
