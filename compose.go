// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// Call adapts a plain callable into a [Wire].
// Each invocation calls fn exactly once with the captured arguments
// (arguments supplied at invocation time are ignored) and signals Done.
// fn may suspend on the loop's primitives like any wire body.
func Call(fn func(ev *EventLoop, args ...any) error, args ...any) Wire {
	return callWire{fn: fn, args: args}
}

type callWire struct {
	fn   func(ev *EventLoop, args ...any) error
	args []any
}

func (w callWire) Execute(ev *EventLoop, _ ...any) (Continuation, error) {
	if err := w.fn(ev, w.args...); err != nil {
		return Done(), err
	}
	return Done(), nil
}

// Sequence composes two wires in time: first runs through its own
// continuation chain, one trampoline step per invocation, and once an
// invocation in that chain signals Done the composite continues to
// second with no arguments. Whatever arguments the chain produced at
// its Done boundary are discarded.
func Sequence(first, second Wire) Wire {
	return seqWire{first: first, second: second}
}

type seqWire struct {
	first  Wire
	second Wire
}

func (w seqWire) Execute(ev *EventLoop, args ...any) (Continuation, error) {
	c, err := w.first.Execute(ev, args...)
	if err != nil {
		return Done(), err
	}
	if err := c.validate(); err != nil {
		return Done(), err
	}
	if c.IsDone() {
		return Continue(w.second), nil
	}
	// first proposed its own continuation: keep following it, with
	// second still pending behind it.
	return Continue(seqWire{first: c.Next(), second: w.second}, c.Args()...), nil
}

// ApplyM composes two wires with value threading: one invocation of
// first, then second invoked with whatever arguments first returned.
// If first signals Done the composite signals Done. If first signals
// Continue(x, a) the composite's next step is second with arguments a;
// the proposed x is discarded — second always replaces it.
func ApplyM(first, second Wire) Wire {
	return applyWire{first: first, second: second}
}

type applyWire struct {
	first  Wire
	second Wire
}

func (w applyWire) Execute(ev *EventLoop, args ...any) (Continuation, error) {
	c, err := w.first.Execute(ev, args...)
	if err != nil {
		return Done(), err
	}
	if err := c.validate(); err != nil {
		return Done(), err
	}
	if c.IsDone() {
		return Done(), nil
	}
	return Continue(w.second, c.Args()...), nil
}

// Repeat invokes w exactly n times, always with the originally
// captured arguments. Each iteration is one invocation of w on one
// trampoline step; w's returned continuation (proposal and arguments
// both) is discarded. n <= 0 signals Done without invoking w.
func Repeat(w Wire, n int, args ...any) Wire {
	return repeatWire{w: w, n: n, args: args}
}

// Forever is the unbounded [Repeat]: it never signals Done on its own
// and must be cancelled externally (deadline or scope exit).
func Forever(w Wire, args ...any) Wire {
	return repeatWire{w: w, forever: true, args: args}
}

// repeatWire is fixed-argument repetition. Instances are immutable:
// each step yields a successor with a decremented counter.
type repeatWire struct {
	w       Wire
	args    []any
	n       int
	forever bool
}

func (r repeatWire) Execute(ev *EventLoop, _ ...any) (Continuation, error) {
	if !r.forever && r.n <= 0 {
		return Done(), nil
	}
	c, err := r.w.Execute(ev, r.args...)
	if err != nil {
		return Done(), err
	}
	if err := c.validate(); err != nil {
		return Done(), err
	}
	return Continue(repeatWire{w: r.w, n: r.n - 1, forever: r.forever, args: r.args}), nil
}

// RepeatM invokes w exactly n times, threading arguments: the first
// call uses the originally supplied args, and each invocation's
// returned arguments feed the next invocation. A Done from w mid-run
// threads an empty argument list. n <= 0 signals Done without
// invoking w.
func RepeatM(w Wire, n int, args ...any) Wire {
	return threadWire{w: w, n: n, args: args}
}

// ForeverM is the unbounded [RepeatM].
func ForeverM(w Wire, args ...any) Wire {
	return threadWire{w: w, forever: true, args: args}
}

// threadWire is argument-threading repetition. The successor instance
// carries the arguments returned by the current invocation.
type threadWire struct {
	w       Wire
	args    []any
	n       int
	forever bool
}

func (r threadWire) Execute(ev *EventLoop, _ ...any) (Continuation, error) {
	if !r.forever && r.n <= 0 {
		return Done(), nil
	}
	c, err := r.w.Execute(ev, r.args...)
	if err != nil {
		return Done(), err
	}
	if err := c.validate(); err != nil {
		return Done(), err
	}
	return Continue(threadWire{w: r.w, n: r.n - 1, forever: r.forever, args: c.Args()}), nil
}
