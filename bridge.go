// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Dispatcher is the structural interface for effect operations that a
// bridged kont protocol may suspend on. DispatchLoop performs the
// operation on the event loop; it may suspend on the loop's
// primitives, and may return iox.ErrWouldBlock at an I/O boundary to
// be retried with adaptive backoff.
type Dispatcher interface {
	DispatchLoop(ev *EventLoop) (kont.Resumed, error)
}

// Timer is the effect operation for a timer suspension.
// Perform(Timer{D: d}) sleeps for d.
type Timer struct {
	kont.Phantom[struct{}]
	D time.Duration
}

// DispatchLoop handles Timer via [EventLoop.Sleep].
func (op Timer) DispatchLoop(ev *EventLoop) (kont.Resumed, error) {
	if err := ev.Sleep(op.D); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// Proc is the effect operation for process execution.
// Perform(Proc{Cmd: cmd}) runs cmd to completion and resumes with its
// process state; a non-zero exit is an outcome, not a failure.
type Proc struct {
	kont.Phantom[*os.ProcessState]
	Cmd *exec.Cmd
}

// DispatchLoop handles Proc via [EventLoop.RunProcess].
func (op Proc) DispatchLoop(ev *EventLoop) (kont.Resumed, error) {
	err := ev.RunProcess(op.Cmd)
	var exit *exec.ExitError
	if err != nil && !errors.As(err, &exit) {
		return nil, err
	}
	return op.Cmd.ProcessState, nil
}

// Ready is the effect operation for a readiness wait.
// Perform(Ready{Sources: ss, Timeout: d}) resumes with the ready
// subset, empty on timeout.
type Ready struct {
	kont.Phantom[[]Source]
	Sources []Source
	Timeout time.Duration
}

// DispatchLoop handles Ready via [EventLoop.WaitReady].
func (op Ready) DispatchLoop(ev *EventLoop) (kont.Resumed, error) {
	ready, err := ev.WaitReady(op.Sources, op.Timeout)
	if err != nil {
		return nil, err
	}
	return ready, nil
}

// SleepThen sleeps for d, then continues with next.
func SleepThen[A any](d time.Duration, next kont.Eff[A]) kont.Eff[A] {
	return kont.Then(kont.Perform(Timer{D: d}), next)
}

// RunBind runs cmd to completion and binds its process state.
func RunBind[A any](cmd *exec.Cmd, f func(*os.ProcessState) kont.Eff[A]) kont.Eff[A] {
	return kont.Bind(kont.Perform(Proc{Cmd: cmd}), f)
}

// ReadyBind waits for readiness and binds the ready subset.
func ReadyBind[A any](sources []Source, timeout time.Duration, f func([]Source) kont.Eff[A]) kont.Eff[A] {
	return kont.Bind(kont.Perform(Ready{Sources: sources, Timeout: timeout}), f)
}

// FromEff lifts a Cont-world protocol builder into a [Wire]. The
// builder is called once per invocation with the invocation arguments
// (protocols are one-shot values; the wire stays a reusable
// description). A protocol whose final value is a [Continuation]
// becomes that continuation; any other result is discarded and the
// wire signals Done.
func FromEff[R any](protocol func(args ...any) kont.Eff[R]) Wire {
	return effWire[R]{protocol: protocol}
}

type effWire[R any] struct {
	protocol func(args ...any) kont.Eff[R]
}

func (w effWire[R]) Execute(ev *EventLoop, args ...any) (Continuation, error) {
	return stepProtocol(ev, kont.Reify(w.protocol(args...)))
}

// FromExpr is the Expr-world counterpart of [FromEff].
func FromExpr[R any](protocol func(args ...any) kont.Expr[R]) Wire {
	return exprWire[R]{protocol: protocol}
}

type exprWire[R any] struct {
	protocol func(args ...any) kont.Expr[R]
}

func (w exprWire[R]) Execute(ev *EventLoop, args ...any) (Continuation, error) {
	return stepProtocol(ev, w.protocol(args...))
}

// stepProtocol drives a protocol one effect at a time, dispatching
// each suspension on the event loop. This is the proactor-side half of
// the kont stepping boundary: StepExpr to the first suspension, then
// dispatch and resume until completion.
func stepProtocol[R any](ev *EventLoop, m kont.Expr[R]) (Continuation, error) {
	result, susp := kont.StepExpr(m)
	for susp != nil {
		op, ok := susp.Op().(Dispatcher)
		if !ok {
			t := susp.Op()
			susp.Discard()
			return Done(), fmt.Errorf("%w: %T", ErrUnhandledEffect, t)
		}
		v, err := ev.dispatchWait(op)
		if err != nil {
			susp.Discard()
			return Done(), err
		}
		result, susp = susp.Resume(v)
	}
	if c, ok := any(result).(Continuation); ok {
		return c, nil
	}
	return Done(), nil
}

// dispatchWait blocks until DispatchLoop succeeds, backing off on
// iox.ErrWouldBlock with the gate released so sibling tasks can make
// the progress being waited for.
func (ev *EventLoop) dispatchWait(op Dispatcher) (kont.Resumed, error) {
	var bo iox.Backoff
	for {
		v, err := op.DispatchLoop(ev)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, iox.ErrWouldBlock) {
			return nil, err
		}
		if err := ev.yield(bo.Wait); err != nil {
			return nil, err
		}
	}
}
