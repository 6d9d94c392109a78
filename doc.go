// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire provides a cooperative trampoline scheduler for
// continuation-passing units of work.
//
// A [Wire] is a schedulable unit: its Execute reports either Done or
// Continue(next, args), and the [EventLoop] drives many such units
// concurrently by an explicit work loop — pop a completed invocation,
// switch on its continuation, push the next task — so execution depth
// stays constant no matter how long a continuation chain runs.
//
// # Architecture
//
//   - Contract: [Wire], tagged [Continuation] results ([Done]/[Continue]), [Func] adapter.
//   - Scheduler: [EventLoop] with [EventLoop.Start] registration and a scoped [EventLoop.Run]; configurable deadline and [FailurePolicy].
//   - Execution: goroutine-backed task futures serialized by a capacity-1 gate; suspension primitives ([EventLoop.Sleep], [EventLoop.RunProcess], [EventLoop.WaitReady]) release the gate while blocked, so at most one wire's non-suspended logic runs at any instant.
//   - Readiness: [Source] values with non-blocking Poll returning [code.hybscloud.com/iox.ErrWouldBlock]; waiting uses iox adaptive backoff. Built-in sources: [Queue] (lock-free bounded SPSC via [code.hybscloud.com/lfq]), [Chan], [Ticker].
//   - Multiplexing: [Poller], itself a wire, dispatches registered wires for ready sources as independent tasks and repeats itself unboundedly.
//
// # Composition
//
//   - [Call]: adapt a plain callable; one invocation, Done.
//   - [Sequence]: run a wire's chain to Done, then another with no arguments.
//   - [ApplyM]: value-threading; the second wire replaces whatever the first proposed, receiving its returned arguments.
//   - [Repeat]/[Forever]: fixed-argument repetition, bounded or unbounded.
//   - [RepeatM]/[ForeverM]: argument-threading repetition.
//
// # Integration
//
//   - kont protocols run as wires via [FromEff]/[FromExpr], stepped one
//     effect at a time; operations implementing [Dispatcher] (built-in:
//     [Timer], [Proc], [Ready]) are dispatched on the loop, retrying
//     past iox.ErrWouldBlock boundaries with adaptive backoff.
//
// # Failure
//
//   - A malformed continuation (Continue without a next wire) is fatal
//     to the scope: [ErrMalformedContinuation].
//   - Duplicate poller registration fails at construction: [ErrDuplicateSource].
//   - Any other error or panic escaping a wire cancels every sibling
//     and is returned after teardown ([FailFast]), or is collected
//     while siblings continue ([Isolate]).
//   - Deadline expiry is not an error: orderly cancellation, clean exit.
//
// # Example
//
//	ev := wire.New(wire.WithTimeout(time.Second))
//	beep := wire.Sequence(
//		wire.Call(func(ev *wire.EventLoop, _ ...any) error { return ev.Sleep(100 * time.Millisecond) }),
//		wire.Call(func(*wire.EventLoop, ...any) error { fmt.Println("beep"); return nil }),
//	)
//	ev.Start(wire.Repeat(beep, 4))
//	_ = ev.Run(context.Background())
package wire
