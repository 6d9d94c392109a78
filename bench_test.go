// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"context"
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/wire"
)

// noop is the cheapest possible wire body.
var noop = wire.Func(func(_ *wire.EventLoop, _ ...any) (wire.Continuation, error) {
	return wire.Done(), nil
})

// BenchmarkContinuationStep measures one combinator step without the
// scheduler: invoking a repeat chain directly and following its
// continuations to completion.
func BenchmarkContinuationStep(b *testing.B) {
	b.ReportAllocs()
	ev := wire.New()
	for b.Loop() {
		c, err := wire.Repeat(noop, 8).Execute(ev)
		for err == nil && !c.IsDone() {
			c, err = c.Next().Execute(ev, c.Args()...)
		}
	}
}

// BenchmarkEventLoopRepeat measures a full scheduler round: one scope,
// one task, a bounded repeat driven through the trampoline.
func BenchmarkEventLoopRepeat(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		ev := wire.New()
		ev.Start(wire.Repeat(noop, 64))
		if err := ev.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSequenceChain measures nested sequences through the
// trampoline.
func BenchmarkSequenceChain(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		ev := wire.New()
		ev.Start(wire.Sequence(wire.Sequence(noop, noop), wire.Sequence(noop, noop)))
		if err := ev.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkQueuePushPollTake measures one producer/consumer element
// trip through a bounded queue source.
func BenchmarkQueuePushPollTake(b *testing.B) {
	skipRace(b)
	b.ReportAllocs()
	q := wire.NewQueue[int](4)
	for b.Loop() {
		if err := q.Push(1); err != nil {
			b.Fatal(err)
		}
		if err := q.Poll(); err != nil {
			b.Fatal(err)
		}
		if _, ok := q.Take(); !ok {
			b.Fatal("empty after poll")
		}
	}
}

// BenchmarkProtocolNoSuspend measures stepping a pure bridged protocol
// that never suspends.
func BenchmarkProtocolNoSuspend(b *testing.B) {
	b.ReportAllocs()
	ev := wire.New()
	w := wire.FromEff(func(_ ...any) kont.Eff[int] {
		return kont.Map[kont.Resumed, int, int](kont.Pure(20), func(n int) int {
			return n + 1
		})
	})
	for b.Loop() {
		if _, err := w.Execute(ev); err != nil {
			b.Fatal(err)
		}
	}
}
