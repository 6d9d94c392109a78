// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"reflect"
	"testing"
	"testing/quick"

	"code.hybscloud.com/wire"
)

// TestPropertyRepeatCount proves that for any repetition count and any
// fixed argument vector, Repeat invokes its wire exactly count times
// and every invocation observes exactly the fixed arguments.
func TestPropertyRepeatCount(t *testing.T) {
	propertyCount := func(n uint8, payload []int) bool {
		count := int(n % 32)
		var fixed []any
		for _, v := range payload {
			fixed = append(fixed, v)
		}

		rec := &recorder{}
		body := &stub{rec: rec, name: "body"}
		if err := runAll(t, nil, wire.Repeat(body, count, fixed...)); err != nil {
			return false
		}
		if rec.count("body") != count {
			return false
		}
		for _, got := range rec.args("body") {
			if !reflect.DeepEqual(got, fixed) {
				return false
			}
		}
		return true
	}

	if err := quick.Check(propertyCount, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyRepeatMThreading proves that RepeatM threads each
// invocation's returned arguments into the next: starting from any
// seed, an incrementing wire observes seed, seed+1, seed+2, ...
func TestPropertyRepeatMThreading(t *testing.T) {
	propertyThread := func(seed int16, n uint8) bool {
		count := int(n % 16)

		rec := &recorder{}
		step := &stub{rec: rec, name: "step", result: func(_ *wire.EventLoop, args []any) (wire.Continuation, error) {
			return wire.Continue(&stub{}, args[0].(int)+1), nil
		}}
		if err := runAll(t, nil, wire.RepeatM(step, count, int(seed))); err != nil {
			return false
		}
		got := rec.args("step")
		if len(got) != count {
			return false
		}
		for i, inv := range got {
			if !reflect.DeepEqual(inv, []any{int(seed) + i}) {
				return false
			}
		}
		return true
	}

	if err := quick.Check(propertyThread, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertySequenceSecondZeroArgs proves that however the first
// wire's continuation chain ends, the second wire of a Sequence is
// always invoked with zero arguments.
func TestPropertySequenceSecondZeroArgs(t *testing.T) {
	propertyZero := func(trailing []int) bool {
		endArgs := make([]any, len(trailing))
		for i, v := range trailing {
			endArgs[i] = v
		}

		rec := &recorder{}
		// first's chain carries trailing args up to its Done boundary;
		// Sequence must not leak them into second.
		inner := &stub{rec: rec, name: "inner", result: func(_ *wire.EventLoop, _ []any) (wire.Continuation, error) {
			return wire.Done(), nil
		}}
		first := &stub{rec: rec, name: "first", result: func(_ *wire.EventLoop, _ []any) (wire.Continuation, error) {
			return wire.Continue(inner, endArgs...), nil
		}}
		second := &stub{rec: rec, name: "second"}
		if err := runAll(t, nil, wire.Sequence(first, second)); err != nil {
			return false
		}
		got := rec.args("second")
		return len(got) == 1 && len(got[0]) == 0
	}

	if err := quick.Check(propertyZero, nil); err != nil {
		t.Error(err)
	}
}
