// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrMalformedContinuation reports a wire invocation whose result
	// was a Continue carrying no next wire. Contract violation: fatal
	// to the whole scheduling scope under any failure policy.
	ErrMalformedContinuation = errors.New("wire: malformed continuation")

	// ErrDuplicateSource reports a poller constructed with the same
	// readiness source registered twice.
	ErrDuplicateSource = errors.New("wire: duplicate poller source")

	// ErrSourceClosed reports a readiness source whose underlying
	// transport has been closed and will never become ready again.
	ErrSourceClosed = errors.New("wire: source closed")

	// ErrUnhandledEffect reports a bridged kont protocol that suspended
	// on an operation not implementing [Dispatcher].
	ErrUnhandledEffect = errors.New("wire: unhandled effect operation")
)

// panicError carries a panic recovered from a wire invocation,
// together with the stack at the recovery point. It propagates through
// the scheduler like any other task failure.
type panicError struct {
	value any
	stack []byte
}

// newPanicError captures the current stack. Called from the deferred
// recover in the task runner, so the panic site is near the top.
func newPanicError(v any) *panicError {
	buf := make([]byte, 4<<10)
	buf = buf[:runtime.Stack(buf, false)]
	return &panicError{value: v, stack: buf}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic in wire execution: %v\n%s", e.value, e.stack)
}

// Unwrap exposes a panic value that is itself an error to errors.Is/As.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
