// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"

	"code.hybscloud.com/wire"
)

// errTest is the sentinel task failure used across tests.
var errTest = errors.New("test failure")

// shellCommand builds an unstarted shell invocation for process tests.
func shellCommand(script string) *exec.Cmd {
	return exec.Command("/bin/sh", "-c", script)
}

// recorder collects invocations (wire name plus argument list) in the
// order the gate let them run.
type recorder struct {
	mu    sync.Mutex
	names []string
	argss [][]any
}

func (r *recorder) record(name string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.argss = append(r.argss, append([]any(nil), args...))
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.names {
		if s == name {
			n++
		}
	}
	return n
}

func (r *recorder) order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func (r *recorder) args(name string) [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [][]any
	for i, s := range r.names {
		if s == name {
			out = append(out, r.argss[i])
		}
	}
	return out
}

// stub is a comparable test wire: it records each invocation and
// returns the configured result. Pointer identity makes assertions on
// Continuation.Next possible.
type stub struct {
	rec    *recorder
	name   string
	result func(ev *wire.EventLoop, args []any) (wire.Continuation, error)
}

func (s *stub) Execute(ev *wire.EventLoop, args ...any) (wire.Continuation, error) {
	if s.rec != nil {
		s.rec.record(s.name, args)
	}
	if s.result == nil {
		return wire.Done(), nil
	}
	return s.result(ev, args)
}

// runAll drives the given wires to completion on a fresh loop.
func runAll(t *testing.T, opts []wire.Option, wires ...wire.Wire) error {
	t.Helper()
	ev := wire.New(opts...)
	for _, w := range wires {
		ev.Start(w)
	}
	return ev.Run(context.Background())
}
