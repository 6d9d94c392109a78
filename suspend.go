// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"os/exec"
	"time"

	"code.hybscloud.com/iox"
)

// Suspension primitives. Each releases the execution gate for the
// duration of its blocking region and re-acquires it before returning,
// so sibling tasks run while the caller is suspended. They must only
// be called from inside a wire's Execute.

// Sleep suspends the calling wire for d. Returns the scope's context
// error if the run is cancelled before the timer fires. A
// non-positive d yields once without arming a timer.
func (ev *EventLoop) Sleep(d time.Duration) error {
	ctx := ev.runningCtx()
	ev.release()
	defer ev.acquire()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunProcess suspends the calling wire until cmd exits. The command
// must not have been started. On cancellation the process is killed
// and waited for before the context error is returned; otherwise the
// result of Wait is returned as the process outcome (an *ExitError
// for a non-zero exit).
func (ev *EventLoop) RunProcess(cmd *exec.Cmd) error {
	ctx := ev.runningCtx()
	ev.release()
	defer ev.acquire()
	if err := cmd.Start(); err != nil {
		return err
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	select {
	case err := <-exited:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-exited
		return ctx.Err()
	}
}

// WaitReady suspends the calling wire until at least one of sources is
// ready, the round timeout expires (empty result, nil error), or the
// scope is cancelled. Waiting is adaptive backoff over non-blocking
// [Source.Poll] rounds (iox.Backoff, the I/O readiness waiting
// strategy); a Poll error other than iox.ErrWouldBlock aborts the wait
// and propagates. A timeout of zero or less waits indefinitely.
//
// The ready subset preserves registration order within one round;
// ordering across rounds and tasks is readiness-dependent.
func (ev *EventLoop) WaitReady(sources []Source, timeout time.Duration) ([]Source, error) {
	ctx := ev.runningCtx()
	ev.release()
	defer ev.acquire()
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	var bo iox.Backoff
	for {
		var ready []Source
		for _, s := range sources {
			err := s.Poll()
			switch {
			case err == nil:
				ready = append(ready, s)
			case errors.Is(err, iox.ErrWouldBlock):
			default:
				return nil, err
			}
		}
		if len(ready) > 0 {
			return ready, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil, nil
		}
		bo.Wait()
	}
}

// yield releases the gate around wait, checking for cancellation
// first. Used by dispatchWait to back off between non-blocking
// dispatch attempts without starving sibling tasks.
func (ev *EventLoop) yield(wait func()) error {
	if err := ev.runningCtx().Err(); err != nil {
		return err
	}
	ev.release()
	wait()
	ev.acquire()
	return nil
}
