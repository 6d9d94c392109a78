// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
)

// Binding maps one readiness source to its dispatch wire.
type Binding struct {
	Source Source
	Wire   Wire
}

// On constructs a poller binding.
func On(src Source, w Wire) Binding {
	return Binding{Source: src, Wire: w}
}

// Poller is a wire that multiplexes readiness sources. Each invocation
// performs one [EventLoop.WaitReady] round over every registered
// source, spawns the dispatch wire of each ready source as an
// independent task via [EventLoop.Start] (never inline, so a slow
// dispatch wire cannot stall subsequent rounds), and continues to
// itself — an unbounded self-repeating wire.
//
// The registry is built at construction and read-only afterwards.
// Dispatch order across several sources ready in the same round is
// non-deterministic.
type Poller struct {
	sources  []Source
	dispatch map[Source]Wire
	interval time.Duration
	done     atomix.Uint32
}

// NewPoller creates a poller from the given bindings. interval is the
// round-local wait timeout: a round that finds nothing ready within it
// simply continues to the next round, which keeps a poller responsive
// to [Poller.Shutdown] on loops running without a deadline; an
// interval of zero or less makes each round wait indefinitely.
//
// Registering the same source twice is a configuration error
// ([ErrDuplicateSource]), rejected here rather than during polling.
func NewPoller(interval time.Duration, bindings ...Binding) (*Poller, error) {
	p := &Poller{
		sources:  make([]Source, 0, len(bindings)),
		dispatch: make(map[Source]Wire, len(bindings)),
		interval: interval,
	}
	for i, b := range bindings {
		if b.Source == nil || b.Wire == nil {
			return nil, fmt.Errorf("wire: poller binding %d: nil source or wire", i)
		}
		if _, dup := p.dispatch[b.Source]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateSource, b.Source)
		}
		p.sources = append(p.sources, b.Source)
		p.dispatch[b.Source] = b.Wire
	}
	return p, nil
}

// Shutdown makes the next poller invocation signal Done instead of
// polling. Only needed when the event loop runs without a deadline.
// Safe to call from any goroutine, including a dispatch wire.
func (p *Poller) Shutdown() {
	p.done.Store(1)
}

// Execute implements [Wire]: one polling round.
func (p *Poller) Execute(ev *EventLoop, _ ...any) (Continuation, error) {
	if p.done.Load() != 0 {
		return Done(), nil
	}
	ready, err := ev.WaitReady(p.sources, p.interval)
	if err != nil {
		if errors.Is(err, ErrSourceClosed) && p.done.Load() != 0 {
			return Done(), nil
		}
		return Done(), err
	}
	if p.done.Load() != 0 {
		return Done(), nil
	}
	for _, s := range ready {
		ev.Start(p.dispatch[s])
	}
	return Continue(p), nil
}
