package events

import (
	"context"
	"fmt"
	"sync"

	"commander/internal/action"
	"commander/internal/eventbus"
	"commander/internal/report"
	logx "commander/pkg/logx"
)

type Executor interface {
	Execute(ctx context.Context, a action.Action, args ...any) error
}

type Dispatcher struct {
	exec      Executor
	reporter  report.Reporter
	log       logx.Logger
	bus       eventbus.Bus
	providers []Provider

	// setMu serializes SetEvents/Stop.
	setMu sync.Mutex

	mu       sync.RWMutex
	gen      uint64
	registry map[int]Event
	base     context.Context
}

func NewDispatcher(exec Executor, reporter report.Reporter, log logx.Logger, providers ...Provider) *Dispatcher {
	if reporter == nil {
		reporter = report.Discard
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	ps := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Dispatcher{
		exec:      exec,
		reporter:  reporter,
		log:       log.With(logx.String("comp", "events")),
		providers: ps,
		base:      context.Background(),
	}
}

// UseBus publishes every dispatched notification on b.
func (d *Dispatcher) UseBus(b eventbus.Bus) { d.bus = b }

// SetEvents replaces the registry. The old registry is invalidated before
// providers are reconfigured, and the new one is installed only after every
// provider has torn down its previous subscriptions. Actions run under ctx.
func (d *Dispatcher) SetEvents(ctx context.Context, events []Event) {
	d.setMu.Lock()
	defer d.setMu.Unlock()

	next := make(map[int]Event, len(events))
	kept := make([]Event, 0, len(events))
	for _, ev := range events {
		if _, dup := next[ev.ID]; dup {
			d.reporter.ShowError(fmt.Sprintf("events: duplicate id %d ignored", ev.ID))
			continue
		}
		next[ev.ID] = ev
		kept = append(kept, ev)
	}

	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.registry = nil
	d.mu.Unlock()

	for _, p := range d.providers {
		p.SetEvents(gen, kept, d.notify)
	}

	d.mu.Lock()
	if d.gen == gen {
		d.registry = next
		d.base = ctx
	}
	d.mu.Unlock()
	d.log.Info("events installed", logx.Uint64("gen", gen), logx.Int("events", len(kept)))
}

// Stop tears down every provider and clears the registry.
func (d *Dispatcher) Stop() {
	d.setMu.Lock()
	defer d.setMu.Unlock()

	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.registry = nil
	d.mu.Unlock()
	for _, p := range d.providers {
		p.SetEvents(gen, nil, d.notify)
	}
}

// Registered returns the number of installed events.
func (d *Dispatcher) Registered() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.registry)
}

func (d *Dispatcher) notify(n Notification) {
	d.mu.RLock()
	if n.Gen != d.gen || d.registry == nil {
		d.mu.RUnlock()
		d.log.Debug("stale notification dropped", logx.Int("id", n.ID), logx.Uint64("gen", n.Gen))
		return
	}
	ev, ok := d.registry[n.ID]
	ctx := d.base
	d.mu.RUnlock()
	if !ok {
		return
	}

	if d.bus != nil {
		d.bus.Publish(eventbus.Event{Type: eventbus.TypeEventDispatched, Data: map[string]any{"id": ev.ID, "category": ev.Category, "event": ev.Event}})
	}
	if d.exec == nil {
		return
	}
	if err := d.exec.Execute(ctx, ev.Action, n.Args...); err != nil {
		if n.LogOnly {
			d.log.Error("event action failed", logx.Int("id", ev.ID), logx.String("event", ev.Event), logx.Err(err))
			return
		}
		d.reporter.ShowError(fmt.Sprintf("events: %s/%s (id %d): %v", ev.Category, ev.Event, ev.ID, err))
	}
}
