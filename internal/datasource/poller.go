// Package datasource polls load actions on fixed intervals and keeps a
// bounded, timestamped history of their results.
package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"commander/internal/action"
	"commander/internal/eventbus"
	"commander/internal/report"
	logx "commander/pkg/logx"
)

// DataSource describes one polled value.
type DataSource struct {
	Name            string
	LoadAction      action.Action
	RefreshInterval time.Duration
	ArgumentList    []any
	HistoryLimit    int
}

// Evaluator runs an action and returns its parsed result.
type Evaluator interface {
	Evaluate(ctx context.Context, a action.Action, args ...any) (any, error)
}

// Snapshot is a copy of a source's state.
type Snapshot struct {
	Name         string    `json:"name"`
	CurrentValue any       `json:"current_value"`
	UpdatedAt    time.Time `json:"updated_at"`
	HistoryLimit int       `json:"history_limit"`
	History      []Sample  `json:"history"`
	Polls        uint64    `json:"polls"`
	Failures     uint64    `json:"failures"`
}

// Update is published on the bus after every successful poll.
type Update struct {
	Name  string    `json:"name"`
	At    time.Time `json:"at"`
	Value any       `json:"value"`
}

type Poller struct {
	exec     Evaluator
	reporter report.Reporter
	log      logx.Logger
	bus      eventbus.Bus
	clock    clockwork.Clock

	// installMu serializes SetDataSources calls.
	installMu sync.Mutex

	mu      sync.RWMutex
	gen     *generation
	seeding *generation
}

type generation struct {
	id      string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	sources map[string]*source
}

type source struct {
	def DataSource

	mu       sync.Mutex
	current  any
	updated  time.Time
	hist     history
	polls    uint64
	failures uint64
}

type Option func(*Poller)

func WithClock(c clockwork.Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

func New(exec Evaluator, reporter report.Reporter, log logx.Logger, bus eventbus.Bus, opts ...Option) *Poller {
	if reporter == nil {
		reporter = report.Discard
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Poller{
		exec:     exec,
		reporter: reporter,
		log:      log.With(logx.String("comp", "datasource")),
		bus:      bus,
		clock:    clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SetDataSources replaces every source. The previous generation is canceled
// first; each new source is then seeded by one synchronous load, in order,
// before its interval loop starts. Duplicate names keep the first entry.
// A Stop that lands while seeding cancels the new generation too, and no
// loop is started for it.
func (p *Poller) SetDataSources(ctx context.Context, sources []DataSource) {
	p.installMu.Lock()
	defer p.installMu.Unlock()

	gctx, cancel := context.WithCancel(ctx)
	g := &generation{id: uuid.NewString(), cancel: cancel, sources: make(map[string]*source, len(sources))}

	p.mu.Lock()
	old := p.gen
	p.gen = nil
	p.seeding = g
	p.mu.Unlock()
	if old != nil {
		old.cancel()
	}

	order := make([]*source, 0, len(sources))
	for _, ds := range sources {
		if ds.Name == "" {
			p.reporter.ShowError("datasource: entry without a name ignored")
			continue
		}
		if _, dup := g.sources[ds.Name]; dup {
			p.reporter.ShowError(fmt.Sprintf("datasource: duplicate name %q ignored", ds.Name))
			continue
		}
		src := &source{def: ds}
		g.sources[ds.Name] = src
		order = append(order, src)
	}

	for _, src := range order {
		if gctx.Err() != nil {
			break
		}
		p.poll(ctx, gctx, src)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seeding == g {
		p.seeding = nil
	}
	if gctx.Err() != nil {
		cancel()
		p.log.Info("data sources discarded: stopped while seeding", logx.String("gen", g.id))
		return
	}
	p.gen = g
	for _, src := range order {
		if src.def.RefreshInterval <= 0 {
			p.log.Warn("no refresh interval; value is loaded once", logx.String("source", src.def.Name))
			continue
		}
		g.wg.Add(1)
		go func(src *source) {
			defer g.wg.Done()
			p.loop(ctx, gctx, src)
		}(src)
	}
	p.log.Info("data sources installed", logx.String("gen", g.id), logx.Int("sources", len(order)))
}

// loop waits a full interval after each poll completes, so a slow load
// skips ticks instead of queuing them.
func (p *Poller) loop(base, gen context.Context, src *source) {
	for {
		t := p.clock.NewTimer(src.def.RefreshInterval)
		select {
		case <-gen.Done():
			t.Stop()
			return
		case <-t.Chan():
		}
		if gen.Err() != nil {
			return
		}
		p.poll(base, gen, src)
	}
}

func (p *Poller) poll(base, gen context.Context, src *source) {
	if p.exec == nil {
		return
	}
	v, err := p.exec.Evaluate(base, src.def.LoadAction, src.def.ArgumentList...)
	if err != nil {
		src.mu.Lock()
		src.failures++
		src.mu.Unlock()
		p.reporter.ShowError(fmt.Sprintf("datasource: %s: %v", src.def.Name, err))
		return
	}

	at := p.clock.Now()
	src.mu.Lock()
	src.current = v
	src.updated = at
	src.polls++
	src.hist.put(at, v, src.def.HistoryLimit)
	src.mu.Unlock()

	if p.bus != nil && gen.Err() == nil {
		p.bus.Publish(eventbus.Event{Type: eventbus.TypeDataSourceUpdated, Time: at, Data: Update{Name: src.def.Name, At: at, Value: v}})
	}
}

// Snapshot returns a copy of the named source's state.
func (p *Poller) Snapshot(name string) (Snapshot, bool) {
	p.mu.RLock()
	g := p.gen
	p.mu.RUnlock()
	if g == nil {
		return Snapshot{}, false
	}
	src, ok := g.sources[name]
	if !ok {
		return Snapshot{}, false
	}
	return src.snapshot(), true
}

// List returns every source's state sorted by name.
func (p *Poller) List() []Snapshot {
	p.mu.RLock()
	g := p.gen
	p.mu.RUnlock()
	if g == nil {
		return nil
	}
	out := make([]Snapshot, 0, len(g.sources))
	for _, src := range g.sources {
		out = append(out, src.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stop cancels every loop and waits for them to exit or for ctx to end. A
// generation still seeding is canceled as well and never starts its loops.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	g, seeding := p.gen, p.seeding
	p.gen, p.seeding = nil, nil
	p.mu.Unlock()
	if seeding != nil {
		seeding.cancel()
	}
	if g == nil {
		return nil
	}
	g.cancel()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *source) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Name:         s.def.Name,
		CurrentValue: s.current,
		UpdatedAt:    s.updated,
		HistoryLimit: s.def.HistoryLimit,
		History:      s.hist.copy(),
		Polls:        s.polls,
		Failures:     s.failures,
	}
}
