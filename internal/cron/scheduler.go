package cron

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	rcron "github.com/robfig/cron/v3"

	"commander/internal/action"
	"commander/internal/eventbus"
	"commander/internal/report"
	logx "commander/pkg/logx"
)

// Schedule binds a cron expression to an action.
type Schedule struct {
	Name   string
	Cron   string
	Action action.Action
}

func (s Schedule) label() string {
	if s.Name != "" {
		return s.Name
	}
	if l := s.Action.Label(); l != "" {
		return l
	}
	return s.Cron
}

// Executor is the serialized action runner.
type Executor interface {
	Execute(ctx context.Context, a action.Action, args ...any) error
}

// JobInfo is a point-in-time view of one job.
type JobInfo struct {
	Name    string    `json:"name"`
	Cron    string    `json:"cron"`
	Next    time.Time `json:"next"`
	Prev    time.Time `json:"prev"`
	Runs    uint64    `json:"runs"`
	Dormant bool      `json:"dormant"`
}

type Scheduler struct {
	exec     Executor
	reporter report.Reporter
	log      logx.Logger
	bus      eventbus.Bus
	clock    clockwork.Clock
	loc      *time.Location
	parser   rcron.Parser

	mu  sync.Mutex
	gen *generation
}

type Option func(*Scheduler)

func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the zone used to evaluate expressions. Default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithBus(b eventbus.Bus) Option { return func(s *Scheduler) { s.bus = b } }

func New(exec Executor, reporter report.Reporter, log logx.Logger, opts ...Option) *Scheduler {
	if reporter == nil {
		reporter = report.Discard
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Scheduler{
		exec:     exec,
		reporter: reporter,
		log:      log.With(logx.String("comp", "cron")),
		clock:    clockwork.NewRealClock(),
		loc:      time.Local,
		// SecondOptional allows both 5-field and 6-field (with seconds) specs.
		parser: rcron.NewParser(rcron.SecondOptional | rcron.Minute | rcron.Hour | rcron.Dom | rcron.Month | rcron.Dow | rcron.Descriptor),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LoadLocation resolves an IANA zone name; empty means local time.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Schedule replaces the active set with schedules and returns the number of
// jobs armed. Invalid expressions are reported and skipped. Actions run under
// ctx, so canceling ctx also aborts an in-flight action; replacing the set
// does not.
func (s *Scheduler) Schedule(ctx context.Context, schedules []Schedule) int {
	jobs := make([]*job, 0, len(schedules))
	for _, sc := range schedules {
		spec, err := s.parser.Parse(strings.TrimSpace(sc.Cron))
		if err != nil {
			s.reporter.ShowError(fmt.Sprintf("cron: %s: invalid expression %q: %v", sc.label(), sc.Cron, err))
			continue
		}
		jobs = append(jobs, &job{sched: sc, spec: spec})
	}

	gctx, cancel := context.WithCancel(ctx)
	g := &generation{id: uuid.NewString(), cancel: cancel, jobs: jobs}

	s.mu.Lock()
	old := s.gen
	if old != nil {
		old.cancel()
	}
	s.gen = g
	for _, j := range jobs {
		g.wg.Add(1)
		go func(j *job) {
			defer g.wg.Done()
			s.run(ctx, gctx, j)
		}(j)
	}
	s.mu.Unlock()

	s.log.Info("schedules installed", logx.String("gen", g.id), logx.Int("jobs", len(jobs)), logx.Int("skipped", len(schedules)-len(jobs)))
	return len(jobs)
}

// Stop cancels the active generation and waits for its jobs to return, or
// for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	g := s.gen
	s.gen = nil
	s.mu.Unlock()
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

// Jobs returns a snapshot of the active generation.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	g := s.gen
	s.mu.Unlock()
	if g == nil {
		return nil
	}
	out := make([]JobInfo, 0, len(g.jobs))
	for _, j := range g.jobs {
		out = append(out, j.info())
	}
	return out
}
