package report

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"commander/internal/eventbus"
	rtsup "commander/internal/runtime/supervisor"
	logx "commander/pkg/logx"
)

// Reporter is the error collaborator shared by every stimulus path.
// ShowError is fire-and-forget and never fails.
type Reporter interface {
	ShowError(message string)
}

// Func adapts a plain function to Reporter.
type Func func(message string)

func (f Func) ShowError(message string) { f(message) }

// Discard drops every report.
var Discard Reporter = Func(func(string) {})

// Report is one surfaced error.
type Report struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Sink delivers reports outside the process (chat, desktop, ...).
type Sink interface {
	Name() string
	Send(ctx context.Context, r Report) error
}

type Config struct {
	Enabled     bool
	QueueSize   int
	RatePerSec  int
	DedupWindow time.Duration
}

const historySize = 100

// A panicking sink restarts the worker with backoff; after sinkMaxRestarts
// the worker stays down and reports are only logged.
const (
	sinkRestartMin  = 500 * time.Millisecond
	sinkRestartMax  = time.Minute
	sinkMaxRestarts = 20
)

// Service logs every reported error, suppresses repeats within the dedup
// window, runs registered hooks, and forwards reports to sinks through a
// rate-limited queue.
type Service struct {
	mu      sync.Mutex
	cfg     Config
	log     logx.Logger
	bus     eventbus.Bus
	limiter *rate.Limiter
	sinks   []Sink
	hooks   []func(message string)
	now     func() time.Time

	queue chan Report
	sup   *rtsup.Supervisor

	dmu   sync.Mutex
	dedup map[string]time.Time

	hmu     sync.Mutex
	history []Report
}

type Option func(*Service)

func WithSink(s Sink) Option {
	return func(svc *Service) {
		if s != nil {
			svc.sinks = append(svc.sinks, s)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

func New(cfg Config, log logx.Logger, bus eventbus.Bus, opts ...Option) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		log:   log,
		bus:   bus,
		now:   time.Now,
		dedup: map[string]time.Time{},
	}
	for _, o := range opts {
		o(s)
	}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if cfg.DedupWindow < 0 {
		cfg.DedupWindow = 0
	}
	s.cfg = cfg
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

// OnError registers a hook that runs synchronously for every non-suppressed report.
func (s *Service) OnError(fn func(message string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// AddSink registers a sink. Sinks added after Start are picked up by the workers.
func (s *Service) AddSink(sink Sink) {
	if sink == nil {
		return
	}
	s.mu.Lock()
	s.sinks = append(s.sinks, sink)
	s.mu.Unlock()
}

// Start launches the sink worker. It is idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue != nil || !s.cfg.Enabled {
		return
	}
	q := make(chan Report, s.cfg.QueueSize)
	s.queue = q
	s.sup = rtsup.New(ctx, rtsup.WithLogger(s.log))
	s.sup.GoRestart("report.sinks", func(c context.Context) error {
		return s.sinkLoop(c, q)
	}, rtsup.WithRestartBackoff(sinkRestartMin, sinkRestartMax), rtsup.WithMaxRestarts(sinkMaxRestarts))
}

// Stop stops the sink worker. Queued reports not yet delivered are dropped.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	sup := s.sup
	s.sup = nil
	s.queue = nil
	s.mu.Unlock()
	if sup != nil {
		_ = sup.Stop(ctx)
	}
}

func (s *Service) ShowError(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	now := s.now()

	s.mu.Lock()
	window := s.cfg.DedupWindow
	hooks := slices.Clone(s.hooks)
	q := s.queue
	s.mu.Unlock()

	if window > 0 && !s.dedupAllow(message, now, window) {
		s.log.Debug("error suppressed (duplicate)", logx.String("message", message))
		s.publish(eventbus.TypeErrorSuppressed, Report{At: now, Message: message})
		return
	}

	r := Report{ID: uuid.NewString(), At: now, Message: message}
	s.log.Error("error reported", logx.String("id", r.ID), logx.String("message", message))
	s.appendHistory(r)
	s.publish(eventbus.TypeErrorReported, r)

	for _, h := range hooks {
		h(message)
	}

	if q != nil {
		select {
		case q <- r:
		default:
			s.log.Debug("report queue full; dropping", logx.String("id", r.ID))
		}
	}
}

// History returns the most recent reports, oldest first.
func (s *Service) History() []Report {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	return append([]Report(nil), s.history...)
}

func (s *Service) appendHistory(r Report) {
	s.hmu.Lock()
	s.history = append(s.history, r)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
	s.hmu.Unlock()
}

func (s *Service) publish(typ string, r Report) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: r.At, Data: r})
}

func (s *Service) dedupAllow(key string, now time.Time, window time.Duration) bool {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	if until, ok := s.dedup[key]; ok && now.Before(until) {
		return false
	}
	for k, until := range s.dedup {
		if !now.Before(until) {
			delete(s.dedup, k)
		}
	}
	s.dedup[key] = now.Add(window)
	return true
}

func (s *Service) sinkLoop(ctx context.Context, q <-chan Report) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-q:
			s.deliver(ctx, r)
		}
	}
}

func (s *Service) deliver(ctx context.Context, r Report) {
	s.mu.Lock()
	sinks := append([]Sink(nil), s.sinks...)
	lim := s.limiter
	s.mu.Unlock()

	for _, sink := range sinks {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return
			}
		}
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := sink.Send(cctx, r)
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("report sink failed", logx.String("sink", sink.Name()), logx.Err(err))
		}
	}
}
