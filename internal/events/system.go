package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"commander/internal/report"
	logx "commander/pkg/logx"
)

// DefaultPollInterval bounds each wait for the next occurrence.
const DefaultPollInterval = time.Second

// ErrSourceClosed ends a subscription without an error report.
var ErrSourceClosed = errors.New("events: source closed")

// Source opens subscriptions for one event type.
type Source interface {
	Subscribe(ctx context.Context, filter string) (Subscription, error)
}

// Subscription yields matching occurrences. Next returns ctx.Err() when
// nothing happened before ctx ended.
type Subscription interface {
	Next(ctx context.Context) (any, error)
	Close() error
}

// Sources maps an event type (the WmiEventType property) to its source.
type Sources map[string]Source

// SystemProvider runs one task per system event, each forwarding occurrences
// from a subscription as notifications.
type SystemProvider struct {
	sources  Sources
	log      logx.Logger
	reporter report.Reporter
	poll     time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

type SystemOption func(*SystemProvider)

func WithPollInterval(d time.Duration) SystemOption {
	return func(p *SystemProvider) {
		if d > 0 {
			p.poll = d
		}
	}
}

func WithReporter(r report.Reporter) SystemOption {
	return func(p *SystemProvider) {
		if r != nil {
			p.reporter = r
		}
	}
}

func NewSystemProvider(sources Sources, log logx.Logger, opts ...SystemOption) *SystemProvider {
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &SystemProvider{
		sources:  sources,
		log:      log.With(logx.String("comp", "events.system")),
		reporter: report.Discard,
		poll:     DefaultPollInterval,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *SystemProvider) Name() string { return "system" }

// SetEvents cancels the running tasks, waits for all of them to return, and
// then starts one task per matching event. The wait is bounded by the poll
// interval because every Next call observes cancellation.
func (p *SystemProvider) SetEvents(gen uint64, events []Event, notify Notify) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		if err := p.group.Wait(); err != nil {
			p.log.Debug("previous subscriptions ended with error", logx.Err(err))
		}
		p.cancel, p.group = nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := new(errgroup.Group)
	started := 0
	for _, ev := range events {
		if ev.Category != CategoryWindows && ev.Category != CategorySystem {
			continue
		}
		typ := ev.Properties[PropEventType]
		filter := ev.Properties[PropEventFilter]
		src, ok := p.sources[typ]
		if !ok {
			p.reporter.ShowError(fmt.Sprintf("events: id %d: unknown event type %q", ev.ID, typ))
			continue
		}
		ev := ev
		started++
		g.Go(func() error {
			return p.watch(ctx, gen, ev.ID, typ, src, filter, notify)
		})
	}
	p.cancel, p.group = cancel, g
	if started > 0 {
		p.log.Info("subscriptions started", logx.Uint64("gen", gen), logx.Int("count", started))
	}
}

func (p *SystemProvider) watch(ctx context.Context, gen uint64, id int, typ string, src Source, filter string, notify Notify) error {
	sub, err := src.Subscribe(ctx, filter)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		p.reporter.ShowError(fmt.Sprintf("events: id %d: subscribe %s %q: %v", id, typ, filter, err))
		return err
	}
	defer sub.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}
		nctx, cancel := context.WithTimeout(ctx, p.poll)
		payload, err := sub.Next(nctx)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			continue
		case errors.Is(err, ErrSourceClosed):
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			p.reporter.ShowError(fmt.Sprintf("events: id %d: %s: %v", id, typ, err))
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		notify(Notification{Gen: gen, ID: id, Args: []any{payload}})
	}
}
