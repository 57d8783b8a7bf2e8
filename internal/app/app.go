package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"commander/internal/config"
	"commander/internal/eventbus"
	"commander/internal/runtime/supervisor"
	logx "commander/pkg/logx"
)

type App struct {
	cfgm *config.ConfigManager
	opts options
	c    components
	log  logx.Logger

	sup *supervisor.Supervisor

	// actions is the base context for user actions. It outlives the
	// supervisor so the Stop event still runs after a signal.
	actions       context.Context
	cancelActions context.CancelFunc

	shutdownCmd atomic.Bool
	stopOnce    sync.Once
	stopErr     error
}

// New loads and validates the configuration at cfgPath and wires every
// component. Nothing runs until Start.
func New(cfgPath string, opts ...Option) (*App, error) {
	o := options{notify: true}
	for _, fn := range opts {
		fn(&o)
	}

	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgm.Path(), err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgm.Path(), err)
	}

	c, err := build(cfg, o)
	if err != nil {
		return nil, err
	}
	log := c.Log.With(logx.String("comp", "app"))
	cfgm.SetLogger(c.Log.With(logx.String("comp", "config")))

	return &App{cfgm: cfgm, opts: o, c: c, log: log}, nil
}

// Endpoint is the IPC socket the agent listens on.
func (a *App) Endpoint() string { return a.c.Server.Endpoint() }

// Done is closed when the agent should stop: a fatal error, a shutdown
// command over IPC, or Stop.
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Start binds the IPC endpoint, applies the configuration, fires the
// lifecycle Start event and begins serving. It fails fast with
// ipc.ErrAlreadyRunning when another agent owns the endpoint.
func (a *App) Start(ctx context.Context) error {
	if err := a.c.Server.Listen(); err != nil {
		return err
	}

	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))
	run := a.sup.Context()
	a.actions, a.cancelActions = context.WithCancel(context.WithoutCancel(ctx))

	a.c.Reporter.OnError(a.c.Lifecycle.Error)
	a.c.Reporter.Start(run)

	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error { return validate(cfg) })
	a.cfgm.OnReject(func(err error) {
		a.c.Reporter.ShowError(fmt.Sprintf("config: rejected, keeping previous: %v", err))
	})

	a.apply(a.actions, a.cfgm.Get())
	a.c.Lifecycle.Start()

	a.sup.Go("ipc.serve", func(c context.Context) error { return a.c.Server.Serve(c) })
	a.sup.Go0("ipc.stopped", func(c context.Context) {
		select {
		case <-c.Done():
		case <-a.c.Server.Stopped():
			if c.Err() != nil {
				return
			}
			a.shutdownCmd.Store(true)
			a.log.Info("shutdown requested over ipc")
			a.sup.Cancel()
		}
	})

	if a.c.Bus != nil {
		evs, unsub := a.c.Bus.Subscribe(128)
		a.sup.Go0("eventbus.log", func(c context.Context) {
			defer unsub()
			for {
				select {
				case <-c.Done():
					return
				case e, ok := <-evs:
					if !ok {
						return
					}
					a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
				}
			}
		})
	}

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(c, sub)
	})
	a.sup.Go("config.watch", func(c context.Context) error { return a.cfgm.Watch(c) })

	if a.opts.notify {
		sdNotify(a.log, daemon.SdNotifyReady)
	}
	a.log.Info("agent started", logx.String("endpoint", a.c.Server.Endpoint()), logx.String("config", a.cfgm.Path()))
	return nil
}

// apply installs every configured set. Failures are reported and never
// abort the agent.
func (a *App) apply(ctx context.Context, cfg *config.Config) {
	c := a.c
	if err := c.FileAssociations.Set(ctx, mapFileAssociations(cfg)); err != nil {
		c.Reporter.ShowError(fmt.Sprintf("file associations: %v", err))
	}
	if err := c.Shortcuts.Set(ctx, mapShortcuts(cfg)); err != nil {
		c.Reporter.ShowError(fmt.Sprintf("shortcuts: %v", err))
	}
	if err := c.ContextMenus.Set(ctx, mapContextMenus(cfg)); err != nil {
		c.Reporter.ShowError(fmt.Sprintf("context menus: %v", err))
	}
	if err := c.Protocols.Set(ctx, mapProtocols(cfg)); err != nil {
		c.Reporter.ShowError(fmt.Sprintf("protocols: %v", err))
	}
	c.Cron.Schedule(ctx, mapSchedules(cfg))
	c.Poller.SetDataSources(ctx, mapDataSources(cfg))
	c.Dispatcher.SetEvents(ctx, mapEvents(cfg))
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) {
	lastApplied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: only the newest pending config is applied.
		drain:
			for {
				select {
				case newer, ok := <-sub:
					if !ok {
						return
					}
					if newer != nil {
						next = newer
					}
				default:
					break drain
				}
			}
			if next == nil {
				continue
			}

			sections, attrs := config.SummarizeConfigChange(lastApplied, next)
			lastApplied = next
			a.c.Logs.Apply(mapLogConfig(next))
			if rc, err := mapReporterConfig(next); err == nil {
				a.c.Reporter.Apply(rc)
			}
			a.apply(a.actions, next)
			if a.c.Bus != nil {
				a.c.Bus.Publish(eventbus.Event{Type: eventbus.TypeConfigApplied, Data: sections})
			}

			if len(sections) > 0 {
				fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
				a.log.Info("config reloaded", fields...)
			} else {
				a.log.Info("config reloaded (no changes)")
			}
		}
	}
}

// Stop fires the lifecycle Stop event, then shuts every component down in
// order. Each step is bounded and honors ctx. It is safe to call more than
// once.
func (a *App) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { a.stopErr = a.stop(ctx) })
	return a.stopErr
}

func (a *App) stop(ctx context.Context) error {
	if a.sup == nil {
		_ = a.c.Store.Close()
		_ = a.c.Logs.Close()
		return nil
	}
	reason := a.stopReason()
	a.log.Info("stopping", logx.String("reason", string(reason)))
	if a.opts.notify {
		sdNotify(a.log, daemon.SdNotifyStopping)
	}

	// The Stop action runs before anything is torn down.
	a.c.Lifecycle.Stop()
	a.sup.Cancel()
	a.cancelActions()

	a.step(ctx, "ipc", time.Second, func(context.Context) error { return a.c.Server.Close() })
	a.step(ctx, "events", 2*time.Second, func(context.Context) error { a.c.Dispatcher.Stop(); return nil })
	a.step(ctx, "cron", 2*time.Second, a.c.Cron.Stop)
	a.step(ctx, "datasource", 2*time.Second, a.c.Poller.Stop)
	a.step(ctx, "report", time.Second, func(c context.Context) error { a.c.Reporter.Stop(c); return nil })
	a.step(ctx, "supervisor", 2*time.Second, a.sup.Wait)
	a.step(ctx, "storage", time.Second, func(context.Context) error { return a.c.Store.Close() })

	a.log.Info("stopped")
	_ = a.c.Logs.Close()
	return a.sup.Err()
}

func (a *App) stopReason() StopReason {
	switch {
	case a.sup.Err() != nil:
		return StopFatalError
	case a.shutdownCmd.Load():
		return StopShutdownCommand
	default:
		return StopRequested
	}
}

// step runs one shutdown step with an upper bound so a stuck component
// can't stall the whole stop. The caller's deadline is never extended.
func (a *App) step(ctx context.Context, name string, max time.Duration, fn func(context.Context) error) {
	start := time.Now()
	stepCtx, cancel := context.WithTimeout(ctx, max)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic in stop step %s: %v", name, r)
			}
		}()
		done <- fn(stepCtx)
	}()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
		}
		a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
	case <-stepCtx.Done():
		a.log.Warn("stop step deadline reached (continuing)", logx.String("name", name), logx.Duration("elapsed", time.Since(start)))
	}
}
