package app

import (
	"os"
	"strings"
	"time"

	"go.uber.org/dig"

	"commander/internal/action"
	"commander/internal/config"
	"commander/internal/cron"
	"commander/internal/datasource"
	"commander/internal/eventbus"
	"commander/internal/events"
	"commander/internal/integration"
	"commander/internal/ipc"
	"commander/internal/report"
	"commander/internal/router"
	"commander/internal/storage"
	logx "commander/pkg/logx"
)

// endpoint is a named type so dig can tell the socket path from other strings.
type endpoint string

// components is everything the app drives after wiring.
type components struct {
	dig.In

	Logs       *logx.Service
	Log        logx.Logger
	Bus        eventbus.Bus
	Reporter   *report.Service
	Store      storage.Store
	Server     *ipc.Server
	Cron       *cron.Scheduler
	Poller     *datasource.Poller
	Lifecycle  *events.LifecycleProvider
	Dispatcher *events.Dispatcher

	FileAssociations *integration.FileAssociations
	Shortcuts        *integration.Shortcuts
	ContextMenus     *integration.ContextMenus
	Protocols        *integration.Protocols
}

type handlers struct {
	dig.Out

	FileAssociations *integration.FileAssociations
	Shortcuts        *integration.Shortcuts
	ContextMenus     *integration.ContextMenus
	Protocols        *integration.Protocols
}

// build wires every component from cfg.
func build(cfg *config.Config, o options) (components, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		func() options { return o },
		newLogging,
		newBus,
		newReporter,
		func(s *report.Service) report.Reporter { return s },
		newExecutor,
		newStore,
		newInstaller,
		newHandlers,
		newRouter,
		newEndpoint,
		newServer,
		newScheduler,
		newPoller,
		events.NewLifecycleProvider,
		newSystemProvider,
		newDispatcher,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return components{}, err
		}
	}

	var out components
	err := d.Invoke(func(c components) { out = c })
	return out, err
}

func newLogging(cfg *config.Config) (*logx.Service, logx.Logger) {
	return logx.New(mapLogConfig(cfg))
}

func newBus() eventbus.Bus { return eventbus.New(256) }

func newReporter(cfg *config.Config, log logx.Logger, bus eventbus.Bus) (*report.Service, error) {
	rc, err := mapReporterConfig(cfg)
	if err != nil {
		return nil, err
	}
	var opts []report.Option
	if t := cfg.Reporter.Telegram; t.Enabled {
		host, _ := os.Hostname()
		sink, err := report.NewTelegramSink(t.Token, t.ChatID, host)
		if err != nil {
			return nil, err
		}
		opts = append(opts, report.WithSink(sink))
	}
	return report.New(rc, log.With(logx.String("comp", "report")), bus, opts...), nil
}

func newExecutor(cfg *config.Config, log logx.Logger) (*action.Executor, error) {
	timeout, err := config.ParseDurationField("executor.default_timeout", cfg.Executor.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	runner := action.ShellRunner{Shell: cfg.Executor.Shell, MaxOutput: cfg.Executor.MaxOutput}
	return action.NewExecutor(runner,
		action.WithLogger(log.With(logx.String("comp", "executor"))),
		action.WithDefaultTimeout(timeout),
	), nil
}

func newStore(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	return storage.Open(sc, log)
}

func newInstaller(cfg *config.Config, o options) (integration.Installer, error) {
	if o.installer != nil {
		return o.installer, nil
	}
	if !cfg.Integration.DesktopEntries {
		return integration.NopInstaller{}, nil
	}
	return integration.NewDesktopEntries(cfg.Integration.ApplicationsDir, "")
}

func newHandlers(store storage.Store, exec *action.Executor, rep report.Reporter, log logx.Logger, inst integration.Installer) handlers {
	return handlers{
		FileAssociations: integration.NewFileAssociations(store, exec, rep, log),
		Shortcuts:        integration.NewShortcuts(store, exec, rep, log, inst),
		ContextMenus:     integration.NewContextMenus(store, exec, rep, log),
		Protocols:        integration.NewProtocols(store, exec, rep, log, inst),
	}
}

func newRouter(fa *integration.FileAssociations, sc *integration.Shortcuts, cm *integration.ContextMenus, pr *integration.Protocols) *router.Router {
	return router.New(router.Handlers{
		FileAssociations: fa,
		Shortcuts:        sc,
		ContextMenus:     cm,
		Protocols:        pr,
	})
}

func newEndpoint(cfg *config.Config, o options) endpoint {
	if o.endpoint != "" {
		return endpoint(o.endpoint)
	}
	if ep := strings.TrimSpace(cfg.IPC.Endpoint); ep != "" {
		return endpoint(ep)
	}
	return endpoint(ipc.DefaultEndpoint())
}

func newServer(ep endpoint, r *router.Router, rep report.Reporter, log logx.Logger, bus eventbus.Bus) *ipc.Server {
	return ipc.NewServer(string(ep), r, rep, log, ipc.WithBus(bus))
}

func newScheduler(cfg *config.Config, exec *action.Executor, rep report.Reporter, log logx.Logger, bus eventbus.Bus) (*cron.Scheduler, error) {
	loc, err := cron.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, err
	}
	return cron.New(exec, rep, log, cron.WithLocation(loc), cron.WithBus(bus)), nil
}

func newPoller(exec *action.Executor, rep report.Reporter, log logx.Logger, bus eventbus.Bus) *datasource.Poller {
	return datasource.New(exec, rep, log, bus)
}

func newSystemProvider(o options, rep report.Reporter, log logx.Logger) *events.SystemProvider {
	sources := o.sources
	if sources == nil {
		sources = events.DefaultSources()
	}
	return events.NewSystemProvider(sources, log,
		events.WithReporter(rep),
		events.WithPollInterval(time.Second),
	)
}

func newDispatcher(exec *action.Executor, rep report.Reporter, log logx.Logger, bus eventbus.Bus, lp *events.LifecycleProvider, sp *events.SystemProvider) *events.Dispatcher {
	d := events.NewDispatcher(exec, rep, log, lp, sp)
	d.UseBus(bus)
	return d
}
