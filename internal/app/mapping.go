package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"commander/internal/action"
	"commander/internal/config"
	"commander/internal/cron"
	"commander/internal/datasource"
	"commander/internal/events"
	"commander/internal/integration"
	"commander/internal/report"
	"commander/internal/storage"
	logx "commander/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapReporterConfig(cfg *config.Config) (report.Config, error) {
	rc := cfg.Reporter
	window, err := config.ParseDurationOrDefault("reporter.dedup_window", rc.DedupWindow, 30*time.Second)
	if err != nil {
		return report.Config{}, err
	}
	enabled := true
	if rc.Enabled != nil {
		enabled = *rc.Enabled
	}
	return report.Config{
		Enabled:     enabled,
		QueueSize:   rc.QueueSize,
		RatePerSec:  rc.RatePerSec,
		DedupWindow: window,
	}, nil
}

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	path := strings.TrimSpace(sc.Path)
	if path == "" && (driver == "" || driver == "file" || driver == "sqlite" || driver == "sqlite3") {
		path = defaultStoragePath(driver)
	}
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, nil
}

// defaultStoragePath is under $XDG_DATA_HOME/commander.
func defaultStoragePath(driver string) string {
	data := os.Getenv("XDG_DATA_HOME")
	if data == "" {
		if home, err := os.UserHomeDir(); err == nil {
			data = filepath.Join(home, ".local", "share")
		} else {
			data = os.TempDir()
		}
	}
	if driver == "sqlite" || driver == "sqlite3" {
		return filepath.Join(data, "commander", "commander.db")
	}
	return filepath.Join(data, "commander", "store")
}

func mapAction(ac config.ActionConfig) action.Action {
	// Validate has already rejected bad timeouts.
	timeout, _ := config.ParseDurationField("timeout", ac.Timeout)
	return action.Action{
		Name:    ac.Name,
		Script:  ac.Script,
		Command: append([]string(nil), ac.Command...),
		Shell:   ac.Shell,
		Dir:     ac.Dir,
		Env:     ac.Env,
		Timeout: timeout,
	}
}

func mapSchedules(cfg *config.Config) []cron.Schedule {
	out := make([]cron.Schedule, 0, len(cfg.Schedules))
	for _, s := range cfg.Schedules {
		out = append(out, cron.Schedule{Name: s.Name, Cron: s.Cron, Action: mapAction(s.Action)})
	}
	return out
}

func mapDataSources(cfg *config.Config) []datasource.DataSource {
	out := make([]datasource.DataSource, 0, len(cfg.DataSources))
	for _, d := range cfg.DataSources {
		out = append(out, datasource.DataSource{
			Name:            d.Name,
			LoadAction:      mapAction(d.LoadAction),
			RefreshInterval: time.Duration(d.RefreshIntervalSeconds) * time.Second,
			ArgumentList:    d.ArgumentList,
			HistoryLimit:    d.HistoryLimit,
		})
	}
	return out
}

// canonicalCategory maps a config category onto the provider constants,
// ignoring case.
func canonicalCategory(c string) string {
	for _, known := range []string{events.CategoryCommander, events.CategoryWindows, events.CategorySystem} {
		if strings.EqualFold(strings.TrimSpace(c), known) {
			return known
		}
	}
	return c
}

func mapEvents(cfg *config.Config) []events.Event {
	out := make([]events.Event, 0, len(cfg.Events))
	for _, e := range cfg.Events {
		out = append(out, events.Event{
			ID:         e.ID,
			Category:   canonicalCategory(e.Category),
			Event:      e.Event,
			Action:     mapAction(e.Action),
			Properties: e.Properties,
		})
	}
	return out
}

func mapFileAssociations(cfg *config.Config) []integration.FileAssociation {
	out := make([]integration.FileAssociation, 0, len(cfg.FileAssociations))
	for _, f := range cfg.FileAssociations {
		out = append(out, integration.FileAssociation{ID: f.ID, Extension: f.Extension, Action: mapAction(f.Action)})
	}
	return out
}

func mapShortcuts(cfg *config.Config) []integration.Shortcut {
	out := make([]integration.Shortcut, 0, len(cfg.Shortcuts))
	for _, s := range cfg.Shortcuts {
		out = append(out, integration.Shortcut{
			ID:          s.ID,
			Text:        s.Text,
			Description: s.Description,
			Icon:        s.Icon,
			Action:      mapAction(s.Action),
		})
	}
	return out
}

func mapContextMenus(cfg *config.Config) []integration.ContextMenu {
	out := make([]integration.ContextMenu, 0, len(cfg.ContextMenus))
	for _, c := range cfg.ContextMenus {
		out = append(out, integration.ContextMenu{
			ID:        c.ID,
			Text:      c.Text,
			Extension: c.Extension,
			Location:  c.Location,
			Action:    mapAction(c.Action),
		})
	}
	return out
}

func mapProtocols(cfg *config.Config) []integration.Protocol {
	out := make([]integration.Protocol, 0, len(cfg.Protocols))
	for _, p := range cfg.Protocols {
		out = append(out, integration.Protocol{Protocol: p.Protocol, Action: mapAction(p.Action)})
	}
	return out
}

// validate is the hot-reload gate: the static checks plus what needs the
// runtime (time zone database).
func validate(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if _, err := cron.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone: %w", err)
	}
	if _, err := mapStorageConfig(cfg); err != nil {
		return err
	}
	return nil
}
