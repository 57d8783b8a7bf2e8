package config

import (
	"reflect"
	"strings"

	logx "commander/pkg/logx"
)

// SummarizeConfigChange returns the names of changed sections and safe
// structured attrs for logging. Secrets such as the Telegram token are never
// included.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 8)
	attrs := make([]logx.Field, 0, 16)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if strings.TrimSpace(oldCfg.IPC.Endpoint) != strings.TrimSpace(newCfg.IPC.Endpoint) {
		// The listener is bound once; a new endpoint needs a restart.
		changed = append(changed, "ipc")
		attrs = append(attrs, logx.Bool("ipc.restart_required", true))
	}
	if !reflect.DeepEqual(oldCfg.Executor, newCfg.Executor) {
		changed = append(changed, "executor")
		attrs = append(attrs,
			logx.String("executor.shell", newCfg.Executor.Shell),
			logx.String("executor.default_timeout", newCfg.Executor.DefaultTimeout),
			logx.Bool("executor.restart_required", true),
		)
	}
	if !reflect.DeepEqual(oldCfg.Reporter, newCfg.Reporter) {
		changed = append(changed, "reporter")
		attrs = append(attrs,
			logx.String("reporter.dedup_window", newCfg.Reporter.DedupWindow),
			logx.Bool("reporter.telegram_enabled", newCfg.Reporter.Telegram.Enabled),
			logx.Bool("reporter.telegram_token_set", strings.TrimSpace(newCfg.Reporter.Telegram.Token) != ""),
		)
	}
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", newCfg.Storage.Driver),
			logx.Bool("storage.restart_required", true),
		)
	}
	if oldCfg.Scheduler != newCfg.Scheduler {
		changed = append(changed, "scheduler")
		attrs = append(attrs,
			logx.String("scheduler.timezone", newCfg.Scheduler.Timezone),
			logx.Bool("scheduler.restart_required", true),
		)
	}
	if oldCfg.Integration != newCfg.Integration {
		changed = append(changed, "integration")
		attrs = append(attrs, logx.Bool("integration.desktop_entries", newCfg.Integration.DesktopEntries))
	}

	lists := []struct {
		name     string
		old, new any
		count    int
	}{
		{"schedules", oldCfg.Schedules, newCfg.Schedules, len(newCfg.Schedules)},
		{"data_sources", oldCfg.DataSources, newCfg.DataSources, len(newCfg.DataSources)},
		{"events", oldCfg.Events, newCfg.Events, len(newCfg.Events)},
		{"file_associations", oldCfg.FileAssociations, newCfg.FileAssociations, len(newCfg.FileAssociations)},
		{"shortcuts", oldCfg.Shortcuts, newCfg.Shortcuts, len(newCfg.Shortcuts)},
		{"context_menus", oldCfg.ContextMenus, newCfg.ContextMenus, len(newCfg.ContextMenus)},
		{"protocols", oldCfg.Protocols, newCfg.Protocols, len(newCfg.Protocols)},
	}
	for _, l := range lists {
		if reflect.DeepEqual(l.old, l.new) {
			continue
		}
		changed = append(changed, l.name)
		attrs = append(attrs, logx.Int(l.name+".count", l.count))
	}

	return changed, attrs
}
