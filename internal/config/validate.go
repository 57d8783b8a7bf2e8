package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownLevels = map[string]bool{
	"": true, "trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

var knownCategories = map[string]bool{
	"commander": true, "windows": true, "system": true,
}

// Validate checks what cannot be decided at apply time: durations, action
// shape and required fields. Duplicate ids and bad cron expressions are
// left to the components, which report and skip them.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if !knownLevels[strings.ToLower(strings.TrimSpace(cfg.Logging.Level))] {
		add(fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		add(errors.New("logging.file.path: required when file logging is enabled"))
	}

	_, err := ParseDurationField("executor.default_timeout", cfg.Executor.DefaultTimeout)
	add(err)
	if cfg.Executor.MaxOutput < 0 {
		add(errors.New("executor.max_output: must be >= 0"))
	}

	_, err = ParseDurationField("reporter.dedup_window", cfg.Reporter.DedupWindow)
	add(err)
	if t := cfg.Reporter.Telegram; t.Enabled {
		if strings.TrimSpace(t.Token) == "" {
			add(errors.New("reporter.telegram.token: required when telegram is enabled"))
		}
		if t.ChatID == 0 {
			add(errors.New("reporter.telegram.chat_id: required when telegram is enabled"))
		}
	}

	_, err = ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	add(err)

	for i, s := range cfg.Schedules {
		field := fmt.Sprintf("schedules[%d]", i)
		if strings.TrimSpace(s.Cron) == "" {
			add(fmt.Errorf("%s.cron: required", field))
		}
		add(validateAction(field+".action", s.Action))
	}
	for i, d := range cfg.DataSources {
		field := fmt.Sprintf("data_sources[%d]", i)
		if strings.TrimSpace(d.Name) == "" {
			add(fmt.Errorf("%s.name: required", field))
		}
		if d.RefreshIntervalSeconds < 0 {
			add(fmt.Errorf("%s.refresh_interval_seconds: must be >= 0", field))
		}
		add(validateAction(field+".load_action", d.LoadAction))
	}
	for i, e := range cfg.Events {
		field := fmt.Sprintf("events[%d]", i)
		if !knownCategories[strings.ToLower(strings.TrimSpace(e.Category))] {
			add(fmt.Errorf("%s.category: unknown category %q", field, e.Category))
		}
		add(validateAction(field+".action", e.Action))
	}
	for i, f := range cfg.FileAssociations {
		field := fmt.Sprintf("file_associations[%d]", i)
		if strings.TrimSpace(f.Extension) == "" {
			add(fmt.Errorf("%s.extension: required", field))
		}
		add(validateAction(field+".action", f.Action))
	}
	for i, s := range cfg.Shortcuts {
		add(validateAction(fmt.Sprintf("shortcuts[%d].action", i), s.Action))
	}
	for i, c := range cfg.ContextMenus {
		add(validateAction(fmt.Sprintf("context_menus[%d].action", i), c.Action))
	}
	for i, p := range cfg.Protocols {
		field := fmt.Sprintf("protocols[%d]", i)
		if strings.TrimSpace(p.Protocol) == "" {
			add(fmt.Errorf("%s.protocol: required", field))
		}
		add(validateAction(field+".action", p.Action))
	}

	return errors.Join(errs...)
}

func validateAction(field string, a ActionConfig) error {
	hasScript := strings.TrimSpace(a.Script) != ""
	hasCommand := len(a.Command) > 0
	switch {
	case hasScript && hasCommand:
		return fmt.Errorf("%s: script and command are mutually exclusive", field)
	case !hasScript && !hasCommand:
		return fmt.Errorf("%s: script or command is required", field)
	}
	if hasCommand && strings.TrimSpace(a.Command[0]) == "" {
		return fmt.Errorf("%s.command: program is empty", field)
	}
	_, err := ParseDurationField(field+".timeout", a.Timeout)
	return err
}
