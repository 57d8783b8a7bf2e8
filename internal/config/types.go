package config

// Config is the on-disk configuration. Duration fields are Go duration
// strings ("500ms", "30s", "1m").
type Config struct {
	Logging     LoggingConfig     `json:"logging"`
	IPC         IPCConfig         `json:"ipc"`
	Executor    ExecutorConfig    `json:"executor"`
	Reporter    ReporterConfig    `json:"reporter"`
	Storage     StorageConfig     `json:"storage"`
	Scheduler   SchedulerConfig   `json:"scheduler"`
	Integration IntegrationConfig `json:"integration"`

	Schedules        []ScheduleConfig        `json:"schedules,omitempty"`
	DataSources      []DataSourceConfig      `json:"data_sources,omitempty"`
	Events           []EventConfig           `json:"events,omitempty"`
	FileAssociations []FileAssociationConfig `json:"file_associations,omitempty"`
	Shortcuts        []ShortcutConfig        `json:"shortcuts,omitempty"`
	ContextMenus     []ContextMenuConfig     `json:"context_menus,omitempty"`
	Protocols        []ProtocolConfig        `json:"protocols,omitempty"`
}

type LoggingConfig struct {
	Level   string     `json:"level"`
	Console bool       `json:"console"`
	File    FileConfig `json:"file"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type IPCConfig struct {
	// Endpoint is the unix socket path; empty means the per-user default.
	Endpoint string `json:"endpoint,omitempty"`
}

type ExecutorConfig struct {
	Shell          string `json:"shell,omitempty"`
	DefaultTimeout string `json:"default_timeout,omitempty"`
	MaxOutput      int    `json:"max_output,omitempty"`
}

// ReporterConfig controls error reporting. Enabled is a pointer so an
// omitted section keeps the reporter on.
type ReporterConfig struct {
	Enabled     *bool          `json:"enabled,omitempty"`
	DedupWindow string         `json:"dedup_window,omitempty"`
	RatePerSec  int            `json:"rate_per_sec,omitempty"`
	QueueSize   int            `json:"queue_size,omitempty"`
	Telegram    TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token,omitempty"`
	ChatID  int64  `json:"chat_id,omitempty"`
}

type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type SchedulerConfig struct {
	Timezone string `json:"timezone,omitempty"` // IANA TZ; empty means local
}

type IntegrationConfig struct {
	DesktopEntries  bool   `json:"desktop_entries"`
	ApplicationsDir string `json:"applications_dir,omitempty"`
}

// ActionConfig is an action as written in the config. Exactly one of
// Script and Command must be set.
type ActionConfig struct {
	Name    string            `json:"name,omitempty"`
	Script  string            `json:"script,omitempty"`
	Command []string          `json:"command,omitempty"`
	Shell   string            `json:"shell,omitempty"`
	Dir     string            `json:"dir,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Timeout string            `json:"timeout,omitempty"`
}

type ScheduleConfig struct {
	Name   string       `json:"name,omitempty"`
	Cron   string       `json:"cron"`
	Action ActionConfig `json:"action"`
}

type DataSourceConfig struct {
	Name                   string       `json:"name"`
	RefreshIntervalSeconds int          `json:"refresh_interval_seconds"`
	HistoryLimit           int          `json:"history_limit"`
	ArgumentList           []any        `json:"argument_list,omitempty"`
	LoadAction             ActionConfig `json:"load_action"`
}

type EventConfig struct {
	ID         int               `json:"id"`
	Category   string            `json:"category"`
	Event      string            `json:"event,omitempty"`
	Action     ActionConfig      `json:"action"`
	Properties map[string]string `json:"properties,omitempty"`
}

type FileAssociationConfig struct {
	ID        int          `json:"id"`
	Extension string       `json:"extension"`
	Action    ActionConfig `json:"action"`
}

type ShortcutConfig struct {
	ID          int          `json:"id"`
	Text        string       `json:"text"`
	Description string       `json:"description,omitempty"`
	Icon        string       `json:"icon,omitempty"`
	Action      ActionConfig `json:"action"`
}

type ContextMenuConfig struct {
	ID        int          `json:"id"`
	Text      string       `json:"text"`
	Extension string       `json:"extension,omitempty"`
	Location  string       `json:"location,omitempty"`
	Action    ActionConfig `json:"action"`
}

type ProtocolConfig struct {
	Protocol string       `json:"protocol"`
	Action   ActionConfig `json:"action"`
}
