package app

import (
	"commander/internal/events"
	"commander/internal/integration"
)

type options struct {
	endpoint  string
	installer integration.Installer
	sources   events.Sources
	notify    bool
}

type Option func(*options)

// WithEndpoint overrides the configured IPC socket path.
func WithEndpoint(path string) Option { return func(o *options) { o.endpoint = path } }

// WithInstaller replaces the OS integration installer.
func WithInstaller(inst integration.Installer) Option {
	return func(o *options) { o.installer = inst }
}

// WithSources replaces the system event sources.
func WithSources(s events.Sources) Option { return func(o *options) { o.sources = s } }

// WithoutSystemdNotify disables sd_notify readiness messages.
func WithoutSystemdNotify() Option { return func(o *options) { o.notify = false } }
