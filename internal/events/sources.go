package events

// Event types understood by DefaultSources.
const (
	TypeFS      = "fs"
	TypeSystemd = "systemd.unit"
)

// DefaultSources returns the built-in sources.
func DefaultSources() Sources {
	return Sources{
		TypeFS:      FSSource{},
		TypeSystemd: SystemdSource{},
	}
}
