// Package events binds asynchronous notifications from providers to actions.
//
// Providers decide which registered events they own by Category. Every
// notification carries the registration generation it was produced for, so a
// notification that races a reconfiguration is dropped instead of reaching an
// action that now owns the same id.
package events

import (
	"commander/internal/action"
)

const (
	CategoryCommander = "Commander"
	CategoryWindows   = "Windows"
	// CategorySystem is accepted as an alias of CategoryWindows.
	CategorySystem = "System"
)

// Lifecycle event names.
const (
	EventStart = "Start"
	EventStop  = "Stop"
	EventError = "Error"
)

// Properties read by the system provider.
const (
	PropEventType   = "WmiEventType"
	PropEventFilter = "WmiEventFilter"
)

// Event binds a provider event to an action.
type Event struct {
	ID         int
	Category   string
	Event      string
	Action     action.Action
	Properties map[string]string
}

// Notification is one occurrence reported by a provider.
type Notification struct {
	Gen  uint64
	ID   int
	Args []any
	// LogOnly routes an action failure to the log instead of the reporter.
	// The Error event sets it: reporting its own failure would fire it again.
	LogOnly bool
}

// Notify is the dispatcher callback handed to providers.
type Notify func(n Notification)

// Provider owns a subset of the registered events.
//
// SetEvents is called with the complete event set on every reconfiguration;
// a provider tears down whatever it started for an older generation before
// it returns. An empty set stops the provider.
type Provider interface {
	Name() string
	SetEvents(gen uint64, events []Event, notify Notify)
}
