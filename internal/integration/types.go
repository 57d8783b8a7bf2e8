// Package integration holds the domain handlers behind the command router:
// file associations, shortcuts, context menus and custom URL protocols.
package integration

import (
	"context"

	"commander/internal/action"
)

type FileAssociation struct {
	ID        int           `json:"id"`
	Extension string        `json:"extension"`
	Action    action.Action `json:"action"`
}

type Shortcut struct {
	ID          int           `json:"id"`
	Text        string        `json:"text"`
	Description string        `json:"description,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	Action      action.Action `json:"action"`
}

// ShortcutInfo is passed to a shortcut's action as its single argument.
type ShortcutInfo struct {
	ID          int    `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type ContextMenu struct {
	ID        int           `json:"id"`
	Text      string        `json:"text"`
	Extension string        `json:"extension,omitempty"`
	Location  string        `json:"location,omitempty"`
	Action    action.Action `json:"action"`
}

type Protocol struct {
	Protocol string        `json:"protocol"`
	Action   action.Action `json:"action"`
}

// Executor is the serialized action runner.
type Executor interface {
	Execute(ctx context.Context, a action.Action, args ...any) error
}

// Collection names used in the store.
const (
	collFileAssociations = "file_associations"
	collShortcuts        = "shortcuts"
	collContextMenus     = "context_menus"
	collProtocols        = "protocols"
)
