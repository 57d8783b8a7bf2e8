// Package router turns IPC commands into calls on the four domain handlers.
package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"commander/internal/ipc"
)

//go:generate mockgen -destination=mocks/mock_handlers.go -package=mocks commander/internal/router FileAssociationHandler,ShortcutHandler,ContextMenuHandler,ProtocolHandler

// ErrMalformed marks a command whose properties are present but unusable.
var ErrMalformed = errors.New("malformed command")

type FileAssociationHandler interface {
	ExecuteAssociation(ctx context.Context, filePath string)
}

type ShortcutHandler interface {
	ExecuteShortcut(ctx context.Context, id int)
}

type ContextMenuHandler interface {
	ExecuteMenuItem(ctx context.Context, id int, path string)
}

type ProtocolHandler interface {
	ExecuteProtocol(ctx context.Context, protocol, url string)
}

// Handlers groups the domain handlers. A nil handler ignores its commands.
type Handlers struct {
	FileAssociations FileAssociationHandler
	Shortcuts        ShortcutHandler
	ContextMenus     ContextMenuHandler
	Protocols        ProtocolHandler
}

type Router struct {
	h Handlers
}

func New(h Handlers) *Router { return &Router{h: h} }

// Dispatch forwards cmd to exactly one handler. Unknown names and missing
// properties are ignored. Only a non-integer id is returned as an error.
func (r *Router) Dispatch(ctx context.Context, cmd ipc.Command) error {
	switch cmd.Name {
	case ipc.CommandFileAssociation:
		path, ok := cmd.Property("filePath")
		if !ok || r.h.FileAssociations == nil {
			return nil
		}
		r.h.FileAssociations.ExecuteAssociation(ctx, path)

	case ipc.CommandShortcut:
		raw, ok := cmd.Property("id")
		if !ok || r.h.Shortcuts == nil {
			return nil
		}
		id, err := parseID(raw)
		if err != nil {
			return err
		}
		r.h.Shortcuts.ExecuteShortcut(ctx, id)

	case ipc.CommandContextMenu:
		raw, ok := cmd.Property("id")
		if !ok || r.h.ContextMenus == nil {
			return nil
		}
		path, ok := cmd.Property("path")
		if !ok {
			return nil
		}
		id, err := parseID(raw)
		if err != nil {
			return err
		}
		r.h.ContextMenus.ExecuteMenuItem(ctx, id, path)

	case ipc.CommandProtocol:
		proto, ok := cmd.Property("protocol")
		if !ok || r.h.Protocols == nil {
			return nil
		}
		arg, ok := cmd.Property("arg")
		if !ok {
			return nil
		}
		r.h.Protocols.ExecuteProtocol(ctx, proto, arg)
	}
	return nil
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not an integer", ErrMalformed, raw)
	}
	return id, nil
}
