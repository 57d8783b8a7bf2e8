package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"commander/internal/action"
	"commander/internal/report"
	"commander/internal/storage"
	logx "commander/pkg/logx"
)

// FileAssociations runs an action for files with a registered extension.
type FileAssociations struct{ set *itemSet[FileAssociation] }

func NewFileAssociations(store storage.Store, exec Executor, reporter report.Reporter, log logx.Logger) *FileAssociations {
	return &FileAssociations{set: newItemSet[FileAssociation]("file_associations", collFileAssociations, store, exec, reporter, log)}
}

func (h *FileAssociations) Set(ctx context.Context, items []FileAssociation) error {
	return h.set.set(ctx, items)
}

func (h *FileAssociations) List() []FileAssociation { return h.set.list() }

func (h *FileAssociations) ExecuteAssociation(ctx context.Context, filePath string) {
	ext := normalizeExt(filepath.Ext(filePath))
	if ext == "" {
		return
	}
	fa, ok := h.set.find(func(fa FileAssociation) bool { return normalizeExt(fa.Extension) == ext })
	if !ok {
		h.set.log.Debug("no association", logx.String("ext", ext))
		return
	}
	run(ctx, h.set.exec, h.set.reporter, fmt.Sprintf("file association %s", ext), fa.Action, filePath)
}

// Shortcuts runs an action by shortcut id.
type Shortcuts struct{ set *itemSet[Shortcut] }

func NewShortcuts(store storage.Store, exec Executor, reporter report.Reporter, log logx.Logger, inst Installer) *Shortcuts {
	s := newItemSet[Shortcut]("shortcuts", collShortcuts, store, exec, reporter, log)
	if inst != nil {
		s.install = inst.InstallShortcuts
		s.uninstall = inst.RemoveShortcuts
	}
	return &Shortcuts{set: s}
}

func (h *Shortcuts) Set(ctx context.Context, items []Shortcut) error { return h.set.set(ctx, items) }

func (h *Shortcuts) List() []Shortcut { return h.set.list() }

func (h *Shortcuts) ExecuteShortcut(ctx context.Context, id int) {
	sc, ok := h.set.find(func(sc Shortcut) bool { return sc.ID == id })
	if !ok {
		h.set.log.Debug("no shortcut", logx.Int("id", id))
		return
	}
	info := ShortcutInfo{ID: sc.ID, Text: sc.Text, Description: sc.Description, Icon: sc.Icon}
	run(ctx, h.set.exec, h.set.reporter, fmt.Sprintf("shortcut %d", id), sc.Action, info)
}

// ContextMenus runs an action by menu item id with the selected path.
type ContextMenus struct{ set *itemSet[ContextMenu] }

func NewContextMenus(store storage.Store, exec Executor, reporter report.Reporter, log logx.Logger) *ContextMenus {
	return &ContextMenus{set: newItemSet[ContextMenu]("context_menus", collContextMenus, store, exec, reporter, log)}
}

func (h *ContextMenus) Set(ctx context.Context, items []ContextMenu) error {
	return h.set.set(ctx, items)
}

func (h *ContextMenus) List() []ContextMenu { return h.set.list() }

func (h *ContextMenus) ExecuteMenuItem(ctx context.Context, id int, path string) {
	m, ok := h.set.find(func(m ContextMenu) bool { return m.ID == id })
	if !ok {
		h.set.log.Debug("no menu item", logx.Int("id", id))
		return
	}
	run(ctx, h.set.exec, h.set.reporter, fmt.Sprintf("context menu %d", id), m.Action, path)
}

// Protocols runs an action for a registered URL scheme.
type Protocols struct{ set *itemSet[Protocol] }

func NewProtocols(store storage.Store, exec Executor, reporter report.Reporter, log logx.Logger, inst Installer) *Protocols {
	s := newItemSet[Protocol]("protocols", collProtocols, store, exec, reporter, log)
	if inst != nil {
		s.install = inst.InstallProtocols
		s.uninstall = inst.RemoveProtocols
	}
	return &Protocols{set: s}
}

func (h *Protocols) Set(ctx context.Context, items []Protocol) error { return h.set.set(ctx, items) }

func (h *Protocols) List() []Protocol { return h.set.list() }

func (h *Protocols) ExecuteProtocol(ctx context.Context, protocol, url string) {
	p, ok := h.set.find(func(p Protocol) bool { return strings.EqualFold(p.Protocol, protocol) })
	if !ok {
		h.set.log.Debug("no protocol", logx.String("protocol", protocol))
		return
	}
	run(ctx, h.set.exec, h.set.reporter, fmt.Sprintf("protocol %s", protocol), p.Action, ProtocolArg(url))
}

// ProtocolArg returns the text after the last "://" with trailing slashes removed.
func ProtocolArg(url string) string {
	if i := strings.LastIndex(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	return strings.TrimRight(url, "/")
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func run(ctx context.Context, exec Executor, reporter report.Reporter, what string, a action.Action, args ...any) {
	if exec == nil {
		return
	}
	if err := exec.Execute(ctx, a, args...); err != nil {
		reporter.ShowError(fmt.Sprintf("%s: %v", what, err))
	}
}
