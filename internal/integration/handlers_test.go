package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commander/internal/action"
	"commander/internal/storage"
	logx "commander/pkg/logx"
)

type call struct {
	action string
	args   []any
}

type recExec struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (e *recExec) Execute(ctx context.Context, a action.Action, args ...any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call{a.Name, args})
	return e.err
}

type reporterFunc func(string)

func (r reporterFunc) ShowError(m string) { r(m) }

func TestFileAssociationMatchesExtensionCaseInsensitive(t *testing.T) {
	t.Parallel()
	exec := &recExec{}
	h := NewFileAssociations(storage.NewMemory(), exec, nil, logx.Nop())
	require.NoError(t, h.Set(context.Background(), []FileAssociation{
		{ID: 1, Extension: "LOG", Action: action.Action{Name: "tail"}},
		{ID: 2, Extension: ".md", Action: action.Action{Name: "preview"}},
	}))

	h.ExecuteAssociation(context.Background(), "/var/log/Sys.Log")
	h.ExecuteAssociation(context.Background(), "/tmp/notes.MD")
	h.ExecuteAssociation(context.Background(), "/tmp/archive.zip")
	h.ExecuteAssociation(context.Background(), "/tmp/Makefile")

	assert.Equal(t, []call{
		{"tail", []any{"/var/log/Sys.Log"}},
		{"preview", []any{"/tmp/notes.MD"}},
	}, exec.calls)
}

func TestShortcutLookupMissIsSilent(t *testing.T) {
	t.Parallel()
	exec := &recExec{}
	var reported []string
	h := NewShortcuts(storage.NewMemory(), exec, reporterFunc(func(m string) { reported = append(reported, m) }), logx.Nop(), nil)
	require.NoError(t, h.Set(context.Background(), []Shortcut{{ID: 3, Text: "Backup", Action: action.Action{Name: "backup"}}}))

	h.ExecuteShortcut(context.Background(), 4)
	assert.Empty(t, exec.calls)
	assert.Empty(t, reported)

	h.ExecuteShortcut(context.Background(), 3)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, []any{ShortcutInfo{ID: 3, Text: "Backup"}}, exec.calls[0].args)
}

func TestActionFailureIsReported(t *testing.T) {
	t.Parallel()
	exec := &recExec{err: errors.New("exit status 1")}
	var reported []string
	h := NewContextMenus(storage.NewMemory(), exec, reporterFunc(func(m string) { reported = append(reported, m) }), logx.Nop())
	require.NoError(t, h.Set(context.Background(), []ContextMenu{{ID: 5, Text: "Hash", Action: action.Action{Name: "hash"}}}))

	h.ExecuteMenuItem(context.Background(), 5, "/tmp/file")
	require.Len(t, reported, 1)
	assert.Equal(t, "context menu 5: exit status 1", reported[0])
	assert.Equal(t, []any{"/tmp/file"}, exec.calls[0].args)
}

func TestProtocolArg(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{
		"cmdr://backup/": "backup",
		"cmdr://a://b//": "b",
		"plain":          "plain",
		"cmdr://run?x=1": "run?x=1",
		"":               "",
	} {
		assert.Equal(t, want, ProtocolArg(in), in)
	}
}

func TestProtocolMatchesCaseInsensitive(t *testing.T) {
	t.Parallel()
	exec := &recExec{}
	h := NewProtocols(storage.NewMemory(), exec, nil, logx.Nop(), nil)
	require.NoError(t, h.Set(context.Background(), []Protocol{{Protocol: "cmdr", Action: action.Action{Name: "open"}}}))

	h.ExecuteProtocol(context.Background(), "CMDR", "cmdr://dashboard/")
	h.ExecuteProtocol(context.Background(), "other", "other://x")
	assert.Equal(t, []call{{"open", []any{"dashboard"}}}, exec.calls)
}

type recInstaller struct {
	NopInstaller
	log []string
}

func (r *recInstaller) InstallShortcuts(ctx context.Context, items []Shortcut) error {
	for _, s := range items {
		r.log = append(r.log, "install:"+s.Text)
	}
	return nil
}

func (r *recInstaller) RemoveShortcuts(ctx context.Context, items []Shortcut) error {
	for _, s := range items {
		r.log = append(r.log, "remove:"+s.Text)
	}
	return nil
}

func TestSetUninstallsPreviouslyStoredItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemory()
	inst := &recInstaller{}

	// A previous run stored "Old".
	first := NewShortcuts(store, nil, nil, logx.Nop(), inst)
	require.NoError(t, first.Set(ctx, []Shortcut{{ID: 1, Text: "Old"}}))

	second := NewShortcuts(store, nil, nil, logx.Nop(), inst)
	require.NoError(t, second.Set(ctx, []Shortcut{{ID: 2, Text: "New"}}))

	assert.Equal(t, []string{"install:Old", "remove:Old", "install:New"}, inst.log)
	stored, err := storage.NewCollection[Shortcut](store, collShortcuts).FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Shortcut{{ID: 2, Text: "New"}}, stored)
	assert.Equal(t, stored, second.List())
}

func TestDesktopEntries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	d, err := NewDesktopEntries(dir, "/opt/my apps/commander")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.InstallShortcuts(ctx, []Shortcut{{ID: 3, Text: "Backup", Icon: "drive"}}))
	require.NoError(t, d.InstallProtocols(ctx, []Protocol{{Protocol: "CMDR"}}))

	b, err := os.ReadFile(filepath.Join(dir, "commander-shortcut-3.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Name=Backup\n")
	assert.Contains(t, string(b), `Exec="/opt/my apps/commander" --shortcut 3`)

	b, err = os.ReadFile(filepath.Join(dir, "commander-protocol-cmdr.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "MimeType=x-scheme-handler/cmdr;\n")
	assert.True(t, strings.Contains(string(b), "--protocol cmdr --protocolArg %u"))

	require.NoError(t, d.RemoveShortcuts(ctx, []Shortcut{{ID: 3}, {ID: 99}}))
	require.NoError(t, d.RemoveProtocols(ctx, []Protocol{{Protocol: "cmdr"}}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
