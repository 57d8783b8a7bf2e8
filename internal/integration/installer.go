package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Installer puts shortcuts and protocol handlers into the desktop
// environment. Remove receives the set installed by the previous run.
type Installer interface {
	InstallShortcuts(ctx context.Context, items []Shortcut) error
	RemoveShortcuts(ctx context.Context, items []Shortcut) error
	InstallProtocols(ctx context.Context, items []Protocol) error
	RemoveProtocols(ctx context.Context, items []Protocol) error
}

// NopInstaller leaves the desktop untouched.
type NopInstaller struct{}

func (NopInstaller) InstallShortcuts(context.Context, []Shortcut) error { return nil }
func (NopInstaller) RemoveShortcuts(context.Context, []Shortcut) error { return nil }
func (NopInstaller) InstallProtocols(context.Context, []Protocol) error { return nil }
func (NopInstaller) RemoveProtocols(context.Context, []Protocol) error { return nil }

// DesktopEntries writes freedesktop.org .desktop files that call back into
// the agent binary.
type DesktopEntries struct {
	Dir        string // applications directory
	Executable string // absolute path of the commander binary
}

// NewDesktopEntries resolves empty fields: Dir defaults to
// $XDG_DATA_HOME/applications, Executable to the running binary.
func NewDesktopEntries(dir, executable string) (*DesktopEntries, error) {
	if strings.TrimSpace(dir) == "" {
		data := os.Getenv("XDG_DATA_HOME")
		if data == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			data = filepath.Join(home, ".local", "share")
		}
		dir = filepath.Join(data, "applications")
	}
	if strings.TrimSpace(executable) == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		executable = exe
	}
	return &DesktopEntries{Dir: dir, Executable: executable}, nil
}

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (d *DesktopEntries) shortcutFile(id int) string {
	return filepath.Join(d.Dir, "commander-shortcut-"+strconv.Itoa(id)+".desktop")
}

func (d *DesktopEntries) protocolFile(p string) string {
	return filepath.Join(d.Dir, "commander-protocol-"+reUnsafe.ReplaceAllString(strings.ToLower(p), "_")+".desktop")
}

func (d *DesktopEntries) InstallShortcuts(ctx context.Context, items []Shortcut) error {
	var errs []error
	for _, sc := range items {
		name := sc.Text
		if name == "" {
			name = "Commander shortcut " + strconv.Itoa(sc.ID)
		}
		e := desktopEntry{
			Name:    name,
			Comment: sc.Description,
			Icon:    sc.Icon,
			Exec:    fmt.Sprintf("%s --shortcut %d", quoteExec(d.Executable), sc.ID),
		}
		errs = append(errs, d.write(d.shortcutFile(sc.ID), e))
	}
	return errors.Join(errs...)
}

func (d *DesktopEntries) RemoveShortcuts(ctx context.Context, items []Shortcut) error {
	var errs []error
	for _, sc := range items {
		errs = append(errs, removeIfExists(d.shortcutFile(sc.ID)))
	}
	return errors.Join(errs...)
}

func (d *DesktopEntries) InstallProtocols(ctx context.Context, items []Protocol) error {
	var errs []error
	for _, p := range items {
		scheme := strings.ToLower(strings.TrimSpace(p.Protocol))
		if scheme == "" {
			continue
		}
		e := desktopEntry{
			Name:      "Commander " + scheme + " handler",
			Exec:      fmt.Sprintf("%s --protocol %s --protocolArg %%u", quoteExec(d.Executable), scheme),
			MimeType:  "x-scheme-handler/" + scheme + ";",
			NoDisplay: true,
		}
		errs = append(errs, d.write(d.protocolFile(scheme), e))
	}
	return errors.Join(errs...)
}

func (d *DesktopEntries) RemoveProtocols(ctx context.Context, items []Protocol) error {
	var errs []error
	for _, p := range items {
		errs = append(errs, removeIfExists(d.protocolFile(p.Protocol)))
	}
	return errors.Join(errs...)
}

type desktopEntry struct {
	Name      string
	Comment   string
	Icon      string
	Exec      string
	MimeType  string
	NoDisplay bool
}

func (e desktopEntry) render() string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\nType=Application\nVersion=1.0\n")
	b.WriteString("Name=" + escapeValue(e.Name) + "\n")
	if e.Comment != "" {
		b.WriteString("Comment=" + escapeValue(e.Comment) + "\n")
	}
	if e.Icon != "" {
		b.WriteString("Icon=" + escapeValue(e.Icon) + "\n")
	}
	b.WriteString("Exec=" + e.Exec + "\n")
	if e.MimeType != "" {
		b.WriteString("MimeType=" + e.MimeType + "\n")
	}
	if e.NoDisplay {
		b.WriteString("NoDisplay=true\n")
	}
	b.WriteString("Terminal=false\n")
	return b.String()
}

func (d *DesktopEntries) write(path string, e desktopEntry) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(e.render()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func escapeValue(s string) string {
	r := strings.NewReplacer("\\", `\\`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return r.Replace(s)
}

// quoteExec quotes an Exec program path when it contains reserved characters.
func quoteExec(p string) string {
	if !strings.ContainsAny(p, " \t\"'\\$`") {
		return p
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(p) + `"`
}
