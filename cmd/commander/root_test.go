package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commander/internal/ipc"
	"commander/internal/report"
	logx "commander/pkg/logx"
)

func TestBuildCommandPrecedence(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		args []string
		want ipc.Command
		ok   bool
	}{
		{name: "none", args: nil},
		{
			name: "file wins",
			args: []string{"--shortcut", "3", "--filePath", "/tmp/a.log"},
			want: ipc.Command{Name: ipc.CommandFileAssociation, Properties: map[string]string{"filePath": "/tmp/a.log"}},
			ok:   true,
		},
		{
			name: "shortcut over context",
			args: []string{"--context", "5", "--shortcut", "3"},
			want: ipc.Command{Name: ipc.CommandShortcut, Properties: map[string]string{"id": "3"}},
			ok:   true,
		},
		{
			name: "context with path",
			args: []string{"--context", "5", "--contextPath", "/home/u/x"},
			want: ipc.Command{Name: ipc.CommandContextMenu, Properties: map[string]string{"id": "5", "path": "/home/u/x"}},
			ok:   true,
		},
		{
			name: "protocol",
			args: []string{"--protocol", "cmdr", "--protocolArg", "cmdr://go/"},
			want: ipc.Command{Name: ipc.CommandProtocol, Properties: map[string]string{"protocol": "cmdr", "arg": "cmdr://go/"}},
			ok:   true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var f flags
			cmd := newRootCmd()
			// The bound values live in newRootCmd; read them back from the flag set.
			fl := cmd.Flags()
			require.NoError(t, fl.Parse(tc.args))
			f.filePath, _ = fl.GetString("filePath")
			f.shortcut, _ = fl.GetInt("shortcut")
			f.context, _ = fl.GetInt("context")
			f.contextPath, _ = fl.GetString("contextPath")
			f.protocol, _ = fl.GetString("protocol")
			f.protocolArg, _ = fl.GetString("protocolArg")

			got, ok := buildCommand(cmd, f)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestCommandFlagIsForwardedToAgent(t *testing.T) {
	dir := t.TempDir()
	ep := filepath.Join(dir, "agent.sock")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ipc: { endpoint: '"+ep+"' }\n"), 0o600))

	got := make(chan ipc.Command, 1)
	srv := ipc.NewServer(ep, ipc.HandlerFunc(func(ctx context.Context, c ipc.Command) error {
		got <- c
		return nil
	}), report.Discard, logx.Nop())
	require.NoError(t, srv.Listen())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()
	defer srv.Close()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "--shortcut", "7"})
	require.NoError(t, cmd.Execute())

	select {
	case c := <-got:
		assert.Equal(t, ipc.CommandShortcut, c.Name)
		assert.Equal(t, "7", c.Properties["id"])
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not receive the command")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "commander dev\n", out.String())
}
