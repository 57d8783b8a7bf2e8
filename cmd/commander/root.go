package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"commander/internal/app"
	"commander/internal/config"
	"commander/internal/ipc"
	logx "commander/pkg/logx"
)

var version = "dev"

type flags struct {
	configPath  string
	filePath    string
	shortcut    int
	context     int
	contextPath string
	protocol    string
	protocolArg string
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:   "commander",
		Short: "Desktop automation agent",
		Long: `commander runs user actions in response to shell integrations, schedules,
data-source polls and system events.

With a command flag it forwards one command to the running agent and exits.
Without one it runs the agent in the foreground.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c, ok := buildCommand(cmd, f); ok {
				return send(cmd.Context(), f.configPath, c)
			}
			return runAgent(cmd.Context(), f.configPath)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "configFilePath", "", "path to the config file (yaml, toml or json)")
	pf.StringVar(&f.configPath, "config", "", "alias of --configFilePath")

	fl := root.Flags()
	fl.StringVar(&f.filePath, "filePath", "", "run the file association for this file")
	fl.IntVar(&f.shortcut, "shortcut", 0, "run the shortcut with this id")
	fl.IntVar(&f.context, "context", 0, "run the context-menu item with this id")
	fl.StringVar(&f.contextPath, "contextPath", "", "path passed to the context-menu item")
	fl.StringVar(&f.protocol, "protocol", "", "custom URL protocol name")
	fl.StringVar(&f.protocolArg, "protocolArg", "", "URL passed to the protocol handler")

	root.AddCommand(newShutdownCmd(&f), newVersionCmd())
	return root
}

// buildCommand turns the command flags into one Command. File associations
// win over shortcuts, then context menus, then protocols.
func buildCommand(cmd *cobra.Command, f flags) (ipc.Command, bool) {
	changed := cmd.Flags().Changed
	switch {
	case changed("filePath"):
		return ipc.Command{Name: ipc.CommandFileAssociation, Properties: map[string]string{"filePath": f.filePath}}, true
	case changed("shortcut"):
		return ipc.Command{Name: ipc.CommandShortcut, Properties: map[string]string{"id": strconv.Itoa(f.shortcut)}}, true
	case changed("context"):
		return ipc.Command{Name: ipc.CommandContextMenu, Properties: map[string]string{
			"id":   strconv.Itoa(f.context),
			"path": f.contextPath,
		}}, true
	case changed("protocol"):
		return ipc.Command{Name: ipc.CommandProtocol, Properties: map[string]string{
			"protocol": f.protocol,
			"arg":      f.protocolArg,
		}}, true
	}
	return ipc.Command{}, false
}

// endpointFor reads the socket path from the config when it can. A missing
// or broken config falls back to the default endpoint.
func endpointFor(cfgPath string) string {
	cfg, err := config.NewConfigManager(cfgPath).Parse()
	if err == nil && strings.TrimSpace(cfg.IPC.Endpoint) != "" {
		return strings.TrimSpace(cfg.IPC.Endpoint)
	}
	return ipc.DefaultEndpoint()
}

func send(ctx context.Context, cfgPath string, c ipc.Command) error {
	log := logx.NewConsole("info").With(logx.String("comp", "cli"))
	ep := endpointFor(cfgPath)
	if err := ipc.Send(ctx, ep, c); err != nil {
		log.Error("send failed", logx.String("endpoint", ep), logx.String("command", c.Name), logx.Err(err))
		return err
	}
	return nil
}

func runAgent(ctx context.Context, cfgPath string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Stop(context.Background())
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return errors.New("another commander agent is already running")
		}
		return err
	}

	select {
	case <-ctx.Done():
	case <-a.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}

func newShutdownCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop the running agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.SendShutdown(cmd.Context(), endpointFor(f.configPath))
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("commander " + version)
		},
	}
}
