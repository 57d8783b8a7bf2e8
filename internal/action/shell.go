package action

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"time"
)

const (
	DefaultShell     = "/bin/sh"
	DefaultMaxOutput = 64 << 10
)

// ShellRunner runs actions as child processes.
type ShellRunner struct {
	// Shell runs Script actions; the action's own Shell wins.
	Shell string
	// MaxOutput caps captured stdout and stderr each.
	MaxOutput int
}

func (r ShellRunner) Run(ctx context.Context, a Action, args []string) (Result, error) {
	cmd, err := r.command(ctx, a, args)
	if err != nil {
		return Result{}, err
	}

	limit := r.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}
	stdout := &cappedBuffer{max: limit}
	stderr := &cappedBuffer{max: limit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Don't hang on grandchildren holding the pipes after a kill.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err = cmd.Run()
	res := Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
		Took:   time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	xe := &ExecutionError{Action: a.Label(), Stderr: tail(res.Stderr, 512), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		xe.ExitCode = res.ExitCode
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		xe.Err = ctxErr
		xe.ExitCode = 0
	}
	return res, xe
}

func (r ShellRunner) command(ctx context.Context, a Action, args []string) (*exec.Cmd, error) {
	var cmd *exec.Cmd
	switch {
	case len(a.Command) > 0:
		argv := append(append([]string(nil), a.Command[1:]...), args...)
		cmd = exec.CommandContext(ctx, a.Command[0], argv...)
	case a.Script != "":
		shell := a.Shell
		if shell == "" {
			shell = r.Shell
		}
		if shell == "" {
			shell = DefaultShell
		}
		// $0 is "commander", user arguments start at $1.
		argv := append([]string{"-c", a.Script, "commander"}, args...)
		cmd = exec.CommandContext(ctx, shell, argv...)
	default:
		return nil, ErrEmptyAction
	}

	cmd.Dir = a.Dir
	env := os.Environ()
	if a.Name != "" {
		env = append(env, "COMMANDER_ACTION="+a.Name)
	}
	keys := make([]string, 0, len(a.Env))
	for k := range a.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+a.Env[k])
	}
	cmd.Env = env
	return cmd, nil
}

// cappedBuffer keeps the first max bytes and silently discards the rest.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte { return b.buf.Bytes() }

func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
