package action

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultShell); err != nil {
		t.Skipf("%s not available: %v", DefaultShell, err)
	}
}

func TestShellRunnerPassesPositionalArgs(t *testing.T) {
	t.Parallel()
	requireShell(t)
	r := ShellRunner{}
	res, err := r.Run(context.Background(), Action{Script: `printf '%s|%s' "$1" "$2"`}, []string{"a b", "c"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := string(res.Stdout); got != "a b|c" {
		t.Fatalf("stdout = %q, want %q", got, "a b|c")
	}
}

func TestShellRunnerReportsExitCode(t *testing.T) {
	t.Parallel()
	requireShell(t)
	r := ShellRunner{}
	_, err := r.Run(context.Background(), Action{Name: "fail", Script: "echo oops >&2; exit 3"}, nil)
	var xe *ExecutionError
	if !errors.As(err, &xe) {
		t.Fatalf("err = %v, want ExecutionError", err)
	}
	if xe.ExitCode != 3 || xe.Stderr != "oops" || xe.Action != "fail" {
		t.Fatalf("unexpected error: %+v", xe)
	}
}

func TestShellRunnerCapsOutput(t *testing.T) {
	t.Parallel()
	requireShell(t)
	r := ShellRunner{MaxOutput: 4}
	res, err := r.Run(context.Background(), Action{Script: "printf 123456789"}, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := string(res.Stdout); got != "1234" {
		t.Fatalf("stdout = %q, want 1234", got)
	}
}

func TestShellRunnerEnvAndTimeout(t *testing.T) {
	t.Parallel()
	requireShell(t)
	r := ShellRunner{}
	res, err := r.Run(context.Background(), Action{Name: "env", Script: `printf '%s/%s' "$FOO" "$COMMANDER_ACTION"`, Env: map[string]string{"FOO": "bar"}}, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := string(res.Stdout); got != "bar/env" {
		t.Fatalf("stdout = %q", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = r.Run(ctx, Action{Script: "sleep 5"}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestShellRunnerCommandArgv(t *testing.T) {
	t.Parallel()
	requireShell(t)
	r := ShellRunner{}
	res, err := r.Run(context.Background(), Action{Command: []string{DefaultShell, "-c", `printf '%s' "$1"`, "x"}}, []string{"arg"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := string(res.Stdout); got != "arg" {
		t.Fatalf("stdout = %q, want arg", got)
	}
}
