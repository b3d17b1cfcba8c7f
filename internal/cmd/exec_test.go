package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Tsdevendra1/branchlet/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func TestRunContext_Success(t *testing.T) {
	t.Parallel()
	if err := RunContext(logCtx(), "", "echo", "hello"); err != nil {
		t.Errorf("RunContext(echo hello) = %v, want nil", err)
	}
}

func TestRunContext_StderrMessage(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "echo 'bad thing' >&2; exit 3")
	if err == nil {
		t.Fatal("RunContext = nil, want error")
	}
	if err.Error() != "bad thing" {
		t.Errorf("RunContext error = %q, want %q", err.Error(), "bad thing")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %T is not *ExitError", err)
	}
	if exitErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", exitErr.ExitCode)
	}
}

func TestRunContext_NoStderr(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "exit 1")
	if err == nil {
		t.Fatal("RunContext(exit 1) = nil, want error")
	}
	if !strings.Contains(err.Error(), "sh -c exit 1") {
		t.Errorf("error = %q, want command line in message", err.Error())
	}
}

func TestRunContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	err := RunContext(ctx, "", "sleep", "10")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunContext error = %v, want context.Canceled", err)
	}
}

func TestOutputContext_Dir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out, err := OutputContext(logCtx(), dir, "pwd")
	if err != nil {
		t.Fatalf("OutputContext(pwd) = %v", err)
	}
	if got := strings.TrimSpace(string(out)); !strings.HasSuffix(got, dir) && !strings.HasSuffix(dir, got) {
		t.Errorf("pwd = %q, want %q", got, dir)
	}
}

func TestOutputContext_Success(t *testing.T) {
	t.Parallel()
	out, err := OutputContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("OutputContext(echo hello) = %v, want nil", err)
	}
	if got := string(out); got != "hello\n" {
		t.Errorf("OutputContext output = %q, want %q", got, "hello\n")
	}
}

func TestOutputContext_LogsCommandWhenVerbose(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, true, false))
	if _, err := OutputContext(ctx, "", "echo", "hi"); err != nil {
		t.Fatalf("OutputContext = %v", err)
	}
	if !strings.Contains(buf.String(), "$ echo hi") {
		t.Errorf("log = %q, want command echo", buf.String())
	}
}
