package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestPrintf(t *testing.T) {
	t.Parallel()

	t.Run("writes formatted output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, false, false)
		l.Printf("hello %s %d", "world", 42)
		if got := buf.String(); got != "hello world 42" {
			t.Errorf("Printf output = %q, want %q", got, "hello world 42")
		}
	})

	t.Run("suppressed when quiet", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, false, true)
		l.Printf("should not appear")
		if buf.Len() != 0 {
			t.Errorf("Printf wrote %q when quiet", buf.String())
		}
	})
}

func TestCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"verbose echoes", true, "$ git worktree list\n"},
		{"silent by default", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			New(&buf, tt.verbose, false).Command("git", "worktree", "list")
			if got := buf.String(); got != tt.want {
				t.Errorf("Command output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	t.Parallel()

	t.Run("debug hidden without verbose", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		New(&buf, false, false).Debug("hidden", "k", "v")
		if buf.Len() != 0 {
			t.Errorf("Debug wrote %q without verbose", buf.String())
		}
	})

	t.Run("debug shown with verbose", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		New(&buf, true, false).Debug("shown", "path", "/tmp/x")
		if got := buf.String(); got != "debug: shown path=/tmp/x\n" {
			t.Errorf("Debug output = %q", got)
		}
	})

	t.Run("warn survives quiet", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		New(&buf, false, true).Warn("careful", "branch", "feat", "count", 2)
		if got := buf.String(); got != "Warning: careful branch=feat count=2\n" {
			t.Errorf("Warn output = %q", got)
		}
	})

	t.Run("odd key value list", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		New(&buf, false, false).Info("msg", "dangling")
		if !strings.Contains(buf.String(), "!BADKEY=dangling") {
			t.Errorf("Info output = %q", buf.String())
		}
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, true, false)
	if got := FromContext(WithLogger(context.Background(), l)); got != l {
		t.Error("FromContext did not return attached logger")
	}

	noop := FromContext(context.Background())
	if noop.Writer() != io.Discard {
		t.Error("default logger should discard output")
	}
}
