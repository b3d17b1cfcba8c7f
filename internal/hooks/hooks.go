package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/template"
)

// outputTail is how much trailing command output is kept for error reports.
const outputTail = 4096

// CommandError reports a command that could not start or exited non-zero.
type CommandError struct {
	Command  string
	Output   string // trailing combined output
	ExitCode int    // -1 if the command did not run
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command)
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	}
	if out := lastLine(e.Output); out != "" {
		return msg + ": " + out
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ProgressObserver is told about each post-create command before it starts.
type ProgressObserver interface {
	// CommandStarted receives the rendered command, its 1-based position
	// and the number of commands.
	CommandStarted(command string, index, total int)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(command string, index, total int)

// CommandStarted calls f.
func (f ProgressFunc) CommandStarted(command string, index, total int) {
	f(command, index, total)
}

// Runner executes shell commands.
type Runner struct {
	shell string
}

// NewRunner returns a Runner using sh.
func NewRunner() *Runner {
	return &Runner{shell: "sh"}
}

// RunPostCreate runs commands sequentially in dir. Blank entries are skipped.
// The first failure stops the sequence and is returned as *CommandError.
// obs may be nil.
func (r *Runner) RunPostCreate(ctx context.Context, commands []string, vars template.Variables, dir string, obs ProgressObserver) error {
	l := log.FromContext(ctx)

	var pending []string
	for _, c := range commands {
		if strings.TrimSpace(c) != "" {
			pending = append(pending, c)
		}
	}

	for i, c := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		rendered := template.Render(c, vars)
		if obs != nil {
			obs.CommandStarted(rendered, i+1, len(pending))
		}
		l.Debug("running post-create command", "command", rendered, "dir", dir)

		if err := r.run(ctx, rendered, vars, dir, l.Writer()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, command string, vars template.Variables, dir string, out io.Writer) error {
	tail := &tailBuffer{max: outputTail}
	w := io.MultiWriter(out, tail)

	c := exec.CommandContext(ctx, r.shell, "-c", command)
	c.Dir = dir
	c.Env = environ(vars)
	c.Stdout = w
	c.Stderr = w

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		ce := &CommandError{Command: command, Output: tail.String(), ExitCode: -1, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ce.ExitCode = exitErr.ExitCode()
		}
		return ce
	}
	return nil
}

// OpenTerminal renders command and starts it in dir without waiting for it.
// An empty command is a no-op. Only a failure to start is returned.
func (r *Runner) OpenTerminal(ctx context.Context, command string, vars template.Variables, dir string) error {
	rendered := strings.TrimSpace(template.Render(command, vars))
	if rendered == "" {
		return nil
	}
	log.FromContext(ctx).Debug("opening terminal", "command", rendered, "dir", dir)

	// Not tied to ctx: the editor or terminal outlives this process.
	c := exec.Command(r.shell, "-c", rendered)
	c.Dir = dir
	c.Env = environ(vars)
	if err := c.Start(); err != nil {
		return &CommandError{Command: rendered, ExitCode: -1, Err: err}
	}
	go func() { _ = c.Wait() }()
	return nil
}

// environ returns the process environment plus the template variables.
func environ(vars template.Variables) []string {
	env := os.Environ()
	for token, value := range vars.Map() {
		env = append(env, strings.TrimPrefix(token, "$")+"="+value)
	}
	return env
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
