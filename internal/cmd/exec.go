package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Tsdevendra1/branchlet/internal/log"
)

// ExitError describes a command that could not be started or exited non-zero.
type ExitError struct {
	Name     string
	Args     []string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// RunContext executes a command in dir and discards stdout.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputContext(ctx, dir, name, args...)
	return err
}

// OutputContext executes a command in dir and returns its stdout.
// A cancelled context is returned as-is so callers can match it.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		exitErr := &ExitError{
			Name:     name,
			Args:     args,
			Stderr:   strings.TrimSpace(stderr.String()),
			ExitCode: -1,
			Err:      err,
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitErr.ExitCode = ee.ExitCode()
		}
		return nil, exitErr
	}
	return stdout.Bytes(), nil
}
