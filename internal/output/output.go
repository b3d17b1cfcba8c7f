// Package output provides context-aware output for branchlet.
// Stdout carries primary data (listings, paths, the navigation handoff).
// Stderr (via log package) is used for diagnostics.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type ctxKey struct{}

// Printer writes primary output to stdout.
type Printer struct {
	w io.Writer
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Printer{w: w})
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return &Printer{w: os.Stdout}
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// ClosePayload is the handoff emitted by a successful close.
// The shell wrapper changes into NavigateTo and then removes DeleteWorktree.
type ClosePayload struct {
	NavigateTo     string `json:"navigateTo"`
	DeleteWorktree string `json:"deleteWorktree"`
}

// NavigatePath emits the bare-path handoff line for the shell wrapper.
func (p *Printer) NavigatePath(path string) {
	fmt.Fprintln(p.w, path)
}

// NavigateClose emits the close handoff as a single JSON line.
func (p *Printer) NavigateClose(payload ClosePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode close payload: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}
