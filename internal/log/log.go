// Package log provides context-aware logging for branchlet.
//
// Diagnostics go to stderr so stdout stays free for the navigation handoff
// consumed by the shell wrapper.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// Logger provides plain output, leveled diagnostics and verbose command logging.
type Logger struct {
	out     io.Writer
	entry   *logrus.Logger
	verbose bool
	quiet   bool
}

// New creates a new logger writing to out.
// verbose enables debug messages and command echoes; quiet suppresses
// everything below warnings.
func New(out io.Writer, verbose, quiet bool) *Logger {
	lr := logrus.New()
	lr.SetOutput(out)
	lr.SetFormatter(&formatter{color: isTerminal(out)})
	switch {
	case verbose:
		lr.SetLevel(logrus.DebugLevel)
	case quiet:
		lr.SetLevel(logrus.WarnLevel)
	default:
		lr.SetLevel(logrus.InfoLevel)
	}
	return &Logger{out: out, entry: lr, verbose: verbose, quiet: quiet}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return New(io.Discard, false, true)
}

// Printf writes formatted output unless quiet.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output unless quiet.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Debug logs a message with key/value pairs. Only shown in verbose mode.
func (l *Logger) Debug(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Debug(msg)
}

// Info logs a message with key/value pairs.
func (l *Logger) Info(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Info(msg)
}

// Warn logs a warning with key/value pairs. Shown even when quiet.
func (l *Logger) Warn(msg string, kv ...any) {
	l.entry.WithFields(fields(kv)).Warn(msg)
}

// Command logs an external command execution.
// Only prints when verbose mode is enabled.
func (l *Logger) Command(name string, args ...string) {
	if l.verbose {
		fmt.Fprintf(l.out, "$ %s %s\n", name, strings.Join(args, " "))
	}
}

// Verbose returns true if verbose mode is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Writer returns the writer for streamed subprocess output.
// Returns io.Discard when quiet.
func (l *Logger) Writer() io.Writer {
	if l.quiet {
		return io.Discard
	}
	return l.out
}

func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		f["!BADKEY"] = kv[len(kv)-1]
	}
	return f
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatter renders "Warning: msg key=value" lines.
type formatter struct {
	color bool
}

var levelColors = map[logrus.Level]*color.Color{
	logrus.DebugLevel: color.New(color.FgHiBlack),
	logrus.InfoLevel:  color.New(color.FgCyan),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed, color.Bold),
}

func (f *formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if label := levelLabel(e.Level); label != "" {
		if c, ok := levelColors[e.Level]; ok && f.color {
			c.EnableColor()
			label = c.Sprint(label)
		}
		b.WriteString(label)
		b.WriteString(" ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelLabel(lvl logrus.Level) string {
	switch lvl {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "debug:"
	case logrus.WarnLevel:
		return "Warning:"
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return "Error:"
	default:
		return ""
	}
}
