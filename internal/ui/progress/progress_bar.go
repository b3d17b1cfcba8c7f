// Package progress renders progress for long-running batch operations.
package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
)

type progressUpdate struct {
	current int
	message string
}

// ProgressBar shows a determinate progress bar on a writer, normally stderr.
// It satisfies the batch delete observer so it can be handed to the
// deleter directly.
type ProgressBar struct {
	out       io.Writer
	program   *tea.Program
	updateCh  chan progressUpdate
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
	total     int
	current   int
	message   string
	failed    int
}

type progressBarModel struct {
	progress progress.Model
	total    int
	current  int
	message  string
	updateCh chan progressUpdate
}

func (m progressBarModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m progressBarModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updateCh
		if !ok {
			return tea.Quit()
		}
		return update
	}
}

func (m progressBarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdate:
		m.current = msg.current
		m.message = msg.message
		return m, m.waitForUpdate()
	default:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}
}

func (m progressBarModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(render(m.progress, m.current, m.total, m.message))
}

func render(bar progress.Model, current, total int, message string) string {
	percent := 0.0
	if total > 0 {
		percent = float64(current) / float64(total)
	}
	return fmt.Sprintf("%s %d/%d %s", bar.ViewAs(percent), current, total, message)
}

// NewProgressBar creates a progress bar for total items writing to out.
func NewProgressBar(out io.Writer, total int, message string) *ProgressBar {
	return &ProgressBar{
		out:      out,
		updateCh: make(chan progressUpdate, 10),
		done:     make(chan struct{}),
		total:    total,
		message:  message,
	}
}

// Start begins rendering.
func (p *ProgressBar) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return
	}

	bar := progress.New(
		progress.WithWidth(30),
		progress.WithoutPercentage(),
		progress.WithColors(styles.Primary, styles.Accent),
	)

	model := progressBarModel{
		progress: bar,
		total:    p.total,
		current:  p.current,
		message:  p.message,
		updateCh: p.updateCh,
	}

	p.program = tea.NewProgram(model,
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(p.out),
	)
	p.isRunning = true

	go func() {
		_, _ = p.program.Run()
		close(p.done)
	}()
}

// SetProgress updates the count and message. Updates are dropped while the
// renderer is behind.
func (p *ProgressBar) SetProgress(current int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.message = message
	if !p.isRunning {
		return
	}
	select {
	case p.updateCh <- progressUpdate{current: current, message: message}:
	default:
	}
}

// DeleteStarted reports the worktree being removed.
func (p *ProgressBar) DeleteStarted(path string, index, total int) {
	p.SetProgress(index-1, "removing "+filepath.Base(path))
}

// DeleteFinished advances the bar past path.
func (p *ProgressBar) DeleteFinished(path string, err error) {
	p.mu.Lock()
	if err != nil {
		p.failed++
	}
	current := p.current + 1
	p.mu.Unlock()

	p.SetProgress(current, "removed "+filepath.Base(path))
}

// Failed returns how many DeleteFinished calls carried an error.
func (p *ProgressBar) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Current returns the last reported count.
func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Stop stops rendering and clears the line.
func (p *ProgressBar) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	close(p.updateCh)
	p.mu.Unlock()

	if p.program != nil {
		p.program.Quit()
	}

	select {
	case <-p.done:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Fprint(p.out, "\r\033[K")
}

// Total returns the total count for the progress bar.
func (p *ProgressBar) Total() int {
	return p.total
}
