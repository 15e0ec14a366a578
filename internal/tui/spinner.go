// Package tui renders long-running provisioning steps with a cancellable
// spinner. Pressing ctrl+c or q requests cooperative cancellation; the
// worker keeps control until it observes the context and returns.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cancelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// tickMsg drives the spinner animation.
type tickMsg time.Time

// workDoneMsg signals that the background work finished.
type workDoneMsg struct{ err error }

// SpinnerModel is a bubbletea model showing a single step in flight.
type SpinnerModel struct {
	title     string
	cancel    context.CancelFunc
	tick      int
	done      bool
	canceling bool
	err       error
}

// NewSpinnerModel creates a model for the given step title. cancel is
// invoked when the user requests an abort.
func NewSpinnerModel(title string, cancel context.CancelFunc) SpinnerModel {
	return SpinnerModel{title: title, cancel: cancel}
}

// Err returns the error reported by the background work, if any.
func (m SpinnerModel) Err() error { return m.err }

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m SpinnerModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Cancellation is cooperative: quit only once the worker
			// acknowledges by returning.
			m.canceling = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	frame := spinnerFrames[m.tick%len(spinnerFrames)]
	line := fmt.Sprintf("%s %s", frame, titleStyle.Render(m.title))
	if m.canceling {
		line += " " + cancelStyle.Render("(canceling...)")
	}
	return line + "\n"
}

// Run launches work in a goroutine under a derived context and blocks until
// it returns, rendering a spinner in the meantime. The returned error is the
// worker's error; a user-initiated abort surfaces as the worker's context
// cancellation error.
func Run(ctx context.Context, out io.Writer, title string, work func(context.Context) error) error {
	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSpinnerModel(title, cancel), tea.WithOutput(out))

	go func() {
		// Let bubbletea start its event loop and render the initial frame.
		time.Sleep(50 * time.Millisecond)
		p.Send(workDoneMsg{err: work(workCtx)})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(SpinnerModel); ok {
		return m.Err()
	}
	return nil
}
