package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var elapsedStyle = lipgloss.NewStyle().Faint(true)

type stopFinishedMsg struct {
	err error
}

// stopPolledMsg carries how many targets are still running. A negative count
// means the poll failed and the previous count stands.
type stopPolledMsg struct {
	running int
}

// stopProgressModel shows which share of the targeted sessions has stopped
// while the stop request is in flight. Each session may take its full grace
// period, so the wait is made visible.
type stopProgressModel struct {
	spinner  spinner.Model
	label    string
	targets  []domain.SessionID
	running  int
	started  time.Time
	now      func() time.Time
	interval time.Duration
	stop     tea.Cmd
	poll     func() tea.Msg
	err      error
	done     bool
}

func newStopProgressModel(label string, targets []domain.SessionID, stop tea.Cmd, poll func() tea.Msg, now func() time.Time, interval time.Duration) stopProgressModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("203"))),
	)

	return stopProgressModel{
		spinner:  s,
		label:    label,
		targets:  targets,
		running:  len(targets),
		started:  now(),
		now:      now,
		interval: interval,
		stop:     stop,
		poll:     poll,
	}
}

func (m stopProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.stop, m.nextPoll())
}

func (m stopProgressModel) nextPoll() tea.Cmd {
	if m.poll == nil || len(m.targets) == 0 {
		return nil
	}
	poll := m.poll
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return poll()
	})
}

func (m stopProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case stopPolledMsg:
		if m.done {
			return m, nil
		}
		if msg.running >= 0 {
			m.running = min(msg.running, len(m.targets))
		}
		return m, m.nextPoll()
	case stopFinishedMsg:
		m.done = true
		m.err = msg.err
		if msg.err == nil {
			m.running = 0
		}
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m stopProgressModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", m.spinner.View(), m.label)
	if total := len(m.targets); total > 1 {
		fmt.Fprintf(&b, " %d/%d stopped", total-m.running, total)
	}
	elapsed := m.now().Sub(m.started).Truncate(time.Second)
	fmt.Fprintf(&b, " %s", elapsedStyle.Render(elapsed.String()))
	return b.String()
}

// runningAmong counts the targets that are still running in sessions.
func runningAmong(targets []domain.SessionID, sessions []domain.SessionMetadata) int {
	wanted := make(map[domain.SessionID]struct{}, len(targets))
	for _, id := range targets {
		wanted[id] = struct{}{}
	}

	running := 0
	for _, meta := range sessions {
		if _, ok := wanted[meta.ID]; ok && meta.Status == domain.StatusRunning {
			running++
		}
	}
	return running
}

// runStopProgress runs stop while drawing progress over targets on output.
func (a *app) runStopProgress(ctx context.Context, output io.Writer, b backend, label string, targets []domain.SessionID, stop func(context.Context) error) error {
	stopCmd := func() tea.Msg {
		return stopFinishedMsg{err: stop(ctx)}
	}
	poll := func() tea.Msg {
		sessions, err := b.List(ctx, "")
		if err != nil {
			a.logger.Debug("poll session status", "error", err)
			return stopPolledMsg{running: -1}
		}
		return stopPolledMsg{running: runningAmong(targets, sessions)}
	}

	p := tea.NewProgram(
		newStopProgressModel(label, targets, stopCmd, poll, a.now, a.waitInterval),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(stopProgressModel)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", finalModel)
	}

	return result.err
}
