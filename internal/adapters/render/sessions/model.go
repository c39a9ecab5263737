package sessions

import (
	"errors"
	"io"

	"github.com/ThePuug/claude-man/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	sessions []domain.SessionMetadata
	detail   *domain.SessionMetadata
	opts     RenderOptions
	styles   styles
	output   string
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		if m.detail != nil {
			m.output = renderDetail(*m.detail, m.opts, m.styles)
		} else {
			m.output = renderTable(m.sessions, m.opts, m.styles)
		}
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws a table of sessions.
func Render(sessions []domain.SessionMetadata, opts RenderOptions) (string, error) {
	return run(model{sessions: sessions, opts: opts, styles: newStyles()})
}

// RenderDetail draws every field of one session.
func RenderDetail(meta domain.SessionMetadata, opts RenderOptions) (string, error) {
	return run(model{detail: &meta, opts: opts, styles: newStyles()})
}

func run(m model) (string, error) {
	p := tea.NewProgram(
		m,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
