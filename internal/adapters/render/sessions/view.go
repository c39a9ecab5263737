package sessions

import (
	"fmt"
	"strings"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

type RenderOptions struct {
	// Now dates the duration of sessions still running. Zero leaves it out.
	Now time.Time
	// Title replaces the default table heading.
	Title string
}

type column struct {
	title string
	width int
}

var columns = []column{
	{title: "SESSION-ID", width: 15},
	{title: "ROLE", width: 12},
	{title: "STATUS", width: 11},
	{title: "STARTED", width: 24},
	{title: "DURATION", width: 10},
}

func renderTable(sessions []domain.SessionMetadata, opts RenderOptions, s styles) string {
	title := opts.Title
	if title == "" {
		title = "Sessions"
	}
	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("sessions: %d", len(sessions))),
	}

	if len(sessions) == 0 {
		lines = append(lines, s.empty.Render("No active sessions"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	headers := make([]string, 0, len(columns))
	total := 0
	for _, col := range columns {
		headers = append(headers, cell(col.title, col.width, s.header))
		total += col.width
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	lines = append(lines, s.rule.Render(strings.Repeat("-", total)))

	for _, meta := range sessions {
		lines = append(lines, renderRow(meta, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(meta domain.SessionMetadata, opts RenderOptions, s styles) string {
	started := "Not started"
	if meta.StartedAt != nil {
		started = formatTimestamp(*meta.StartedAt)
	}
	duration := "-"
	if d, ok := sessionDuration(meta, opts.Now); ok {
		duration = FormatDuration(d)
	}

	idStyle := s.id
	if meta.ParentID != "" {
		idStyle = s.child
	}

	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		cell(string(meta.ID), columns[0].width, idStyle),
		cell(string(meta.Role), columns[1].width, s.detail),
		cell(string(meta.Status), columns[2].width, statusStyle(meta.Status, s)),
		cell(started, columns[3].width, s.detail),
		cell(duration, columns[4].width, s.detail),
	)
	if meta.ParentID != "" {
		row += " " + s.child.Render("<- "+string(meta.ParentID))
	}
	return row
}

func renderDetail(meta domain.SessionMetadata, opts RenderOptions, s styles) string {
	lines := []string{s.id.Render("Session: " + string(meta.ID))}

	field := func(label string, value string, style lipgloss.Style) {
		lines = append(lines, "  "+s.label.Render(fmt.Sprintf("%-11s", label+":"))+" "+style.Render(value))
	}

	field("Role", string(meta.Role), s.detail)
	field("Status", string(meta.Status), statusStyle(meta.Status, s))
	field("Task", meta.Task, s.detail)
	if meta.ParentID != "" {
		field("Parent", string(meta.ParentID), s.detail)
	}
	field("Created", formatTimestamp(meta.CreatedAt), s.detail)
	if meta.StartedAt != nil {
		field("Started", formatTimestamp(*meta.StartedAt), s.detail)
	}
	if meta.EndedAt != nil {
		field("Ended", formatTimestamp(*meta.EndedAt), s.detail)
	}
	if d, ok := sessionDuration(meta, opts.Now); ok {
		field("Duration", FormatDuration(d), s.detail)
	}
	if pid, ok := meta.PIDValue(); ok {
		field("PID", fmt.Sprintf("%d", pid), s.detail)
	}
	if meta.ExitCode != nil {
		field("Exit code", fmt.Sprintf("%d", *meta.ExitCode), s.detail)
	}
	field("Log dir", meta.LogDir, s.detail)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// EventLine formats one transcript record for terminal output.
func EventLine(event domain.IoEvent) string {
	s := newStyles()

	ts := s.timestamp.Render("[" + event.Timestamp.UTC().Format("15:04:05") + "]")
	switch event.EventType {
	case domain.EventInput:
		return ts + " " + s.input.Render("> "+event.Content)
	case domain.EventError:
		return ts + " " + s.errorLine.Render("ERROR: "+event.Content)
	case domain.EventLifecycle:
		return ts + " " + s.lifecycle.Render("-- "+event.Content)
	default:
		return ts + " " + s.output.Render(event.Content)
	}
}

// FormatDuration renders d as "45s", "2m 5s" or "1h 1m".
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}

	switch {
	case total < 60:
		return fmt.Sprintf("%ds", total)
	case total < 3600:
		return fmt.Sprintf("%dm %ds", total/60, total%60)
	default:
		return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func sessionDuration(meta domain.SessionMetadata, now time.Time) (time.Duration, bool) {
	if meta.StartedAt == nil {
		return 0, false
	}
	if meta.EndedAt != nil {
		return meta.EndedAt.Sub(*meta.StartedAt), true
	}
	if now.IsZero() {
		return 0, false
	}
	return now.Sub(*meta.StartedAt), true
}

func statusStyle(status domain.SessionStatus, s styles) lipgloss.Style {
	switch status {
	case domain.StatusRunning:
		return s.running
	case domain.StatusCompleted:
		return s.completed
	case domain.StatusFailed:
		return s.failed
	case domain.StatusStopped:
		return s.stopped
	default:
		return s.created
	}
}

func cell(value string, width int, style lipgloss.Style) string {
	if len(value) >= width {
		value = value[:width-1]
	}
	return style.Width(width).Render(value)
}
