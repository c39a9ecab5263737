package sessions

import (
	"testing"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSessions(now time.Time) []domain.SessionMetadata {
	running := domain.NewSessionMetadata("MGR-001", domain.RoleManager, "lead", "/sessions/MGR-001", now.Add(-10*time.Minute))
	running.MarkStarted(4242, now.Add(-10*time.Minute))

	done := domain.NewSessionMetadata("DEV-001", domain.RoleDeveloper, "build", "/sessions/DEV-001", now.Add(-5*time.Minute))
	done.ParentID = "MGR-001"
	done.MarkStarted(4300, now.Add(-5*time.Minute))
	done.MarkCompleted(0, now.Add(-3*time.Minute))

	return []domain.SessionMetadata{done, running}
}

func TestRenderSessionTable(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render(fixtureSessions(now), RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "sessions: 2")
	assert.Contains(t, output, "SESSION-ID")
	assert.Contains(t, output, "MGR-001")
	assert.Contains(t, output, "DEV-001")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "completed")
	assert.Contains(t, output, "2026-02-14 10:50:00 UTC")
	assert.Contains(t, output, "10m 0s")
	assert.Contains(t, output, "2m 0s")
	assert.Contains(t, output, "<- MGR-001")
}

func TestRenderEmptyTable(t *testing.T) {
	output, err := Render(nil, RenderOptions{Title: "Children of MGR-001"})

	require.NoError(t, err)
	assert.Contains(t, output, "Children of MGR-001")
	assert.Contains(t, output, "No active sessions")
	assert.NotContains(t, output, "SESSION-ID")
}

func TestRenderDetail(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
	sessions := fixtureSessions(now)

	output, err := RenderDetail(sessions[0], RenderOptions{Now: now})
	require.NoError(t, err)
	assert.Contains(t, output, "Session: DEV-001")
	assert.Contains(t, output, "DEVELOPER")
	assert.Contains(t, output, "build")
	assert.Contains(t, output, "MGR-001")
	assert.Contains(t, output, "Exit code:")
	assert.Contains(t, output, "/sessions/DEV-001")
	assert.NotContains(t, output, "PID:")

	output, err = RenderDetail(sessions[1], RenderOptions{Now: now})
	require.NoError(t, err)
	assert.Contains(t, output, "PID:")
	assert.Contains(t, output, "4242")
	assert.NotContains(t, output, "Ended:")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 45 * time.Second, want: "45s"},
		{in: 125 * time.Second, want: "2m 5s"},
		{in: 3665 * time.Second, want: "1h 1m"},
		{in: -time.Second, want: "0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestEventLine(t *testing.T) {
	at := time.Date(2026, 2, 14, 11, 2, 3, 0, time.UTC)

	assert.Contains(t, EventLine(domain.NewOutputEvent("hello", at)), "[11:02:03] hello")
	assert.Contains(t, EventLine(domain.NewErrorEvent("bad", at)), "ERROR: bad")
	assert.Contains(t, EventLine(domain.NewInputEvent("more", at)), "> more")
	assert.Contains(t, EventLine(domain.NewExitEvent(0, at)), "-- Session completed successfully (exit code: 0)")
}
