package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionIDZeroPadsSequence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SessionID("DEV-001"), NewSessionID(RoleDeveloper, 1))
	assert.Equal(t, SessionID("MGR-042"), NewSessionID(RoleManager, 42))
	assert.Equal(t, SessionID("STAKE-1000"), NewSessionID(RoleStakeholder, 1000))
}

func TestParseSessionID(t *testing.T) {
	t.Parallel()

	role, seq, err := ParseSessionID("ARCH-007")
	require.NoError(t, err)
	assert.Equal(t, RoleArchitect, role)
	assert.Equal(t, 7, seq)

	for _, raw := range []string{"", "DEV", "DEV-", "-001", "QA-001", "DEV-abc", "DEV-000"} {
		_, _, err := ParseSessionID(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusCreated.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusStopped.IsTerminal())
}

func TestSessionMetadataLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	meta := NewSessionMetadata("DEV-001", RoleDeveloper, "write tests", "/tmp/DEV-001", now)
	assert.Equal(t, StatusCreated, meta.Status)
	assert.Nil(t, meta.PID)

	require.True(t, meta.MarkStarted(4242, now.Add(time.Second)))
	assert.Equal(t, StatusRunning, meta.Status)
	pid, ok := meta.PIDValue()
	require.True(t, ok)
	assert.Equal(t, 4242, pid)
	assert.False(t, meta.MarkStarted(1, now), "started twice")

	require.True(t, meta.MarkCompleted(0, now.Add(time.Minute)))
	assert.Equal(t, StatusCompleted, meta.Status)
	assert.Nil(t, meta.PID)
	require.NotNil(t, meta.EndedAt)
	require.NotNil(t, meta.ExitCode)
	assert.Equal(t, 0, *meta.ExitCode)
}

func TestSessionMetadataTerminalStatesAreAbsorbing(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	meta := NewSessionMetadata("DEV-001", RoleDeveloper, "task", "/tmp", now)
	require.True(t, meta.MarkStarted(10, now))
	require.True(t, meta.MarkStopped(now.Add(time.Second)))
	endedAt := *meta.EndedAt

	code := 1
	assert.False(t, meta.MarkFailed(&code, now.Add(time.Hour)))
	assert.False(t, meta.MarkCompleted(0, now.Add(time.Hour)))
	assert.False(t, meta.MarkStarted(11, now.Add(time.Hour)))
	assert.Equal(t, StatusStopped, meta.Status)
	assert.Equal(t, endedAt, *meta.EndedAt)
	assert.Nil(t, meta.ExitCode)
}

func TestSessionMetadataJSONShape(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	meta := NewSessionMetadata("MGR-001", RoleManager, "plan", "/logs/MGR-001", now)
	require.True(t, meta.MarkStarted(99, now))

	data, err := json.Marshal(meta)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "MGR-001", raw["id"])
	assert.Equal(t, "MANAGER", raw["role"])
	assert.Equal(t, "running", raw["status"])
	assert.EqualValues(t, 99, raw["pid"])
	assert.Contains(t, raw, "ended_at")
	assert.NotContains(t, raw, "parent_id")

	var decoded SessionMetadata
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestSessionMetadataCloneIsDeep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	meta := NewSessionMetadata("DEV-002", RoleDeveloper, "task", "/tmp", now)
	require.True(t, meta.MarkStarted(5, now))

	clone := meta.Clone()
	*clone.PID = 6
	assert.Equal(t, 5, *meta.PID)
}

func TestExitEventStatusFollowsExitCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	ok := NewExitEvent(0, now)
	status, found := ok.LifecycleStatus()
	require.True(t, found)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, "Session completed successfully (exit code: 0)", ok.Content)

	failed := NewExitEvent(3, now)
	status, found = failed.LifecycleStatus()
	require.True(t, found)
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, "Session failed (exit code: 3)", failed.Content)

	_, found = NewOutputEvent("hello", now).LifecycleStatus()
	assert.False(t, found)
}

func TestIoEventJSONOmitsEmptyMetadata(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(NewOutputEvent("hi", now))
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2026-02-14T12:00:00Z","event_type":"output","content":"hi"}`, string(data))

	data, err = json.Marshal(NewStartedEvent(7, now))
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2026-02-14T12:00:00Z","event_type":"lifecycle","content":"Session started (PID: 7)","metadata":{"status":"running"}}`, string(data))
}
