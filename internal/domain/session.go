package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type SessionID string

func NewSessionID(role Role, seq int) SessionID {
	return SessionID(fmt.Sprintf("%s-%03d", role.Prefix(), seq))
}

// ParseSessionID splits an id into its role and per-role sequence number.
func ParseSessionID(raw string) (Role, int, error) {
	idx := strings.LastIndex(raw, "-")
	if idx <= 0 || idx == len(raw)-1 {
		return "", 0, fmt.Errorf("%w: malformed session id %q", ErrInvalidInput, raw)
	}

	role, ok := roleFromPrefix(raw[:idx])
	if !ok {
		return "", 0, fmt.Errorf("%w: unknown role prefix in session id %q", ErrInvalidInput, raw)
	}

	seq, err := strconv.Atoi(raw[idx+1:])
	if err != nil || seq < 1 {
		return "", 0, fmt.Errorf("%w: bad sequence in session id %q", ErrInvalidInput, raw)
	}

	return role, seq, nil
}

func (id SessionID) String() string {
	return string(id)
}

type SessionStatus string

const (
	StatusCreated   SessionStatus = "created"
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
	StatusStopped   SessionStatus = "stopped"
)

func (s SessionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusRunning, StatusCompleted, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

type SessionMetadata struct {
	ID        SessionID     `json:"id"`
	Role      Role          `json:"role"`
	Status    SessionStatus `json:"status"`
	Task      string        `json:"task"`
	CreatedAt time.Time     `json:"created_at"`
	StartedAt *time.Time    `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at"`
	PID       *int          `json:"pid"`
	LogDir    string        `json:"log_dir"`
	ParentID  SessionID     `json:"parent_id,omitempty"`
	ExitCode  *int          `json:"exit_code,omitempty"`
}

func NewSessionMetadata(id SessionID, role Role, task string, logDir string, now time.Time) SessionMetadata {
	return SessionMetadata{
		ID:        id,
		Role:      role,
		Status:    StatusCreated,
		Task:      task,
		CreatedAt: now.UTC(),
		LogDir:    logDir,
	}
}

// MarkStarted moves a created session to running. It reports false when the
// session was not in the created state.
func (m *SessionMetadata) MarkStarted(pid int, now time.Time) bool {
	if m.Status != StatusCreated {
		return false
	}

	started := now.UTC()
	m.Status = StatusRunning
	m.StartedAt = &started
	m.PID = &pid
	return true
}

func (m *SessionMetadata) MarkCompleted(exitCode int, now time.Time) bool {
	return m.finish(StatusCompleted, &exitCode, now)
}

func (m *SessionMetadata) MarkFailed(exitCode *int, now time.Time) bool {
	return m.finish(StatusFailed, exitCode, now)
}

func (m *SessionMetadata) MarkStopped(now time.Time) bool {
	return m.finish(StatusStopped, nil, now)
}

func (m *SessionMetadata) finish(status SessionStatus, exitCode *int, now time.Time) bool {
	if m.Status.IsTerminal() {
		return false
	}

	ended := now.UTC()
	m.Status = status
	m.EndedAt = &ended
	m.PID = nil
	if exitCode != nil {
		code := *exitCode
		m.ExitCode = &code
	}
	return true
}

// Clone returns a deep copy so callers never share pointer fields.
func (m SessionMetadata) Clone() SessionMetadata {
	out := m
	out.StartedAt = cloneTime(m.StartedAt)
	out.EndedAt = cloneTime(m.EndedAt)
	out.PID = cloneInt(m.PID)
	out.ExitCode = cloneInt(m.ExitCode)
	return out
}

func (m SessionMetadata) PIDValue() (int, bool) {
	if m.PID == nil {
		return 0, false
	}
	return *m.PID, true
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
