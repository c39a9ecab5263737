package domain

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventInput     EventType = "input"
	EventOutput    EventType = "output"
	EventError     EventType = "error"
	EventLifecycle EventType = "lifecycle"
)

// IoEvent is one record of a session transcript.
type IoEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType EventType      `json:"event_type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewInputEvent(content string, now time.Time) IoEvent {
	return IoEvent{Timestamp: now.UTC(), EventType: EventInput, Content: content}
}

func NewOutputEvent(content string, now time.Time) IoEvent {
	return IoEvent{Timestamp: now.UTC(), EventType: EventOutput, Content: content}
}

func NewErrorEvent(content string, now time.Time) IoEvent {
	return IoEvent{Timestamp: now.UTC(), EventType: EventError, Content: content}
}

func NewLifecycleEvent(status SessionStatus, content string, now time.Time) IoEvent {
	return IoEvent{
		Timestamp: now.UTC(),
		EventType: EventLifecycle,
		Content:   content,
		Metadata:  map[string]any{"status": string(status)},
	}
}

func NewStartedEvent(pid int, now time.Time) IoEvent {
	return NewLifecycleEvent(StatusRunning, fmt.Sprintf("Session started (PID: %d)", pid), now)
}

// NewExitEvent records how the agent process ended.
func NewExitEvent(exitCode int, now time.Time) IoEvent {
	var event IoEvent
	if exitCode == 0 {
		event = NewLifecycleEvent(StatusCompleted, fmt.Sprintf("Session completed successfully (exit code: %d)", exitCode), now)
	} else {
		event = NewLifecycleEvent(StatusFailed, fmt.Sprintf("Session failed (exit code: %d)", exitCode), now)
	}
	event.Metadata["exit_code"] = exitCode
	return event
}

// LifecycleStatus extracts the status carried by a lifecycle event.
func (e IoEvent) LifecycleStatus() (SessionStatus, bool) {
	if e.EventType != EventLifecycle || e.Metadata == nil {
		return "", false
	}
	raw, ok := e.Metadata["status"].(string)
	if !ok {
		return "", false
	}
	status := SessionStatus(raw)
	return status, status.Valid()
}
