package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ThePuug/claude-man/internal/domain"
)

const (
	CommandPing     = "ping"
	CommandSpawn    = "spawn"
	CommandResume   = "resume"
	CommandList     = "list"
	CommandInfo     = "info"
	CommandStop     = "stop"
	CommandStopAll  = "stopall"
	CommandAttach   = "attach"
	CommandInput    = "input"
	CommandShutdown = "shutdown"
)

const (
	StatusOK           = "ok"
	StatusError        = "error"
	StatusOutput       = "output"
	StatusSessionEnded = "sessionended"
)

// Error codes let clients map a remote failure back onto the domain errors.
const (
	CodeNotFound          = "session_not_found"
	CodeInvalidInput      = "invalid_input"
	CodeInputUnavailable  = "input_unavailable"
	CodeSpawnFailed       = "spawn_failed"
	CodeTerminationFailed = "termination_failed"
	CodeProtocol          = "protocol"
	CodeInternal          = "internal"
)

// Request is one line sent by a client. Only the fields used by Command are
// set.
type Request struct {
	Command   string `json:"command"`
	Role      string `json:"role,omitempty"`
	Task      string `json:"task,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Response is one line sent back by the daemon. Output and SessionEnded are
// part of the wire format but the daemon does not emit them; attach clients
// follow the transcript on disk instead.
type Response struct {
	Status    string                   `json:"status"`
	Message   string                   `json:"message,omitempty"`
	Code      string                   `json:"code,omitempty"`
	SessionID domain.SessionID         `json:"session_id,omitempty"`
	PID       *int                     `json:"pid,omitempty"`
	Sessions  []domain.SessionMetadata `json:"sessions,omitempty"`
	Session   *domain.SessionMetadata  `json:"session,omitempty"`
	Content   string                   `json:"content,omitempty"`
	EventType domain.EventType         `json:"event_type,omitempty"`
	ExitCode  *int                     `json:"exit_code,omitempty"`
}

func (r Request) Validate() error {
	var missing []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	switch r.Command {
	case CommandPing, CommandList, CommandStopAll, CommandShutdown:
	case CommandSpawn:
		require("role", r.Role)
		require("task", r.Task)
	case CommandResume:
		require("session_id", r.SessionID)
		require("message", r.Message)
	case CommandInfo, CommandStop, CommandAttach:
		require("session_id", r.SessionID)
	case CommandInput:
		require("session_id", r.SessionID)
	case "":
		return fmt.Errorf("%w: command is required", domain.ErrProtocol)
	default:
		return fmt.Errorf("%w: unknown command %q", domain.ErrProtocol, r.Command)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s requires %s", domain.ErrProtocol, r.Command, strings.Join(missing, ", "))
	}
	return nil
}

func DecodeRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("%w: invalid request: %v", domain.ErrProtocol, err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func DecodeResponse(line []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: invalid response: %v", domain.ErrProtocol, err)
	}
	switch resp.Status {
	case StatusOK, StatusError, StatusOutput, StatusSessionEnded:
		return resp, nil
	default:
		return Response{}, fmt.Errorf("%w: unknown response status %q", domain.ErrProtocol, resp.Status)
	}
}

// encodeLine renders v as a single newline-terminated JSON line.
func encodeLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func OK(message string) Response {
	return Response{Status: StatusOK, Message: message}
}

func Spawned(id domain.SessionID, pid int) Response {
	return Response{Status: StatusOK, SessionID: id, PID: &pid}
}

func SessionList(sessions []domain.SessionMetadata) Response {
	return Response{Status: StatusOK, Sessions: sessions}
}

func SessionInfo(session domain.SessionMetadata) Response {
	return Response{Status: StatusOK, Session: &session}
}

func Output(id domain.SessionID, content string, eventType domain.EventType) Response {
	return Response{Status: StatusOutput, SessionID: id, Content: content, EventType: eventType}
}

func SessionEnded(id domain.SessionID, exitCode int) Response {
	return Response{Status: StatusSessionEnded, SessionID: id, ExitCode: &exitCode}
}

// Failure builds an error response whose code reflects err's kind.
func Failure(message string, err error) Response {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return Response{Status: StatusError, Message: message, Code: codeFor(err)}
}

func (r Response) OK() bool {
	return r.Status == StatusOK
}

// Err returns nil for non-error responses, otherwise an error wrapping the
// domain error named by the response code.
func (r Response) Err() error {
	if r.Status != StatusError {
		return nil
	}
	if sentinel := errorFor(r.Code); sentinel != nil {
		return &RemoteError{Message: r.Message, kind: sentinel}
	}
	return &RemoteError{Message: r.Message}
}

var ErrRemote = errors.New("daemon request failed")

type RemoteError struct {
	Message string
	kind    error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() []error {
	if e.kind != nil {
		return []error{ErrRemote, e.kind}
	}
	return []error{ErrRemote}
}

func codeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrSessionNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrInputUnavailable):
		return CodeInputUnavailable
	case errors.Is(err, domain.ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, domain.ErrSpawnFailed):
		return CodeSpawnFailed
	case errors.Is(err, domain.ErrTerminationFailed):
		return CodeTerminationFailed
	case errors.Is(err, domain.ErrProtocol):
		return CodeProtocol
	default:
		return CodeInternal
	}
}

func errorFor(code string) error {
	switch code {
	case CodeNotFound:
		return domain.ErrSessionNotFound
	case CodeInvalidInput:
		return domain.ErrInvalidInput
	case CodeInputUnavailable:
		return domain.ErrInputUnavailable
	case CodeSpawnFailed:
		return domain.ErrSpawnFailed
	case CodeTerminationFailed:
		return domain.ErrTerminationFailed
	case CodeProtocol:
		return domain.ErrProtocol
	default:
		return nil
	}
}
