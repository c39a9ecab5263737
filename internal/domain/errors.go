package domain

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInputUnavailable  = errors.New("session input unavailable")
	ErrSpawnFailed       = errors.New("spawn agent process")
	ErrProcessFailed     = errors.New("agent process failed")
	ErrTerminationFailed = errors.New("terminate agent process")
	ErrAgentUnavailable  = errors.New("agent unavailable")
	ErrProtocol          = errors.New("daemon protocol error")
	ErrDaemonRunning     = errors.New("daemon already running")
)
