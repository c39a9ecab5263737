package ports

import (
	"context"

	"github.com/ThePuug/claude-man/internal/domain"
)

// Process is a running agent process owned by a Supervisor.
type Process interface {
	PID() int
}

type SpawnConfig struct {
	Task        string
	RoleContext string
	Args        []string
	Env         []string
	WorkDir     string
}

// FullTask is the prompt handed to the agent: the role context, if any,
// followed by a blank line and the task.
func (c SpawnConfig) FullTask() string {
	if c.RoleContext == "" {
		return c.Task
	}
	return c.RoleContext + "\n\n" + c.Task
}

type Supervisor interface {
	Spawn(ctx context.Context, cfg SpawnConfig) (Process, error)
	// Monitor pumps process output into the transcript and input lines into
	// the process until stdout closes or ctx is cancelled. It returns the
	// exit code, or -1 when none is available.
	Monitor(ctx context.Context, proc Process, id domain.SessionID, transcript Transcript, input <-chan string) (int, error)
	Terminate(ctx context.Context, proc Process) error
	TerminatePID(ctx context.Context, pid int) error
	IsAlive(pid int) bool
}

// Signaler is the platform capability used to check and signal processes.
type Signaler interface {
	Alive(pid int) bool
	Terminate(pid int) error
	Kill(pid int) error
}
