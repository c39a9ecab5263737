//go:build !windows

package process

import (
	"errors"
	"os/exec"
	"syscall"

	"github.com/ThePuug/claude-man/internal/ports"
	"golang.org/x/sys/unix"
)

type unixSignaler struct{}

func NewSignaler() ports.Signaler {
	return unixSignaler{}
}

// Alive sends signal 0. EPERM means the pid exists but belongs to
// someone else.
func (unixSignaler) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func (unixSignaler) Terminate(pid int) error {
	return sendSignal(pid, unix.SIGTERM)
}

func (unixSignaler) Kill(pid int) error {
	return sendSignal(pid, unix.SIGKILL)
}

func sendSignal(pid int, sig unix.Signal) error {
	if pid <= 0 {
		return unix.ESRCH
	}
	err := unix.Kill(pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// configureCommand puts the agent in its own process group so terminal
// signals aimed at the caller do not reach it.
func configureCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
