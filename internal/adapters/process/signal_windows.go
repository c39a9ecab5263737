//go:build windows

package process

import (
	"errors"
	"os/exec"
	"syscall"

	"github.com/ThePuug/claude-man/internal/ports"
	"golang.org/x/sys/windows"
)

const stillActive = 259

type windowsSignaler struct{}

func NewSignaler() ports.Signaler {
	return windowsSignaler{}
}

func (windowsSignaler) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return errors.Is(err, windows.ERROR_ACCESS_DENIED)
	}
	defer windows.CloseHandle(handle)

	var code uint32
	if err := windows.GetExitCodeProcess(handle, &code); err != nil {
		return false
	}
	return code == stillActive
}

// Terminate has no graceful variant on Windows.
func (w windowsSignaler) Terminate(pid int) error {
	return w.Kill(pid)
}

func (windowsSignaler) Kill(pid int) error {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
			return nil
		}
		return err
	}
	defer windows.CloseHandle(handle)

	return windows.TerminateProcess(handle, 1)
}

func configureCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}
