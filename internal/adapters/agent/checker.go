package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
)

const defaultCheckTimeout = 10 * time.Second

var errNotFound = errors.New("command not found")

type runFunc func(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)

// Checker verifies that the agent binary is installed and usable before a
// session is started.
type Checker struct {
	command string
	timeout time.Duration
	run     runFunc
}

func NewChecker(command string) *Checker {
	return &Checker{command: command, timeout: defaultCheckTimeout, run: runCommand}
}

// Check runs `<command> --version` and then `<command> --help`. It returns the
// reported version.
func (c *Checker) Check(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, c.command, "--version")
	if err != nil {
		if errors.Is(err, errNotFound) {
			return "", fmt.Errorf("%w: %s is not installed or not on PATH", domain.ErrAgentUnavailable, c.command)
		}
		return "", formatError(c.command, "--version", err, stderr)
	}

	_, stderr, err = c.run(ctx, c.command, "--help")
	if err != nil {
		return "", fmt.Errorf("%s is installed but not ready, authenticate by running it once: %w", c.command, formatError(c.command, "--help", err, stderr))
	}

	return strings.TrimSpace(stdout), nil
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", errNotFound
		}
		return "", "", fmt.Errorf("locate %s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(command string, arg string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrAgentUnavailable, command, arg, err)
	}

	return fmt.Errorf("%w: %s %s: %w: %s", domain.ErrAgentUnavailable, command, arg, err, stderr)
}
