package e2e

import (
	"bytes"
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ThePuug/claude-man/internal/adapters/daemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeAgent = `#!/bin/sh
echo "hello from $CLAUDE_MAN_SESSION_ID"
`

func TestSmokeFlow(t *testing.T) {
	env := newSmokeEnv(t)
	binaryPath := buildBinary(t)

	stdout, stderr, err := runClaudeMan(t, binaryPath, env, "spawn", "--role", "developer", "say hello")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Session DEV-001 completed successfully")

	stdout, stderr, err = runClaudeMan(t, binaryPath, env, "list")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "DEV-001")

	stdout, stderr, err = runClaudeMan(t, binaryPath, env, "logs", "DEV-001")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "hello from DEV-001")
}

func TestDaemonSmokeFlow(t *testing.T) {
	env := newSmokeEnv(t)
	binaryPath := buildBinary(t)

	daemonCmd := exec.Command(binaryPath, "daemon")
	daemonCmd.Env = env
	var daemonOut bytes.Buffer
	daemonCmd.Stdout = &daemonOut
	daemonCmd.Stderr = &daemonOut
	require.NoError(t, daemonCmd.Start())
	t.Cleanup(func() { _ = daemonCmd.Process.Kill() })

	client := daemon.NewClient(lookupEnv(env, "CLAUDE_MAN_DAEMON_ADDR"))
	require.Eventually(t, func() bool {
		return client.IsRunning(context.Background())
	}, 10*time.Second, 50*time.Millisecond)

	stdout, stderr, err := runClaudeMan(t, binaryPath, env, "spawn", "--role", "stakeholder", "review")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "View output: claude-man logs STAKE-001")

	require.Eventually(t, func() bool {
		stdout, _, err := runClaudeMan(t, binaryPath, env, "logs", "STAKE-001")
		return err == nil && strings.Contains(stdout, "hello from STAKE-001")
	}, 10*time.Second, 100*time.Millisecond)

	stdout, stderr, err = runClaudeMan(t, binaryPath, env, "shutdown")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Daemon shutting down")

	require.NoError(t, daemonCmd.Wait(), "daemon output: %s", daemonOut.String())
	assert.Contains(t, daemonOut.String(), "Daemon shut down successfully")
}

func newSmokeEnv(t *testing.T) []string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script agents need a unix shell")
	}

	home := t.TempDir()
	agentPath := filepath.Join(home, "fake-claude")
	require.NoError(t, os.WriteFile(agentPath, []byte(fakeAgent), 0o755))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	return append(os.Environ(),
		"HOME="+home,
		"CLAUDE_MAN_SESSIONS_ROOT="+filepath.Join(home, "sessions"),
		"CLAUDE_MAN_DAEMON_ADDR="+addr,
		"CLAUDE_MAN_AGENT_COMMAND="+agentPath,
	)
}

func lookupEnv(env []string, key string) string {
	value := ""
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, key+"="); ok {
			value = v
		}
	}
	return value
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "claude-man-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/claude-man")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build claude-man binary: %s", string(output))
	return binaryPath
}

func runClaudeMan(t *testing.T, binaryPath string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = env

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
