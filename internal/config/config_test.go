package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	defaults := Default()
	assert.Equal(t, defaults.Sessions, cfg.Sessions)
	assert.Equal(t, defaults.Daemon, cfg.Daemon)
	assert.Equal(t, defaults.Logging, cfg.Logging)
	assert.Equal(t, "claude", cfg.Agent.Command)
	assert.Equal(t, []string{"--continue"}, cfg.Agent.ResumeArgs)
	assert.Equal(t, StdinPiped, cfg.Agent.Stdin)
	assert.Empty(t, cfg.Agent.Args)
	assert.Empty(t, cfg.Agent.Env)
	assert.Equal(t, 200*time.Millisecond, cfg.Logs.PollInterval())
	assert.Zero(t, cfg.Daemon.CleanupInterval())
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".claude-man")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	content := `
[daemon]
addr = "127.0.0.1:50000"

[agent]
command = "/opt/bin/claude"
args = ["--print"]
stdin = "null"
env = ["FOO=bar"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:50000", cfg.Daemon.Addr)
	assert.Equal(t, "/opt/bin/claude", cfg.Agent.Command)
	assert.Equal(t, []string{"--print"}, cfg.Agent.Args)
	assert.Equal(t, StdinNull, cfg.Agent.Stdin)
	assert.Equal(t, []string{"FOO=bar"}, cfg.Agent.Env)
	assert.Equal(t, []string{"--continue"}, cfg.Agent.ResumeArgs)
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CLAUDE_MAN_DAEMON_ADDR", "127.0.0.1:40000")
	t.Setenv("CLAUDE_MAN_SESSIONS_ROOT", "/var/tmp/sessions")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:40000", cfg.Daemon.Addr)
	assert.Equal(t, "/var/tmp/sessions", cfg.Sessions.Root)

	lock, err := cfg.LockPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/tmp", "daemon.lock"), lock)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".claude-man")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[agent]\nstdin = \"tty\"\n"), 0o600))

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.ErrorContains(t, err, "agent.stdin")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Agent.Command = " "
	cfg.Daemon.Addr = "no-port"
	cfg.Logs.PollIntervalMs = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "agent.command is empty")
	assert.ErrorContains(t, err, "daemon.addr")
	assert.ErrorContains(t, err, "logs.poll_interval_ms")
}

func TestEncodeProducesLoadableTOML(t *testing.T) {
	t.Parallel()

	data, err := Encode(Default())
	require.NoError(t, err)

	var decoded Config
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, Default().Daemon, decoded.Daemon)
	assert.Equal(t, Default().Agent.Command, decoded.Agent.Command)
}

func TestWriteDefaultRefusesToOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = WriteDefault(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "already exists")
}
