package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".claude-man"
	envPrefix  = "CLAUDE_MAN"

	StdinPiped = "piped"
	StdinNull  = "null"
)

type Config struct {
	Sessions SessionsConfig `mapstructure:"sessions" toml:"sessions"`
	Daemon   DaemonConfig   `mapstructure:"daemon" toml:"daemon"`
	Agent    AgentConfig    `mapstructure:"agent" toml:"agent"`
	Logs     LogsConfig     `mapstructure:"logs" toml:"logs"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging"`
}

type SessionsConfig struct {
	// Root holds one directory per session. Relative paths resolve against
	// the working directory.
	Root string `mapstructure:"root" toml:"root"`
}

type DaemonConfig struct {
	Addr                   string `mapstructure:"addr" toml:"addr"`
	DialTimeoutMs          int    `mapstructure:"dial_timeout_ms" toml:"dial_timeout_ms"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds" toml:"request_timeout_seconds"`
	CleanupIntervalSeconds int    `mapstructure:"cleanup_interval_seconds" toml:"cleanup_interval_seconds"`
}

// AgentConfig describes how the agent is launched. Env holds extra
// KEY=VALUE pairs; Stdin is "piped" to forward input or "null" to detach it.
type AgentConfig struct {
	Command    string   `mapstructure:"command" toml:"command"`
	Args       []string `mapstructure:"args" toml:"args"`
	ResumeArgs []string `mapstructure:"resume_args" toml:"resume_args"`
	WorkDir    string   `mapstructure:"workdir" toml:"workdir"`
	Env        []string `mapstructure:"env" toml:"env"`
	Stdin      string   `mapstructure:"stdin" toml:"stdin"`
}

type LogsConfig struct {
	PollIntervalMs int `mapstructure:"poll_interval_ms" toml:"poll_interval_ms"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
	File   string `mapstructure:"file" toml:"file"`
}

func Default() Config {
	return Config{
		Sessions: SessionsConfig{Root: filepath.Join(configDir, "sessions")},
		Daemon: DaemonConfig{
			Addr:                   "127.0.0.1:47520",
			DialTimeoutMs:          500,
			RequestTimeoutSeconds:  30,
			CleanupIntervalSeconds: 0,
		},
		Agent: AgentConfig{
			Command:    "claude",
			Args:       []string{},
			ResumeArgs: []string{"--continue"},
			Env:        []string{},
			Stdin:      StdinPiped,
		},
		Logs:    LogsConfig{PollIntervalMs: 200},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("sessions.root", defaults.Sessions.Root)

	v.SetDefault("daemon.addr", defaults.Daemon.Addr)
	v.SetDefault("daemon.dial_timeout_ms", defaults.Daemon.DialTimeoutMs)
	v.SetDefault("daemon.request_timeout_seconds", defaults.Daemon.RequestTimeoutSeconds)
	v.SetDefault("daemon.cleanup_interval_seconds", defaults.Daemon.CleanupIntervalSeconds)

	v.SetDefault("agent.command", defaults.Agent.Command)
	v.SetDefault("agent.args", defaults.Agent.Args)
	v.SetDefault("agent.resume_args", defaults.Agent.ResumeArgs)
	v.SetDefault("agent.workdir", defaults.Agent.WorkDir)
	v.SetDefault("agent.env", defaults.Agent.Env)
	v.SetDefault("agent.stdin", defaults.Agent.Stdin)

	v.SetDefault("logs.poll_interval_ms", defaults.Logs.PollIntervalMs)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.file", defaults.Logging.File)
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// Load reads ~/.claude-man/config.toml when present, then applies
// CLAUDE_MAN_* environment overrides on top of the defaults.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	setDefaults(v)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Sessions.Root) == "" {
		errs = append(errs, errors.New("sessions.root is empty"))
	}
	if strings.TrimSpace(c.Agent.Command) == "" {
		errs = append(errs, errors.New("agent.command is empty"))
	}
	switch c.Agent.Stdin {
	case StdinPiped, StdinNull:
	default:
		errs = append(errs, fmt.Errorf("agent.stdin must be %q or %q, got %q", StdinPiped, StdinNull, c.Agent.Stdin))
	}
	if _, _, err := net.SplitHostPort(c.Daemon.Addr); err != nil {
		errs = append(errs, fmt.Errorf("daemon.addr %q: %w", c.Daemon.Addr, err))
	}
	if c.Daemon.DialTimeoutMs <= 0 {
		errs = append(errs, errors.New("daemon.dial_timeout_ms must be positive"))
	}
	if c.Daemon.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("daemon.request_timeout_seconds must be positive"))
	}
	if c.Daemon.CleanupIntervalSeconds < 0 {
		errs = append(errs, errors.New("daemon.cleanup_interval_seconds must not be negative"))
	}
	for _, pair := range c.Agent.Env {
		if !strings.Contains(pair, "=") {
			errs = append(errs, fmt.Errorf("agent.env entry %q is not KEY=VALUE", pair))
		}
	}
	if c.Logs.PollIntervalMs <= 0 {
		errs = append(errs, errors.New("logs.poll_interval_ms must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SessionsRoot resolves sessions.root to an absolute, clean path.
func (c Config) SessionsRoot() (string, error) {
	abs, err := filepath.Abs(c.Sessions.Root)
	if err != nil {
		return "", fmt.Errorf("resolve sessions root: %w", err)
	}
	return filepath.Clean(abs), nil
}

// LockPath is the daemon lock file, kept next to the sessions root.
func (c Config) LockPath() (string, error) {
	root, err := c.SessionsRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(root), "daemon.lock"), nil
}

func (c DaemonConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMs) * time.Millisecond
}

func (c DaemonConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c DaemonConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

func (c LogsConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func Encode(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := Encode(Default())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
