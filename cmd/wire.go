package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ThePuug/claude-man/internal/adapters/agent"
	"github.com/ThePuug/claude-man/internal/adapters/daemon"
	"github.com/ThePuug/claude-man/internal/adapters/process"
	sessionsrender "github.com/ThePuug/claude-man/internal/adapters/render/sessions"
	"github.com/ThePuug/claude-man/internal/adapters/repo/jsonfile"
	sidecarfile "github.com/ThePuug/claude-man/internal/adapters/sidecar/file"
	"github.com/ThePuug/claude-man/internal/adapters/transcript/jsonl"
	"github.com/ThePuug/claude-man/internal/application"
	"github.com/ThePuug/claude-man/internal/config"
	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/ThePuug/claude-man/internal/logging"
	"github.com/ThePuug/claude-man/internal/ports"
	"github.com/spf13/viper"
)

type agentChecker interface {
	Check(ctx context.Context) (string, error)
}

type app struct {
	cfg            config.Config
	logger         *slog.Logger
	logCloser      io.Closer
	client         *daemon.Client
	checker        agentChecker
	listRenderer   func([]domain.SessionMetadata, sessionsrender.RenderOptions) (string, error)
	detailRenderer func(domain.SessionMetadata, sessionsrender.RenderOptions) (string, error)
	waitInterval   time.Duration
	now            func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.Open(cfg.Logging.File, os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	client := daemon.NewClient(cfg.Daemon.Addr,
		daemon.WithDialTimeout(cfg.Daemon.DialTimeout()),
		daemon.WithRequestTimeout(cfg.Daemon.RequestTimeout()),
	)

	return &app{
		cfg:            cfg,
		logger:         logger,
		logCloser:      closer,
		client:         client,
		checker:        agent.NewChecker(cfg.Agent.Command),
		listRenderer:   sessionsrender.Render,
		detailRenderer: sessionsrender.RenderDetail,
		waitInterval:   500 * time.Millisecond,
		now:            time.Now,
	}, nil
}

func (a *app) sessionStore() (*jsonfile.Store, error) {
	root, err := a.cfg.SessionsRoot()
	if err != nil {
		return nil, err
	}
	store, err := jsonfile.NewStore(root)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}
	return store, nil
}

// newRegistry builds a registry over the configured sessions root. Agent
// output is mirrored to out and errOut.
func (a *app) newRegistry(out io.Writer, errOut io.Writer) (*application.Registry, error) {
	store, err := a.sessionStore()
	if err != nil {
		return nil, err
	}

	supervisor := process.NewSupervisor(a.cfg.Agent.Command,
		process.WithStdinPolicy(process.StdinPolicy(a.cfg.Agent.Stdin)),
		process.WithLogger(a.logger),
		process.WithEcho(out, errOut),
	)

	return application.NewRegistry(
		supervisor,
		store,
		jsonl.NewStore(),
		sidecarfile.NewStore(),
		ports.SystemClock{},
		application.WithLogger(a.logger),
		application.WithAgentOptions(application.AgentOptions{
			Args:       a.cfg.Agent.Args,
			ResumeArgs: a.cfg.Agent.ResumeArgs,
			Env:        a.cfg.Agent.Env,
			WorkDir:    a.cfg.Agent.WorkDir,
		}),
	), nil
}

// openBackend talks to the daemon when one answers, otherwise it loads a
// registry in this process.
func (a *app) openBackend(ctx context.Context, out io.Writer, errOut io.Writer) (backend, error) {
	if a.client.IsRunning(ctx) {
		a.logger.Debug("using daemon", "addr", a.client.Addr())
		return &daemonBackend{client: a.client, pollInterval: a.waitInterval}, nil
	}

	registry, err := a.newRegistry(out, errOut)
	if err != nil {
		return nil, err
	}
	if _, err := registry.LoadFromDisk(ctx); err != nil {
		a.logger.Warn("load sessions from disk", "error", err)
	}
	a.logger.Debug("running without daemon")
	return &directBackend{registry: registry}, nil
}

// lockedWriter serialises writes from the command and from agent output
// echoed by the supervisor.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newLockedWriter(w io.Writer) *lockedWriter {
	return &lockedWriter{w: w}
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
