package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
)

const (
	DefaultAddr = "127.0.0.1:47520"

	requestReadTimeout = 10 * time.Second
	responseTimeout    = 10 * time.Second
	maxRequestSize     = 1 << 20
)

// Registry is the session authority the server exposes. The server holds no
// session state of its own.
type Registry interface {
	Spawn(ctx context.Context, role domain.Role, task string) (domain.SessionID, error)
	SpawnChild(ctx context.Context, parentID domain.SessionID, role domain.Role, task string) (domain.SessionID, error)
	Resume(ctx context.Context, id domain.SessionID, message string) (int, error)
	List() []domain.SessionMetadata
	Children(parentID domain.SessionID) []domain.SessionMetadata
	Get(id domain.SessionID) (domain.SessionMetadata, error)
	SendInput(ctx context.Context, id domain.SessionID, text string) error
	Stop(ctx context.Context, id domain.SessionID) error
	StopAll(ctx context.Context) error
	LoadFromDisk(ctx context.Context) (int, error)
	CleanupCompleted(ctx context.Context) int
}

type ServerOption func(*Server)

func WithAddr(addr string) ServerOption {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithLockPath guards the sessions root so only one daemon manages it.
func WithLockPath(path string) ServerOption {
	return func(s *Server) {
		s.lockPath = path
	}
}

// WithCleanupInterval enables periodic removal of finished sessions. Zero
// disables it.
func WithCleanupInterval(interval time.Duration) ServerOption {
	return func(s *Server) {
		s.cleanupInterval = interval
	}
}

func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

type Server struct {
	registry        Registry
	addr            string
	lockPath        string
	cleanupInterval time.Duration
	logger          *slog.Logger

	shutdown atomic.Bool

	readyOnce sync.Once
	ready     chan struct{}
	mu        sync.Mutex
	listener  net.Listener
}

func NewServer(registry Registry, opts ...ServerOption) *Server {
	s := &Server{
		registry: registry,
		addr:     DefaultAddr,
		logger:   slog.New(slog.DiscardHandler),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready is closed once the server is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr reports the bound address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run serves until ctx is cancelled or a shutdown request arrives, then stops
// every session the registry still runs.
func (s *Server) Run(ctx context.Context) error {
	if s.lockPath != "" {
		lock := flock.New(s.lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire daemon lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("%w: lock %s is held by another process", domain.ErrDaemonRunning, s.lockPath)
		}
		defer func() { _ = lock.Unlock() }()
	}

	loaded, err := s.registry.LoadFromDisk(ctx)
	if err != nil {
		s.logger.Warn("load sessions from disk", "error", err)
	}
	s.logger.Info("loaded sessions", "count", loaded)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("daemon listening", "addr", listener.Addr().String())

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopWatch := context.AfterFunc(serveCtx, func() {
		_ = listener.Close()
	})
	defer stopWatch()

	var wg conc.WaitGroup
	if s.cleanupInterval > 0 {
		wg.Go(func() { s.cleanupLoop(serveCtx) })
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.shutdown.Load() || serveCtx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept connection", "error", err)
			continue
		}
		wg.Go(func() { s.handle(serveCtx, conn) })
	}

	if s.shutdown.Load() {
		s.logger.Info("shutdown requested, stopping daemon")
	}

	cancel()
	wg.Wait()

	stopCtx := context.WithoutCancel(ctx)
	if err := s.registry.StopAll(stopCtx); err != nil {
		s.logger.Warn("stop sessions", "error", err)
	}
	s.logger.Info("daemon stopped")
	return nil
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.registry.CleanupCompleted(ctx)
		}
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With("request_id", uuid.NewString(), "remote", conn.RemoteAddr().String())

	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestSize)

	var resp Response
	var req Request
	if !scanner.Scan() {
		err := scanner.Err()
		if err == nil {
			logger.Debug("connection closed before request")
			return
		}
		resp = Failure("read request", fmt.Errorf("%w: %v", domain.ErrProtocol, err))
	} else {
		decoded, err := DecodeRequest(scanner.Bytes())
		if err != nil {
			resp = Failure("Invalid request", err)
		} else {
			req = decoded
			logger.Debug("request received", "command", req.Command, "session_id", req.SessionID)
			resp = s.dispatch(ctx, req)
		}
	}

	if err := s.write(conn, resp); err != nil {
		logger.Warn("write response", "error", err)
	}
	if resp.Status == StatusError {
		logger.Info("request failed", "command", req.Command, "error", resp.Message)
	}

	if req.Command == CommandShutdown && resp.OK() {
		s.requestShutdown()
	}
}

func (s *Server) write(conn net.Conn, resp Response) error {
	line, err := encodeLine(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(responseTimeout))
	if _, err := conn.Write(line); err != nil {
		return err
	}
	return nil
}

func (s *Server) requestShutdown() {
	if s.shutdown.Swap(true) {
		return
	}

	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener != nil {
		_ = listener.Close()
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	id := domain.SessionID(req.SessionID)

	switch req.Command {
	case CommandPing:
		return OK("pong")

	case CommandSpawn:
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return Failure("Invalid role", err)
		}

		var spawned domain.SessionID
		if req.ParentID != "" {
			spawned, err = s.registry.SpawnChild(ctx, domain.SessionID(req.ParentID), role, req.Task)
		} else {
			spawned, err = s.registry.Spawn(ctx, role, req.Task)
		}
		if err != nil {
			return Failure("Failed to spawn session", err)
		}

		pid := 0
		if meta, err := s.registry.Get(spawned); err == nil {
			pid, _ = meta.PIDValue()
		}
		return Spawned(spawned, pid)

	case CommandResume:
		code, err := s.registry.Resume(ctx, id, req.Message)
		if err != nil {
			return Failure("Failed to resume session", err)
		}
		resp := OK(fmt.Sprintf("Session %s resumed (exit code: %d)", id, code))
		resp.SessionID = id
		resp.ExitCode = &code
		return resp

	case CommandList:
		if req.ParentID != "" {
			return SessionList(s.registry.Children(domain.SessionID(req.ParentID)))
		}
		return SessionList(s.registry.List())

	case CommandInfo:
		meta, err := s.registry.Get(id)
		if err != nil {
			return Failure("Session not found", err)
		}
		return SessionInfo(meta)

	case CommandStop:
		if err := s.registry.Stop(ctx, id); err != nil {
			return Failure("Failed to stop session", err)
		}
		return OK(fmt.Sprintf("Session %s stopped", id))

	case CommandStopAll:
		if err := s.registry.StopAll(ctx); err != nil {
			return Failure("Failed to stop sessions", err)
		}
		return OK("All sessions stopped")

	case CommandAttach:
		if _, err := s.registry.Get(id); err != nil {
			return Failure("Session not found", err)
		}
		return OK(fmt.Sprintf("Attaching to session %s", id))

	case CommandInput:
		if err := s.registry.SendInput(ctx, id, req.Text); err != nil {
			return Failure("Failed to send input", err)
		}
		return OK(fmt.Sprintf("Input sent to session %s", id))

	case CommandShutdown:
		return OK("Daemon shutting down")

	default:
		return Failure("Invalid request", fmt.Errorf("%w: unknown command %q", domain.ErrProtocol, req.Command))
	}
}
