package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	mu       sync.Mutex
	counters map[domain.Role]int
	sessions map[domain.SessionID]domain.SessionMetadata
	inputs   map[domain.SessionID][]string
	stopped  []domain.SessionID
	stopAll  int
	loads    int
	cleanups int
	resumed  []string
	stopErr  error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		counters: map[domain.Role]int{},
		sessions: map[domain.SessionID]domain.SessionMetadata{},
		inputs:   map[domain.SessionID][]string{},
	}
}

func (f *fakeRegistry) Spawn(ctx context.Context, role domain.Role, task string) (domain.SessionID, error) {
	return f.SpawnChild(ctx, "", role, task)
}

func (f *fakeRegistry) SpawnChild(_ context.Context, parentID domain.SessionID, role domain.Role, task string) (domain.SessionID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if parentID != "" {
		if _, ok := f.sessions[parentID]; !ok {
			return "", fmt.Errorf("%w: parent %s", domain.ErrSessionNotFound, parentID)
		}
	}
	f.counters[role]++
	id := domain.NewSessionID(role, f.counters[role])
	now := time.Now()
	meta := domain.NewSessionMetadata(id, role, task, "/sessions/"+string(id), now)
	meta.ParentID = parentID
	meta.MarkStarted(4000+len(f.sessions), now)
	f.sessions[id] = meta
	return id, nil
}

func (f *fakeRegistry) Resume(_ context.Context, id domain.SessionID, message string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.sessions[id]; !ok {
		return -1, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	f.resumed = append(f.resumed, message)
	return 3, nil
}

func (f *fakeRegistry) List() []domain.SessionMetadata {
	return f.filter(func(domain.SessionMetadata) bool { return true })
}

func (f *fakeRegistry) Children(parentID domain.SessionID) []domain.SessionMetadata {
	return f.filter(func(m domain.SessionMetadata) bool { return m.ParentID == parentID })
}

func (f *fakeRegistry) filter(keep func(domain.SessionMetadata) bool) []domain.SessionMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.SessionMetadata
	for _, meta := range f.sessions {
		if keep(meta) {
			out = append(out, meta.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRegistry) Get(id domain.SessionID) (domain.SessionMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta, ok := f.sessions[id]
	if !ok {
		return domain.SessionMetadata{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return meta.Clone(), nil
}

func (f *fakeRegistry) SendInput(_ context.Context, id domain.SessionID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if meta.Status != domain.StatusRunning {
		return fmt.Errorf("%w: session %s is %s", domain.ErrInvalidInput, id, meta.Status)
	}
	f.inputs[id] = append(f.inputs[id], text)
	return nil
}

func (f *fakeRegistry) Stop(_ context.Context, id domain.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	meta.MarkStopped(time.Now())
	f.sessions[id] = meta
	f.stopped = append(f.stopped, id)
	return f.stopErr
}

func (f *fakeRegistry) StopAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopAll++
	for id, meta := range f.sessions {
		meta.MarkStopped(time.Now())
		f.sessions[id] = meta
	}
	return nil
}

func (f *fakeRegistry) LoadFromDisk(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.loads++
	return 0, nil
}

func (f *fakeRegistry) CleanupCompleted(context.Context) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleanups++
	return 0
}

func (f *fakeRegistry) counts() (stopAll, loads, cleanups int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopAll, f.loads, f.cleanups
}

var _ Registry = (*fakeRegistry)(nil)

type runningServer struct {
	server *Server
	client *Client
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func (r *runningServer) wait(t *testing.T) error {
	t.Helper()

	select {
	case <-r.done:
		return r.err
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
		return nil
	}
}

func startServer(t *testing.T, registry Registry, opts ...ServerOption) *runningServer {
	t.Helper()

	base := []ServerOption{
		WithAddr("127.0.0.1:0"),
		WithLockPath(filepath.Join(t.TempDir(), "daemon.lock")),
	}
	srv := NewServer(registry, append(base, opts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	running := &runningServer{server: srv, cancel: cancel, done: make(chan struct{})}
	go func() {
		running.err = srv.Run(ctx)
		close(running.done)
	}()

	select {
	case <-srv.Ready():
	case <-running.done:
		t.Fatalf("daemon failed to start: %v", running.err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not become ready")
	}

	running.client = NewClient(srv.Addr().String(), WithRequestTimeout(5*time.Second))
	t.Cleanup(func() {
		cancel()
		<-running.done
	})
	return running
}

func TestServerPing(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	running := startServer(t, registry)

	resp, err := running.client.Ping(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "pong", resp.Message)
	assert.True(t, running.client.IsRunning(context.Background()))

	_, loads, _ := registry.counts()
	assert.Equal(t, 1, loads)
}

func TestServerSpawnAndQuery(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	running := startServer(t, registry)
	client := running.client
	ctx := context.Background()

	resp, err := client.Spawn(ctx, "manager", "lead the team", "")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionID("MGR-001"), resp.SessionID)
	require.NotNil(t, resp.PID)
	assert.Equal(t, 4000, *resp.PID)

	resp, err = client.Spawn(ctx, "DEV", "write code", "MGR-001")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionID("DEV-001"), resp.SessionID)

	resp, err = client.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, domain.SessionID("DEV-001"), resp.Sessions[0].ID)

	resp, err = client.List(ctx, "MGR-001")
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, domain.SessionID("MGR-001"), resp.Sessions[0].ParentID)

	resp, err = client.Info(ctx, "MGR-001")
	require.NoError(t, err)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "lead the team", resp.Session.Task)

	resp, err = client.Attach(ctx, "DEV-001")
	require.NoError(t, err)
	assert.Equal(t, "Attaching to session DEV-001", resp.Message)
}

func TestServerSpawnRejectsBadRoleWithoutSideEffects(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	running := startServer(t, registry)

	resp, err := running.client.Spawn(context.Background(), "janitor", "mop", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Message, "Invalid role")
	assert.Empty(t, registry.List())
}

func TestServerSpawnChildUnknownParent(t *testing.T) {
	t.Parallel()

	running := startServer(t, newFakeRegistry())

	_, err := running.client.Spawn(context.Background(), "developer", "task", "MGR-404")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServerMapsRegistryErrors(t *testing.T) {
	t.Parallel()

	running := startServer(t, newFakeRegistry())
	client := running.client
	ctx := context.Background()

	_, err := client.Info(ctx, "DEV-009")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = client.Stop(ctx, "DEV-009")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorContains(t, err, "Failed to stop session")

	_, err = client.Input(ctx, "DEV-009", "hi")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = client.Attach(ctx, "DEV-009")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServerInputStopAndResume(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	running := startServer(t, registry)
	client := running.client
	ctx := context.Background()

	_, err := client.Spawn(ctx, "developer", "task", "")
	require.NoError(t, err)

	resp, err := client.Input(ctx, "DEV-001", "continue please")
	require.NoError(t, err)
	assert.Equal(t, "Input sent to session DEV-001", resp.Message)

	resp, err = client.Stop(ctx, "DEV-001")
	require.NoError(t, err)
	assert.Equal(t, "Session DEV-001 stopped", resp.Message)

	_, err = client.Input(ctx, "DEV-001", "too late")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err = client.Resume(ctx, "DEV-001", "one more thing")
	require.NoError(t, err)
	require.NotNil(t, resp.ExitCode)
	assert.Equal(t, 3, *resp.ExitCode)

	registry.mu.Lock()
	defer registry.mu.Unlock()
	assert.Equal(t, []string{"continue please"}, registry.inputs["DEV-001"])
	assert.Equal(t, []string{"one more thing"}, registry.resumed)
}

func TestServerTerminationFailureIsReported(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	registry.stopErr = fmt.Errorf("%w: operation not permitted", domain.ErrTerminationFailed)
	running := startServer(t, registry)
	ctx := context.Background()

	_, err := running.client.Spawn(ctx, "developer", "task", "")
	require.NoError(t, err)

	_, err = running.client.Stop(ctx, "DEV-001")
	require.ErrorIs(t, err, domain.ErrTerminationFailed)
}

func TestServerAnswersMalformedRequests(t *testing.T) {
	t.Parallel()

	running := startServer(t, newFakeRegistry())

	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "not json", line: "hello daemon\n", want: "invalid request"},
		{name: "unknown command", line: `{"command":"reboot"}` + "\n", want: "unknown command"},
		{name: "missing field", line: `{"command":"info"}` + "\n", want: "info requires session_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := net.Dial("tcp", running.server.Addr().String())
			require.NoError(t, err)
			defer conn.Close()

			_, err = conn.Write([]byte(tt.line))
			require.NoError(t, err)

			reply, err := bufio.NewReader(conn).ReadBytes('\n')
			require.NoError(t, err)

			resp, err := DecodeResponse(reply)
			require.NoError(t, err)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, CodeProtocol, resp.Code)
			assert.Contains(t, resp.Message, tt.want)
		})
	}
}

func TestServerShutdownRespondsThenStops(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	running := startServer(t, registry)
	ctx := context.Background()

	_, err := running.client.Spawn(ctx, "developer", "task", "")
	require.NoError(t, err)

	resp, err := running.client.Shutdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Daemon shutting down", resp.Message)

	require.NoError(t, running.wait(t))

	stopAll, _, _ := registry.counts()
	assert.Equal(t, 1, stopAll)
	meta, err := registry.Get("DEV-001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStopped, meta.Status)

	_, err = running.client.Ping(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestServerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	running := startServer(t, registry)

	running.cancel()
	require.NoError(t, running.wait(t))

	stopAll, _, _ := registry.counts()
	assert.Equal(t, 1, stopAll)
}

func TestServerRefusesSecondDaemonOnSameLock(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "daemon.lock")
	startServer(t, newFakeRegistry(), WithLockPath(lockPath))

	second := NewServer(newFakeRegistry(), WithAddr("127.0.0.1:0"), WithLockPath(lockPath))
	err := second.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrDaemonRunning)
}

func TestServerRunsPeriodicCleanup(t *testing.T) {
	t.Parallel()

	registry := newFakeRegistry()
	startServer(t, registry, WithCleanupInterval(10*time.Millisecond))

	require.Eventually(t, func() bool {
		_, _, cleanups := registry.counts()
		return cleanups >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestClientReportsUnavailableDaemon(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client := NewClient(addr, WithDialTimeout(200*time.Millisecond))
	assert.False(t, client.IsRunning(context.Background()))

	_, err = client.List(context.Background(), "")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClientDialWithCancelledContext(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewClient(listener.Addr().String()).Ping(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestClientHonoursContextCancel(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := NewClient(listener.Addr().String()).Resume(ctx, "DEV-001", "slow")
		result <- err
	}()

	conn := <-accepted
	t.Cleanup(func() { _ = conn.Close() })
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)
	assert.Contains(t, string(line), `"command":"resume"`)
	cancel()

	select {
	case err := <-result:
		require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("client did not return after cancel")
	}
}
