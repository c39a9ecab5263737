package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/ThePuug/claude-man/internal/ports"
	"github.com/sourcegraph/conc/pool"
)

const (
	inputQueueSize = 64

	EnvSessionID    = "CLAUDE_MAN_SESSION_ID"
	EnvRole         = "CLAUDE_MAN_ROLE"
	EnvSessionDir   = "CLAUDE_MAN_SESSION_DIR"
	EnvParentID     = "CLAUDE_MAN_PARENT_ID"
	EnvInstructions = "CLAUDE_MAN_INSTRUCTIONS"
	EnvApprovalHook = "CLAUDE_MAN_APPROVAL_HOOK"
)

type AgentOptions struct {
	Args []string
	// ResumeArgs precede the message when a finished session is resumed.
	ResumeArgs []string
	Env        []string
	WorkDir    string
}

func DefaultAgentOptions() AgentOptions {
	return AgentOptions{ResumeArgs: []string{"--continue"}}
}

type RegistryOption func(*Registry)

func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithRolePolicy(policy RolePolicy) RegistryOption {
	return func(r *Registry) {
		r.policy = policy
	}
}

func WithAgentOptions(opts AgentOptions) RegistryOption {
	return func(r *Registry) {
		r.agent = opts
	}
}

// Registry owns every session known to this process. The session table and
// the per-role id counters are guarded by separate locks, and neither is held
// while waiting on a process or on disk.
type Registry struct {
	supervisor  ports.Supervisor
	store       ports.SessionStore
	transcripts ports.TranscriptStore
	sidecars    ports.SidecarStore
	clock       ports.Clock
	policy      RolePolicy
	agent       AgentOptions
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionHandle
	resuming map[domain.SessionID]struct{}

	counterMu sync.Mutex
	counters  map[domain.Role]int
}

// sessionHandle is the runtime side of a session. Adopted sessions, found
// running on disk after a restart, have no process, monitor or input route.
type sessionHandle struct {
	meta    domain.SessionMetadata
	process ports.Process
	cancel  context.CancelFunc
	done    chan struct{}
	input   *inputSender
}

func (h *sessionHandle) adopted() bool {
	return h.done == nil
}

func (h *sessionHandle) monitorFinished() bool {
	if h.done == nil {
		return false
	}
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

type inputSender struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

func newInputSender() *inputSender {
	return &inputSender{ch: make(chan string, inputQueueSize)}
}

func (s *inputSender) send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: input route closed", domain.ErrInputUnavailable)
	}
	select {
	case s.ch <- text:
		return nil
	default:
		return fmt.Errorf("%w: input queue full", domain.ErrInputUnavailable)
	}
}

func (s *inputSender) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func NewRegistry(supervisor ports.Supervisor, store ports.SessionStore, transcripts ports.TranscriptStore, sidecars ports.SidecarStore, clock ports.Clock, opts ...RegistryOption) *Registry {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	r := &Registry{
		supervisor:  supervisor,
		store:       store,
		transcripts: transcripts,
		sidecars:    sidecars,
		clock:       clock,
		policy:      DefaultRolePolicy(),
		agent:       DefaultAgentOptions(),
		logger:      slog.New(slog.DiscardHandler),
		sessions:    map[domain.SessionID]*sessionHandle{},
		resuming:    map[domain.SessionID]struct{}{},
		counters:    map[domain.Role]int{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Spawn(ctx context.Context, role domain.Role, task string) (domain.SessionID, error) {
	return r.spawn(ctx, "", role, task)
}

// SpawnChild spawns a session linked to parentID, which must be known to the
// registry at call time.
func (r *Registry) SpawnChild(ctx context.Context, parentID domain.SessionID, role domain.Role, task string) (domain.SessionID, error) {
	r.mu.RLock()
	_, ok := r.sessions[parentID]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: parent %s", domain.ErrSessionNotFound, parentID)
	}

	return r.spawn(ctx, parentID, role, task)
}

func (r *Registry) spawn(ctx context.Context, parentID domain.SessionID, role domain.Role, task string) (domain.SessionID, error) {
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, string(role))
	}
	if strings.TrimSpace(task) == "" {
		return "", fmt.Errorf("%w: task is empty", domain.ErrInvalidInput)
	}

	id := r.nextID(role)
	logger := r.logger.With("session_id", string(id))

	dir, err := r.store.Prepare(ctx, id)
	if err != nil {
		return "", fmt.Errorf("prepare session %s: %w", id, err)
	}

	meta := domain.NewSessionMetadata(id, role, task, dir, r.clock.Now())
	meta.ParentID = parentID

	profile := r.policy.Profile(role)
	cfg, err := r.spawnConfig(ctx, meta, profile, task, r.agent.Args, true)
	if err != nil {
		return "", fmt.Errorf("prepare session %s: %w", id, err)
	}

	if err := r.store.Save(ctx, meta); err != nil {
		return "", fmt.Errorf("save session %s: %w", id, err)
	}

	transcript, err := r.transcripts.Open(dir)
	if err != nil {
		return "", r.failSpawn(ctx, meta, nil, fmt.Errorf("open transcript: %w", err))
	}

	proc, err := r.supervisor.Spawn(ctx, cfg)
	if err != nil {
		return "", r.failSpawn(ctx, meta, transcript, err)
	}

	now := r.clock.Now()
	meta.MarkStarted(proc.PID(), now)
	if err := transcript.Append(domain.NewStartedEvent(proc.PID(), now)); err != nil {
		logger.Warn("append transcript", "error", err)
	}
	if err := r.store.Save(ctx, meta); err != nil {
		logger.Warn("persist running session", "error", err)
	}

	monitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	handle := &sessionHandle{
		meta:    meta,
		process: proc,
		cancel:  cancel,
		done:    make(chan struct{}),
		input:   newInputSender(),
	}

	r.mu.Lock()
	r.sessions[id] = handle
	r.mu.Unlock()

	go r.monitor(monitorCtx, handle, transcript, logger)

	logger.Info("session started", "role", string(role), "pid", proc.PID(), "parent_id", string(parentID))
	return id, nil
}

func (r *Registry) failSpawn(ctx context.Context, meta domain.SessionMetadata, transcript ports.Transcript, cause error) error {
	now := r.clock.Now()
	errs := []error{cause}

	if transcript != nil {
		if err := transcript.Append(domain.NewLifecycleEvent(domain.StatusFailed, "Session failed to start: "+cause.Error(), now)); err != nil {
			errs = append(errs, err)
		}
		if err := transcript.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	meta.MarkFailed(nil, now)
	if err := r.store.Save(context.WithoutCancel(ctx), meta); err != nil {
		errs = append(errs, err)
	}

	r.mu.Lock()
	r.sessions[meta.ID] = &sessionHandle{meta: meta}
	r.mu.Unlock()

	r.logger.Warn("session failed to start", "session_id", string(meta.ID), "error", cause)
	return fmt.Errorf("spawn session %s: %w", meta.ID, errors.Join(errs...))
}

func (r *Registry) monitor(ctx context.Context, h *sessionHandle, transcript ports.Transcript, logger *slog.Logger) {
	defer close(h.done)
	defer h.input.close()
	defer func() {
		if err := transcript.Close(); err != nil {
			logger.Warn("close transcript", "error", err)
		}
	}()

	code, err := r.supervisor.Monitor(ctx, h.process, h.meta.ID, transcript, h.input.ch)
	if ctx.Err() != nil {
		// Stopped: the stopper owns the final state.
		return
	}

	now := r.clock.Now()
	r.mu.Lock()
	var changed bool
	switch {
	case err != nil:
		changed = h.meta.MarkFailed(nil, now)
	case code == 0:
		changed = h.meta.MarkCompleted(code, now)
	default:
		changed = h.meta.MarkFailed(&code, now)
	}
	snapshot := h.meta.Clone()
	r.mu.Unlock()

	if err != nil {
		logger.Warn("monitor failed", "error", err)
	}
	if !changed {
		return
	}
	if err := r.store.Save(context.Background(), snapshot); err != nil {
		logger.Warn("persist finished session", "error", err)
	}
	logger.Info("session finished", "status", string(snapshot.Status), "exit_code", code)
}

// Resume runs the agent again for a finished session, in the same log
// directory and with the same role environment, and blocks until that run
// exits. The session's recorded status is left as it was.
func (r *Registry) Resume(ctx context.Context, id domain.SessionID, message string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return -1, fmt.Errorf("%w: resume message is empty", domain.ErrInvalidInput)
	}

	meta, err := r.claimResume(ctx, id)
	if err != nil {
		return -1, err
	}
	defer func() {
		r.mu.Lock()
		delete(r.resuming, id)
		r.mu.Unlock()
	}()

	logger := r.logger.With("session_id", string(id))

	cfg, err := r.spawnConfig(ctx, meta, r.policy.Profile(meta.Role), message, r.agent.ResumeArgs, false)
	if err != nil {
		return -1, fmt.Errorf("resume session %s: %w", id, err)
	}

	transcript, err := r.transcripts.Open(meta.LogDir)
	if err != nil {
		return -1, fmt.Errorf("resume session %s: open transcript: %w", id, err)
	}
	defer func() {
		if err := transcript.Close(); err != nil {
			logger.Warn("close transcript", "error", err)
		}
	}()

	if err := transcript.Append(domain.NewInputEvent(message, r.clock.Now())); err != nil {
		logger.Warn("append transcript", "error", err)
	}

	proc, err := r.supervisor.Spawn(ctx, cfg)
	if err != nil {
		return -1, fmt.Errorf("resume session %s: %w", id, err)
	}
	logger.Info("session resumed", "pid", proc.PID())

	code, err := r.supervisor.Monitor(ctx, proc, id, transcript, nil)
	if err != nil {
		if ctx.Err() != nil {
			if termErr := r.supervisor.Terminate(context.WithoutCancel(ctx), proc); termErr != nil {
				err = errors.Join(err, termErr)
			}
		}
		return -1, fmt.Errorf("resume session %s: %w", id, err)
	}

	logger.Info("resumed run finished", "exit_code", code)
	return code, nil
}

func (r *Registry) claimResume(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	r.mu.RLock()
	_, known := r.sessions[id]
	r.mu.RUnlock()

	// Sessions dropped by cleanup can still be resumed from their record.
	if !known {
		meta, err := r.store.Load(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return domain.SessionMetadata{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
			}
			return domain.SessionMetadata{}, fmt.Errorf("load session %s: %w", id, err)
		}
		if meta.Status.IsTerminal() {
			r.mu.Lock()
			if _, exists := r.sessions[id]; !exists {
				r.sessions[id] = &sessionHandle{meta: meta}
			}
			r.mu.Unlock()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.sessions[id]
	if !ok {
		return domain.SessionMetadata{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if !h.meta.Status.IsTerminal() {
		return domain.SessionMetadata{}, fmt.Errorf("%w: session %s is %s, only finished sessions can be resumed", domain.ErrInvalidInput, id, h.meta.Status)
	}
	if _, busy := r.resuming[id]; busy {
		return domain.SessionMetadata{}, fmt.Errorf("%w: session %s is already being resumed", domain.ErrInvalidInput, id)
	}

	r.resuming[id] = struct{}{}
	return h.meta.Clone(), nil
}

func (r *Registry) spawnConfig(ctx context.Context, meta domain.SessionMetadata, profile RoleProfile, task string, args []string, withContext bool) (ports.SpawnConfig, error) {
	env := slices.Clone(r.agent.Env)
	env = append(env,
		EnvSessionID+"="+string(meta.ID),
		EnvRole+"="+string(meta.Role),
		EnvSessionDir+"="+meta.LogDir,
	)
	if meta.ParentID != "" {
		env = append(env, EnvParentID+"="+string(meta.ParentID))
	}

	for _, sidecar := range profile.Sidecars() {
		path, err := r.sidecars.Write(ctx, meta.LogDir, sidecar)
		if err != nil {
			return ports.SpawnConfig{}, fmt.Errorf("write sidecar: %w", err)
		}
		switch sidecar.Name {
		case InstructionsFile:
			env = append(env, EnvInstructions+"="+path)
		case ApprovalHookFile:
			env = append(env, EnvApprovalHook+"="+path)
		}
	}

	cfg := ports.SpawnConfig{
		Task:    task,
		Args:    slices.Clone(args),
		Env:     env,
		WorkDir: r.agent.WorkDir,
	}
	if withContext {
		cfg.RoleContext = profile.Instructions
	}
	return cfg, nil
}

func (r *Registry) nextID(role domain.Role) domain.SessionID {
	r.counterMu.Lock()
	defer r.counterMu.Unlock()

	r.counters[role]++
	return domain.NewSessionID(role, r.counters[role])
}

func (r *Registry) seedCounter(id domain.SessionID) {
	role, seq, err := domain.ParseSessionID(string(id))
	if err != nil {
		return
	}

	r.counterMu.Lock()
	defer r.counterMu.Unlock()
	if seq > r.counters[role] {
		r.counters[role] = seq
	}
}

func (r *Registry) List() []domain.SessionMetadata {
	return r.collect(func(domain.SessionMetadata) bool { return true })
}

func (r *Registry) Children(parentID domain.SessionID) []domain.SessionMetadata {
	return r.collect(func(meta domain.SessionMetadata) bool { return meta.ParentID == parentID })
}

func (r *Registry) collect(keep func(domain.SessionMetadata) bool) []domain.SessionMetadata {
	r.mu.RLock()
	out := make([]domain.SessionMetadata, 0, len(r.sessions))
	for _, h := range r.sessions {
		if keep(h.meta) {
			out = append(out, h.meta.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Registry) Get(id domain.SessionID) (domain.SessionMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.sessions[id]
	if !ok {
		return domain.SessionMetadata{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return h.meta.Clone(), nil
}

// Wait blocks until the monitor of a session started by this registry has
// recorded its outcome, then returns the final metadata.
func (r *Registry) Wait(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	r.mu.RLock()
	h, ok := r.sessions[id]
	var (
		done chan struct{}
		meta domain.SessionMetadata
	)
	if ok {
		done = h.done
		meta = h.meta
	}
	r.mu.RUnlock()

	if !ok {
		return domain.SessionMetadata{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if done == nil && meta.Status.IsTerminal() {
		return meta, nil
	}
	if done == nil {
		return domain.SessionMetadata{}, fmt.Errorf("%w: session %s was not started by this process", domain.ErrInvalidInput, id)
	}

	select {
	case <-ctx.Done():
		return domain.SessionMetadata{}, ctx.Err()
	case <-done:
	}
	return r.Get(id)
}

// SendInput queues one line for the session's agent. It never blocks.
func (r *Registry) SendInput(_ context.Context, id domain.SessionID, text string) error {
	r.mu.RLock()
	h, ok := r.sessions[id]
	var (
		status domain.SessionStatus
		input  *inputSender
	)
	if ok {
		status = h.meta.Status
		input = h.input
	}
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if status != domain.StatusRunning {
		return fmt.Errorf("%w: session %s is %s", domain.ErrInvalidInput, id, status)
	}
	if input == nil {
		return fmt.Errorf("%w: session %s was adopted after a restart", domain.ErrInputUnavailable, id)
	}

	if err := input.send(text); err != nil {
		return fmt.Errorf("send input to %s: %w", id, err)
	}
	return nil
}

// Stop terminates the session's process, gracefully first, and records it as
// stopped. Stopping a finished session is a no-op.
func (r *Registry) Stop(ctx context.Context, id domain.SessionID) error {
	r.mu.RLock()
	h, ok := r.sessions[id]
	var (
		status domain.SessionStatus
		pid    int
		hasPID bool
	)
	if ok {
		status = h.meta.Status
		pid, hasPID = h.meta.PIDValue()
	}
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if status.IsTerminal() {
		return nil
	}

	logger := r.logger.With("session_id", string(id))

	if h.cancel != nil {
		h.cancel()
	}

	var termErr error
	switch {
	case h.process != nil:
		termErr = r.supervisor.Terminate(ctx, h.process)
	case hasPID:
		termErr = r.supervisor.TerminatePID(ctx, pid)
	}
	if termErr != nil {
		logger.Warn("terminate session process", "error", termErr)
	}

	if h.done != nil {
		select {
		case <-h.done:
		case <-ctx.Done():
		}
	}
	if h.input != nil {
		h.input.close()
	}

	now := r.clock.Now()
	r.mu.Lock()
	changed := h.meta.MarkStopped(now)
	snapshot := h.meta.Clone()
	r.mu.Unlock()

	var errs []error
	if termErr != nil {
		errs = append(errs, termErr)
	}
	if changed {
		r.recordStop(snapshot, logger)
		if err := r.store.Save(context.WithoutCancel(ctx), snapshot); err != nil {
			errs = append(errs, fmt.Errorf("persist stopped session: %w", err))
		}
		logger.Info("session stopped")
	}

	if len(errs) > 0 {
		return fmt.Errorf("stop session %s: %w", id, errors.Join(errs...))
	}
	return nil
}

func (r *Registry) recordStop(meta domain.SessionMetadata, logger *slog.Logger) {
	transcript, err := r.transcripts.Open(meta.LogDir)
	if err != nil {
		logger.Warn("open transcript", "error", err)
		return
	}
	if err := transcript.Append(domain.NewLifecycleEvent(domain.StatusStopped, "Session stopped", r.clock.Now())); err != nil {
		logger.Warn("append transcript", "error", err)
	}
	if err := transcript.Close(); err != nil {
		logger.Warn("close transcript", "error", err)
	}
}

// StopAll stops every live session concurrently. Every session is attempted;
// failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.RLock()
	ids := make([]domain.SessionID, 0, len(r.sessions))
	for id, h := range r.sessions {
		if !h.meta.Status.IsTerminal() {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	p := pool.New().WithErrors()
	for _, id := range ids {
		p.Go(func() error {
			return r.Stop(ctx, id)
		})
	}
	return p.Wait()
}

// LoadFromDisk rebuilds the table from persisted records. Sessions recorded
// as running whose process is still alive are adopted; those whose process
// is gone are recorded as failed. Per-role counters resume after the highest
// id found. Records that fail to load are skipped and reported in the error.
func (r *Registry) LoadFromDisk(ctx context.Context) (int, error) {
	metas, listErr := r.store.List(ctx)
	if listErr != nil && len(metas) == 0 {
		return 0, fmt.Errorf("list sessions: %w", listErr)
	}

	var errs []error
	if listErr != nil {
		errs = append(errs, listErr)
	}

	loaded := 0
	for _, meta := range metas {
		r.seedCounter(meta.ID)

		r.mu.RLock()
		_, exists := r.sessions[meta.ID]
		r.mu.RUnlock()
		if exists {
			continue
		}

		if !meta.Status.IsTerminal() {
			pid, hasPID := meta.PIDValue()
			if meta.Status != domain.StatusRunning || !hasPID || !r.supervisor.IsAlive(pid) {
				meta.MarkFailed(nil, r.clock.Now())
				if err := r.store.Save(ctx, meta); err != nil {
					errs = append(errs, fmt.Errorf("persist recovered session %s: %w", meta.ID, err))
				}
				r.logger.Info("session process gone, marked failed", "session_id", string(meta.ID))
			} else {
				r.logger.Info("adopted running session", "session_id", string(meta.ID), "pid", pid)
			}
		}

		r.mu.Lock()
		if _, exists := r.sessions[meta.ID]; !exists {
			r.sessions[meta.ID] = &sessionHandle{meta: meta}
			loaded++
		}
		r.mu.Unlock()
	}

	return loaded, errors.Join(errs...)
}

// CleanupCompleted drops finished sessions from the table and returns how
// many were removed. Adopted sessions whose process has exited are recorded
// as failed before removal.
func (r *Registry) CleanupCompleted(ctx context.Context) int {
	type liveCheck struct {
		id  domain.SessionID
		pid int
	}

	var checks []liveCheck
	r.mu.RLock()
	for id, h := range r.sessions {
		if !h.adopted() || h.meta.Status.IsTerminal() {
			continue
		}
		pid, _ := h.meta.PIDValue()
		checks = append(checks, liveCheck{id: id, pid: pid})
	}
	r.mu.RUnlock()

	dead := map[domain.SessionID]bool{}
	for _, c := range checks {
		if !r.supervisor.IsAlive(c.pid) {
			dead[c.id] = true
		}
	}

	now := r.clock.Now()
	var failed []domain.SessionMetadata
	removed := 0

	r.mu.Lock()
	for id, h := range r.sessions {
		if _, busy := r.resuming[id]; busy {
			continue
		}
		switch {
		case h.monitorFinished() && h.meta.Status.IsTerminal():
		case h.adopted() && h.meta.Status.IsTerminal():
		case h.adopted() && dead[id]:
			if h.meta.MarkFailed(nil, now) {
				failed = append(failed, h.meta.Clone())
			}
		default:
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	r.mu.Unlock()

	for _, meta := range failed {
		if err := r.store.Save(ctx, meta); err != nil {
			r.logger.Warn("persist failed session", "session_id", string(meta.ID), "error", err)
		}
	}

	if removed > 0 {
		r.logger.Debug("cleaned up sessions", "count", removed)
	}
	return removed
}
