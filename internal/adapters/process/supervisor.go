package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"sync"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/ThePuug/claude-man/internal/ports"
)

const (
	DefaultGracePeriod = 5 * time.Second
	alivePollInterval  = 100 * time.Millisecond
	maxLineSize        = 16 * 1024 * 1024
)

type StdinPolicy string

const (
	StdinPiped StdinPolicy = "piped"
	StdinNull  StdinPolicy = "null"
)

var ErrForeignProcess = errors.New("process was not started by this supervisor")

type Supervisor struct {
	command  string
	stdin    StdinPolicy
	grace    time.Duration
	signaler ports.Signaler
	clock    ports.Clock
	logger   *slog.Logger
	maxLine  int

	echoMu  sync.Mutex
	echoOut io.Writer
	echoErr io.Writer
}

type Option func(*Supervisor)

func WithStdinPolicy(policy StdinPolicy) Option {
	return func(s *Supervisor) {
		s.stdin = policy
	}
}

func WithGracePeriod(grace time.Duration) Option {
	return func(s *Supervisor) {
		s.grace = grace
	}
}

func WithSignaler(signaler ports.Signaler) Option {
	return func(s *Supervisor) {
		s.signaler = signaler
	}
}

func WithClock(clock ports.Clock) Option {
	return func(s *Supervisor) {
		s.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithEcho mirrors agent output as "[ID] line" on out and "[ID] ERROR: line"
// on errOut. A nil writer disables that stream.
func WithEcho(out io.Writer, errOut io.Writer) Option {
	return func(s *Supervisor) {
		s.echoOut = out
		s.echoErr = errOut
	}
}

var _ ports.Supervisor = (*Supervisor)(nil)

func NewSupervisor(command string, opts ...Option) *Supervisor {
	s := &Supervisor{
		command:  command,
		stdin:    StdinPiped,
		grace:    DefaultGracePeriod,
		signaler: NewSignaler(),
		clock:    ports.SystemClock{},
		logger:   slog.New(slog.DiscardHandler),
		maxLine:  maxLineSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *os.File
	stderr *os.File

	done     chan struct{}
	exitCode int
	waitErr  error
}

func (p *process) PID() int {
	return p.cmd.Process.Pid
}

func (p *process) wait() {
	err := p.cmd.Wait()
	p.exitCode = -1
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.waitErr = err
	}
	close(p.done)
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Spawn starts the agent with cfg.Args followed by the full task as the final
// argument. The process is reaped in the background as soon as it exits.
func (s *Supervisor) Spawn(ctx context.Context, cfg ports.SpawnConfig) (ports.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := append(slices.Clone(cfg.Args), cfg.FullTask())
	cmd := exec.Command(s.command, args...)
	cmd.Dir = cfg.WorkDir
	cmd.Env = append(os.Environ(), cfg.Env...)
	configureCommand(cmd)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: create stdout pipe: %w", domain.ErrSpawnFailed, err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return nil, fmt.Errorf("%w: create stderr pipe: %w", domain.ErrSpawnFailed, err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	var stdin io.WriteCloser
	if s.stdin == StdinPiped {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			closeAll(stdoutR, stdoutW, stderrR, stderrW)
			return nil, fmt.Errorf("%w: create stdin pipe: %w", domain.ErrSpawnFailed, err)
		}
	}

	if err := cmd.Start(); err != nil {
		closeAll(stdoutR, stdoutW, stderrR, stderrW)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSpawnFailed, s.command, err)
	}
	// The child holds its own copies of the write ends.
	closeAll(stdoutW, stderrW)

	p := &process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdoutR,
		stderr: stderrR,
		done:   make(chan struct{}),
	}
	go p.wait()

	s.logger.Debug("agent process started", "pid", p.PID(), "command", s.command)
	return p, nil
}

// Monitor multiplexes the process streams and cancellation. Whichever of a
// stdout line, a stderr line or cancellation arrives first is handled first.
// Input lines are written to stdin by a separate writer so an agent that is
// not reading never stalls its own output. The loop ends at stdout EOF; stderr
// is then drained and the exit is recorded. Cancellation returns at once
// without a terminal record.
func (s *Supervisor) Monitor(ctx context.Context, proc ports.Process, id domain.SessionID, transcript ports.Transcript, input <-chan string) (int, error) {
	p, ok := proc.(*process)
	if !ok {
		return -1, ErrForeignProcess
	}
	logger := s.logger.With("session_id", string(id), "pid", p.PID())

	quit := make(chan struct{})
	defer close(quit)
	defer closeAll(p.stdout, p.stderr)

	stdoutLines := make(chan string)
	stderrLines := make(chan string)
	go scanLines(p.stdout, stdoutLines, quit, s.maxLine, logger)
	go scanLines(p.stderr, stderrLines, quit, s.maxLine, logger)

	appendEvent := func(event domain.IoEvent) {
		if err := transcript.Append(event); err != nil {
			logger.Warn("append transcript", "error", err)
		}
	}

	stopInput := make(chan struct{})
	stopWriter := sync.OnceFunc(func() { close(stopInput) })
	defer stopWriter()
	inputDone := make(chan struct{})
	switch {
	case input == nil:
		close(inputDone)
	case p.stdin == nil:
		go func() {
			defer close(inputDone)
			discardInput(input, stopInput, logger)
		}()
	default:
		go func() {
			defer close(inputDone)
			pumpInput(p.stdin, input, stopInput, func(text string) {
				if ctx.Err() == nil {
					appendEvent(domain.NewInputEvent(text, s.clock.Now()))
				}
			}, logger)
		}()
	}

loop:
	for {
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case line, ok := <-stdoutLines:
			if !ok {
				break loop
			}
			s.echo(s.echoOut, "[%s] %s\n", id, line)
			appendEvent(domain.NewOutputEvent(line, s.clock.Now()))
		case line, ok := <-stderrLines:
			if !ok {
				stderrLines = nil
				continue
			}
			s.echo(s.echoErr, "[%s] ERROR: %s\n", id, line)
			appendEvent(domain.NewErrorEvent(line, s.clock.Now()))
		}
	}

	for stderrLines != nil {
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case line, ok := <-stderrLines:
			if !ok {
				stderrLines = nil
				continue
			}
			s.echo(s.echoErr, "[%s] ERROR: %s\n", id, line)
			appendEvent(domain.NewErrorEvent(line, s.clock.Now()))
		}
	}

	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	case <-p.done:
	}
	if p.waitErr != nil {
		logger.Warn("wait for agent process", "error", p.waitErr)
	}

	// The stdin pipe is closed once the process is reaped, which releases a
	// writer still blocked on it.
	stopWriter()
	<-inputDone

	appendEvent(domain.NewExitEvent(p.exitCode, s.clock.Now()))
	logger.Debug("agent process exited", "exit_code", p.exitCode)
	return p.exitCode, nil
}

// Terminate asks the process to exit, waits up to the grace period, then
// kills it and waits for it to be reaped.
func (s *Supervisor) Terminate(ctx context.Context, proc ports.Process) error {
	p, ok := proc.(*process)
	if !ok {
		return s.TerminatePID(ctx, proc.PID())
	}
	if p.exited() {
		return nil
	}

	pid := p.PID()
	termErr := s.signaler.Terminate(pid)
	if termErr != nil {
		s.logger.Warn("graceful terminate failed", "pid", pid, "error", termErr)
	}

	timer := time.NewTimer(s.grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	killErr := s.signaler.Kill(pid)
	if killErr != nil && p.exited() {
		return nil
	}
	if killErr != nil {
		return fmt.Errorf("%w: pid %d: %w", domain.ErrTerminationFailed, pid, errors.Join(termErr, killErr))
	}

	reap := time.NewTimer(s.grace)
	defer reap.Stop()
	select {
	case <-p.done:
		return nil
	case <-reap.C:
		return fmt.Errorf("%w: pid %d still running after kill", domain.ErrTerminationFailed, pid)
	}
}

// TerminatePID stops a process this supervisor does not own, such as one
// adopted after a restart. Exit is observed by polling liveness.
func (s *Supervisor) TerminatePID(ctx context.Context, pid int) error {
	if !s.signaler.Alive(pid) {
		return nil
	}

	termErr := s.signaler.Terminate(pid)
	if termErr != nil {
		s.logger.Warn("graceful terminate failed", "pid", pid, "error", termErr)
	}
	if s.waitGone(ctx, pid, s.grace) {
		return nil
	}

	killErr := s.signaler.Kill(pid)
	if s.waitGone(context.WithoutCancel(ctx), pid, s.grace) {
		return nil
	}

	return fmt.Errorf("%w: pid %d: %w", domain.ErrTerminationFailed, pid, errors.Join(termErr, killErr, errors.New("process still alive")))
}

func (s *Supervisor) IsAlive(pid int) bool {
	return s.signaler.Alive(pid)
}

func (s *Supervisor) waitGone(ctx context.Context, pid int, limit time.Duration) bool {
	deadline := time.NewTimer(limit)
	defer deadline.Stop()
	ticker := time.NewTicker(alivePollInterval)
	defer ticker.Stop()

	for {
		if !s.signaler.Alive(pid) {
			return true
		}
		select {
		case <-ctx.Done():
			return !s.signaler.Alive(pid)
		case <-deadline.C:
			return !s.signaler.Alive(pid)
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) echo(w io.Writer, format string, id domain.SessionID, line string) {
	if w == nil {
		return
	}

	s.echoMu.Lock()
	defer s.echoMu.Unlock()
	_, _ = fmt.Fprintf(w, format, id, line)
}

func scanLines(r io.Reader, out chan<- string, quit <-chan struct{}, maxLine int, logger *slog.Logger) {
	defer close(out)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-quit:
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.Warn("read agent stream", "error", err)
		// Keep the pipe empty so the agent never blocks writing to it.
		_, _ = io.Copy(io.Discard, r)
	}
}

// pumpInput writes queued lines to the agent's stdin and records each one
// that was written. Closing input closes stdin.
func pumpInput(stdin io.WriteCloser, input <-chan string, quit <-chan struct{}, record func(string), logger *slog.Logger) {
	for {
		select {
		case <-quit:
			return
		case text, ok := <-input:
			if !ok {
				if err := stdin.Close(); err != nil {
					logger.Warn("close agent stdin", "error", err)
				}
				return
			}
			if _, err := io.WriteString(stdin, text+"\n"); err != nil {
				logger.Warn("write agent stdin", "error", err)
				continue
			}
			record(text)
		}
	}
}

func discardInput(input <-chan string, quit <-chan struct{}, logger *slog.Logger) {
	for {
		select {
		case <-quit:
			return
		case _, ok := <-input:
			if !ok {
				return
			}
			logger.Warn("agent stdin is disconnected, dropping input")
		}
	}
}

func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		if c != nil {
			_ = c.Close()
		}
	}
}
