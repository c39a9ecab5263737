package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
)

const (
	DefaultDialTimeout    = 500 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
)

// ErrUnavailable reports that no daemon answered at the configured address.
var ErrUnavailable = errors.New("daemon unavailable")

type ClientOption func(*Client)

func WithDialTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.dialTimeout = timeout
	}
}

// WithRequestTimeout bounds how long a request waits for its response.
// Resume requests are exempt since they last as long as the agent runs.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

type Client struct {
	addr           string
	dialTimeout    time.Duration
	requestTimeout time.Duration
}

func NewClient(addr string, opts ...ClientOption) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	c := &Client{
		addr:           addr,
		dialTimeout:    DefaultDialTimeout,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Addr() string {
	return c.addr
}

// Do sends req on a fresh connection and returns the decoded response. An
// error response from the daemon is returned as a Response, not an error.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ioError(ctx, "connect to daemon", err)
		}
		return Response{}, fmt.Errorf("%w: connect to daemon at %s. Is it running? %w", ErrUnavailable, c.addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if c.requestTimeout > 0 && req.Command != CommandResume {
		_ = conn.SetDeadline(time.Now().Add(c.requestTimeout))
	}

	line, err := encodeLine(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	if _, err := conn.Write(line); err != nil {
		return Response{}, ioError(ctx, "send request", err)
	}

	reader := bufio.NewReader(conn)
	reply, err := reader.ReadBytes('\n')
	if err != nil && len(reply) == 0 {
		return Response{}, ioError(ctx, "read response", err)
	}

	return DecodeResponse(reply)
}

func ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// call is Do followed by Response.Err.
func (c *Client) call(ctx context.Context, req Request) (Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}
	return resp, nil
}

// IsRunning pings the daemon.
func (c *Client) IsRunning(ctx context.Context) bool {
	resp, err := c.Do(ctx, Request{Command: CommandPing})
	return err == nil && resp.OK()
}

func (c *Client) Ping(ctx context.Context) (Response, error) {
	return c.call(ctx, Request{Command: CommandPing})
}

func (c *Client) Spawn(ctx context.Context, role domain.Role, task string, parentID domain.SessionID) (Response, error) {
	return c.call(ctx, Request{Command: CommandSpawn, Role: string(role), Task: task, ParentID: string(parentID)})
}

func (c *Client) Resume(ctx context.Context, id domain.SessionID, message string) (Response, error) {
	return c.call(ctx, Request{Command: CommandResume, SessionID: string(id), Message: message})
}

func (c *Client) List(ctx context.Context, parentID domain.SessionID) (Response, error) {
	return c.call(ctx, Request{Command: CommandList, ParentID: string(parentID)})
}

func (c *Client) Info(ctx context.Context, id domain.SessionID) (Response, error) {
	return c.call(ctx, Request{Command: CommandInfo, SessionID: string(id)})
}

func (c *Client) Stop(ctx context.Context, id domain.SessionID) (Response, error) {
	return c.call(ctx, Request{Command: CommandStop, SessionID: string(id)})
}

func (c *Client) StopAll(ctx context.Context) (Response, error) {
	return c.call(ctx, Request{Command: CommandStopAll})
}

func (c *Client) Attach(ctx context.Context, id domain.SessionID) (Response, error) {
	return c.call(ctx, Request{Command: CommandAttach, SessionID: string(id)})
}

func (c *Client) Input(ctx context.Context, id domain.SessionID, text string) (Response, error) {
	return c.call(ctx, Request{Command: CommandInput, SessionID: string(id), Text: text})
}

func (c *Client) Shutdown(ctx context.Context) (Response, error) {
	return c.call(ctx, Request{Command: CommandShutdown})
}
