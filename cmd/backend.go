package cmd

import (
	"context"
	"time"

	"github.com/ThePuug/claude-man/internal/adapters/daemon"
	"github.com/ThePuug/claude-man/internal/application"
	"github.com/ThePuug/claude-man/internal/domain"
)

// backend is where session commands are carried out: a running daemon, or a
// registry owned by this process.
type backend interface {
	Spawn(ctx context.Context, role domain.Role, task string, parentID domain.SessionID) (domain.SessionID, int, error)
	Resume(ctx context.Context, id domain.SessionID, message string) (int, error)
	List(ctx context.Context, parentID domain.SessionID) ([]domain.SessionMetadata, error)
	Info(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error)
	Stop(ctx context.Context, id domain.SessionID) error
	StopAll(ctx context.Context) error
	Attach(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error)
	Input(ctx context.Context, id domain.SessionID, text string) error
	// Wait blocks until the session has finished.
	Wait(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error)
	// Direct reports whether sessions live in this process.
	Direct() bool
}

type daemonBackend struct {
	client       *daemon.Client
	pollInterval time.Duration
}

func (b *daemonBackend) Spawn(ctx context.Context, role domain.Role, task string, parentID domain.SessionID) (domain.SessionID, int, error) {
	resp, err := b.client.Spawn(ctx, role, task, parentID)
	if err != nil {
		return "", 0, err
	}
	pid := 0
	if resp.PID != nil {
		pid = *resp.PID
	}
	return resp.SessionID, pid, nil
}

func (b *daemonBackend) Resume(ctx context.Context, id domain.SessionID, message string) (int, error) {
	resp, err := b.client.Resume(ctx, id, message)
	if err != nil {
		return -1, err
	}
	if resp.ExitCode == nil {
		return 0, nil
	}
	return *resp.ExitCode, nil
}

func (b *daemonBackend) List(ctx context.Context, parentID domain.SessionID) ([]domain.SessionMetadata, error) {
	resp, err := b.client.List(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (b *daemonBackend) Info(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	resp, err := b.client.Info(ctx, id)
	if err != nil {
		return domain.SessionMetadata{}, err
	}
	if resp.Session == nil {
		return domain.SessionMetadata{}, domain.ErrProtocol
	}
	return *resp.Session, nil
}

func (b *daemonBackend) Stop(ctx context.Context, id domain.SessionID) error {
	_, err := b.client.Stop(ctx, id)
	return err
}

func (b *daemonBackend) StopAll(ctx context.Context) error {
	_, err := b.client.StopAll(ctx)
	return err
}

func (b *daemonBackend) Attach(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	if _, err := b.client.Attach(ctx, id); err != nil {
		return domain.SessionMetadata{}, err
	}
	return b.Info(ctx, id)
}

func (b *daemonBackend) Input(ctx context.Context, id domain.SessionID, text string) error {
	_, err := b.client.Input(ctx, id, text)
	return err
}

func (b *daemonBackend) Wait(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		meta, err := b.Info(ctx, id)
		if err != nil {
			return domain.SessionMetadata{}, err
		}
		if meta.Status.IsTerminal() {
			return meta, nil
		}

		select {
		case <-ctx.Done():
			return domain.SessionMetadata{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *daemonBackend) Direct() bool {
	return false
}

type directBackend struct {
	registry *application.Registry
}

func (b *directBackend) Spawn(ctx context.Context, role domain.Role, task string, parentID domain.SessionID) (domain.SessionID, int, error) {
	var (
		id  domain.SessionID
		err error
	)
	if parentID != "" {
		id, err = b.registry.SpawnChild(ctx, parentID, role, task)
	} else {
		id, err = b.registry.Spawn(ctx, role, task)
	}
	if err != nil {
		return "", 0, err
	}

	meta, err := b.registry.Get(id)
	if err != nil {
		return id, 0, nil
	}
	pid, _ := meta.PIDValue()
	return id, pid, nil
}

func (b *directBackend) Resume(ctx context.Context, id domain.SessionID, message string) (int, error) {
	return b.registry.Resume(ctx, id, message)
}

func (b *directBackend) List(_ context.Context, parentID domain.SessionID) ([]domain.SessionMetadata, error) {
	if parentID != "" {
		return b.registry.Children(parentID), nil
	}
	return b.registry.List(), nil
}

func (b *directBackend) Info(_ context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	return b.registry.Get(id)
}

func (b *directBackend) Stop(ctx context.Context, id domain.SessionID) error {
	return b.registry.Stop(ctx, id)
}

func (b *directBackend) StopAll(ctx context.Context) error {
	return b.registry.StopAll(ctx)
}

func (b *directBackend) Attach(_ context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	return b.registry.Get(id)
}

func (b *directBackend) Input(ctx context.Context, id domain.SessionID, text string) error {
	return b.registry.SendInput(ctx, id, text)
}

func (b *directBackend) Wait(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	return b.registry.Wait(ctx, id)
}

func (b *directBackend) Direct() bool {
	return true
}
