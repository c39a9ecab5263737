package ports

import (
	"context"

	"github.com/ThePuug/claude-man/internal/domain"
)

type SessionStore interface {
	// Prepare creates the session directory and returns its path.
	Prepare(ctx context.Context, id domain.SessionID) (string, error)
	Save(ctx context.Context, meta domain.SessionMetadata) error
	Load(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error)
	List(ctx context.Context) ([]domain.SessionMetadata, error)
}

type SidecarStore interface {
	Write(ctx context.Context, dir string, sidecar domain.Sidecar) (string, error)
}
