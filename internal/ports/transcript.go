package ports

import "github.com/ThePuug/claude-man/internal/domain"

type Transcript interface {
	Append(event domain.IoEvent) error
	Close() error
}

type TranscriptStore interface {
	Open(dir string) (Transcript, error)
}
