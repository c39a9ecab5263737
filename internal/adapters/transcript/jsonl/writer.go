package jsonl

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/ThePuug/claude-man/internal/ports"
)

const (
	FileName    = "io.log"
	logDirMode  = 0o755
	logFileMode = 0o644
)

var ErrClosed = errors.New("transcript closed")

type Store struct{}

var _ ports.TranscriptStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

// Open creates dir if needed and opens its io.log for appending.
func (s *Store) Open(dir string) (ports.Transcript, error) {
	if err := os.MkdirAll(dir, logDirMode); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}

	return &Transcript{file: file, path: path}, nil
}

// Transcript appends one JSON object per line. Each record is written with a
// single write call, so concurrent appenders never interleave within a line.
type Transcript struct {
	mu   sync.Mutex
	file *os.File
	path string
}

var _ ports.Transcript = (*Transcript)(nil)

func (t *Transcript) Path() string {
	return t.path
}

func (t *Transcript) Append(event domain.IoEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode transcript event: %w", err)
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return ErrClosed
	}
	if _, err := t.file.Write(data); err != nil {
		return fmt.Errorf("append transcript %s: %w", t.path, err)
	}

	return nil
}

func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	if err != nil {
		return fmt.Errorf("close transcript %s: %w", t.path, err)
	}
	return nil
}
