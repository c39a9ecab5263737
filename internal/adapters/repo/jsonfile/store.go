package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/ThePuug/claude-man/internal/ports"
)

const (
	MetadataFile    = "metadata.json"
	sessionDirMode  = 0o755
	metadataMode    = 0o644
	tempFilePattern = ".metadata-*.json.tmp"
)

// Store keeps one metadata.json per session directory under root.
type Store struct {
	root string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionStore = (*Store)(nil)

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("sessions root is empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sessions root: %w", err)
	}
	absRoot = filepath.Clean(absRoot)

	return &Store{root: absRoot, mu: lockForPath(absRoot)}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Dir(id domain.SessionID) string {
	return filepath.Join(s.root, string(id))
}

func (s *Store) Prepare(ctx context.Context, id domain.SessionID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := s.Dir(id)
	if err := os.MkdirAll(dir, sessionDirMode); err != nil {
		return "", fmt.Errorf("create session directory %s: %w", dir, err)
	}
	return dir, nil
}

func (s *Store) Save(ctx context.Context, meta domain.SessionMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session metadata %s: %w", meta.ID, err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeAtomic(s.Dir(meta.ID), data)
}

func (s *Store) Load(ctx context.Context, id domain.SessionID) (domain.SessionMetadata, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionMetadata{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := readMetadata(filepath.Join(s.Dir(id), MetadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.SessionMetadata{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return domain.SessionMetadata{}, err
	}
	return meta, nil
}

// List returns every decodable session record sorted by id. Records that
// cannot be read are skipped and reported together in the returned error,
// alongside the sessions that did load.
func (s *Store) List(ctx context.Context) ([]domain.SessionMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions root: %w", err)
	}

	var (
		sessions []domain.SessionMetadata
		errs     []error
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := readMetadata(filepath.Join(s.root, entry.Name(), MetadataFile))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		sessions = append(sessions, meta)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID < sessions[j].ID
	})

	return sessions, errors.Join(errs...)
}

func readMetadata(path string) (domain.SessionMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SessionMetadata{}, fmt.Errorf("read session metadata %s: %w", path, err)
	}

	var meta domain.SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.SessionMetadata{}, fmt.Errorf("decode session metadata %s: %w", path, err)
	}
	if !meta.Status.Valid() {
		return domain.SessionMetadata{}, fmt.Errorf("decode session metadata %s: unknown status %q", path, meta.Status)
	}
	if meta.ID == "" {
		return domain.SessionMetadata{}, fmt.Errorf("decode session metadata %s: missing id", path)
	}

	return meta, nil
}

func writeAtomic(dir string, data []byte) error {
	if err := os.MkdirAll(dir, sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp metadata file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp metadata file: %w", err)
	}

	if err := tempFile.Chmod(metadataMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp metadata file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp metadata file: %w", err)
	}

	if err := os.Rename(tempName, filepath.Join(dir, MetadataFile)); err != nil {
		return fmt.Errorf("replace metadata file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
