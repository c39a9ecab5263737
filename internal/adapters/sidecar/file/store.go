package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/ThePuug/claude-man/internal/ports"
)

const (
	sidecarDirMode  = 0o755
	sidecarFileMode = 0o644
	executableMode  = 0o755
)

// Store writes sidecar files into session directories.
type Store struct{}

var _ ports.SidecarStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Write(ctx context.Context, dir string, sidecar domain.Sidecar) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := pathForName(dir, sidecar.Name)
	if err != nil {
		return "", err
	}

	mode := os.FileMode(sidecarFileMode)
	if sidecar.Executable {
		mode = executableMode
	}

	if err := os.MkdirAll(dir, sidecarDirMode); err != nil {
		return "", fmt.Errorf("create sidecar directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sidecar.Content), mode); err != nil {
		return "", fmt.Errorf("write sidecar %q: %w", sidecar.Name, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, mode); err != nil {
		return "", fmt.Errorf("chmod sidecar %q: %w", sidecar.Name, err)
	}

	return path, nil
}

func pathForName(dir string, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("sidecar name is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." || strings.ContainsRune(cleaned, filepath.Separator) {
		return "", fmt.Errorf("invalid sidecar name %q", name)
	}

	return filepath.Join(dir, cleaned), nil
}
