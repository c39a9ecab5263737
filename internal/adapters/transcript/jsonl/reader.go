package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/fsnotify/fsnotify"
)

const DefaultPollInterval = 200 * time.Millisecond

func PathFor(dir string) string {
	return filepath.Join(dir, FileName)
}

// ReadAll decodes every complete record of a transcript. A missing file reads
// as empty. Lines that fail to decode are skipped.
func ReadAll(path string) ([]domain.IoEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	defer file.Close()

	var events []domain.IoEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		event, ok := decodeLine(scanner.Bytes())
		if ok {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("read transcript %s: %w", path, err)
	}

	return events, nil
}

// Tail returns the last n records, or every record when n <= 0.
func Tail(path string, n int) ([]domain.IoEvent, error) {
	events, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}

type FollowOptions struct {
	PollInterval time.Duration
	// Done is consulted after every drain; Follow returns once it reports
	// true and no complete record is left unread.
	Done func() bool
}

// Follow streams records appended after offset to fn until ctx ends, fn
// fails, or opts.Done reports true. It wakes on filesystem notifications and
// on a fixed poll interval, whichever comes first. The returned offset points
// just past the last record delivered.
func Follow(ctx context.Context, path string, offset int64, opts FollowOptions, fn func(domain.IoEvent) error) (int64, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(path)); err == nil {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tail := &tailReader{path: path, offset: offset}
	defer tail.close()

	for {
		if err := tail.drain(fn); err != nil {
			return tail.offset, err
		}
		if opts.Done != nil && opts.Done() {
			return tail.offset, tail.drain(fn)
		}

		select {
		case <-ctx.Done():
			return tail.offset, ctx.Err()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
		case _, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			}
		case <-ticker.C:
		}
	}
}

type tailReader struct {
	path    string
	offset  int64
	file    *os.File
	reader  *bufio.Reader
	pending []byte
}

func (t *tailReader) open() (bool, error) {
	if t.file != nil {
		return true, nil
	}

	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open transcript %s: %w", t.path, err)
	}
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		_ = file.Close()
		return false, fmt.Errorf("seek transcript %s: %w", t.path, err)
	}

	t.file = file
	t.reader = bufio.NewReader(file)
	return true, nil
}

func (t *tailReader) drain(fn func(domain.IoEvent) error) error {
	ok, err := t.open()
	if err != nil || !ok {
		return err
	}

	for {
		chunk, err := t.reader.ReadBytes('\n')
		t.pending = append(t.pending, chunk...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read transcript %s: %w", t.path, err)
		}

		line := t.pending
		t.offset += int64(len(line))
		t.pending = nil

		event, ok := decodeLine(line)
		if !ok {
			continue
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

func (t *tailReader) close() {
	if t.file != nil {
		_ = t.file.Close()
	}
}

func decodeLine(line []byte) (domain.IoEvent, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return domain.IoEvent{}, false
	}

	var event domain.IoEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return domain.IoEvent{}, false
	}
	return event, true
}
