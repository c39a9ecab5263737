package jsonl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

func TestAppendWritesOneJSONObjectPerLine(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "DEV-001")
	transcript, err := NewStore().Open(dir)
	require.NoError(t, err)

	require.NoError(t, transcript.Append(domain.NewStartedEvent(12, testNow)))
	require.NoError(t, transcript.Append(domain.NewOutputEvent("hello", testNow)))
	require.NoError(t, transcript.Append(domain.NewErrorEvent("oops", testNow)))
	require.NoError(t, transcript.Close())

	data, err := os.ReadFile(PathFor(dir))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"timestamp":"2026-02-14T12:00:00Z","event_type":"output","content":"hello"}`, lines[1])
}

func TestAppendAfterCloseFails(t *testing.T) {
	t.Parallel()

	transcript, err := NewStore().Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, transcript.Close())
	require.NoError(t, transcript.Close())

	err = transcript.Append(domain.NewOutputEvent("late", testNow))
	require.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentAppendsNeverInterleave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore()
	first, err := store.Open(dir)
	require.NoError(t, err)
	second, err := store.Open(dir)
	require.NoError(t, err)

	payload := strings.Repeat("x", 2048)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, tr := range []interface {
			Append(domain.IoEvent) error
		}{first, second} {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				assert.NoError(t, tr.Append(domain.NewOutputEvent(fmt.Sprintf("%d-%s", n, payload), testNow)))
			}(i)
		}
	}
	wg.Wait()
	require.NoError(t, first.Close())
	require.NoError(t, second.Close())

	events, err := ReadAll(PathFor(dir))
	require.NoError(t, err)
	assert.Len(t, events, 100)
}

func TestReadAllMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	events, err := ReadAll(filepath.Join(t.TempDir(), "nope", FileName))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTailReturnsLastRecordsAndSkipsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	transcript, err := NewStore().Open(dir)
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		require.NoError(t, transcript.Append(domain.NewOutputEvent(fmt.Sprintf("line %d", i), testNow)))
	}
	require.NoError(t, transcript.Close())

	file, err := os.OpenFile(PathFor(dir), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	events, err := Tail(PathFor(dir), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "line 4", events[0].Content)
	assert.Equal(t, "line 5", events[1].Content)

	all, err := Tail(PathFor(dir), 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestFollowDeliversAppendedRecordsUntilDone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	transcript, err := NewStore().Open(dir)
	require.NoError(t, err)
	defer transcript.Close()
	require.NoError(t, transcript.Append(domain.NewOutputEvent("before", testNow)))

	var finished atomic.Bool
	var mu sync.Mutex
	var got []string

	go func() {
		time.Sleep(50 * time.Millisecond)
		assert.NoError(t, transcript.Append(domain.NewOutputEvent("after-1", testNow)))
		assert.NoError(t, transcript.Append(domain.NewExitEvent(0, testNow)))
		finished.Store(true)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	offset, err := Follow(ctx, PathFor(dir), 0, FollowOptions{
		PollInterval: 10 * time.Millisecond,
		Done:         finished.Load,
	}, func(event domain.IoEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, event.Content)
		return nil
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"before", "after-1", "Session completed successfully (exit code: 0)"}, got)

	info, err := os.Stat(PathFor(dir))
	require.NoError(t, err)
	assert.Equal(t, info.Size(), offset)
}

func TestFollowWaitsForCompleteLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"timestamp":"2026-02-14T12:00:00Z","event_type":"output","content":"part`), 0o644))

	var calls atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	offset, err := Follow(ctx, path, 0, FollowOptions{PollInterval: 10 * time.Millisecond}, func(domain.IoEvent) error {
		calls.Add(1)
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, offset)
	assert.Zero(t, calls.Load())
}

func TestFollowStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	transcript, err := NewStore().Open(dir)
	require.NoError(t, err)
	require.NoError(t, transcript.Append(domain.NewOutputEvent("one", testNow)))
	require.NoError(t, transcript.Close())

	stop := fmt.Errorf("stop here")
	_, err = Follow(context.Background(), PathFor(dir), 0, FollowOptions{}, func(domain.IoEvent) error {
		return stop
	})
	require.ErrorIs(t, err, stop)
}
