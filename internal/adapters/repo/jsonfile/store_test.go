package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ThePuug/claude-man/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	return store
}

func runningMeta(id domain.SessionID, role domain.Role, dir string) domain.SessionMetadata {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
	meta := domain.NewSessionMetadata(id, role, "task for "+string(id), dir, now)
	meta.MarkStarted(1234, now.Add(time.Second))
	return meta
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	dir, err := store.Prepare(ctx, "DEV-001")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, store.Dir("DEV-001"), dir)

	meta := runningMeta("DEV-001", domain.RoleDeveloper, dir)
	meta.ParentID = "MGR-001"
	require.NoError(t, store.Save(ctx, meta))

	got, err := store.Load(ctx, "DEV-001")
	require.NoError(t, err)
	assert.Equal(t, meta, got)

	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"id\": \"DEV-001\"")
}

func TestStoreSaveReplacesWithoutLeavingTempFiles(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	dir, err := store.Prepare(ctx, "ARCH-001")
	require.NoError(t, err)

	meta := runningMeta("ARCH-001", domain.RoleArchitect, dir)
	require.NoError(t, store.Save(ctx, meta))
	meta.MarkStopped(time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, meta))

	got, err := store.Load(ctx, "ARCH-001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStopped, got.Status)
	assert.Nil(t, got.PID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, MetadataFile, entries[0].Name())
}

func TestStoreLoadMissingSession(t *testing.T) {
	t.Parallel()

	_, err := newTestStore(t).Load(context.Background(), "DEV-404")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreListSkipsBrokenEntries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []domain.SessionID{"MGR-001", "DEV-002", "DEV-001"} {
		dir, err := store.Prepare(ctx, id)
		require.NoError(t, err)
		role, _, err := domain.ParseSessionID(string(id))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, runningMeta(id, role, dir)))
	}

	brokenDir, err := store.Prepare(ctx, "DEV-003")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(brokenDir, MetadataFile), []byte("{not json"), 0o644))

	_, err = store.Prepare(ctx, "DEV-004")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "stray.txt"), []byte("x"), 0o644))

	sessions, err := store.List(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "DEV-003")

	ids := make([]domain.SessionID, 0, len(sessions))
	for _, meta := range sessions {
		ids = append(ids, meta.ID)
	}
	assert.Equal(t, []domain.SessionID{"DEV-001", "DEV-002", "MGR-001"}, ids)
}

func TestStoreListMissingRootIsEmpty(t *testing.T) {
	t.Parallel()

	sessions, err := newTestStore(t).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestStoreConcurrentSaves(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	dir, err := store.Prepare(ctx, "DEV-001")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, runningMeta("DEV-001", domain.RoleDeveloper, dir)))
		}()
	}
	wg.Wait()

	_, err = store.Load(ctx, "DEV-001")
	require.NoError(t, err)
}

func TestStoreHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newTestStore(t)
	_, err := store.Prepare(ctx, "DEV-001")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Save(ctx, domain.SessionMetadata{ID: "DEV-001"}), context.Canceled)
}
