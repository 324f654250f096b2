package batch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygra-go/sygra/testutil"
)

func TestFileStoreLoadMissingReturnsNil(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	cp, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "checkpoint.json"))
	want := Checkpoint{LastCompletedIndex: 47, RunID: "run-1", StartedAt: time.Now().Truncate(time.Second)}

	require.NoError(t, store.Save(context.Background(), want))
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.LastCompletedIndex, got.LastCompletedIndex)
	assert.Equal(t, want.RunID, got.RunID)
}

func TestFileStoreSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(context.Background(), Checkpoint{LastCompletedIndex: 1, RunID: "a"}))
	require.NoError(t, store.Save(context.Background(), Checkpoint{LastCompletedIndex: 2, RunID: "a"}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.LastCompletedIndex)

	entries, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp files after atomic rename")
}

func TestRedisStoreLoadMissingReturnsNil(t *testing.T) {
	client := testutil.NewMiniredisClient(t)
	store := NewRedisStore(client, "sygra:checkpoint:missing")

	cp, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestRedisStoreSaveLoadRoundTrip(t *testing.T) {
	client := testutil.NewMiniredisClient(t)
	store := NewRedisStore(client, "sygra:checkpoint:run-1")
	want := Checkpoint{LastCompletedIndex: 99, RunID: "run-1", StartedAt: time.Now().Truncate(time.Second)}

	require.NoError(t, store.Save(context.Background(), want))
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.LastCompletedIndex, got.LastCompletedIndex)
	assert.Equal(t, want.RunID, got.RunID)
}
