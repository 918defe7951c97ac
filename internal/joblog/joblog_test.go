package joblog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndListBySource(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "", nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.Record(ctx, "data/2021/a.pdf", "OCR", "success", "")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	_, err = store.Record(ctx, "data/2021/a.pdf", "PARSE", "error", "read failed")
	require.NoError(t, err)
	_, err = store.Record(ctx, "data/2021/b.pdf", "OCR", "success", "")
	require.NoError(t, err)

	entries, err := store.ListBySource(ctx, "data/2021/a.pdf")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "OCR", entries[0].Stage)
	assert.Equal(t, "PARSE", entries[1].Stage)
	assert.Equal(t, "read failed", entries[1].Message)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestListRecent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "", nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, "doc.pdf", "OCR", "success", "")
		require.NoError(t, err)
	}

	entries, err := store.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestOpenFileBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "joblog.db")

	store, err := Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = store.Record(ctx, "a.pdf", "ENHANCE", "success", "")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// reopen and confirm persistence
	store, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	entries, err := store.ListBySource(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
