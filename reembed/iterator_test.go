package reembed

import (
	"context"
	"errors"
	"testing"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) storage.ChunkRepository {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store.Chunks()
}

// seedChunks stores n chunks of one publication without embeddings.
func seedChunks(t *testing.T, repo storage.ChunkRepository, n int) []*core.Chunk {
	t.Helper()
	chunks := make([]*core.Chunk, n)
	for i := range n {
		chunks[i] = &core.Chunk{
			PublicationID: "example.org_paper",
			ChunkIndex:    i,
			Content:       "chunk text " + string(rune('a'+i)),
			Tags:          []string{"Mars"},
		}
	}
	require.NoError(t, repo.AddChunks(context.Background(), chunks...))
	return chunks
}

func TestRowIterator_Basic(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 3)

	iter := NewRowIterator(repo, 2)
	var sizes []int
	var ids []core.ID

	err := iter.ForEach(context.Background(), func(rows []storage.ChunkRow) error {
		sizes = append(sizes, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, sizes)
	assert.Len(t, ids, 3)
}

func TestRowIterator_BatchSizes(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 10)

	tests := []struct {
		batchSize int
		want      int
	}{
		{batchSize: 1, want: 10},
		{batchSize: 3, want: 4},
		{batchSize: 10, want: 1},
		{batchSize: 50, want: 1},
	}

	for _, tt := range tests {
		batches := 0
		err := NewRowIterator(repo, tt.batchSize).ForEach(context.Background(), func(rows []storage.ChunkRow) error {
			batches++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, batches, "batch size %d", tt.batchSize)
	}
}

func TestRowIterator_DefaultBatchSize(t *testing.T) {
	repo := setupTestDB(t)
	assert.Equal(t, DefaultBatchSize, NewRowIterator(repo, 0).BatchSize())
	assert.Equal(t, DefaultBatchSize, NewRowIterator(repo, -5).BatchSize())
}

func TestRowIterator_Empty(t *testing.T) {
	repo := setupTestDB(t)

	called := false
	err := NewRowIterator(repo, 5).ForEach(context.Background(), func(rows []storage.ChunkRow) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestRowIterator_StopsOnError(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 6)

	boom := errors.New("boom")
	batches := 0
	err := NewRowIterator(repo, 2).ForEach(context.Background(), func(rows []storage.ChunkRow) error {
		batches++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, batches)
}

func TestRowIterator_ContextCancellation(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 6)

	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewRowIterator(repo, 2).ForEach(ctx, func(rows []storage.ChunkRow) error {
			t.Fatal("fn should not be called")
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("between batches", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		batches := 0
		err := NewRowIterator(repo, 2).ForEach(ctx, func(rows []storage.ChunkRow) error {
			batches++
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, batches)
	})
}
