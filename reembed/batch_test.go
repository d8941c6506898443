package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/ai/mock"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allRows(t *testing.T, repo storage.ChunkRepository) []storage.ChunkRow {
	t.Helper()
	rows, err := repo.AllChunks(context.Background())
	require.NoError(t, err)
	return rows
}

// unnormalized returns (1, 2, 2) for every text; magnitude 3.
func unnormalized() *mock.MockEmbedder {
	return &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1, 2, 2}
			}
			return out, nil
		},
	}
}

func TestBatchProcessor_Process(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 2)

	embedder := unnormalized()
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	require.NoError(t, processor.Process(context.Background(), allRows(t, repo)))
	assert.Equal(t, 1, embedder.BatchCallCount(), "one embedding call per batch")

	for _, row := range allRows(t, repo) {
		vec, err := row.Embedding.Vector()
		require.NoError(t, err)
		require.Len(t, vec, 3)
		assert.InDelta(t, 1.0/3, vec[0], 0.001)
		assert.InDelta(t, 2.0/3, vec[1], 0.001)
		assert.Equal(t, []string{"Mars"}, row.Tags, "tags survive")
	}
}

func TestBatchProcessor_PreservesPositions(t *testing.T) {
	repo := setupTestDB(t)
	seeded := seedChunks(t, repo, 3)

	processor := NewBatchProcessor(repo, unnormalized(), 1, time.Millisecond)
	require.NoError(t, processor.Process(context.Background(), allRows(t, repo)))

	chunks, err := repo.ChunksByPublication(context.Background(), "example.org_paper")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, seeded[i].Content, c.Content)
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	repo := setupTestDB(t)
	embedder := unnormalized()
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	require.NoError(t, processor.Process(context.Background(), nil))
	assert.Zero(t, embedder.CallCount())
}

func TestBatchProcessor_EmbeddingError(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 1)

	expected := errors.New("embedding error")
	embedder := &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, expected
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, time.Millisecond)

	err := processor.Process(context.Background(), allRows(t, repo))
	require.Error(t, err)
	assert.ErrorIs(t, err, expected)
	assert.Equal(t, 3, embedder.CallCount(), "all attempts used")
}

func TestBatchProcessor_Retry(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 1)

	attempts := 0
	embedder := &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("temporary error")
			}
			return [][]float32{{1, 0, 0}}, nil
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	require.NoError(t, processor.Process(context.Background(), allRows(t, repo)))
	assert.Equal(t, 2, attempts)

	rows := allRows(t, repo)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Embedding.IsZero())
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 2)

	embedder := &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		},
	}
	processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)

	err := processor.Process(context.Background(), allRows(t, repo))
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)

	for _, row := range allRows(t, repo) {
		assert.True(t, row.Embedding.IsZero(), "nothing written on mismatch")
	}
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 1)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			cancel()
			return nil, errors.New("error")
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, allRows(t, repo))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchProcessor_VectorNormalization(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 1)

	embedder := &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{3, 4}}, nil
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)
	require.NoError(t, processor.Process(context.Background(), allRows(t, repo)))

	vec, err := allRows(t, repo)[0].Embedding.Vector()
	require.NoError(t, err)
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 0.001)
	assert.InDelta(t, 0.8, vec[1], 0.001)
}
