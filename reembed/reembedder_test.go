package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/ai/mock"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestNewReembedder_Validation(t *testing.T) {
	repo := setupTestDB(t)

	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewReembedder(repo, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	r, err := NewReembedder(repo, mock.NewMockEmbedder(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, r.iterator.BatchSize())
}

func TestReembedder_Run(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 10)

	var buf bytes.Buffer
	embedder := unnormalized()
	r, err := NewReembedder(repo, embedder, testConfig(), &buf)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, 4, embedder.BatchCallCount(), "10 chunks in batches of 3")

	for _, row := range allRows(t, repo) {
		vec, err := row.Embedding.Vector()
		require.NoError(t, err)
		var mag float32
		for _, v := range vec {
			mag += v * v
		}
		assert.InDelta(t, 1.0, mag, 0.01, "chunk %d should be normalized", row.ChunkIndex)
	}

	out := buf.String()
	assert.Contains(t, out, "Starting reembedding of 10 chunks")
	assert.Contains(t, out, "Progress: 10/10")
	assert.Contains(t, out, "Reembedding complete")
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	repo := setupTestDB(t)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	r, err := NewReembedder(repo, embedder, testConfig(), &buf)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, embedder.CallCount())
	assert.Contains(t, buf.String(), "No chunks found")
}

func TestReembedder_BatchFailureStopsRun(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 6)

	calls := 0
	embedder := &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("service down")
			}
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1, 0}
			}
			return out, nil
		},
	}
	cfg := testConfig()
	cfg.MaxRetries = 1

	r, err := NewReembedder(repo, embedder, cfg, nil)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
	assert.Equal(t, 3, n, "first batch was written")
}

func TestReembedder_ContextCancellation(t *testing.T) {
	repo := setupTestDB(t)
	seedChunks(t, repo, 6)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	embedder := &mock.MockEmbedder{
		EmbedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			out := make([][]float32, len(texts))
			for i, text := range texts {
				out[i] = mock.DeterministicVector(text, 4)
			}
			return out, nil
		},
	}
	r, err := NewReembedder(repo, embedder, testConfig(), nil)
	require.NoError(t, err)

	n, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, n)
}

func TestReembedder_SQLiteTextEmbeddings(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var repo storage.ChunkRepository = store
	seedChunks(t, repo, 4)

	r, err := NewReembedder(repo, unnormalized(), testConfig(), nil)
	require.NoError(t, err)

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, row := range allRows(t, repo) {
		vec, err := row.Embedding.Vector()
		require.NoError(t, err)
		require.Len(t, vec, 3)
		assert.InDelta(t, 2.0/3, vec[2], 0.001)
	}
}
