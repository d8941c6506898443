package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
	"github.com/Ajay-Krishna00/CosmoGraph/backoff"
	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/vector"
)

// BatchProcessor handles embedding generation for batches of chunk rows.
type BatchProcessor struct {
	repo           storage.ChunkRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ChunkRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds a batch of rows in one call and writes them back.
// Vectors are normalized before they are stored.
func (bp *BatchProcessor) Process(ctx context.Context, rows []storage.ChunkRow) error {
	if len(rows) == 0 {
		return nil
	}

	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
	}

	var embeddings [][]float32
	err := backoff.Retry(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay, nil)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(rows) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(rows), len(embeddings))
	}

	chunks := make([]*core.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = &core.Chunk{
			ID:            row.ID,
			PublicationID: row.PublicationID,
			ChunkIndex:    row.ChunkIndex,
			Content:       row.Content,
			PageNumber:    row.PageNumber,
			Tags:          row.Tags,
			Embedding:     vector.Normalize(embeddings[i]),
		}
	}

	if err := bp.repo.AddChunks(ctx, chunks...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}
	return nil
}
