package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/vector"
	"github.com/dgraph-io/badger/v4"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &ChunkRepository{
		backend: backend,
		logger:  backend.logger.With("repository", "chunks"),
	}, nil
}

// Close releases resources. ChunkRepository has no resources to release.
func (r *ChunkRepository) Close() error {
	return nil
}

// AddChunks writes chunks in a single transaction, replacing any chunk
// already stored at the same (publication, index) position.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.ID == 0 {
				chunk.ID = core.ChunkID(chunk.PublicationID, chunk.ChunkIndex)
			}
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = now
			}

			if err := tx.Set(makeChunkKey(chunk.ID), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			pubKey := makeChunkPubKey(chunk.PublicationID, chunk.ChunkIndex)
			if err := tx.Set(pubKey, storage.MarshalID(chunk.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ChunksByPublication returns a publication's chunks ordered by index.
func (r *ChunkRepository) ChunksByPublication(ctx context.Context, publicationID string) ([]*core.Chunk, error) {
	var ids []core.ID
	err := r.backend.scan(ctx, makePartialChunkPubKey(publicationID), func(_, val []byte) error {
		id, err := storage.UnmarshalID(val)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, 0, len(ids))
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)
	return chunks, err
}

// Search scores every stored chunk against vector and returns the best topK
// with similarity >= minSimilarity. Rows without an embedding of matching
// dimension are ignored.
func (r *ChunkRepository) Search(ctx context.Context, vec []float32, topK int, minSimilarity float32) ([]core.RetrievedItem, error) {
	if topK <= 0 || len(vec) == 0 {
		return nil, fmt.Errorf("%w: topK=%d dimension=%d", storage.ErrInvalidQuery, topK, len(vec))
	}

	var results []storage.Scored
	err := r.backend.scan(ctx, []byte(chunkPrefix), func(_, val []byte) error {
		chunk, err := storage.UnmarshalChunk(val)
		if err != nil {
			return err
		}
		if len(chunk.Embedding) != len(vec) {
			return nil
		}

		sim := vector.Cosine(vec, chunk.Embedding)
		if float32(sim) < minSimilarity {
			return nil
		}
		results = append(results, storage.Scored{
			Item: core.RetrievedItem{
				ChunkID:       chunk.ID,
				PublicationID: chunk.PublicationID,
				ChunkIndex:    chunk.ChunkIndex,
				Score:         vector.Score(sim),
				Content:       chunk.Content,
				Tags:          chunk.Tags,
			},
			Similarity: sim,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Raw similarity decides order, ties by ID for a stable order
	return storage.TopScored(results, topK), nil
}

// AllChunks returns every stored chunk row.
func (r *ChunkRepository) AllChunks(ctx context.Context) ([]storage.ChunkRow, error) {
	var rows []storage.ChunkRow
	err := r.backend.scan(ctx, []byte(chunkPrefix), func(key, val []byte) error {
		chunk, err := storage.UnmarshalChunk(val)
		if err != nil {
			r.logger.Warn("skipping undecodable chunk", "key", key, "err", err)
			return nil
		}
		rows = append(rows, storage.ChunkRow{
			ID:            chunk.ID,
			PublicationID: chunk.PublicationID,
			ChunkIndex:    chunk.ChunkIndex,
			Content:       chunk.Content,
			PageNumber:    chunk.PageNumber,
			Tags:          chunk.Tags,
			Embedding:     storage.VectorEmbedding(chunk.Embedding),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// readChunk reads a chunk from the transaction.
// A missing key yields nil without error.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}
