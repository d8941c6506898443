package storage

import (
	"context"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
)

// PublicationRepository stores publication metadata.
// Implementations must be thread-safe and support concurrent access.
type PublicationRepository interface {
	// UpsertPublication inserts the publication or replaces the stored one
	// with the same ID. InsertedAt is preserved across updates and UpdatedAt
	// is refreshed. Returns the stored publication.
	UpsertPublication(ctx context.Context, pub *core.Publication) (*core.Publication, error)

	// GetPublication retrieves a publication by ID.
	// Returns ErrNotFound if the publication doesn't exist.
	GetPublication(ctx context.Context, id string) (*core.Publication, error)

	// Close releases resources held by the repository.
	Close() error
}

// ChunkRepository stores chunk rows and answers similarity queries over them.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunks writes chunks, keyed by (PublicationID, ChunkIndex).
	// Writing a chunk at an existing position replaces it.
	// IDs are derived with core.ChunkID when zero.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// ChunksByPublication returns a publication's chunks ordered by index.
	ChunksByPublication(ctx context.Context, publicationID string) ([]*core.Chunk, error)

	// Search returns up to topK chunks whose similarity to vector is at least
	// minSimilarity, best first. This is the indexed primary path.
	Search(ctx context.Context, vector []float32, topK int, minSimilarity float32) ([]core.RetrievedItem, error)

	// AllChunks returns every stored row without filtering. Embeddings are
	// returned in whatever form the backend holds them.
	AllChunks(ctx context.Context) ([]ChunkRow, error)

	// Close releases resources held by the repository.
	Close() error
}

// ChunkRow is a stored chunk as read back from a backend.
type ChunkRow struct {
	ID            core.ID
	PublicationID string
	ChunkIndex    int
	Content       string
	PageNumber    *int
	Tags          []string
	Embedding     Embedding
}

// Item converts the row to a retrieved item with the given score.
func (r ChunkRow) Item(score float32) core.RetrievedItem {
	return core.RetrievedItem{
		ChunkID:       r.ID,
		PublicationID: r.PublicationID,
		ChunkIndex:    r.ChunkIndex,
		Score:         score,
		Content:       r.Content,
		Tags:          r.Tags,
	}
}
