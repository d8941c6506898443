package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/vector"
)

var _ storage.ChunkRepository = (*Store)(nil)

type chunkRow struct {
	ID            int64          `db:"id"`
	PublicationID string         `db:"publication_id"`
	ChunkIndex    int            `db:"chunk_index"`
	Content       string         `db:"content"`
	PageNumber    sql.NullInt64  `db:"page_number"`
	Embedding     sql.NullString `db:"embedding"`
	Tags          string         `db:"tags"`
	InsertedAt    int64          `db:"inserted_at"`
}

const upsertChunkSQL = `
INSERT INTO chunks (id, publication_id, chunk_index, content, page_number, embedding, tags, inserted_at)
VALUES (:id, :publication_id, :chunk_index, :content, :page_number, :embedding, :tags, :inserted_at)
ON CONFLICT(publication_id, chunk_index) DO UPDATE SET
	content = excluded.content,
	page_number = excluded.page_number,
	embedding = excluded.embedding,
	tags = excluded.tags`

func toChunkRow(chunk *core.Chunk) (chunkRow, error) {
	tags := chunk.Tags
	if tags == nil {
		tags = []string{}
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return chunkRow{}, fmt.Errorf("%w: tags: %w", storage.ErrSerializationFailed, err)
	}

	row := chunkRow{
		ID:            int64(chunk.ID),
		PublicationID: chunk.PublicationID,
		ChunkIndex:    chunk.ChunkIndex,
		Content:       chunk.Content,
		Tags:          string(tagJSON),
		InsertedAt:    chunk.InsertedAt.UnixMicro(),
	}
	if chunk.PageNumber != nil {
		row.PageNumber = sql.NullInt64{Int64: int64(*chunk.PageNumber), Valid: true}
	}
	if len(chunk.Embedding) > 0 {
		row.Embedding = sql.NullString{String: storage.FormatEmbedding(chunk.Embedding), Valid: true}
	}
	return row, nil
}

func (r chunkRow) toStorageRow() (storage.ChunkRow, error) {
	out := storage.ChunkRow{
		ID:            core.ID(uint64(r.ID)),
		PublicationID: r.PublicationID,
		ChunkIndex:    r.ChunkIndex,
		Content:       r.Content,
		Embedding:     storage.TextEmbedding(r.Embedding.String),
	}
	if r.PageNumber.Valid {
		page := int(r.PageNumber.Int64)
		out.PageNumber = &page
	}
	if err := json.Unmarshal([]byte(r.Tags), &out.Tags); err != nil {
		return out, fmt.Errorf("%w: tags: %w", storage.ErrSerializationFailed, err)
	}
	return out, nil
}

func (r chunkRow) toChunk() (*core.Chunk, error) {
	row, err := r.toStorageRow()
	if err != nil {
		return nil, err
	}
	chunk := &core.Chunk{
		ID:            row.ID,
		PublicationID: row.PublicationID,
		ChunkIndex:    row.ChunkIndex,
		Content:       row.Content,
		PageNumber:    row.PageNumber,
		Tags:          row.Tags,
		InsertedAt:    time.UnixMicro(r.InsertedAt).UTC(),
	}
	if !row.Embedding.IsZero() {
		if chunk.Embedding, err = row.Embedding.Vector(); err != nil {
			return nil, err
		}
	}
	return chunk, nil
}

// AddChunks writes chunks in one transaction, replacing rows at the same
// (publication_id, chunk_index).
func (s *Store) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk insert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Microsecond)
	for _, chunk := range chunks {
		if chunk.ID == 0 {
			chunk.ID = core.ChunkID(chunk.PublicationID, chunk.ChunkIndex)
		}
		if chunk.InsertedAt.IsZero() {
			chunk.InsertedAt = now
		}
		row, err := toChunkRow(chunk)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, upsertChunkSQL, row); err != nil {
			return fmt.Errorf("insert chunk %s#%d: %w", chunk.PublicationID, chunk.ChunkIndex, err)
		}
	}
	return tx.Commit()
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var row chunkRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM chunks WHERE id = ?`, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chunk: %w", err)
	}
	return row.toChunk()
}

// ChunksByPublication returns a publication's chunks ordered by index.
func (s *Store) ChunksByPublication(ctx context.Context, publicationID string) ([]*core.Chunk, error) {
	var rows []chunkRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM chunks WHERE publication_id = ? ORDER BY chunk_index`, publicationID)
	if err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}

	chunks := make([]*core.Chunk, 0, len(rows))
	for _, row := range rows {
		chunk, err := row.toChunk()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Search scores the rows that carry an embedding and returns the best topK
// with similarity >= minSimilarity. Rows whose embedding cannot be decoded
// or has another dimension are ignored.
func (s *Store) Search(ctx context.Context, vec []float32, topK int, minSimilarity float32) ([]core.RetrievedItem, error) {
	if topK <= 0 || len(vec) == 0 {
		return nil, fmt.Errorf("%w: topK=%d dimension=%d", storage.ErrInvalidQuery, topK, len(vec))
	}

	var rows []chunkRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM chunks WHERE embedding IS NOT NULL`); err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}

	var results []storage.Scored
	for _, r := range rows {
		row, err := r.toStorageRow()
		if err != nil {
			s.logger.Warn("skipping undecodable chunk", "id", r.ID, "err", err)
			continue
		}
		emb, err := row.Embedding.Vector()
		if err != nil || len(emb) != len(vec) {
			continue
		}
		sim := vector.Cosine(vec, emb)
		if float32(sim) < minSimilarity {
			continue
		}
		results = append(results, storage.Scored{Item: row.Item(vector.Score(sim)), Similarity: sim})
	}

	return storage.TopScored(results, topK), nil
}

// AllChunks returns every stored row with its embedding in text form.
func (s *Store) AllChunks(ctx context.Context) ([]storage.ChunkRow, error) {
	var rows []chunkRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM chunks ORDER BY publication_id, chunk_index`); err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}

	out := make([]storage.ChunkRow, 0, len(rows))
	for _, r := range rows {
		row, err := r.toStorageRow()
		if err != nil {
			s.logger.Warn("skipping undecodable chunk", "id", r.ID, "err", err)
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
