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
)

var _ storage.PublicationRepository = (*Store)(nil)

type publicationRow struct {
	ID         string `db:"id"`
	Title      string `db:"title"`
	Authors    string `db:"authors"`
	Year       int    `db:"year"`
	Mission    string `db:"mission"`
	Organism   string `db:"organism"`
	PDFURL     string `db:"pdf_url"`
	Abstract   string `db:"abstract"`
	Metadata   string `db:"metadata"`
	InsertedAt int64  `db:"inserted_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

const upsertPublicationSQL = `
INSERT INTO publications (id, title, authors, year, mission, organism, pdf_url, abstract, metadata, inserted_at, updated_at)
VALUES (:id, :title, :authors, :year, :mission, :organism, :pdf_url, :abstract, :metadata, :inserted_at, :updated_at)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	authors = excluded.authors,
	year = excluded.year,
	mission = excluded.mission,
	organism = excluded.organism,
	pdf_url = excluded.pdf_url,
	abstract = excluded.abstract,
	metadata = excluded.metadata,
	updated_at = excluded.updated_at`

// UpsertPublication inserts or replaces a publication by ID.
func (s *Store) UpsertPublication(ctx context.Context, pub *core.Publication) (*core.Publication, error) {
	if err := core.ValidatePublication(pub); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	stored := *pub
	stored.UpdatedAt = now
	if stored.InsertedAt.IsZero() {
		stored.InsertedAt = now
	}

	meta, err := json.Marshal(stored.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	row := publicationRow{
		ID:         stored.ID,
		Title:      stored.Title,
		Authors:    stored.Authors,
		Year:       stored.Year,
		Mission:    stored.Mission,
		Organism:   stored.Organism,
		PDFURL:     stored.PDFURL,
		Abstract:   stored.Abstract,
		Metadata:   string(meta),
		InsertedAt: stored.InsertedAt.UnixMicro(),
		UpdatedAt:  stored.UpdatedAt.UnixMicro(),
	}
	if _, err := s.db.NamedExecContext(ctx, upsertPublicationSQL, row); err != nil {
		return nil, fmt.Errorf("upsert publication: %w", err)
	}

	// The stored insert time wins on conflict.
	return s.GetPublication(ctx, stored.ID)
}

// GetPublication retrieves a publication by ID.
func (s *Store) GetPublication(ctx context.Context, id string) (*core.Publication, error) {
	var row publicationRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM publications WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}

	pub := &core.Publication{
		ID:         row.ID,
		Title:      row.Title,
		Authors:    row.Authors,
		Year:       row.Year,
		Mission:    row.Mission,
		Organism:   row.Organism,
		PDFURL:     row.PDFURL,
		Abstract:   row.Abstract,
		InsertedAt: time.UnixMicro(row.InsertedAt).UTC(),
		UpdatedAt:  time.UnixMicro(row.UpdatedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(row.Metadata), &pub.Metadata); err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", storage.ErrSerializationFailed, err)
	}
	return pub, nil
}
