package badger

import (
	"context"
	"errors"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/dgraph-io/badger/v4"
)

// PublicationRepository implements storage.PublicationRepository for BadgerDB.
type PublicationRepository struct {
	backend *Backend
}

var _ storage.PublicationRepository = (*PublicationRepository)(nil)

// NewPublicationRepository creates a new PublicationRepository.
func NewPublicationRepository(backend *Backend) (*PublicationRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &PublicationRepository{
		backend: backend,
	}, nil
}

// Close releases resources. PublicationRepository has no resources to release.
func (r *PublicationRepository) Close() error {
	return nil
}

// UpsertPublication inserts or replaces a publication by ID.
func (r *PublicationRepository) UpsertPublication(ctx context.Context, pub *core.Publication) (*core.Publication, error) {
	if err := core.ValidatePublication(pub); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := *pub
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makePublicationKey(pub.ID)

		old, err := readPublication(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC().Truncate(time.Microsecond)
		stored.UpdatedAt = now
		switch {
		case old != nil && !old.InsertedAt.IsZero():
			stored.InsertedAt = old.InsertedAt
		case stored.InsertedAt.IsZero():
			stored.InsertedAt = now
		}

		if err := tx.Set(key, storage.MarshalPublication(&stored)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetPublication retrieves a publication by ID.
func (r *PublicationRepository) GetPublication(ctx context.Context, id string) (*core.Publication, error) {
	var result *core.Publication
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPublication(tx, makePublicationKey(id))
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

// readPublication reads a publication from the transaction.
// A missing key yields nil without error.
func readPublication(tx *badger.Txn, key []byte) (*core.Publication, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var pub *core.Publication
	err = item.Value(func(val []byte) error {
		var err error
		pub, err = storage.UnmarshalPublication(val)
		return err
	})
	return pub, err
}
