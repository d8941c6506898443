// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"

	"github.com/Ajay-Krishna00/CosmoGraph/storage"
)

// DefaultBatchSize is the default number of rows handed to each batch.
const DefaultBatchSize = 100

// RowIterator iterates over all stored chunk rows in batches.
type RowIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewRowIterator creates a new row iterator.
// A batchSize <= 0 selects DefaultBatchSize.
func NewRowIterator(repo storage.ChunkRepository, batchSize int) *RowIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &RowIterator{repo: repo, batchSize: batchSize}
}

// BatchSize returns the effective batch size.
func (it *RowIterator) BatchSize() int {
	return it.batchSize
}

// ForEach calls fn for each batch of rows in storage order.
// Iteration stops on the first error from fn. Context cancellation is checked
// between batches.
func (it *RowIterator) ForEach(ctx context.Context, fn func([]storage.ChunkRow) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows, err := it.repo.AllChunks(ctx)
	if err != nil {
		return err
	}
	return it.each(ctx, rows, fn)
}

func (it *RowIterator) each(ctx context.Context, rows []storage.ChunkRow, fn func([]storage.ChunkRow) error) error {
	for i := 0; i < len(rows); i += it.batchSize {
		end := min(i+it.batchSize, len(rows))
		if err := fn(rows[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}
