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
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
	"github.com/Ajay-Krishna00/CosmoGraph/progress"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
)

// Config holds configuration for a reembedding run.
type Config struct {
	// BatchSize is the number of chunks embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder re-embeds every chunk in a repository.
type Reembedder struct {
	repo      storage.ChunkRepository
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
	processor *BatchProcessor
	iterator  *RowIterator
}

// NewReembedder creates a new reembedder.
// A nil config selects DefaultConfig. Progress output goes to w, which may be
// io.Discard.
func NewReembedder(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, w io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if w == nil {
		w = io.Discard
	}

	return &Reembedder{
		repo:      repo,
		config:    config,
		progress:  w,
		logger:    slog.Default().With("component", "reembedder"),
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewRowIterator(repo, config.BatchSize),
	}, nil
}

// Run re-embeds all chunks and returns how many were written.
func (r *Reembedder) Run(ctx context.Context) (int, error) {
	rows, err := r.repo.AllChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query chunks: %w", err)
	}

	total := len(rows)
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database (0 chunks)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (batch size: %d)\n",
		total, r.iterator.BatchSize())

	tracker := progress.NewTracker(r.progress, total, r.config.ReportInterval, "chunks")
	tracker.Start()

	processed := 0
	err = r.iterator.each(ctx, rows, func(batch []storage.ChunkRow) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(batch)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding stopped", "processed", processed, "total", total, "err", err)
		return processed, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())
	r.logger.Info("reembedding complete", "chunks", total, "elapsed", elapsed)
	return processed, nil
}
