package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/vector"
)

const (
	// DefaultMinSimilarity is the threshold handed to the indexed search.
	DefaultMinSimilarity float32 = 0.4

	DefaultPrimaryTimeout  = 10 * time.Second
	DefaultFallbackTimeout = 30 * time.Second
)

// State is the retriever's position in its two-state machine.
type State int

const (
	// StatePrimary queries the store's indexed search.
	StatePrimary State = iota
	// StateFallback scans every row and scores it locally.
	StateFallback
)

func (s State) String() string {
	switch s {
	case StatePrimary:
		return "primary"
	case StateFallback:
		return "fallback"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Retriever answers similarity queries against a chunk repository.
// It holds no mutable state and is safe for concurrent use.
type Retriever struct {
	store           storage.ChunkRepository
	minSimilarity   float32
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithMinSimilarity sets the threshold used by the indexed search.
// Default is 0.4. Must be within [-1, 1].
func WithMinSimilarity(threshold float32) Option {
	return func(r *Retriever) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: min similarity %v outside [-1, 1]", ErrInvalidOption, threshold)
		}
		r.minSimilarity = threshold
		return nil
	}
}

// WithPrimaryTimeout bounds the indexed search call. Zero disables the bound.
func WithPrimaryTimeout(d time.Duration) Option {
	return func(r *Retriever) error {
		if d < 0 {
			return fmt.Errorf("%w: negative primary timeout", ErrInvalidOption)
		}
		r.primaryTimeout = d
		return nil
	}
}

// WithFallbackTimeout bounds the bulk read. Zero disables the bound.
func WithFallbackTimeout(d time.Duration) Option {
	return func(r *Retriever) error {
		if d < 0 {
			return fmt.Errorf("%w: negative fallback timeout", ErrInvalidOption)
		}
		r.fallbackTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// New creates a retriever over store.
func New(store storage.ChunkRepository, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	r := &Retriever{
		store:           store,
		minSimilarity:   DefaultMinSimilarity,
		primaryTimeout:  DefaultPrimaryTimeout,
		fallbackTimeout: DefaultFallbackTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retriever")
	return r, nil
}

// MinSimilarity returns the configured indexed-search threshold.
func (r *Retriever) MinSimilarity() float32 {
	return r.minSimilarity
}

// Retrieve returns up to topK items ranked by similarity to queryVector.
// When nothing usable is found it returns an empty slice and ErrNoResults.
func (r *Retriever) Retrieve(ctx context.Context, queryVector []float32, topK int) ([]core.RetrievedItem, error) {
	return r.RetrieveWithMonitor(ctx, queryVector, topK, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each state transition.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, queryVector []float32, topK int, monitor Monitor) ([]core.RetrievedItem, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := checkQuery(queryVector, topK); err != nil {
		return nil, err
	}
	monitor.Start(len(queryVector), topK)

	state := StatePrimary
	var items []core.RetrievedItem
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch state {
		case StatePrimary:
			found, err := r.primary(ctx, queryVector, topK)
			if err != nil {
				// A cancelled caller is not a primary failure.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				r.logger.Warn("indexed search failed, falling back to scan", "err", err)
				monitor.PrimaryFailed(err)
				state = StateFallback
				continue
			}
			if len(found) == 0 {
				r.logger.Debug("indexed search returned no rows, falling back to scan")
				monitor.PrimaryEmpty()
				state = StateFallback
				continue
			}
			items = found

		case StateFallback:
			found, err := r.fallback(ctx, queryVector, topK, monitor)
			if err != nil {
				return nil, err
			}
			items = found
		}
		break
	}

	monitor.Finish(state, items)
	if len(items) == 0 {
		return []core.RetrievedItem{}, ErrNoResults
	}
	return items, nil
}

// Fallback runs only the bulk-scan path: every row is read and scored in
// process, and the best topK are returned without any threshold.
func (r *Retriever) Fallback(ctx context.Context, queryVector []float32, topK int) ([]core.RetrievedItem, error) {
	if err := checkQuery(queryVector, topK); err != nil {
		return nil, err
	}
	return r.fallback(ctx, queryVector, topK, &noopMonitor{})
}

func checkQuery(queryVector []float32, topK int) error {
	if topK <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	if len(queryVector) == 0 {
		return ErrEmptyVector
	}
	return nil
}

func (r *Retriever) primary(ctx context.Context, queryVector []float32, topK int) ([]core.RetrievedItem, error) {
	ctx, cancel := withOptionalTimeout(ctx, r.primaryTimeout)
	defer cancel()
	return r.store.Search(ctx, queryVector, topK, r.minSimilarity)
}

func (r *Retriever) fallback(ctx context.Context, queryVector []float32, topK int, monitor Monitor) ([]core.RetrievedItem, error) {
	readCtx, cancel := withOptionalTimeout(ctx, r.fallbackTimeout)
	defer cancel()

	rows, err := r.store.AllChunks(readCtx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("fallback scan: %w", err)
	}
	monitor.FallbackStarted(len(rows))

	scored := make([]storage.Scored, 0, len(rows))
	var missing, mismatched int
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		emb, err := row.Embedding.Vector()
		if err != nil {
			if errors.Is(err, storage.ErrMissingEmbedding) {
				missing++
			} else {
				mismatched++
			}
			monitor.RowSkipped(row.ID, err)
			continue
		}
		if len(emb) != len(queryVector) {
			mismatched++
			monitor.RowSkipped(row.ID, fmt.Errorf("%w: dimension %d, want %d",
				storage.ErrMalformedEmbedding, len(emb), len(queryVector)))
			continue
		}

		sim := vector.Cosine(queryVector, emb)
		scored = append(scored, storage.Scored{Item: row.Item(vector.Score(sim)), Similarity: sim})
	}

	if missing > 0 || mismatched > 0 {
		r.logger.Warn("skipped rows during fallback scan",
			"rows", len(rows),
			"missingEmbedding", missing,
			"badEmbedding", mismatched)
	}

	return storage.TopScored(scored, topK), nil
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector has
// zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	return vector.Cosine(a, b)
}

// Score maps a cosine similarity onto the [0, 1] range used by
// core.RetrievedItem.
func Score(similarity float64) float32 {
	return vector.Score(similarity)
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
