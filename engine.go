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

// Package cosmograph assembles knowledge graphs from scientific publications.
//
// An Engine owns a chunk store and an AI provider. Documents are ingested
// through a Pipeline; queries are embedded, answered by the similarity
// retriever and turned into a tag co-occurrence graph.
package cosmograph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
	"github.com/Ajay-Krishna00/CosmoGraph/ai/openai"
	"github.com/Ajay-Krishna00/CosmoGraph/config"
	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/graph"
	"github.com/Ajay-Krishna00/CosmoGraph/ingestion"
	"github.com/Ajay-Krishna00/CosmoGraph/reembed"
	"github.com/Ajay-Krishna00/CosmoGraph/retrieval"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/storage/badger"
	"github.com/Ajay-Krishna00/CosmoGraph/storage/sqlite"
	"github.com/Ajay-Krishna00/CosmoGraph/tagging"
)

const (
	// DefaultTopK is used when Search is called with topK <= 0.
	DefaultTopK = 5

	// NoDataMessage is the summary returned when nothing was retrieved.
	NoDataMessage = "No relevant data found."
)

// QueryResult is the answer to one query.
type QueryResult struct {
	Query string               `json:"query"`
	Items []core.RetrievedItem `json:"items"`
	Graph core.Graph           `json:"graph"`
}

// Engine wires a store and an AI provider into ingestion and querying.
type Engine struct {
	publications storage.PublicationRepository
	chunks       storage.ChunkRepository
	store        io.Closer
	provider     ai.AIProvider
	retriever    *retrieval.Retriever
	topK         int
	pipelineOpts []ingestion.Option
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	driver        string
	inMemory      bool
	aiConfig      *ai.Config
	provider      ai.AIProvider
	topK          int
	retrievalOpts []retrieval.Option
	pipelineOpts  []ingestion.Option
	logger        *slog.Logger
}

// WithDriver selects the store backend: config.DriverBadger (default) or
// config.DriverSQLite.
func WithDriver(driver string) Option {
	return func(o *options) {
		o.driver = driver
	}
}

// InMemory keeps the store in memory. The path is ignored.
func InMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithAIConfig sets the configuration used to build the langchaingo provider.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithTopK sets the result count used when Search is given topK <= 0.
func WithTopK(k int) Option {
	return func(o *options) {
		o.topK = k
	}
}

// WithRetrievalOptions passes options to the similarity retriever.
func WithRetrievalOptions(opts ...retrieval.Option) Option {
	return func(o *options) {
		o.retrievalOpts = append(o.retrievalOpts, opts...)
	}
}

// WithPipelineOptions sets options applied to every pipeline the engine
// creates, before the caller's own.
func WithPipelineOptions(opts ...ingestion.Option) Option {
	return func(o *options) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithLogger sets the logger for the engine and the components it builds.
// If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open opens the store at path and builds the engine.
func Open(path string, opts ...Option) (*Engine, error) {
	o := &options{
		driver:   config.DriverBadger,
		aiConfig: ai.DefaultConfig(),
		topK:     DefaultTopK,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	pubs, chunks, closer, err := openStore(o.driver, path, o.inMemory)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			closer.Close()
			return nil, err
		}
	}

	retrievalOpts := append([]retrieval.Option{retrieval.WithLogger(o.logger)}, o.retrievalOpts...)
	retriever, err := retrieval.New(chunks, retrievalOpts...)
	if err != nil {
		provider.Close()
		closer.Close()
		return nil, err
	}

	topK := o.topK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Engine{
		publications: pubs,
		chunks:       chunks,
		store:        closer,
		provider:     provider,
		retriever:    retriever,
		topK:         topK,
		pipelineOpts: append([]ingestion.Option{ingestion.WithLogger(o.logger)}, o.pipelineOpts...),
		logger:       o.logger.With("component", "engine"),
	}, nil
}

// OpenConfig validates cfg and opens an engine from it. opts are applied
// after the settings derived from cfg.
func OpenConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{
		WithDriver(cfg.Store.Driver),
		WithAIConfig(cfg.AI.Config()),
		WithTopK(cfg.Retrieval.TopK),
		WithRetrievalOptions(
			retrieval.WithMinSimilarity(cfg.Retrieval.MinSimilarity),
			retrieval.WithPrimaryTimeout(cfg.Retrieval.PrimaryTimeout.Std()),
			retrieval.WithFallbackTimeout(cfg.Retrieval.FallbackTimeout.Std()),
		),
		WithPipelineOptions(
			ingestion.WithPoolSize(cfg.Ingest.PoolSize),
			ingestion.WithChunkWindow(cfg.Chunking.Size, cfg.Chunking.Overlap),
			ingestion.WithRanker(tagging.NewRanker(cfg.Tagging.RankerOptions()...)),
			ingestion.WithWriteBatchSize(cfg.Ingest.WriteBatchSize),
			ingestion.WithPoliteness(cfg.Ingest.Politeness.Std()),
		),
	}
	return Open(cfg.Store.Path, append(base, opts...)...)
}

func openStore(driver, path string, inMemory bool) (storage.PublicationRepository, storage.ChunkRepository, io.Closer, error) {
	switch driver {
	case "", config.DriverBadger:
		var (
			store *badger.Store
			err   error
		)
		if inMemory {
			store, err = badger.NewMemoryStore()
		} else {
			store, err = badger.NewStore(path)
		}
		if err != nil {
			return nil, nil, nil, err
		}
		return store.Publications(), store.Chunks(), store, nil
	case config.DriverSQLite:
		if inMemory {
			path = ":memory:"
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Close releases the provider and the store.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// Publications returns the publication repository.
func (e *Engine) Publications() storage.PublicationRepository {
	return e.publications
}

// Chunks returns the chunk repository.
func (e *Engine) Chunks() storage.ChunkRepository {
	return e.chunks
}

// Provider returns the AI provider.
func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

// Retriever returns the engine's shared retriever.
func (e *Engine) Retriever() *retrieval.Retriever {
	return e.retriever
}

// NewPipeline creates an ingestion pipeline over the engine's store.
// fetcher may be nil when documents are passed in directly. The caller
// must Release the pipeline.
func (e *Engine) NewPipeline(fetcher ingestion.Fetcher, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	all := append(append([]ingestion.Option{}, e.pipelineOpts...), opts...)
	return ingestion.NewPipeline(e.publications, e.chunks, e.provider, fetcher, all...)
}

// NewRetriever creates a retriever over the engine's chunk store.
func (e *Engine) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.New(e.chunks, opts...)
}

// NewReembedder creates a reembedder using the engine's embedder.
func (e *Engine) NewReembedder(cfg *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(e.chunks, e.provider.Embedder(), cfg, progress)
}

// Search embeds query, retrieves the closest chunks and builds their tag
// graph. Finding nothing is not an error: the result is empty.
func (e *Engine) Search(ctx context.Context, query string, topK int) (*QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = e.topK
	}

	vec, err := e.provider.Embedder().EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	items, err := e.retriever.Retrieve(ctx, vec, topK)
	if err != nil && !errors.Is(err, retrieval.ErrNoResults) {
		return nil, err
	}
	if items == nil {
		items = []core.RetrievedItem{}
	}

	e.logger.Debug("query answered", "items", len(items), "top_k", topK)
	return &QueryResult{
		Query: query,
		Items: items,
		Graph: graph.Build(items),
	}, nil
}

// Summarize condenses the contents of items with the summarization service.
// With nothing to summarize it returns NoDataMessage without calling it.
func (e *Engine) Summarize(ctx context.Context, query string, items []core.RetrievedItem) (string, error) {
	contents := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Content) != "" {
			contents = append(contents, item.Content)
		}
	}
	if len(contents) == 0 {
		return NoDataMessage, nil
	}

	summary, err := e.provider.Summarizer().Summarize(ctx, strings.Join(contents, "\n"), query)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return summary, nil
}
