package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
	"github.com/Ajay-Krishna00/CosmoGraph/chunking"
	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/Ajay-Krishna00/CosmoGraph/progress"
	"github.com/Ajay-Krishna00/CosmoGraph/scrape"
	"github.com/Ajay-Krishna00/CosmoGraph/storage"
	"github.com/Ajay-Krishna00/CosmoGraph/tagging"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultWriteBatchSize is the number of chunk rows per store write.
	DefaultWriteBatchSize = 50

	// DefaultPoliteness is the minimum spacing between two page fetches.
	DefaultPoliteness = time.Second
)

// Fetcher retrieves the raw HTML of a page. scrape.HTTPFetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Pipeline orchestrates the ingestion of publications.
// It is safe to call Run and IngestDocument concurrently.
type Pipeline struct {
	publications   storage.PublicationRepository
	chunks         storage.ChunkRepository
	embedder       ai.Embedder
	extractor      ai.PhraseExtractor
	fetcher        Fetcher
	pool           *ants.Pool
	poolSize       int
	chunker        *chunking.Chunker
	ranker         *tagging.Ranker
	writeBatchSize int
	politeness     time.Duration
	limiter        *rate.Limiter
	progress       io.Writer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of documents processed concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunker replaces the default 1000/200 character chunker.
func WithChunker(c *chunking.Chunker) Option {
	return func(p *Pipeline) error {
		if c == nil {
			return fmt.Errorf("%w: nil chunker", ErrInvalidOption)
		}
		p.chunker = c
		return nil
	}
}

// WithChunkWindow configures the chunker from a window size and overlap.
func WithChunkWindow(size, overlap int) Option {
	return func(p *Pipeline) error {
		c, err := chunking.New(chunking.WithSize(size), chunking.WithOverlap(overlap))
		if err != nil {
			return err
		}
		p.chunker = c
		return nil
	}
}

// WithRanker replaces the default tag ranker.
func WithRanker(r *tagging.Ranker) Option {
	return func(p *Pipeline) error {
		if r == nil {
			return fmt.Errorf("%w: nil ranker", ErrInvalidOption)
		}
		p.ranker = r
		return nil
	}
}

// WithWriteBatchSize sets how many chunk rows go into one store write.
// Default is 50.
func WithWriteBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("%w: write batch size %d", ErrInvalidOption, n)
		}
		p.writeBatchSize = n
		return nil
	}
}

// WithPoliteness sets the minimum delay between successive fetches across
// all workers. Zero disables the delay. Default is one second.
func WithPoliteness(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return fmt.Errorf("%w: negative politeness delay", ErrInvalidOption)
		}
		p.politeness = d
		return nil
	}
}

// WithProgress reports per-document progress of Run to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. fetcher may be nil when only
// IngestDocument is used.
func NewPipeline(
	publications storage.PublicationRepository,
	chunks storage.ChunkRepository,
	provider ai.AIProvider,
	fetcher Fetcher,
	opts ...Option,
) (*Pipeline, error) {
	if publications == nil {
		return nil, ErrPublicationRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	chunker, err := chunking.New()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		publications:   publications,
		chunks:         chunks,
		embedder:       provider.Embedder(),
		extractor:      provider.PhraseExtractor(),
		fetcher:        fetcher,
		poolSize:       poolSize,
		chunker:        chunker,
		writeBatchSize: DefaultWriteBatchSize,
		politeness:     DefaultPoliteness,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "ingestion")
	if p.ranker == nil {
		p.ranker = tagging.NewRanker(tagging.WithLogger(p.logger))
	}
	if p.politeness > 0 {
		p.limiter = rate.NewLimiter(rate.Every(p.politeness), 1)
	}

	pool, err := ants.NewPool(p.poolSize)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Run ingests every URL and reports per-document outcomes in input order.
// Blank URLs and the placeholders "nan" and "none" are skipped. A failing
// document never stops the others; the returned error is non-nil only when
// the run could not start or ctx was cancelled.
func (p *Pipeline) Run(ctx context.Context, urls []string) (*RunSummary, error) {
	if p.fetcher == nil {
		return nil, ErrFetcherRequired
	}

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.With("run", summary.RunID)

	targets := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		switch strings.ToLower(u) {
		case "", "nan", "none":
			summary.Skipped++
			continue
		}
		targets = append(targets, u)
	}
	summary.Total = len(targets)
	logger.Info("starting ingestion run", "documents", len(targets), "skipped", summary.Skipped)

	var tracker *progress.Tracker
	if p.progress != nil {
		tracker = progress.NewTracker(p.progress, len(targets), 1, "documents")
		tracker.Start()
	}

	results := make([]DocumentResult, len(targets))
	var wg sync.WaitGroup
	for i, u := range targets {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.ingestURL(ctx, u)
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = DocumentResult{URL: u}
			results[i].fail(fmt.Errorf("schedule document: %w", submitErr))
		}
	}
	wg.Wait()
	if tracker != nil {
		tracker.Finish()
	}

	summary.Documents = results
	for _, r := range results {
		summary.Chunks += r.ChunksStored
		if r.OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.FinishedAt = time.Now().UTC()

	logger.Info("ingestion run finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"chunks", summary.Chunks,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt))
	return summary, ctx.Err()
}

// IngestDocument stores an already fetched document. Failures are reported
// in the result; the returned error mirrors DocumentResult.Err.
func (p *Pipeline) IngestDocument(ctx context.Context, doc Document) (DocumentResult, error) {
	res := DocumentResult{URL: doc.URL, PublicationID: doc.PublicationID, Fetched: true}
	if res.PublicationID == "" {
		id, err := scrape.PublicationID(doc.URL)
		if err != nil {
			res.fail(fmt.Errorf("derive publication id: %w", err))
			return res, res.Err
		}
		res.PublicationID = id
	}
	doc.PublicationID = res.PublicationID

	p.store(ctx, doc, &res)
	return res, res.Err
}

func (p *Pipeline) ingestURL(ctx context.Context, url string) DocumentResult {
	res := DocumentResult{URL: url}
	logger := p.logger.With("url", url)

	if err := ctx.Err(); err != nil {
		res.fail(err)
		return res
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			res.fail(err)
			return res
		}
	}

	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Warn("failed to fetch document", "err", err)
		res.fail(fmt.Errorf("fetch: %w", err))
		return res
	}
	res.Fetched = true

	meta, err := scrape.Extract(page, url)
	if err != nil {
		logger.Error("metadata extraction failed", "err", err)
		res.fail(fmt.Errorf("extract metadata: %w", err))
		return res
	}

	id, err := scrape.PublicationID(url)
	if err != nil {
		res.fail(fmt.Errorf("derive publication id: %w", err))
		return res
	}
	res.PublicationID = id

	p.store(ctx, Document{
		URL:           url,
		PublicationID: id,
		Title:         meta.Title,
		Authors:       meta.Authors,
		Year:          meta.Year,
		Mission:       meta.Mission,
		Organism:      meta.Organism,
		PDFURL:        meta.PDFURL,
		Abstract:      meta.Abstract,
		Text:          meta.Text,
		Metadata:      meta.Extra,
	}, &res)
	return res
}

// store runs the publication, chunk, embed, tag and write stages.
func (p *Pipeline) store(ctx context.Context, doc Document, res *DocumentResult) {
	logger := p.logger.With("publication", doc.PublicationID)

	_, err := p.publications.UpsertPublication(ctx, &core.Publication{
		ID:       doc.PublicationID,
		Title:    doc.Title,
		Authors:  doc.Authors,
		Year:     doc.Year,
		Mission:  doc.Mission,
		Organism: doc.Organism,
		PDFURL:   doc.PDFURL,
		Abstract: doc.Abstract,
		Metadata: doc.Metadata,
	})
	if err != nil {
		logger.Error("failed to upsert publication", "err", err)
		res.fail(fmt.Errorf("upsert publication: %w", err))
		return
	}
	res.PublicationStored = true

	body := doc.Text
	if strings.TrimSpace(body) == "" {
		body = doc.Abstract
	}
	texts := p.chunker.Split(body)
	if len(texts) == 0 {
		logger.Warn("no text found")
		res.fail(ErrNoText)
		return
	}

	logger.Info("embedding chunks", "chunks", len(texts))
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		logger.Error("failed to embed chunks", "err", err)
		res.fail(fmt.Errorf("embed chunks: %w", err))
		return
	}
	if len(vectors) != len(texts) {
		res.fail(fmt.Errorf("%w: %d vectors for %d chunks", ErrEmbeddingCountMismatch, len(vectors), len(texts)))
		return
	}

	rows := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		tags, err := p.ranker.TagText(ctx, p.extractor, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				res.fail(ctxErr)
				return
			}
			logger.Warn("failed to generate tags", "chunk", i, "err", err)
			tags = []string{}
		}
		rows[i] = &core.Chunk{
			ID:            core.ChunkID(doc.PublicationID, i),
			PublicationID: doc.PublicationID,
			ChunkIndex:    i,
			Content:       text,
			Tags:          tags,
			Embedding:     vectors[i],
		}
	}

	var writeErrs []error
	for start := 0; start < len(rows); start += p.writeBatchSize {
		end := min(start+p.writeBatchSize, len(rows))
		if err := p.chunks.AddChunks(ctx, rows[start:end]...); err != nil {
			logger.Error("failed to insert chunk batch", "from", start, "to", end, "err", err)
			writeErrs = append(writeErrs, fmt.Errorf("chunks %d-%d: %w", start, end-1, err))
			continue
		}
		res.ChunksStored += end - start
		logger.Debug("inserted chunk batch", "size", end-start)
	}
	if len(writeErrs) > 0 {
		res.fail(errors.Join(writeErrs...))
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
