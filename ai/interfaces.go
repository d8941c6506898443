package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Query vectors are produced with this call.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in one call.
	// The returned slice contains embeddings in the same order as the input texts.
	// Ingestion issues exactly one EmbedTexts call per document.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// PhraseExtractor proposes tag-worthy spans from text: named entities and
// short noun phrases. Output may contain duplicates and arbitrary casing;
// ranking and deduplication are the caller's concern.
// Implementations must be thread-safe for concurrent use.
type PhraseExtractor interface {
	// ExtractPhrases returns raw candidate phrases found in text.
	// Returns an empty slice if nothing plausible is found.
	ExtractPhrases(ctx context.Context, text string) ([]string, error)
}

// Summarizer condenses retrieved passages into an answer for a query.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize produces a summary of combinedText focused on query.
	Summarize(ctx context.Context, combinedText, query string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the services, ensuring they share
// configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// PhraseExtractor returns the candidate phrase service used for tagging.
	PhraseExtractor() PhraseExtractor

	// Summarizer returns the summarization service.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
