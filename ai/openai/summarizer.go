package openai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultSummarySentences = 5

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client       llms.Model
	maxSentences int
	timeout      time.Duration
	logger       *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.SummaryModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client:       client,
		maxSentences: defaultSummarySentences,
		timeout:      config.RequestTimeout,
		logger:       slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize answers query from combinedText.
func (s *Summarizer) Summarize(ctx context.Context, combinedText, query string) (string, error) {
	s.logger.Debug("summarizing", "query", query, "length", len(combinedText))

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildSummaryPrompt(s.maxSentences)),
		llms.TextParts(llms.ChatMessageTypeHuman, buildSummaryInput(combinedText, query)),
	}

	ctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Error("failed to generate summary", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}
