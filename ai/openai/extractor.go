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

package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxParseAttempts = 3

// PhraseExtractor implements ai.PhraseExtractor using OpenAI-compatible chat APIs.
type PhraseExtractor struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

var _ ai.PhraseExtractor = (*PhraseExtractor)(nil)

// phraseList is the structure of the model's JSON response.
type phraseList struct {
	Phrases []string `json:"phrases"`
}

// newPhraseExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newPhraseExtractor(config *ai.Config) (*PhraseExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &PhraseExtractor{
		client:  client,
		timeout: config.RequestTimeout,
		logger:  slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewPhraseExtractor creates a new phrase extractor using the provided configuration.
//
// Returns ai.PhraseExtractor interface to enforce abstraction.
func NewPhraseExtractor(config *ai.Config) (ai.PhraseExtractor, error) {
	return newPhraseExtractor(config)
}

// ExtractPhrases asks the model for entity and noun phrase mentions in text.
// Phrases longer than ai.MaxPhraseWords words or shorter than two
// characters are dropped.
func (e *PhraseExtractor) ExtractPhrases(ctx context.Context, text string) ([]string, error) {
	text = normalizeSpace(text)
	if text == "" {
		return []string{}, nil
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildPhrasePrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}

	// Retry only on malformed JSON; transport errors are returned at once.
	var result phraseList
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		callCtx, cancel := callContext(ctx, e.timeout)
		response, err := e.client.GenerateContent(callCtx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		cancel()
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []string{}, nil
		}

		responseText := repairJSON(stripCodeFence(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	phrases := filterPhrases(result.Phrases)
	e.logger.Debug("extracted phrases", "total", len(result.Phrases), "kept", len(phrases))
	return phrases, nil
}

// filterPhrases normalizes whitespace and drops phrases outside the accepted length.
func filterPhrases(raw []string) []string {
	phrases := make([]string, 0, len(raw))
	for _, p := range raw {
		p = normalizeSpace(p)
		if utf8.RuneCountInString(p) < 2 {
			continue
		}
		if len(strings.Fields(p)) > ai.MaxPhraseWords {
			continue
		}
		phrases = append(phrases, p)
	}
	return phrases
}
