package mock

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"
)

// MockPhraseExtractor is a test double for ai.PhraseExtractor.
// By default it proposes every word that starts with an upper-case letter,
// stripped of surrounding punctuation.
type MockPhraseExtractor struct {
	// ExtractPhrasesFunc is called by ExtractPhrases if set.
	ExtractPhrasesFunc func(ctx context.Context, text string) ([]string, error)

	callCount atomic.Int64
}

// NewMockPhraseExtractor creates a new mock extractor with default behavior.
func NewMockPhraseExtractor() *MockPhraseExtractor {
	return &MockPhraseExtractor{}
}

// ExtractPhrases returns candidate phrases for text.
func (m *MockPhraseExtractor) ExtractPhrases(ctx context.Context, text string) ([]string, error) {
	m.callCount.Add(1)

	if m.ExtractPhrasesFunc != nil {
		return m.ExtractPhrasesFunc(ctx, text)
	}

	phrases := []string{}
	for _, word := range strings.Fields(text) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" {
			continue
		}
		if first := []rune(word)[0]; unicode.IsUpper(first) {
			phrases = append(phrases, word)
		}
	}
	return phrases, nil
}

// CallCount returns the number of ExtractPhrases calls.
func (m *MockPhraseExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset resets the call counter and clears the custom function.
func (m *MockPhraseExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractPhrasesFunc = nil
}
