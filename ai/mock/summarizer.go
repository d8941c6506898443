package mock

import (
	"context"
	"sync/atomic"
)

// MockSummarizer is a test double for ai.Summarizer.
// By default it echoes the query and the length of the combined text.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	SummarizeFunc func(ctx context.Context, combinedText, query string) (string, error)

	// LastInput records the most recent combinedText.
	LastInput atomic.Value

	callCount atomic.Int64
}

// NewMockSummarizer creates a new mock summarizer with default behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns a canned summary.
func (m *MockSummarizer) Summarize(ctx context.Context, combinedText, query string) (string, error) {
	m.callCount.Add(1)
	m.LastInput.Store(combinedText)

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, combinedText, query)
	}
	return "summary of " + query, nil
}

// CallCount returns the number of Summarize calls.
func (m *MockSummarizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset resets the call counter and clears the custom function.
func (m *MockSummarizer) Reset() {
	m.callCount.Store(0)
	m.SummarizeFunc = nil
}
