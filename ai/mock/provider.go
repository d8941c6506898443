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

package mock

import "github.com/Ajay-Krishna00/CosmoGraph/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder   *MockEmbedder
	extractor  *MockPhraseExtractor
	summarizer *MockSummarizer
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a new mock provider with default services.
//
// Returns ai.AIProvider interface for use as a drop-in replacement.
// Use GetMockEmbedder() etc. to access concrete mock types for assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:   NewMockEmbedder(),
		extractor:  NewMockPhraseExtractor(),
		summarizer: NewMockSummarizer(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom services.
// Nil services are replaced with defaults.
func NewMockProviderWithServices(embedder *MockEmbedder, extractor *MockPhraseExtractor, summarizer *MockSummarizer) *MockProvider {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	if extractor == nil {
		extractor = NewMockPhraseExtractor()
	}
	if summarizer == nil {
		summarizer = NewMockSummarizer()
	}
	return &MockProvider{
		embedder:   embedder,
		extractor:  extractor,
		summarizer: summarizer,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// PhraseExtractor returns the mock phrase extractor.
func (p *MockProvider) PhraseExtractor() ai.PhraseExtractor {
	return p.extractor
}

// Summarizer returns the mock summarizer.
func (p *MockProvider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// Close is a no-op for the mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockExtractor returns the concrete mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockPhraseExtractor {
	return p.extractor
}

// GetMockSummarizer returns the concrete mock summarizer for test assertions.
func (p *MockProvider) GetMockSummarizer() *MockSummarizer {
	return p.summarizer
}
