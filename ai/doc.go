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

// Package ai provides abstractions for the AI services used by CosmoGraph.
//
// Ingestion depends on two services and the query flow on two:
//
//   - Embedder: turns chunk text and queries into vectors
//   - PhraseExtractor: proposes candidate tag phrases for a chunk
//   - Summarizer: condenses retrieved passages for a query
//   - AIProvider: aggregates the three for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs via langchaingo (Ollama, vLLM, OpenAI)
//   - ai/mock: deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors in ai/openai return interface types. Mock constructors
// return concrete types so tests can inject behaviour and assert on calls:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) { ... }
//	count := embedder.CallCount()
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "effects of microgravity on bone density")
package ai
