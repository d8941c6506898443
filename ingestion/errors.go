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

package ingestion

import "errors"

var (
	// ErrPublicationRepositoryRequired is returned when a publication repository is not provided.
	ErrPublicationRepositoryRequired = errors.New("publication repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrFetcherRequired is returned by Run when the pipeline has no fetcher.
	ErrFetcherRequired = errors.New("fetcher required")

	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("invalid pipeline option")

	// ErrNoText is recorded for documents with neither body text nor abstract.
	ErrNoText = errors.New("no text to chunk")

	// ErrEmbeddingCountMismatch is recorded when the embedder returns a
	// different number of vectors than chunks.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match chunk count")
)
