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

package core

import (
	"fmt"
	"strings"
)

// ValidatePublication validates a Publication according to domain rules.
//
// Validation rules:
//   - ID must not be blank
//
// Every other field is optional; scraped pages frequently lack a title,
// authors or year.
func ValidatePublication(pub *Publication) error {
	if pub == nil {
		return fmt.Errorf("%w: publication is nil", ErrInvalidPublication)
	}
	if strings.TrimSpace(pub.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPublication, ErrEmptyPublicationID)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - PublicationID must not be blank
//   - ChunkIndex must not be negative
//   - Content must not be empty
//   - ID, when set, must equal ChunkID(PublicationID, ChunkIndex)
//
// NOT validated:
//   - Embedding (a chunk may be stored before or without one)
//   - Tags (tag extraction failures leave the list empty)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if strings.TrimSpace(chunk.PublicationID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyPublicationID)
	}
	if chunk.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeChunkIndex)
	}
	if strings.TrimSpace(chunk.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	if chunk.ID != 0 && chunk.ID != ChunkID(chunk.PublicationID, chunk.ChunkIndex) {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMismatchedChunkID)
	}
	return nil
}
