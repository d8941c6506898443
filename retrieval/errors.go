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

package retrieval

import "errors"

var (
	// ErrStoreRequired is returned when a chunk repository is not provided.
	ErrStoreRequired = errors.New("chunk repository required")

	// ErrInvalidTopK is returned when topK is not positive.
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrEmptyVector is returned when the query vector has no dimensions.
	ErrEmptyVector = errors.New("query vector is empty")

	// ErrNoResults signals that neither the indexed search nor the bulk scan
	// produced a usable row. It accompanies an empty, non-nil result.
	ErrNoResults = errors.New("no relevant data found")

	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("invalid retriever option")
)
