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

// Package chunking splits document text into overlapping character windows.
//
// Windows are measured in characters (runes), never bytes, so multi-byte
// text is not cut mid-character. Consecutive windows share exactly overlap
// characters, and together the windows cover the whole input.
//
//	chunks, err := chunking.Chunk(text, 1000, 200)
//
// A Chunker carries a fixed window configuration for repeated use:
//
//	c, err := chunking.New(chunking.WithSize(800), chunking.WithOverlap(100))
//	chunks := c.Split(text)
package chunking
