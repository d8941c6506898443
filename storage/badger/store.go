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

package badger

import "github.com/Ajay-Krishna00/CosmoGraph/storage"

// Store bundles the BadgerDB repositories over one backend.
type Store struct {
	backend      *Backend
	publications *PublicationRepository
	chunks       *ChunkRepository
}

// NewStore opens a Store at path.
func NewStore(path string) (*Store, error) {
	return newStore(path, false)
}

// NewMemoryStore creates an in-memory Store for tests.
// Caller must Close it when done.
func NewMemoryStore() (*Store, error) {
	return newStore("", true)
}

func newStore(path string, inMemory bool) (*Store, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	publications, err := NewPublicationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Store{
		backend:      backend,
		publications: publications,
		chunks:       chunks,
	}, nil
}

// Publications returns the publication repository.
func (s *Store) Publications() storage.PublicationRepository {
	return s.publications
}

// Chunks returns the chunk repository.
func (s *Store) Chunks() storage.ChunkRepository {
	return s.chunks
}

// Backend exposes the underlying backend.
func (s *Store) Backend() *Backend {
	return s.backend
}

// Close closes the repositories and the backend.
func (s *Store) Close() error {
	s.chunks.Close()
	s.publications.Close()
	return s.backend.Close()
}
