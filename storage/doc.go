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

// Package storage provides the storage abstraction layer for CosmoGraph.
//
// This package defines repository interfaces that decouple the vector store
// from ingestion and retrieval. Two backends implement them:
//
//   - storage/badger: embedded BadgerDB, records encoded with mus-go
//   - storage/sqlite: SQLite through sqlx, embeddings kept as text
//
// # Architecture
//
//   - PublicationRepository: idempotent publication upserts
//   - ChunkRepository: chunk writes, the ranked Search primitive and the
//     unfiltered AllChunks bulk read used by the retriever's fallback
//
// # Embedding Forms
//
// Backends hand embeddings back either as native vectors or in their
// string-serialized form ("[0.12,-0.5,...]"). ChunkRow carries an Embedding
// that accepts both; callers decode with Embedding.Vector.
//
// # Usage
//
//	store, err := badger.NewStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
