// Package sqlite implements the storage repositories on SQLite using sqlx
// and the pure Go modernc.org/sqlite driver.
//
// Embeddings are persisted in their string-serialized form ("[0.1,0.2,...]")
// and tags as JSON arrays, matching the row layout of hosted vector
// databases. All rows therefore come back from AllChunks with text
// embeddings, which callers decode with storage.Embedding.Vector.
package sqlite
