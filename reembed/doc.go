// Package reembed recomputes the embeddings of every stored chunk with the
// currently configured embedding model.
//
// Chunks are read in batches, embedded with retry and exponential backoff,
// normalized to unit length and written back at their existing positions.
// Rows that were stored without an embedding come out of a run with one.
package reembed
