// Package retrieval finds the chunks most similar to a query vector.
//
// A Retriever runs a small two-state machine. It starts in the primary
// state and asks the store's indexed search for matches above a similarity
// threshold. Any non-empty answer is returned unchanged. If the index errors
// or returns nothing, the retriever moves to the fallback state: it reads
// every row, scores each one with cosine similarity in process, skips rows
// whose embedding is missing or has the wrong dimension, and returns the
// best topK regardless of threshold.
//
// Primary failures are logged and never returned to the caller.
package retrieval
