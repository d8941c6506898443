// Package ingestion turns publication URLs into stored, embedded and tagged
// chunks.
//
// For each document the Pipeline runs these stages in order:
//   - fetch the page (retried by the fetcher) and extract its metadata
//   - upsert the publication under an ID derived from the URL
//   - split the main text, or the abstract, into overlapping chunks
//   - embed every chunk in a single batched call
//   - tag each chunk with ranked key phrases
//   - write the chunk rows in batches
//
// Documents are processed concurrently on a bounded worker pool. A failure
// in one document is recorded in its DocumentResult and never stops the
// others. A shared rate limiter spaces out successive fetches.
package ingestion
