package ingestion

import (
	"encoding/json"
	"io"
	"time"
)

// Document is a publication whose content is already in hand.
type Document struct {
	URL string
	// PublicationID is derived from URL when empty.
	PublicationID string
	Title         string
	Authors       string
	Year          int
	Mission       string
	Organism      string
	PDFURL        string
	Abstract      string
	// Text is the main body. When blank the abstract is chunked instead.
	Text     string
	Metadata map[string]string
}

// DocumentResult records how far one document got through the pipeline.
type DocumentResult struct {
	URL               string `json:"url"`
	PublicationID     string `json:"publication_id,omitempty"`
	Fetched           bool   `json:"fetched"`
	PublicationStored bool   `json:"pub_upserted"`
	ChunksStored      int    `json:"chunks_inserted"`
	Error             string `json:"error,omitempty"`

	// Err is the failure behind Error.
	Err error `json:"-"`
}

// OK reports whether the document was fully ingested.
func (r DocumentResult) OK() bool {
	return r.Err == nil
}

func (r *DocumentResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// RunSummary describes one call to Pipeline.Run.
type RunSummary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Total      int              `json:"total"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	Chunks     int              `json:"chunks_inserted"`
	Documents  []DocumentResult `json:"documents"`
}

// WriteJSON writes the summary as indented JSON.
func (s *RunSummary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
