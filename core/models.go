package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored chunks.
// It is derived from content so that re-ingestion maps onto the same rows.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID returns the identifier of the chunk at index within a publication.
// A (publication, index) pair always maps to the same ID.
func ChunkID(publicationID string, index int) ID {
	return IDFromContent(publicationID + "#" + strconv.Itoa(index))
}

// Publication is a source document. Its ID is derived from the source URL,
// so ingesting the same document twice updates the same record.
type Publication struct {
	ID         string
	Title      string
	Authors    string
	Year       int // 0 when unknown
	Mission    string
	Organism   string
	PDFURL     string
	Abstract   string
	InsertedAt time.Time
	UpdatedAt  time.Time
	Metadata   map[string]string // Extraction details (fetched_url, meta_title, ...)
}

// Chunk is one window of a publication's text, enriched with tags and an
// embedding during ingestion. Chunks are immutable once written.
type Chunk struct {
	ID            ID
	PublicationID string // Weak reference; publications never list their chunks
	ChunkIndex    int
	Content       string
	PageNumber    *int
	Tags          []string
	Embedding     []float32
	InsertedAt    time.Time
}

// RetrievedItem is a chunk returned by a similarity query.
// Score is in [0, 1].
type RetrievedItem struct {
	ChunkID       ID       `json:"chunk_id"`
	PublicationID string   `json:"publication_id"`
	ChunkIndex    int      `json:"chunk_index"`
	Score         float32  `json:"score"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
}

// GraphNode is a tag in a co-occurrence graph.
// Weight is the number of retrieved items carrying the tag.
type GraphNode struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}

// GraphEdge connects two tags that appear together in at least one item.
// Source sorts before Target, and Weight is the number of items carrying both.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Graph is a weighted tag co-occurrence graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// EdgeKey is the unordered pair of tags identifying an edge.
type EdgeKey struct {
	A string
	B string
}

// NewEdgeKey returns the canonical key for a tag pair, with A < B.
func NewEdgeKey(x, y string) EdgeKey {
	if y < x {
		x, y = y, x
	}
	return EdgeKey{A: x, B: y}
}

// Node returns the node with the given tag, if present.
func (g Graph) Node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// Edge returns the edge between two tags in either order, if present.
func (g Graph) Edge(x, y string) (GraphEdge, bool) {
	key := NewEdgeKey(x, y)
	for _, e := range g.Edges {
		if e.Source == key.A && e.Target == key.B {
			return e, true
		}
	}
	return GraphEdge{}, false
}
