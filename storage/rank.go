package storage

import (
	"cmp"
	"slices"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
)

// Scored pairs a retrieved item with the raw cosine similarity it was
// ranked by. Item.Score holds the clamped value.
type Scored struct {
	Item       core.RetrievedItem
	Similarity float64
}

// TopScored orders scored by descending raw similarity, ties by ChunkID,
// and returns the items of the first topK entries.
func TopScored(scored []Scored, topK int) []core.RetrievedItem {
	slices.SortStableFunc(scored, func(a, b Scored) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.ChunkID, b.Item.ChunkID)
	})
	if topK >= 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	items := make([]core.RetrievedItem, len(scored))
	for i, s := range scored {
		items[i] = s.Item
	}
	return items
}
