// Package graph turns retrieved items into a tag co-occurrence graph.
package graph

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
)

// Build derives the co-occurrence graph of the tags carried by items.
//
// Every distinct tag becomes a node weighted by the number of items that
// carry it. Every pair of distinct tags sharing an item becomes an edge
// weighted by the number of items carrying both. Repeated or blank tags
// within one item count once, so no edge joins a tag to itself.
//
// The result is sorted, nodes by weight then ID and edges by weight then
// endpoints, and does not depend on the order of items or of their tags.
// Build does not modify items.
func Build(items []core.RetrievedItem) core.Graph {
	nodeWeights := make(map[string]int)
	edgeWeights := make(map[core.EdgeKey]int)

	for _, item := range items {
		tags := distinctTags(item.Tags)
		for i, a := range tags {
			nodeWeights[a]++
			for _, b := range tags[i+1:] {
				edgeWeights[core.NewEdgeKey(a, b)]++
			}
		}
	}

	g := core.Graph{
		Nodes: make([]core.GraphNode, 0, len(nodeWeights)),
		Edges: make([]core.GraphEdge, 0, len(edgeWeights)),
	}
	for id, w := range nodeWeights {
		g.Nodes = append(g.Nodes, core.GraphNode{ID: id, Weight: w})
	}
	for key, w := range edgeWeights {
		g.Edges = append(g.Edges, core.GraphEdge{Source: key.A, Target: key.B, Weight: w})
	}

	slices.SortFunc(g.Nodes, func(a, b core.GraphNode) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(g.Edges, func(a, b core.GraphEdge) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(a.Target, b.Target)
	})
	return g
}

// distinctTags returns the sorted set of non-blank tags.
func distinctTags(tags []string) []string {
	set := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			continue
		}
		set = append(set, t)
	}
	slices.Sort(set)
	return slices.Compact(set)
}
