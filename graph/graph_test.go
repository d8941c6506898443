package graph

import (
	"encoding/json"
	"testing"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(tagSets ...[]string) []core.RetrievedItem {
	out := make([]core.RetrievedItem, len(tagSets))
	for i, tags := range tagSets {
		out[i] = core.RetrievedItem{ChunkID: core.ID(i + 1), Tags: tags}
	}
	return out
}

func TestBuild_CoOccurrence(t *testing.T) {
	g := Build(items([]string{"A", "B"}, []string{"B", "C"}))

	assert.Equal(t, []core.GraphNode{
		{ID: "B", Weight: 2},
		{ID: "A", Weight: 1},
		{ID: "C", Weight: 1},
	}, g.Nodes)
	assert.Equal(t, []core.GraphEdge{
		{Source: "A", Target: "B", Weight: 1},
		{Source: "B", Target: "C", Weight: 1},
	}, g.Edges)
	_, ok := g.Edge("A", "C")
	assert.False(t, ok)
}

func TestBuild_EdgeWeightCountsItems(t *testing.T) {
	g := Build(items(
		[]string{"Mars", "Water"},
		[]string{"Water", "Mars", "Space"},
		[]string{"Mars"},
	))

	mars, ok := g.Node("Mars")
	require.True(t, ok)
	assert.Equal(t, 3, mars.Weight)

	e, ok := g.Edge("Water", "Mars")
	require.True(t, ok)
	assert.Equal(t, 2, e.Weight)
	assert.Equal(t, "Mars", e.Source, "edge endpoints use the sorted pair")
}

func TestBuild_NoSelfLoops(t *testing.T) {
	g := Build(items([]string{"Mars", "Mars", "Water", "", "  "}))

	for _, e := range g.Edges {
		assert.NotEqual(t, e.Source, e.Target)
	}
	assert.Len(t, g.Nodes, 2)
	n, _ := g.Node("Mars")
	assert.Equal(t, 1, n.Weight)
}

func TestBuild_OrderInvariant(t *testing.T) {
	forward := Build(items([]string{"A", "B", "C"}, []string{"C", "D"}, []string{"B"}))
	reversed := Build(items([]string{"B"}, []string{"D", "C"}, []string{"C", "B", "A"}))

	assert.Equal(t, forward, reversed)
}

func TestBuild_Empty(t *testing.T) {
	for _, in := range [][]core.RetrievedItem{nil, items([]string{}), items(nil)} {
		g := Build(in)
		assert.NotNil(t, g.Nodes)
		assert.NotNil(t, g.Edges)
		assert.Empty(t, g.Nodes)
		assert.Empty(t, g.Edges)

		data, err := json.Marshal(g)
		require.NoError(t, err)
		assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := items([]string{"Water", "Mars", "Mars"})
	Build(in)
	assert.Equal(t, []string{"Water", "Mars", "Mars"}, in[0].Tags)
}
