package tagging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ajay-Krishna00/CosmoGraph/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankTags(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		topN       int
		want       []string
	}{
		{
			name:       "case-insensitive frequency wins",
			candidates: []string{"Mars", "mars", "Water"},
			topN:       6,
			want:       []string{"Mars", "Water"},
		},
		{
			name:       "longer phrase wins frequency tie",
			candidates: []string{"Mars", "mars", "Mars mission", "Mars mission"},
			topN:       2,
			want:       []string{"Mars Mission", "Mars"},
		},
		{
			name:       "first seen breaks full tie",
			candidates: []string{"bone", "cell", "root"},
			topN:       3,
			want:       []string{"Bone", "Cell", "Root"},
		},
		{
			name:       "title case applied per word",
			candidates: []string{"INTERNATIONAL space STATION"},
			topN:       1,
			want:       []string{"International Space Station"},
		},
		{
			name:       "rendered duplicates collapse",
			candidates: []string{"mars  rover", "mars rover"},
			topN:       5,
			want:       []string{"Mars Rover"},
		},
		{
			name:       "blank candidates skipped",
			candidates: []string{"a", " ", "DNA"},
			topN:       5,
			want:       []string{"Dna", "A"},
		},
		{
			name:       "single-character keys kept",
			candidates: []string{"A", "B", "A"},
			topN:       3,
			want:       []string{"A", "B"},
		},
		{
			name:       "stops at topN",
			candidates: []string{"Alpha", "Beta", "Gamma", "Delta"},
			topN:       2,
			want:       []string{"Alpha", "Gamma"},
		},
		{
			name:       "empty input",
			candidates: nil,
			topN:       6,
			want:       []string{},
		},
		{
			name:       "zero topN",
			candidates: []string{"Mars"},
			topN:       0,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RankTags(tt.candidates, tt.topN))
		})
	}
}

func TestRankTags_Idempotent(t *testing.T) {
	candidates := []string{
		"microgravity", "Microgravity", "bone loss", "mice", "bone loss",
		"spaceflight", "gene expression", "Mice", "radiation", "ISS",
	}

	first := RankTags(candidates, 6)
	second := RankTags(first, 6)

	assert.ElementsMatch(t, first, second)
}

func TestRankTags_Deterministic(t *testing.T) {
	candidates := []string{"cell", "root", "leaf", "stem", "seed", "soil", "moon"}
	want := RankTags(candidates, 4)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, RankTags(candidates, 4))
	}
}

func TestRanker_Ceiling(t *testing.T) {
	r := NewRanker(WithMaxInputChars(10))

	assert.Equal(t, []string{"Mars"}, r.Rank([]string{"Mars"}))
	assert.Empty(t, r.Rank([]string{"Mars", "Jupiter", "Saturn"}))

	unlimited := NewRanker(WithMaxInputChars(0))
	assert.Len(t, unlimited.Rank([]string{"Mars", "Jupiter", "Saturn"}), 3)
}

func TestRanker_TieBreakFirstSeen(t *testing.T) {
	candidates := []string{"Mars", "mars", "Mars mission", "Mars mission"}

	r := NewRanker(WithTopN(2), WithTieBreak(TieBreakFirstSeen))
	assert.Equal(t, []string{"Mars", "Mars Mission"}, r.Rank(candidates))
}

func TestRanker_MinTagLength(t *testing.T) {
	r := NewRanker(WithMinTagLength(4))
	assert.Equal(t, []string{"Mars"}, r.Rank([]string{"ISS", "Mars", "ion"}))
}

func TestRanker_DefaultMinTagLength(t *testing.T) {
	assert.Equal(t, []string{"Dna"}, NewRanker().Rank([]string{"a", " ", "DNA"}))
}

func TestRanker_TagText(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks extracted phrases", func(t *testing.T) {
		extractor := mock.NewMockPhraseExtractor()
		extractor.ExtractPhrasesFunc = func(ctx context.Context, text string) ([]string, error) {
			return []string{"Space", "Mars", "space"}, nil
		}

		tags, err := NewRanker().TagText(ctx, extractor, "Space exploration of Mars in space")
		require.NoError(t, err)
		assert.Equal(t, []string{"Space", "Mars"}, tags)
		assert.Equal(t, 1, extractor.CallCount())
	})

	t.Run("blank text skips extractor", func(t *testing.T) {
		extractor := mock.NewMockPhraseExtractor()

		tags, err := NewRanker().TagText(ctx, extractor, "   ")
		require.NoError(t, err)
		assert.Empty(t, tags)
		assert.Equal(t, 0, extractor.CallCount())
	})

	t.Run("oversized text skips extractor", func(t *testing.T) {
		extractor := mock.NewMockPhraseExtractor()

		tags, err := NewRanker(WithMaxInputChars(100)).TagText(ctx, extractor, strings.Repeat("x", 101))
		require.NoError(t, err)
		assert.Empty(t, tags)
		assert.Equal(t, 0, extractor.CallCount())
	})

	t.Run("extractor error propagates", func(t *testing.T) {
		extractor := mock.NewMockPhraseExtractor()
		extractor.ExtractPhrasesFunc = func(ctx context.Context, text string) ([]string, error) {
			return nil, errors.New("model unavailable")
		}

		_, err := NewRanker().TagText(ctx, extractor, "Mars")
		assert.Error(t, err)
	})
}
