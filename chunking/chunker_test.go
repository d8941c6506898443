package chunking

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name: "three windows with overlap", text: "abcdefghij", size: 4, overlap: 1,
			want: []string{"abcd", "defg", "ghij"},
		},
		{
			name: "text shorter than window", text: "short", size: 10, overlap: 2,
			want: []string{"short"},
		},
		{
			name: "text exactly one window", text: "abcd", size: 4, overlap: 1,
			want: []string{"abcd"},
		},
		{
			name: "no overlap", text: "aabbcc", size: 2, overlap: 0,
			want: []string{"aa", "bb", "cc"},
		},
		{
			name: "whitespace windows dropped", text: "    abc", size: 2, overlap: 0,
			want: []string{"ab", "c"},
		},
		{
			name: "windows are trimmed", text: "ab  cd", size: 3, overlap: 0,
			want: []string{"ab", "cd"},
		},
		{
			name: "empty text", text: "", size: 10, overlap: 2,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Chunk(tt.text, tt.size, tt.overlap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunk_InvalidWindow(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{name: "size equals overlap", size: 5, overlap: 5},
		{name: "size below overlap", size: 3, overlap: 5},
		{name: "zero size", size: 0, overlap: 0},
		{name: "negative overlap", size: 5, overlap: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Chunk("some text that would otherwise be chunked", tt.size, tt.overlap)
			assert.ErrorIs(t, err, ErrInvalidWindow)
			assert.Nil(t, chunks)
		})
	}
}

func TestWindows_CoverTextWithExactOverlap(t *testing.T) {
	text := strings.Repeat("The rover sampled regolith near the crater rim. ", 40)
	size, overlap := 100, 25

	windows, err := Windows(text, size, overlap)
	require.NoError(t, err)
	require.NotEmpty(t, windows)

	runes := []rune(text)
	assert.Equal(t, 0, windows[0].Start)
	assert.Equal(t, len(runes), windows[len(windows)-1].End)

	for i, w := range windows {
		assert.LessOrEqual(t, w.End-w.Start, size)
		assert.Equal(t, string(runes[w.Start:w.End]), w.Text)
		if i == 0 {
			continue
		}
		prev := windows[i-1]
		assert.Equal(t, prev.Start+size-overlap, w.Start, "window %d start", i)

		prevRunes := []rune(prev.Text)
		curRunes := []rune(w.Text)
		assert.Equal(t, string(prevRunes[len(prevRunes)-overlap:]), string(curRunes[:overlap]),
			"window %d should repeat the last %d characters of window %d", i, overlap, i-1)
	}
}

func TestWindows_CountsCharactersNotBytes(t *testing.T) {
	text := "ÅÄÖåäöéèüñ"
	require.Equal(t, 10, utf8.RuneCountInString(text))

	windows, err := Windows(text, 4, 2)
	require.NoError(t, err)

	for _, w := range windows {
		assert.True(t, utf8.ValidString(w.Text))
	}
	assert.Equal(t, "ÅÄÖå", windows[0].Text)
	assert.Equal(t, "Öåäö", windows[1].Text)
	assert.Equal(t, 10, windows[len(windows)-1].End)
}

func TestChunker(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultSize, c.Size())
		assert.Equal(t, DefaultOverlap, c.Overlap())
	})

	t.Run("custom window", func(t *testing.T) {
		c, err := New(WithSize(4), WithOverlap(1))
		require.NoError(t, err)
		assert.Equal(t, []string{"abcd", "defg", "ghij"}, c.Split("abcdefghij"))
	})

	t.Run("invalid window fails at construction", func(t *testing.T) {
		_, err := New(WithSize(100), WithOverlap(100))
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}
