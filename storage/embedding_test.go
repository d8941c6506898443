package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmbedding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float32
	}{
		{name: "json array", in: "[0.1,0.2,0.3]", want: []float32{0.1, 0.2, 0.3}},
		{name: "spaces", in: " [ 1, -2 , 3.5 ] ", want: []float32{1, -2, 3.5}},
		{name: "exponent", in: "[1e-3,2E2]", want: []float32{0.001, 200}},
		{name: "leading dot is not json", in: "[.5, 1]", want: []float32{0.5, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEmbedding(tt.in)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-6)
		})
	}
}

func TestParseEmbedding_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "null", "[]"} {
		_, err := ParseEmbedding(in)
		assert.ErrorIs(t, err, ErrMissingEmbedding, "input %q", in)
	}
	for _, in := range []string{"0.1,0.2", "[a,b]", "[1,,2]", "{1,2}"} {
		_, err := ParseEmbedding(in)
		assert.ErrorIs(t, err, ErrMalformedEmbedding, "input %q", in)
	}
}

func TestEmbedding_BothForms(t *testing.T) {
	native := VectorEmbedding([]float32{0.5, -0.25})
	text := TextEmbedding(FormatEmbedding([]float32{0.5, -0.25}))

	a, err := native.Vector()
	require.NoError(t, err)
	b, err := text.Vector()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.True(t, Embedding{}.IsZero())
	_, err = Embedding{}.Vector()
	assert.ErrorIs(t, err, ErrMissingEmbedding)
}

func TestFormatEmbedding(t *testing.T) {
	assert.Equal(t, "[1,-0.5,0.25]", FormatEmbedding([]float32{1, -0.5, 0.25}))
	assert.Equal(t, "", FormatEmbedding(nil))
}
