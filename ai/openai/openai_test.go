package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "valid input unchanged", in: `{"phrases": ["Mars", "ISS"]}`, want: `{"phrases": ["Mars", "ISS"]}`},
		{name: "missing opening quote", in: `{phrases": ["Mars"]}`, want: `{"phrases": ["Mars"]}`},
		{name: "trailing comma in array", in: `{"phrases": ["Mars", "ISS",]}`, want: `{"phrases": ["Mars", "ISS"]}`},
		{name: "trailing comma in object", in: `{"phrases": [], }`, want: `{"phrases": [] }`},
		{name: "string contents untouched", in: `{"phrases": ["a, ]", "b\"c"]}`, want: `{"phrases": ["a, ]", "b\"c"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repairJSON(tt.in)
			assert.Equal(t, tt.want, got)

			var out phraseList
			require.NoError(t, json.Unmarshal([]byte(got), &out))
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"phrases": []}`, stripCodeFence("```json\n{\"phrases\": []}\n```"))
	assert.Equal(t, `{"phrases": []}`, stripCodeFence(`  {"phrases": []}  `))
}

func TestFilterPhrases(t *testing.T) {
	got := filterPhrases([]string{
		"Mars",
		"  bone   loss ",
		"x",
		"International Space Station crew members aboard",
		"gene expression profile",
	})
	assert.Equal(t, []string{"Mars", "bone loss", "gene expression profile"}, got)
}

func TestBuildPhrasePrompt(t *testing.T) {
	prompt := buildPhrasePrompt()
	assert.Contains(t, prompt, "celestial body")
	assert.Contains(t, prompt, "at most 4 words")
}
