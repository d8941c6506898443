package openai

import (
	"fmt"
	"strings"

	"github.com/Ajay-Krishna00/CosmoGraph/ai"
)

const phraseResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "phrases": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["phrases"],
  "additionalProperties": false
}`

const phrasePromptTemplate = `List the tag-worthy phrases in the given scientific text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Include named entities of these kinds: %s.
- Include noun phrases of at most %d words that name a subject of the text.
- Copy each phrase as it appears in the text. Do not paraphrase, translate or expand abbreviations.
- List a phrase once for every time it is mentioned, so repeated subjects appear repeatedly.
- Skip pronouns, numbers on their own, and generic words such as "study", "result" or "paper".
- If no phrases can be identified, return "phrases": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Mice flown on the ISS lost bone mass. Bone loss in mice was reversed after return."
Output:
{
  "phrases": ["Mice", "ISS", "bone mass", "Bone loss", "mice"]
}`

const summaryPromptTemplate = `You summarize excerpts from scientific publications for a reader who asked a question.

Answer the question using only the excerpts. Write at most %d sentences of plain prose. If the excerpts do not
address the question, say that the retrieved documents do not cover it.`

// buildPhrasePrompt creates the system prompt for phrase extraction.
func buildPhrasePrompt() string {
	return fmt.Sprintf(phrasePromptTemplate,
		phraseResponseSchema,
		strings.ReplaceAll(strings.Join(ai.EntityCategories, ", "), "_", " "),
		ai.MaxPhraseWords)
}

// buildSummaryPrompt creates the system prompt for summarization.
func buildSummaryPrompt(maxSentences int) string {
	return fmt.Sprintf(summaryPromptTemplate, maxSentences)
}

// buildSummaryInput lays out the question and excerpts for the human turn.
func buildSummaryInput(combinedText, query string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nExcerpts:\n")
	b.WriteString(combinedText)
	return b.String()
}
