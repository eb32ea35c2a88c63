package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/resolvit/ai"
)

const disambiguationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "record_id": {
      "type": ["integer", "null"]
    }
  },
  "required": ["record_id"],
  "additionalProperties": false
}`

const disambiguationPromptTemplate = `You are resolving a free-text query against a fixed list of candidate records.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Pick the single candidate whose name the query most plausibly refers to, accounting for misspellings, word order, abbreviations, and partial names.
- "record_id" must be one of the candidate ids listed below, or null if none of the candidates is a plausible match.
- Never invent an id that is not in the list.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Candidates:
%s`

// buildSystemPrompt renders the oracle system prompt for a candidate set.
func buildSystemPrompt(candidates []ai.OracleCandidate) string {
	var b strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id %d: %s\n", c.RecordId, c.DisplayName)
	}
	return fmt.Sprintf(disambiguationPromptTemplate, disambiguationResponseSchema, b.String())
}
