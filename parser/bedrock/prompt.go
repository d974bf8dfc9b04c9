package bedrock

import (
	"encoding/json"
	"fmt"

	"pantryfinder/parser"
)

const systemPrompt = `You are a recipe extraction assistant for a household pantry app.

GOAL:
Given web search results, the household's pantry snapshot, preference signals, and any previously accepted recipes, extract NEW structured recipe candidates.

RULES:
- Only extract real recipes from the search results; never invent dishes that no result supports.
- If "previous_recipes" is non-null, skip anything that is the same dish or a trivial variation of one already listed. If it is null, no filtering is needed.
- Prefer recipes that use pantry items, especially ones expiring soon.
- Use preference signals: favor dishes similar to "viewed" and "cooked", avoid ones similar to "dismissed".
- For each recipe give a one-sentence reasoning keyed by its id.

FINAL OUTPUT FORMAT:
Return ONLY the JSON object - no explanations, no text before or after, no markdown formatting. Start immediately with { and end with }.

JSON Schema:
{
  "recipes": [
    {
      "id": string,             // lowercase-slug-of-title
      "title": string,
      "url": string,            // source url when known
      "description": string,
      "ingredients": [string],
      "instructions": [string], // optional, short steps
      "time": string,           // optional, e.g. "30 min"
      "difficulty": string      // optional: easy | medium | hard
    }
  ],
  "reasoning_per_recipe": {
    "<recipe id>": string
  }
}`

// buildUserPayload renders the parse input as the single user message. The
// boundary format is JSON end to end; no free-form prose crosses it.
func buildUserPayload(in parser.Input) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to marshal parse input: %w", err)
	}
	return string(data), nil
}
