package llm

import (
	"regexp"
	"strings"
)

// ModelCost holds USD pricing per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// modelCosts covers the models the friendly names in the provider adapters
// resolve to. Prices from models.dev, 2026-02-15.
var modelCosts = map[string]ModelCost{
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-opus-4-5-20251101":   {5, 25},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1-mini": {0.4, 1.6},

	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-2.5-flash-lite": {0.1, 0.4},
}

// dateSuffix matches the snapshot date OpenAI appends to served model ids,
// as in "gpt-4o-mini-2024-07-18".
var dateSuffix = regexp.MustCompile(`-\d{4}-\d{2}-\d{2}$`)

// LookupCost returns the pricing for a recorded model id, or nil if it is
// unknown. It accepts friendly names, OpenRouter "vendor/model" ids and
// dated OpenAI snapshots.
func LookupCost(modelID string) *ModelCost {
	id := canonicalModel(modelID)
	if c, ok := modelCosts[id]; ok {
		return &c
	}
	if c, ok := modelCosts[dateSuffix.ReplaceAllString(id, "")]; ok {
		return &c
	}
	return nil
}

func canonicalModel(id string) string {
	if _, rest, ok := strings.Cut(id, "/"); ok {
		id = rest
	}
	for _, aliases := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		if resolved, ok := aliases[id]; ok {
			return resolved
		}
	}
	return id
}
