package llm

// subStepsSchema is a trimmed copy of the planner's sub-steps schema.
func subStepsSchema() *Schema {
	return &Schema{
		Name:        "sub-steps",
		Description: "Smaller steps that complete one action step",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"subSteps": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":         map[string]any{"type": "string"},
							"estimatedTime": map[string]any{"type": "string"},
							"difficulty":    map[string]any{"type": "string", "enum": []any{"Easy", "Medium", "Hard"}},
						},
						"required": []any{"title", "estimatedTime"},
					},
				},
			},
			"required": []any{"subSteps"},
		},
	}
}

const subStepsJSON = `{"subSteps":[{"title":"Lay out running kit","estimatedTime":"5 mins","difficulty":"Easy"},{"title":"Jog 2km","estimatedTime":"20 mins"}]}`

func subStepsRequest() Request {
	return NewRequest(
		"You are a goal-planning coach.",
		"Break down: Run three times this week",
		subStepsSchema(),
		1024,
	)
}

// chatCompletion is an OpenAI-compatible completion body.
func chatCompletion(model, content, finish string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 60, "total_tokens": 180},
	}
}
