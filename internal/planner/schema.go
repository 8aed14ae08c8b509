package planner

import "github.com/abhisek/goalpath/internal/llm"

func stepItemSchema(deadlineDesc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "A short, punchy title for the action step",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "A 1-sentence explanation of how to do it",
			},
			"estimatedTime": map[string]any{
				"type":        "string",
				"description": "Estimated time to complete (e.g., '15 mins', '1 hour')",
			},
			"difficulty": map[string]any{
				"type":        "string",
				"enum":        []any{"Easy", "Medium", "Hard"},
				"description": "The difficulty level of the task",
			},
			"frequency": map[string]any{
				"type":        "string",
				"enum":        []any{"Once", "Daily", "Weekly", "Monthly"},
				"description": "How often this task should be performed",
			},
			"deadline": map[string]any{
				"type":        "string",
				"description": deadlineDesc,
			},
		},
		"required":             []any{"title", "description", "estimatedTime", "difficulty", "frequency", "deadline"},
		"additionalProperties": false,
	}
}

// QuestionsSchema defines the JSON schema for clarifying questions.
var QuestionsSchema = &llm.Schema{
	Name:        "clarifying-questions",
	Description: "A list of clarifying questions about the user's goal",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "Short, specific clarifying questions",
				"items":       map[string]any{"type": "string"},
				"minItems":    3,
				"maxItems":    5,
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// PlanSchema defines the JSON schema for an action plan or a batch of
// additional steps.
var PlanSchema = &llm.Schema{
	Name:        "action-plan",
	Description: "A list of actionable steps to achieve the goal",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"steps": map[string]any{
				"type":  "array",
				"items": stepItemSchema("Recommended deadline for this specific step in YYYY-MM-DD format"),
			},
		},
		"required":             []any{"steps"},
		"additionalProperties": false,
	},
}

// SubStepsSchema defines the JSON schema for a micro-step breakdown.
var SubStepsSchema = &llm.Schema{
	Name:        "sub-steps",
	Description: "A list of micro-steps for a single task",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subSteps": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "A very short, atomic action title",
						},
					},
					"required":             []any{"title"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"subSteps"},
		"additionalProperties": false,
	},
}

// ReviewSchema defines the JSON schema for a weekly review. Change fields
// the coach does not want to touch are returned as empty strings.
var ReviewSchema = &llm.Schema{
	Name:        "weekly-review",
	Description: "Weekly review analysis and plan updates",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"analysis": map[string]any{
				"type":        "string",
				"description": "The coach's feedback to the user",
			},
			"modifications": map[string]any{
				"type":        "array",
				"description": "Existing steps to update (e.g. reschedule)",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stepId": map[string]any{
							"type":        "string",
							"description": "The ID of the step to modify",
						},
						"changes": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"deadline": map[string]any{
									"type":        "string",
									"description": "New deadline in YYYY-MM-DD format, or empty to keep",
								},
								"title": map[string]any{
									"type":        "string",
									"description": "New title, or empty to keep",
								},
								"description": map[string]any{
									"type":        "string",
									"description": "New description, or empty to keep",
								},
								"difficulty": map[string]any{
									"type": "string",
									"enum": []any{"Easy", "Medium", "Hard", ""},
								},
							},
							"required":             []any{"deadline", "title", "description", "difficulty"},
							"additionalProperties": false,
						},
					},
					"required":             []any{"stepId", "changes"},
					"additionalProperties": false,
				},
			},
			"newSteps": map[string]any{
				"type":        "array",
				"description": "Completely new steps to add",
				"items":       stepItemSchema("Deadline in YYYY-MM-DD format"),
			},
		},
		"required":             []any{"analysis", "modifications", "newSteps"},
		"additionalProperties": false,
	},
}
