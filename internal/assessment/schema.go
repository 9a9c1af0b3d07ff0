package assessment

import "github.com/eadteachers/teachkit/internal/extract"

// MCQSchema is the shape a multiple-choice generation reply must have once
// extracted. Counts and ranges are left to the validators.
var MCQSchema = &extract.Schema{
	Name: "mcq-items",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":       map[string]any{"type": "integer"},
				"question": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"correctAnswer": map[string]any{"type": "integer"},
				"explanation":   map[string]any{"type": "string"},
			},
			"required": []any{"id", "question", "options", "correctAnswer"},
		},
	},
}

// ShortAnswerSchema is the shape of a short-answer generation reply.
var ShortAnswerSchema = &extract.Schema{
	Name: "short-answer-items",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":             map[string]any{"type": "integer"},
				"question":       map[string]any{"type": "string"},
				"expectedAnswer": map[string]any{"type": "string"},
				"keyPoints": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"point":       map[string]any{"type": "string"},
							"explanation": map[string]any{"type": "string"},
						},
					},
				},
				"commonMisconceptions": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"gradingCriteria": map[string]any{"type": "object"},
			},
			"required": []any{"id", "question", "expectedAnswer"},
		},
	},
}
