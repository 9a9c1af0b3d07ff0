package assessment

import (
	"fmt"
	"strings"
)

func mcqJSON(n int) string {
	items := make([]string, n)
	for i := range n {
		items[i] = fmt.Sprintf(`{"id": %d, "question": "Question %d?", "options": ["A", "B", "C", "D"], "correctAnswer": %d, "explanation": "Because."}`,
			i+1, i+1, i%4)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func shortJSON(n int) string {
	items := make([]string, n)
	for i := range n {
		items[i] = fmt.Sprintf(`{
			"id": %d,
			"question": "Explain idea %d.",
			"expectedAnswer": "A model answer.",
			"keyPoints": [{"point": "P", "explanation": "E"}],
			"commonMisconceptions": ["M"],
			"gradingCriteria": {"excellent": "a", "good": "b", "fair": "c", "poor": "d", "zero": "e"}
		}`, i+1, i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func testMCQs(n int) []MCQItem {
	out := make([]MCQItem, n)
	for i := range n {
		out[i] = MCQItem{ID: i + 1, Question: "Q?", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: 0}
	}
	return out
}

func testShorts(n int) []ShortAnswerItem {
	out := make([]ShortAnswerItem, n)
	for i := range n {
		out[i] = ShortAnswerItem{ID: i + 1, Question: "Explain.", ExpectedAnswer: "Model."}
	}
	return out
}

func testAssessment() *Assessment {
	return &Assessment{
		ID:           "a-1",
		Types:        []QuestionType{TypeMCQ, TypeShort},
		MCQs:         testMCQs(4),
		ShortAnswers: testShorts(2),
	}
}
