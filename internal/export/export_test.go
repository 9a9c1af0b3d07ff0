package export

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/planner"
)

func sampleAssessment() *assessment.Assessment {
	return &assessment.Assessment{
		Types: []assessment.QuestionType{assessment.TypeMCQ, assessment.TypeShort},
		MCQs: []assessment.MCQItem{
			{ID: 1, Question: "What do plants need?", Options: []string{"Light", "Sand", "Salt", "Oil"}},
		},
		ShortAnswers: []assessment.ShortAnswerItem{
			{ID: 1, Question: "Explain photosynthesis.", ExpectedAnswer: "secret"},
		},
	}
}

func TestMarkdown_Assessment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, FromAssessment(sampleAssessment(), Include{MCQ: true, Short: true})))

	want := `# Assessment

## Multiple Choice Questions

1. What do plants need?

- A) Light
- B) Sand
- C) Salt
- D) Oil

## Short Answer Questions

1. Explain photosynthesis.
`
	assert.Equal(t, want, buf.String())
	assert.NotContains(t, buf.String(), "secret")
}

func TestFromAssessment_Toggles(t *testing.T) {
	doc := FromAssessment(sampleAssessment(), Include{Short: true})

	var headings []string
	for _, b := range doc.Blocks {
		if b.Kind == Heading {
			headings = append(headings, b.Text)
		}
	}
	assert.Equal(t, []string{"Short Answer Questions"}, headings)
}

func TestFromTermPlan(t *testing.T) {
	plan := &planner.TermPlan{
		Response: "<h2>Week 1</h2><p>Place value &amp; rounding</p>",
		Sources:  []string{"ontario-math-g4.pdf", "unit-plan.docx"},
	}
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, FromTermPlan("Mathematics - Grade 4", plan)))

	out := buf.String()
	assert.Contains(t, out, "# Mathematics - Grade 4\n")
	assert.Contains(t, out, "Week 1\n")
	assert.Contains(t, out, "Place value & rounding\n")
	assert.Contains(t, out, "## Sources:\n\n1. ontario-math-g4.pdf\n2. unit-plan.docx\n")
}

func TestFromLessonPlan(t *testing.T) {
	lessons := []planner.Lesson{
		{
			Duration:   "45 minutes",
			Objectives: []string{"Compare fractions"},
			Activities: []string{"Warm-up", "Fraction strips"},
			Homework:   "Worksheet 3",
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, FromLessonPlan(planner.LessonPlanTitle("fractions.pdf"), lessons)))

	out := buf.String()
	assert.Contains(t, out, "# Lesson Plan for fractions\n")
	assert.Contains(t, out, "## Lesson 1 (45 minutes)\n")
	assert.Contains(t, out, "**Learning Objectives:**\n\n- Compare fractions\n")
	assert.Contains(t, out, "1. Warm-up\n2. Fraction strips\n")
	assert.Contains(t, out, "**Homework:**\n\nWorksheet 3\n")
}

func TestPNGPages_SinglePage(t *testing.T) {
	pages, err := PNGPages(FromAssessment(sampleAssessment(), Include{MCQ: true, Short: true}), PageOptions{PixelsPerMM: 2})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	b := pages[0].Bounds()
	assert.Equal(t, 420, b.Dx())
	assert.Equal(t, 594, b.Dy())

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, pages[0]))
	_, err = png.Decode(&buf)
	require.NoError(t, err)
}

func TestPNGPages_BreaksLongDocuments(t *testing.T) {
	a := &assessment.Assessment{}
	for i := range 20 {
		a.MCQs = append(a.MCQs, assessment.MCQItem{
			ID:       i + 1,
			Question: fmt.Sprintf("Question number %d about %s", i+1, strings.Repeat("cells ", 10)),
			Options:  []string{"one", "two", "three", "four"},
		})
	}

	pages, err := PNGPages(FromAssessment(a, Include{MCQ: true}), PageOptions{PixelsPerMM: 1})
	require.NoError(t, err)
	assert.Greater(t, len(pages), 1)
}
