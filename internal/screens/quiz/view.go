package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/ui/layout"
	"github.com/eadteachers/teachkit/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	e, ok := s.currentEntry()
	if !ok {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("This assessment has no questions."))
	}

	inner := min(width-6, 90)
	st := s.session.Snapshot()

	var b strings.Builder
	kind := assessment.TypeMCQ
	if e.kind == kindShort {
		kind = assessment.TypeShort
	}
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Question %d of %d", s.current+1, len(s.items))))
	b.WriteString("  ")
	b.WriteString(theme.Hint.Render(kind.Label()))
	b.WriteString("\n")
	b.WriteString(theme.Divider.Render(strings.Repeat("─", inner)))
	b.WriteString("\n\n")

	if e.kind == kindMCQ {
		b.WriteString(s.choices[e.id].View(inner))
	} else {
		b.WriteString(s.renderShort(st, e.id, inner))
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	}

	return lipgloss.NewStyle().Padding(1, 3).Render(b.String())
}

func (s *QuizScreen) renderShort(st *assessment.State, id, width int) string {
	item, _ := st.Assessment.ShortAnswer(id)

	var b strings.Builder
	b.WriteString(theme.Title.Render(layout.Wrap(item.Question, width)))
	b.WriteString("\n\n")
	b.WriteString(s.inputs[id].View())
	b.WriteString("\n\n")

	slot, ok := st.Feedback[id]
	switch {
	case !ok:
	case slot.Pending:
		b.WriteString(theme.Pending.Render("Grading your answer..."))
	case slot.Err != "":
		b.WriteString(theme.Incorrect.Render(layout.Wrap(slot.Err, width)))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("press enter to try again"))
	case slot.Feedback != nil:
		b.WriteString(renderFeedback(slot.Feedback, width))
	}
	return b.String()
}

func renderFeedback(fb *assessment.GradingFeedback, width int) string {
	var b strings.Builder

	scoreStyle := theme.Correct
	switch {
	case fb.Score < 50:
		scoreStyle = theme.Incorrect
	case fb.Score < 80:
		scoreStyle = theme.Pending
	}
	b.WriteString(scoreStyle.Render(fmt.Sprintf("Score: %d/100", int(fb.Score+0.5))))
	b.WriteString("\n")
	if fb.Feedback != "" {
		b.WriteString(theme.Body.Render(layout.Wrap(fb.Feedback, width)))
		b.WriteString("\n")
	}

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString("\n" + theme.Label.Render(title) + "\n")
		for _, l := range lines {
			b.WriteString(theme.Body.Render(layout.Wrap("• "+l, width)) + "\n")
		}
	}

	covered := make([]string, len(fb.KeyPointsCovered))
	for i, p := range fb.KeyPointsCovered {
		covered[i] = p.Point
		if p.Quality != "" {
			covered[i] += " (" + p.Quality + ")"
		}
	}
	missing := make([]string, len(fb.KeyPointsMissing))
	for i, p := range fb.KeyPointsMissing {
		missing[i] = p.Point
		if p.Importance != "" {
			missing[i] += " (" + p.Importance + ")"
		}
	}

	section("Covered", covered)
	section("Missing", missing)
	section("Misconceptions", fb.Misconceptions)
	section("Suggestions", fb.Suggestions)
	return b.String()
}
