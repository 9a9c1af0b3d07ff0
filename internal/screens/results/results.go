// Package results summarizes a finished attempt.
package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/router"
	"github.com/eadteachers/teachkit/internal/screen"
	"github.com/eadteachers/teachkit/internal/ui/components"
	"github.com/eadteachers/teachkit/internal/ui/layout"
	"github.com/eadteachers/teachkit/internal/ui/theme"
)

// Exporter writes the attempt somewhere and returns where.
type Exporter func(*assessment.State) (string, error)

type exportedMsg struct {
	path string
	err  error
}

// ResultsScreen shows the scores of an attempt and a short menu.
type ResultsScreen struct {
	state  *assessment.State
	score  assessment.Score
	export Exporter
	menu   components.Menu
	notice string
	failed bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen. A nil export disables the export entry.
func New(st *assessment.State, export Exporter) *ResultsScreen {
	s := &ResultsScreen{state: st, score: assessment.ScoreState(st), export: export}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Back to questions", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}},
		{Label: "Export as Markdown", Action: s.exportCmd, Disabled: export == nil},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return s
}

func (s *ResultsScreen) Title() string { return "Results" }

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultsScreen) exportCmd() tea.Cmd {
	export, st := s.export, s.state
	return func() tea.Msg {
		path, err := export(st)
		return exportedMsg{path: path, err: err}
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		if msg.err != nil {
			s.notice, s.failed = apperr.Message(msg.err), true
		} else {
			s.notice, s.failed = "Saved to "+msg.path, false
		}
		return s, nil
	case tea.KeyPressMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	inner := min(width-6, 80)

	var b strings.Builder
	headline := "Assessment complete!"
	if !s.score.Complete {
		headline = "Results so far"
	}
	b.WriteString(theme.Title.Render(headline))
	b.WriteString("\n\n")

	a := s.state.Assessment
	if assessment.HasType(a.Types, assessment.TypeMCQ) {
		b.WriteString(components.NewScoreBar("Multiple choice", s.score.MCQ, inner).View() + "\n")
	}
	if assessment.HasType(a.Types, assessment.TypeShort) {
		b.WriteString(components.NewScoreBar("Short answer", s.score.Short, inner).View() + "\n")
	}
	final := s.score.Final
	b.WriteString(components.NewScoreBar("Final", &final, inner).View() + "\n")

	b.WriteString("\n")
	b.WriteString(theme.Divider.Render(strings.Repeat("─", inner)))
	b.WriteString("\n")
	b.WriteString(s.breakdown(inner))
	b.WriteString("\n")
	b.WriteString(s.menu.View())

	if s.notice != "" {
		b.WriteString("\n")
		style := theme.Correct
		if s.failed {
			style = theme.Incorrect
		}
		b.WriteString(style.Render(s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 3).Render(b.String())
}

func (s *ResultsScreen) breakdown(width int) string {
	var b strings.Builder
	a := s.state.Assessment

	for i, q := range a.MCQs {
		line := fmt.Sprintf("MC %d  %s", i+1, truncate(q.Question, width-16))
		chosen, ok := s.state.Selected[q.ID]
		switch {
		case !ok:
			b.WriteString(theme.Hint.Render(line + "  -"))
		case chosen == q.CorrectAnswer:
			b.WriteString(theme.Correct.Render(line + "  ✓"))
		default:
			b.WriteString(theme.Incorrect.Render(line + "  ✗"))
		}
		b.WriteString("\n")
	}

	for i, q := range a.ShortAnswers {
		line := fmt.Sprintf("SA %d  %s", i+1, truncate(q.Question, width-20))
		slot := s.state.Feedback[q.ID]
		switch {
		case slot.Graded():
			b.WriteString(theme.Body.Render(fmt.Sprintf("%s  %d/100", line, int(slot.Feedback.Score+0.5))))
		case slot.Err != "":
			b.WriteString(theme.Incorrect.Render(line + "  not graded"))
		default:
			b.WriteString(theme.Hint.Render(line + "  -"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
