package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/eadteachers/teachkit/internal/ui/layout"
	"github.com/eadteachers/teachkit/internal/ui/theme"
)

var optionLabels = []string{"A", "B", "C", "D"}

// MultiChoice is a multiple-choice selector. Choosing again replaces the
// previous choice; once a choice exists the correct option is revealed.
type MultiChoice struct {
	Question     string
	Options      []string
	CorrectIndex int
	Explanation  string
	Cursor       int
	Chosen       int
}

// NewMultiChoice creates a selector with nothing chosen.
func NewMultiChoice(question string, options []string, correctIndex int, explanation string) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		CorrectIndex: correctIndex,
		Explanation:  explanation,
		Chosen:       -1,
	}
}

// Choose marks option i as the chosen answer.
func (m *MultiChoice) Choose(i int) {
	if i < 0 || i >= len(m.Options) {
		return
	}
	m.Cursor = i
	m.Chosen = i
}

// Answered reports whether an option has been chosen.
func (m MultiChoice) Answered() bool { return m.Chosen >= 0 }

// IsCorrect returns true if the chosen option is the correct one.
func (m MultiChoice) IsCorrect() bool {
	return m.Answered() && m.Chosen == m.CorrectIndex
}

// Update moves the cursor. It returns the option index chosen by this
// message, or -1.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, int) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, -1
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter", "space":
		m.Choose(m.Cursor)
		return m, m.Cursor
	case "1", "2", "3", "4":
		i := int(key[0] - '1')
		if i < len(m.Options) {
			m.Choose(i)
			return m, i
		}
	}
	return m, -1
}

// View renders the question, the options and, once answered, the
// explanation.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(layout.Wrap(m.Question, width)))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		label := fmt.Sprint(i + 1)
		if i < len(optionLabels) {
			label = optionLabels[i]
		}
		prefix := "  "
		if i == m.Cursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, label, opt)

		switch {
		case m.Answered() && i == m.CorrectIndex:
			line = theme.Correct.Render(line + "  ✓")
		case m.Answered() && i == m.Chosen:
			line = theme.Incorrect.Render(line + "  ✗")
		case i == m.Cursor:
			line = theme.Selected.Render(line)
		default:
			line = theme.Unselected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.Answered() && m.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(layout.Wrap(m.Explanation, width)))
		b.WriteString("\n")
	}
	return b.String()
}
