package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eadteachers/teachkit/internal/ui/theme"
)

// ScoreBar displays a score between 0 and 100 as a horizontal bar.
type ScoreBar struct {
	Label string
	Score *float64
	Width int
}

// NewScoreBar creates a bar. A nil score renders as not applicable.
func NewScoreBar(label string, score *float64, width int) ScoreBar {
	return ScoreBar{Label: label, Score: score, Width: width}
}

// View renders the bar.
func (p ScoreBar) View() string {
	label := theme.Label.Render(fmt.Sprintf("%-14s", p.Label)) + "  "
	if p.Score == nil {
		return label + theme.Hint.Render("n/a")
	}

	const percentWidth = 6 // "  100%"
	barWidth := max(p.Width-lipgloss.Width(label)-percentWidth, 4)
	filled := min(max(int(float64(barWidth)**p.Score/100), 0), barWidth)

	fill := theme.Success
	switch {
	case *p.Score < 50:
		fill = theme.Error
	case *p.Score < 80:
		fill = theme.Accent
	}

	return label +
		lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)) +
		theme.Hint.Render(fmt.Sprintf("  %d%%", int(*p.Score+0.5)))
}
