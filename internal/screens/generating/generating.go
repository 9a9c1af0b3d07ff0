// Package generating shows progress while an assessment is generated.
package generating

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/router"
	"github.com/eadteachers/teachkit/internal/screen"
	"github.com/eadteachers/teachkit/internal/ui/layout"
	"github.com/eadteachers/teachkit/internal/ui/theme"
)

// Generator produces an assessment from a request.
type Generator interface {
	Generate(ctx context.Context, req assessment.GenerationRequest) (*assessment.Assessment, error)
}

type generatedMsg struct {
	assessment *assessment.Assessment
	err        error
}

// GeneratingScreen runs one generation and replaces itself with the screen
// next builds from the result.
type GeneratingScreen struct {
	ctx     context.Context
	gen     Generator
	req     assessment.GenerationRequest
	next    func(*assessment.Assessment) screen.Screen
	spinner spinner.Model
	running bool
	errMsg  string
}

var _ screen.Screen = (*GeneratingScreen)(nil)
var _ screen.KeyHintProvider = (*GeneratingScreen)(nil)

// New creates a GeneratingScreen.
func New(ctx context.Context, gen Generator, req assessment.GenerationRequest, next func(*assessment.Assessment) screen.Screen) *GeneratingScreen {
	return &GeneratingScreen{
		ctx:     ctx,
		gen:     gen,
		req:     req,
		next:    next,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Pending)),
	}
}

func (s *GeneratingScreen) Title() string { return "Generating" }

func (s *GeneratingScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.generate())
}

func (s *GeneratingScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (s *GeneratingScreen) generate() tea.Cmd {
	s.running = true
	s.errMsg = ""
	ctx, gen, req := s.ctx, s.gen, s.req
	return func() tea.Msg {
		a, err := gen.Generate(ctx, req)
		return generatedMsg{assessment: a, err: err}
	}
}

func (s *GeneratingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		s.running = false
		if msg.err != nil {
			s.errMsg = apperr.Message(msg.err)
			return s, nil
		}
		next := s.next(msg.assessment)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		if msg.String() == "r" && !s.running && s.errMsg != "" {
			return s, tea.Batch(s.spinner.Tick, s.generate())
		}
	}
	return s, nil
}

func (s *GeneratingScreen) View(width, height int) string {
	var b strings.Builder
	if s.errMsg != "" {
		b.WriteString(theme.Incorrect.Render("Could not generate questions"))
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render(layout.Wrap(s.errMsg, min(width-8, 64))))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("press r to try again"))
	} else {
		labels := make([]string, len(s.req.Types))
		for i, t := range s.req.Types {
			labels[i] = t.Label()
		}
		b.WriteString(s.spinner.View() + " " + theme.Title.Render("Writing questions..."))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(strings.Join(labels, " and ")))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
