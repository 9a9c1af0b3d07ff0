// Package app runs the terminal quiz.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/router"
	"github.com/eadteachers/teachkit/internal/screen"
	"github.com/eadteachers/teachkit/internal/screens/generating"
	"github.com/eadteachers/teachkit/internal/screens/onboarding"
	"github.com/eadteachers/teachkit/internal/screens/quiz"
	"github.com/eadteachers/teachkit/internal/screens/results"
	"github.com/eadteachers/teachkit/internal/ui/layout"
)

// Credentials is the part of the credential store the UI needs.
type Credentials interface {
	onboarding.KeySaver
	ShouldPrompt(ctx context.Context) (bool, error)
}

// Options configures one run of the quiz.
type Options struct {
	Generator generating.Generator
	Grader    *assessment.Grader

	// Request is generated when Assessment is nil.
	Request    assessment.GenerationRequest
	Assessment *assessment.Assessment

	// Credentials, when set, may ask for an API key first.
	Credentials Credentials

	// Export is offered on the results screen when set.
	Export results.Exporter
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel picks the first screen for opts.
func newAppModel(ctx context.Context, opts Options) (AppModel, error) {
	showResults := func(st *assessment.State) screen.Screen {
		return results.New(st, opts.Export)
	}
	takeQuiz := func(a *assessment.Assessment) screen.Screen {
		return quiz.New(ctx, assessment.NewSession(a), opts.Grader, showResults)
	}
	first := func() screen.Screen {
		if opts.Assessment != nil {
			return takeQuiz(opts.Assessment)
		}
		return generating.New(ctx, opts.Generator, opts.Request, takeQuiz)
	}

	if opts.Credentials != nil {
		prompt, err := opts.Credentials.ShouldPrompt(ctx)
		if err != nil {
			return AppModel{}, fmt.Errorf("check credentials: %w", err)
		}
		if prompt {
			return AppModel{router: router.New(onboarding.New(opts.Credentials, first))}, nil
		}
	}
	return AppModel{router: router.New(first())}, nil
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	var footerHints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if hp, ok := active.(screen.KeyHintProvider); ok {
			footerHints = hp.KeyHints()
		}
	}
	if footerHints == nil {
		footerHints = []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the quiz and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	model, err := newAppModel(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run quiz: %w", err)
	}
	return nil
}
