// Package onboarding asks for the model API key before anything else runs.
package onboarding

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/router"
	"github.com/eadteachers/teachkit/internal/screen"
	"github.com/eadteachers/teachkit/internal/ui/layout"
	"github.com/eadteachers/teachkit/internal/ui/theme"
)

// KeySaver persists an API key.
type KeySaver interface {
	Set(ctx context.Context, key string) error
}

type savedMsg struct{ err error }

// OnboardingScreen collects the API key and then hands over to the screen
// produced by next.
type OnboardingScreen struct {
	saver  KeySaver
	next   func() screen.Screen
	input  textinput.Model
	saving bool
	errMsg string
}

var _ screen.Screen = (*OnboardingScreen)(nil)
var _ screen.KeyHintProvider = (*OnboardingScreen)(nil)

// New creates an OnboardingScreen.
func New(saver KeySaver, next func() screen.Screen) *OnboardingScreen {
	ti := textinput.New()
	ti.Placeholder = "sk-..."
	ti.EchoMode = textinput.EchoPassword
	ti.SetWidth(48)
	ti.Focus()
	return &OnboardingScreen{saver: saver, next: next, input: ti}
}

func (s *OnboardingScreen) Title() string { return "API Key" }

func (s *OnboardingScreen) Init() tea.Cmd {
	return s.input.Focus()
}

func (s *OnboardingScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Save"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *OnboardingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			s.errMsg = apperr.Message(msg.err)
			return s, nil
		}
		next := s.next()
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		if s.saving {
			return s, nil
		}
		if msg.String() == "enter" {
			key := strings.TrimSpace(s.input.Value())
			if key == "" {
				s.errMsg = "Please enter an API key."
				return s, nil
			}
			s.errMsg = ""
			s.saving = true
			return s, s.save(key)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *OnboardingScreen) save(key string) tea.Cmd {
	saver := s.saver
	return func() tea.Msg {
		return savedMsg{err: saver.Set(context.Background(), key)}
	}
}

func (s *OnboardingScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Connect a model provider"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(layout.Wrap(
		"Questions are written and graded by a language model. Paste the API key for your configured provider. It is stored in the local database.",
		min(width-8, 64))))
	b.WriteString("\n\n")
	b.WriteString(theme.Card.Render(s.input.View()))
	b.WriteString("\n")

	switch {
	case s.saving:
		b.WriteString(theme.Pending.Render("Saving..."))
	case s.errMsg != "":
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
