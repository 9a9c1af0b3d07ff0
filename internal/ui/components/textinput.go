package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textarea for free-text answers. Enter is left to
// the caller for submitting; ctrl+j inserts a newline.
type TextInput struct {
	Model textarea.Model
}

// NewTextInput creates a focused multi-line input.
func NewTextInput(placeholder string, width, height int) TextInput {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j")
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return TextInput{Model: ta}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current text.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the current text.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// SetWidth resizes the input.
func (t *TextInput) SetWidth(w int) {
	t.Model.SetWidth(w)
}

// Reset clears the text.
func (t *TextInput) Reset() {
	t.Model.Reset()
}
