// Package quiz is the screen a learner answers an assessment on.
package quiz

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/router"
	"github.com/eadteachers/teachkit/internal/screen"
	"github.com/eadteachers/teachkit/internal/ui/components"
	"github.com/eadteachers/teachkit/internal/ui/layout"
)

// gradedMsg carries the settled slot of one short answer.
type gradedMsg struct {
	itemID int
	slot   assessment.FeedbackSlot
}

type itemKind int

const (
	kindMCQ itemKind = iota
	kindShort
)

// entry is one question in display order.
type entry struct {
	kind itemKind
	id   int
}

// QuizScreen presents every item of one assessment, multiple choice first.
type QuizScreen struct {
	ctx         context.Context
	session     *assessment.Session
	grader      *assessment.Grader
	showResults func(*assessment.State) screen.Screen

	items   []entry
	current int
	choices map[int]components.MultiChoice
	inputs  map[int]components.TextInput
	errMsg  string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New creates a QuizScreen for sess. showResults builds the screen pushed
// once every question is answered.
func New(ctx context.Context, sess *assessment.Session, grader *assessment.Grader, showResults func(*assessment.State) screen.Screen) *QuizScreen {
	s := &QuizScreen{
		ctx:         ctx,
		session:     sess,
		grader:      grader,
		showResults: showResults,
		choices:     map[int]components.MultiChoice{},
		inputs:      map[int]components.TextInput{},
	}

	a := sess.Snapshot().Assessment
	for _, q := range a.MCQs {
		s.items = append(s.items, entry{kind: kindMCQ, id: q.ID})
		s.choices[q.ID] = components.NewMultiChoice(q.Question, q.Options, q.CorrectAnswer, q.Explanation)
	}
	for _, q := range a.ShortAnswers {
		s.items = append(s.items, entry{kind: kindShort, id: q.ID})
		s.inputs[q.ID] = components.NewTextInput("Type your answer...", 60, 5)
	}
	return s
}

func (s *QuizScreen) Title() string {
	if title := s.session.Snapshot().Assessment.Title; title != "" {
		return title
	}
	return "Assessment"
}

func (s *QuizScreen) Init() tea.Cmd { return nil }

// Status shows answered progress and the running final score.
func (s *QuizScreen) Status() string {
	st := s.session.Snapshot()
	answered := len(st.Selected)
	for _, slot := range st.Feedback {
		if slot.Graded() {
			answered++
		}
	}
	score := assessment.ScoreState(st)
	return fmt.Sprintf("%d/%d answered  Score %d%%", answered, len(s.items), int(score.Final+0.5))
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next"}}
	if e, ok := s.currentEntry(); ok && e.kind == kindMCQ {
		hints = append(hints, layout.KeyHint{Key: "↑↓/1-4", Description: "Choose"})
	} else {
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Submit"},
			layout.KeyHint{Key: "Ctrl+J", Description: "New line"},
		)
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+R", Description: "Results"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

func (s *QuizScreen) currentEntry() (entry, bool) {
	if s.current < 0 || s.current >= len(s.items) {
		return entry{}, false
	}
	return s.items[s.current], true
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		s.session.FinishGrading(msg.itemID, msg.slot)
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and similar messages go to the active text area.
	if e, ok := s.currentEntry(); ok && e.kind == kindShort {
		var cmd tea.Cmd
		s.inputs[e.id], cmd = s.inputs[e.id].Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab":
		s.move(1)
		return s, nil
	case "shift+tab":
		s.move(-1)
		return s, nil
	case "ctrl+r":
		return s, s.results()
	}

	e, ok := s.currentEntry()
	if !ok {
		return s, nil
	}
	if e.kind == kindMCQ {
		return s, s.handleChoice(e.id, msg)
	}
	if msg.String() == "enter" {
		return s, s.submit(e.id)
	}
	var cmd tea.Cmd
	s.inputs[e.id], cmd = s.inputs[e.id].Update(msg)
	return s, cmd
}

func (s *QuizScreen) move(delta int) {
	if len(s.items) == 0 {
		return
	}
	s.errMsg = ""
	s.current = (s.current + delta + len(s.items)) % len(s.items)
}

func (s *QuizScreen) handleChoice(id int, msg tea.KeyPressMsg) tea.Cmd {
	mc, chosen := s.choices[id].Update(msg)
	s.choices[id] = mc
	if chosen < 0 {
		return nil
	}
	if err := s.session.SelectAnswer(id, chosen); err != nil {
		s.errMsg = apperr.Message(err)
		return nil
	}
	s.errMsg = ""
	return nil
}

// submit stores the draft of short item id and grades it in the
// background. The slot stays pending until gradedMsg arrives.
func (s *QuizScreen) submit(id int) tea.Cmd {
	if err := s.session.SetShortAnswer(id, s.inputs[id].Value()); err != nil {
		s.errMsg = apperr.Message(err)
		return nil
	}
	item, answer, err := s.session.BeginGrading(id)
	if err != nil {
		s.errMsg = apperr.Message(err)
		return nil
	}
	s.errMsg = ""

	ctx, grader := s.ctx, s.grader
	return func() tea.Msg {
		return gradedMsg{itemID: id, slot: assessment.GradeSlot(ctx, grader, item, answer)}
	}
}

func (s *QuizScreen) results() tea.Cmd {
	st := s.session.Snapshot()
	if !assessment.ScoreState(st).Complete {
		s.errMsg = "Answer every question to see your results."
		return nil
	}
	s.errMsg = ""
	next := s.showResults(st)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}
