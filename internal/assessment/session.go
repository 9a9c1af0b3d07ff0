package assessment

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eadteachers/teachkit/internal/apperr"
)

// State is everything a learner has done on one assessment.
type State struct {
	ID         string               `json:"id"`
	Assessment *Assessment          `json:"assessment"`
	Selected   map[int]int          `json:"selected"`
	Written    map[int]string       `json:"written"`
	Feedback   map[int]FeedbackSlot `json:"feedback"`
}

// NewState returns an empty attempt at a.
func NewState(a *Assessment) *State {
	return &State{
		ID:         a.ID,
		Assessment: a,
		Selected:   map[int]int{},
		Written:    map[int]string{},
		Feedback:   map[int]FeedbackSlot{},
	}
}

// Clone returns a copy of st whose maps can be modified independently.
func (st *State) Clone() *State {
	return &State{
		ID:         st.ID,
		Assessment: st.Assessment,
		Selected:   maps.Clone(st.Selected),
		Written:    maps.Clone(st.Written),
		Feedback:   maps.Clone(st.Feedback),
	}
}

// CheckSelection reports whether option is a valid choice for item id.
func (st *State) CheckSelection(id, option int) error {
	q, ok := st.Assessment.MCQ(id)
	if !ok {
		return apperr.Userf(apperr.KindInvalidInput, "select", "Unknown question %d", id)
	}
	if option < 0 || option >= len(q.Options) {
		return apperr.Userf(apperr.KindInvalidInput, "select", "Option %d is out of range", option)
	}
	return nil
}

// ShortItem returns short-answer item id or an InvalidInput error.
func (st *State) ShortItem(id int) (ShortAnswerItem, error) {
	q, ok := st.Assessment.ShortAnswer(id)
	if !ok {
		return ShortAnswerItem{}, apperr.Userf(apperr.KindInvalidInput, "short answer", "Unknown question %d", id)
	}
	return q, nil
}

// GradingInput returns short-answer item id with its stored answer. Items
// already being graded and blank answers are rejected.
func (st *State) GradingInput(id int) (ShortAnswerItem, string, error) {
	item, err := st.ShortItem(id)
	if err != nil {
		return ShortAnswerItem{}, "", err
	}
	if st.Feedback[id].Pending {
		return ShortAnswerItem{}, "", ErrAlreadyGrading
	}
	answer := st.Written[id]
	if strings.TrimSpace(answer) == "" {
		return ShortAnswerItem{}, "", apperr.Userf(apperr.KindInvalidInput, "submit", "Please write an answer before submitting")
	}
	return item, answer, nil
}

// ErrAlreadyGrading is returned when an answer is submitted while the same
// item is still being graded.
var ErrAlreadyGrading = apperr.Userf(apperr.KindInvalidInput, "submit", "This answer is already being graded.")

// Session is a concurrency-safe attempt at one assessment. Each grading
// writes only its own item's feedback slot.
type Session struct {
	mu    sync.Mutex
	state *State
}

// NewSession starts an attempt at a.
func NewSession(a *Assessment) *Session {
	return &Session{state: NewState(a)}
}

// ID returns the assessment id.
func (s *Session) ID() string { return s.state.ID }

// SelectAnswer records the chosen option for a multiple-choice item.
// A later selection replaces an earlier one.
func (s *Session) SelectAnswer(id, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.CheckSelection(id, option); err != nil {
		return err
	}
	s.state.Selected[id] = option
	return nil
}

// SetShortAnswer stores the learner's draft for a short-answer item.
func (s *Session) SetShortAnswer(id int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.state.ShortItem(id); err != nil {
		return err
	}
	s.state.Written[id] = text
	return nil
}

// BeginGrading marks item id pending and returns the item and the stored
// answer to grade.
func (s *Session) BeginGrading(id int) (ShortAnswerItem, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, answer, err := s.state.GradingInput(id)
	if err != nil {
		return ShortAnswerItem{}, "", err
	}
	s.state.Feedback[id] = FeedbackSlot{Pending: true}
	return item, answer, nil
}

// FinishGrading stores the settled slot of item id.
func (s *Session) FinishGrading(id int, slot FeedbackSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Feedback[id] = slot
}

// SubmitShortAnswer grades the stored answer for item id and stores the
// outcome in its slot. Grading failures become an error entry and are not
// returned; only rejected submissions are.
func (s *Session) SubmitShortAnswer(ctx context.Context, g *Grader, id int) (FeedbackSlot, error) {
	item, answer, err := s.BeginGrading(id)
	if err != nil {
		return FeedbackSlot{}, err
	}
	slot := GradeSlot(ctx, g, item, answer)
	s.FinishGrading(id, slot)
	return slot, nil
}

// GradeSlot grades one answer and reports the result as a settled slot.
func GradeSlot(ctx context.Context, g *Grader, item ShortAnswerItem, answer string) FeedbackSlot {
	fb, err := g.Grade(ctx, item, answer)
	if err != nil {
		return FeedbackSlot{Err: SlotError(err)}
	}
	return FeedbackSlot{Feedback: fb}
}

// GradeAll submits every short answer that has text and no settled slot.
// Gradings run concurrently without a bound.
func (s *Session) GradeAll(ctx context.Context, g *Grader) error {
	s.mu.Lock()
	var ids []int
	for _, q := range s.state.Assessment.ShortAnswers {
		slot, graded := s.state.Feedback[q.ID]
		if strings.TrimSpace(s.state.Written[q.ID]) != "" && (!graded || slot.Err != "") {
			ids = append(ids, q.ID)
		}
	}
	s.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		eg.Go(func() error {
			_, err := s.SubmitShortAnswer(ctx, g, id)
			if errors.Is(err, ErrAlreadyGrading) {
				return nil
			}
			return err
		})
	}
	return eg.Wait()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Score computes the current scores.
func (s *Session) Score() Score {
	return ScoreState(s.Snapshot())
}
