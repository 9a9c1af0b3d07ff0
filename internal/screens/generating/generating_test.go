package generating

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/router"
	"github.com/eadteachers/teachkit/internal/screen"
)

type fakeGenerator struct {
	calls int
	errs  []error
}

func (f *fakeGenerator) Generate(_ context.Context, req assessment.GenerationRequest) (*assessment.Assessment, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &assessment.Assessment{ID: "a-1", Types: req.Types}, nil
}

type quizStub struct{ a *assessment.Assessment }

func (q *quizStub) Init() tea.Cmd                           { return nil }
func (q *quizStub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return q, nil }
func (q *quizStub) View(int, int) string                    { return "" }
func (q *quizStub) Title() string                           { return "Quiz" }

func newScreen(gen *fakeGenerator) *GeneratingScreen {
	req := assessment.GenerationRequest{SourceText: "Plants need light.", Types: assessment.AllTypes}
	return New(context.Background(), gen, req, func(a *assessment.Assessment) screen.Screen {
		return &quizStub{a: a}
	})
}

// runGenerate executes the generation command directly, skipping the
// spinner tick batched with it.
func runGenerate(s *GeneratingScreen) tea.Msg {
	return s.generate()()
}

func TestGenerating_SuccessReplaces(t *testing.T) {
	gen := &fakeGenerator{}
	s := newScreen(gen)

	_, cmd := s.Update(runGenerate(s))
	if cmd == nil {
		t.Fatal("expected replace command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if q := msg.Screen.(*quizStub); q.a.ID != "a-1" {
		t.Errorf("quiz got assessment %q", q.a.ID)
	}
}

func TestGenerating_ErrorThenRetry(t *testing.T) {
	gen := &fakeGenerator{errs: []error{
		apperr.Userf(apperr.KindMalformedPayload, "generate", "The model returned questions in an unexpected format."),
	}}
	s := newScreen(gen)

	if _, cmd := s.Update(runGenerate(s)); cmd != nil {
		t.Fatal("expected no command after a failure")
	}
	if !strings.Contains(s.View(100, 30), "unexpected format") {
		t.Error("expected error message in view")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("expected retry command")
	}
	if s.errMsg != "" || !s.running {
		t.Error("retry should clear the error and mark the screen running")
	}

	if _, cmd := s.Update(runGenerate(s)); cmd == nil {
		t.Error("expected replace command after a successful retry")
	}
	if gen.calls != 2 {
		t.Errorf("calls = %d, want 2", gen.calls)
	}
}

func TestGenerating_RetryIgnoredWhileRunning(t *testing.T) {
	s := newScreen(&fakeGenerator{})
	s.running = true
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"}); cmd != nil {
		t.Error("r should do nothing while generating")
	}
}
