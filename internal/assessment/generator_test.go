package assessment

import (
	"context"
	"strings"
	"testing"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/llm"
	"github.com/eadteachers/teachkit/internal/prompts"
)

const sourceText = "Photosynthesis converts light energy into chemical energy."

func TestGenerate_BothTypes(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Here are your questions:\n" + mcqJSON(5) + "\nGood luck!"},
		llm.MockResponse{Text: "```json\n" + shortJSON(2) + "\n```"},
	)
	gen := NewGenerator(mock, DefaultConfig())

	a, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: sourceText,
		Types:      []QuestionType{TypeMCQ, TypeShort},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.MCQs) != prompts.MCQCount {
		t.Errorf("MCQs = %d, want %d", len(a.MCQs), prompts.MCQCount)
	}
	if len(a.ShortAnswers) != prompts.ShortAnswerCount {
		t.Errorf("ShortAnswers = %d, want %d", len(a.ShortAnswers), prompts.ShortAnswerCount)
	}
	if a.ID == "" {
		t.Error("expected an assessment id")
	}
	if a.MCQs[1].CorrectAnswer != 1 {
		t.Errorf("CorrectAnswer = %d, want 1", a.MCQs[1].CorrectAnswer)
	}
	if a.ShortAnswers[0].GradingCriteria.Excellent != "a" {
		t.Errorf("GradingCriteria = %+v", a.ShortAnswers[0].GradingCriteria)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}

	first := mock.Calls[0]
	if !strings.Contains(first.System, sourceText) {
		t.Error("MCQ system prompt should embed the source text")
	}
	if first.Messages[0].Content != prompts.MCQUserMessage {
		t.Errorf("user message = %q", first.Messages[0].Content)
	}
}

func TestGenerate_OnlyRequestedTypes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: shortJSON(2)})
	gen := NewGenerator(mock, DefaultConfig())

	a, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: sourceText,
		Types:      []QuestionType{TypeShort},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.MCQs) != 0 {
		t.Errorf("MCQs = %d, want 0", len(a.MCQs))
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestGenerate_EmptySourceMakesNoCall(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := NewGenerator(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: "   ",
		Types:      []QuestionType{TypeMCQ},
	})
	if !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if got := apperr.Message(err); got != "Please enter text or upload a PDF file" {
		t.Errorf("message = %q", got)
	}
	if mock.CallCount() != 0 {
		t.Errorf("calls = %d, want 0", mock.CallCount())
	}
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply llm.MockResponse
		want  apperr.Kind
	}{
		{"empty reply", llm.MockResponse{Text: "  \n"}, apperr.KindEmptyResponse},
		{"no array", llm.MockResponse{Text: "I cannot help with that."}, apperr.KindNoStructuredPayload},
		{"malformed", llm.MockResponse{Text: "[{\"id\": 1,}]"}, apperr.KindMalformedPayload},
		{"wrong count", llm.MockResponse{Text: mcqJSON(4)}, apperr.KindUnexpectedShape},
		{"schema violation", llm.MockResponse{Text: `[{"id": 1, "question": "Q", "options": "A,B,C,D", "correctAnswer": 0}]`}, apperr.KindUnexpectedShape},
		{"index out of range", llm.MockResponse{Text: strings.Replace(mcqJSON(5), `"correctAnswer": 0`, `"correctAnswer": 7`, 1)}, apperr.KindUnexpectedShape},
		{"provider down", llm.MockResponse{Err: &llm.ErrProviderUnavailable{StatusCode: 503}}, apperr.KindBackend},
		{"missing key", llm.MockResponse{Err: apperr.New(apperr.KindMissingCredential, "credential", nil)}, apperr.KindMissingCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(llm.NewMockProvider(tt.reply), DefaultConfig())
			_, err := gen.Generate(context.Background(), GenerationRequest{
				SourceText: sourceText,
				Types:      []QuestionType{TypeMCQ},
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("kind = %s, want %s (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestGenerate_FirstFailureAborts(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "nothing useful"},
		llm.MockResponse{Text: shortJSON(2)},
	)
	gen := NewGenerator(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: sourceText,
		Types:      []QuestionType{TypeMCQ, TypeShort},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestGenerate_SetsPurpose(t *testing.T) {
	var purposes []string
	mock := llm.NewMockProvider()
	mock.Responder = func(req llm.Request) llm.MockResponse {
		if strings.Contains(req.Messages[0].Content, "MCQ") {
			return llm.MockResponse{Text: mcqJSON(5)}
		}
		return llm.MockResponse{Text: shortJSON(2)}
	}
	rec := &purposeRecorder{Provider: mock, purposes: &purposes}

	gen := NewGenerator(rec, DefaultConfig())
	if _, err := gen.Generate(context.Background(), GenerationRequest{
		SourceText: sourceText,
		Types:      []QuestionType{TypeMCQ, TypeShort},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(purposes, ",") != "mcq-gen,short-gen" {
		t.Errorf("purposes = %v", purposes)
	}
}

type purposeRecorder struct {
	llm.Provider
	purposes *[]string
}

func (p *purposeRecorder) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	*p.purposes = append(*p.purposes, llm.PurposeFrom(ctx))
	return p.Provider.Generate(ctx, req)
}
