package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/extract"
	"github.com/eadteachers/teachkit/internal/llm"
	"github.com/eadteachers/teachkit/internal/prompts"
)

// Grader evaluates short answers against their rubric.
type Grader struct {
	provider llm.Provider
	config   Config
}

// NewGrader creates a Grader backed by provider.
func NewGrader(provider llm.Provider, cfg Config) *Grader {
	return &Grader{provider: provider, config: cfg}
}

// Grade asks the model to evaluate answer against item's expected answer.
// A blank answer is rejected without calling the model.
func (g *Grader) Grade(ctx context.Context, item ShortAnswerItem, answer string) (*GradingFeedback, error) {
	const op = "grade"
	if strings.TrimSpace(answer) == "" {
		return nil, apperr.Userf(apperr.KindInvalidInput, op, "Please write an answer before submitting")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeGrading)
	req := llm.SingleTurn(
		prompts.Grading(item.Question, item.ExpectedAnswer, answer),
		prompts.GradingUserMessage,
		g.config.Temperature,
		g.config.MaxTokens,
	)

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, op, fmt.Errorf("LLM grading failed: %w", err))
	}

	parsed, err := extract.Structured(resp.Text, extract.Object)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedPayload, op, err)
	}

	fb := NormalizeFeedback(parsed.(map[string]any))
	return &fb, nil
}

// SlotError converts a grading failure into the text stored in an error
// entry.
func SlotError(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindEmptyResponse, apperr.KindNoStructuredPayload,
		apperr.KindMalformedPayload, apperr.KindUnexpectedShape,
		apperr.KindMissingCredential, apperr.KindInvalidInput:
		return apperr.Message(err)
	}
	return "Error validating answer: " + apperr.Message(err)
}
