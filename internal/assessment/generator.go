package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/extract"
	"github.com/eadteachers/teachkit/internal/llm"
	"github.com/eadteachers/teachkit/internal/prompts"
)

// Config controls the behavior of the Generator and Grader.
type Config struct {
	// Validators run in order on every generated batch; the first failure
	// stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for each reply.
	MaxTokens int

	// Temperature controls output randomness.
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&CardinalityValidator{MCQ: prompts.MCQCount, Short: prompts.ShortAnswerCount},
		},
		MaxTokens:   4096,
		Temperature: 0.5,
	}
}

// Generator produces assessments from source text.
type Generator struct {
	provider llm.Provider
	config   Config
	now      func() time.Time
}

// NewGenerator creates a Generator backed by provider.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg, now: time.Now}
}

// Generate builds one assessment. Requested types are generated in order,
// one provider call each; the first failure aborts the whole request.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (*Assessment, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return nil, apperr.Userf(apperr.KindInvalidInput, "generate", "Please enter text or upload a PDF file")
	}
	if len(req.Types) == 0 {
		return nil, apperr.Userf(apperr.KindInvalidInput, "generate", "Select at least one question type")
	}

	a := &Assessment{
		ID:           uuid.NewString(),
		Title:        "Generated Questions",
		Types:        req.Types,
		MCQs:         []MCQItem{},
		ShortAnswers: []ShortAnswerItem{},
		CreatedAt:    g.now(),
	}

	if HasType(req.Types, TypeMCQ) {
		items, err := g.generateMCQs(ctx, req.SourceText)
		if err != nil {
			return nil, err
		}
		a.MCQs = items
	}

	if HasType(req.Types, TypeShort) {
		items, err := g.generateShortAnswers(ctx, req.SourceText)
		if err != nil {
			return nil, err
		}
		a.ShortAnswers = items
	}

	return a, nil
}

func (g *Generator) generateMCQs(ctx context.Context, source string) ([]MCQItem, error) {
	const op = "generate mcq"
	ctx = llm.WithPurpose(ctx, llm.PurposeMCQ)

	raw, err := g.call(ctx, prompts.MCQ(source), prompts.MCQUserMessage)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, op, err)
	}

	items, err := decodeChecked[[]MCQItem](raw, MCQSchema)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpectedShape, op, err)
	}

	for _, v := range g.config.Validators {
		if verr := v.ValidateMCQs(items); verr != nil {
			return nil, apperr.New(apperr.KindUnexpectedShape, op, verr)
		}
	}
	return items, nil
}

func (g *Generator) generateShortAnswers(ctx context.Context, source string) ([]ShortAnswerItem, error) {
	const op = "generate short"
	ctx = llm.WithPurpose(ctx, llm.PurposeShort)

	raw, err := g.call(ctx, prompts.ShortAnswer(source), prompts.ShortAnswerUserMessage)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, op, err)
	}

	items, err := decodeChecked[[]ShortAnswerItem](raw, ShortAnswerSchema)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpectedShape, op, err)
	}

	for _, v := range g.config.Validators {
		if verr := v.ValidateShortAnswers(items); verr != nil {
			return nil, apperr.New(apperr.KindUnexpectedShape, op, verr)
		}
	}
	return items, nil
}

func (g *Generator) call(ctx context.Context, system, user string) (string, error) {
	resp, err := g.provider.Generate(ctx, llm.SingleTurn(system, user, g.config.Temperature, g.config.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}
	return resp.Text, nil
}

// decodeChecked extracts the reply's array, validates it against schema and
// decodes it into T.
func decodeChecked[T any](raw string, schema *extract.Schema) (T, error) {
	var zero T
	parsed, err := extract.Structured(raw, extract.Array)
	if err != nil {
		return zero, err
	}
	if err := extract.ValidateSchema(schema, parsed); err != nil {
		return zero, err
	}
	return extract.Decode[T](raw, extract.Array)
}
