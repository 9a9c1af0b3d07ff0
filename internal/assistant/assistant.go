// Package assistant answers free-form teacher and student questions. Replies
// are model-authored HTML and are sanitized before they leave the package.
package assistant

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/llm"
	"github.com/eadteachers/teachkit/internal/logger"
	"github.com/eadteachers/teachkit/internal/prompts"
)

// Role selects the audience an assistant answers for.
type Role string

const (
	Teacher Role = "teacher"
	Student Role = "student"
)

// ParseRole returns the Role named s.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case Teacher, Student:
		return Role(s), true
	}
	return "", false
}

// SubjectContext is the classroom a question is asked in.
type SubjectContext struct {
	Subject    string `json:"subject"`
	Grade      string `json:"grade"`
	Curriculum string `json:"curriculum"`
}

// Validate requires all three fields.
func (c SubjectContext) Validate() error {
	if strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.Grade) == "" || strings.TrimSpace(c.Curriculum) == "" {
		return apperr.Userf(apperr.KindInvalidInput, "ask",
			"Please select curriculum, subject, and grade before asking a question.")
	}
	return nil
}

// Config controls request parameters.
type Config struct {
	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns the standard assistant settings.
func DefaultConfig() Config {
	return Config{Temperature: 0.5, MaxTokens: 4096}
}

// Assistant answers questions in one role.
type Assistant struct {
	role     Role
	provider llm.Provider
	config   Config
	policy   *bluemonday.Policy
	log      *logger.Logger
}

// New creates an assistant for role.
func New(role Role, provider llm.Provider, cfg Config, log *logger.Logger) *Assistant {
	if log == nil {
		log = logger.Nop()
	}
	return &Assistant{
		role:     role,
		provider: provider,
		config:   cfg,
		policy:   replyPolicy(),
		log:      log.With("component", "assistant", "role", string(role)),
	}
}

// replyPolicy allows ordinary user-generated markup plus the callout
// classes the prompts ask for.
func replyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^(tip|note|resource)$`)).OnElements("div")
	return p
}

// Role returns the assistant's role.
func (a *Assistant) Role() Role { return a.role }

// Ask sends question framed by sc and returns the sanitized HTML reply.
func (a *Assistant) Ask(ctx context.Context, sc SubjectContext, question string) (string, error) {
	const op = "ask"
	if err := sc.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(question) == "" {
		return "", apperr.Userf(apperr.KindInvalidInput, op, "Please enter a question.")
	}

	system, user := a.prompts(sc, question)
	purpose := llm.PurposeTeacher
	if a.role == Student {
		purpose = llm.PurposeStudent
	}
	ctx = llm.WithPurpose(ctx, purpose)

	resp, err := a.provider.Generate(ctx, llm.SingleTurn(system, user, a.config.Temperature, a.config.MaxTokens))
	if err != nil {
		return "", apperr.Wrap(apperr.KindBackend, op, fmt.Errorf("LLM request failed: %w", err))
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", apperr.New(apperr.KindEmptyResponse, op, nil)
	}

	answer := a.policy.Sanitize(resp.Text)
	a.log.Debug("assistant answered", "subject", sc.Subject, "grade", sc.Grade, "chars", len(answer))
	return answer, nil
}

func (a *Assistant) prompts(sc SubjectContext, question string) (system, user string) {
	if a.role == Student {
		return prompts.StudentSystem, prompts.StudentUser(sc.Subject, sc.Grade, sc.Curriculum, question)
	}
	return prompts.TeacherSystem, prompts.TeacherUser(sc.Subject, sc.Grade, sc.Curriculum, question)
}

var (
	blockEnd   = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|blockquote|ul|ol|table)>`)
	cellEnd    = regexp.MustCompile(`(?i)</t[dh]>`)
	spaceRun   = regexp.MustCompile(`[ \t\f\r]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
	stripAll   = bluemonday.StrictPolicy()
)

// PlainText reduces an HTML reply to readable text. Block elements become
// line breaks and table cells are separated by spaces.
func PlainText(s string) string {
	s = blockEnd.ReplaceAllString(s, "\n")
	s = cellEnd.ReplaceAllString(s, " ")
	s = html.UnescapeString(stripAll.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
