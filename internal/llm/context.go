package llm

import "context"

type purposeKey struct{}

// Purpose labels recorded with every request event.
const (
	PurposeMCQ      = "mcq-gen"
	PurposeShort    = "short-gen"
	PurposeGrading  = "grading"
	PurposeTeacher  = "assistant-teacher"
	PurposeStudent  = "assistant-student"
	PurposeUnlabeled = "unknown"
)

// Purposes lists the labels callers in this module use.
var Purposes = []string{PurposeMCQ, PurposeShort, PurposeGrading, PurposeTeacher, PurposeStudent}

// WithPurpose labels requests made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnlabeled.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnlabeled
}
