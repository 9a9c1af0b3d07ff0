// Package assessment generates assessments from source text, grades
// short answers, and scores a learner's attempt.
package assessment

import (
	"slices"
	"time"
)

// QuestionType selects which item collections an assessment contains.
type QuestionType string

const (
	TypeMCQ   QuestionType = "mcq"
	TypeShort QuestionType = "short"
)

// AllTypes lists the question types in display order.
var AllTypes = []QuestionType{TypeMCQ, TypeShort}

// Label returns the display label of t.
func (t QuestionType) Label() string {
	switch t {
	case TypeMCQ:
		return "Multiple Choice Questions"
	case TypeShort:
		return "Short Answer Questions"
	}
	return string(t)
}

// ParseType returns the QuestionType named s.
func ParseType(s string) (QuestionType, bool) {
	t := QuestionType(s)
	return t, slices.Contains(AllTypes, t)
}

// ToggleType adds t to types or removes it. Removing the last remaining
// type is a no-op, so a selection is never empty.
func ToggleType(types []QuestionType, t QuestionType) []QuestionType {
	if i := slices.Index(types, t); i >= 0 {
		if len(types) == 1 {
			return types
		}
		return slices.Delete(slices.Clone(types), i, i+1)
	}
	return append(slices.Clone(types), t)
}

// HasType reports whether types contains t.
func HasType(types []QuestionType, t QuestionType) bool {
	return slices.Contains(types, t)
}

// GenerationRequest is one submission of the generation form.
type GenerationRequest struct {
	SourceText string
	Types      []QuestionType
}

// MCQItem is a multiple-choice question with exactly four options.
type MCQItem struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// KeyPoint is a rubric point an answer should cover.
type KeyPoint struct {
	Point       string `json:"point"`
	Explanation string `json:"explanation"`
}

// GradingCriteria describes each score band of the rubric.
type GradingCriteria struct {
	Excellent string `json:"excellent"`
	Good      string `json:"good"`
	Fair      string `json:"fair"`
	Poor      string `json:"poor"`
	Zero      string `json:"zero"`
}

// ShortAnswerItem is an open-response question with its rubric.
type ShortAnswerItem struct {
	ID                   int             `json:"id"`
	Question             string          `json:"question"`
	ExpectedAnswer       string          `json:"expectedAnswer"`
	KeyPoints            []KeyPoint      `json:"keyPoints"`
	CommonMisconceptions []string        `json:"commonMisconceptions"`
	GradingCriteria      GradingCriteria `json:"gradingCriteria"`
}

// KeyPointCovered is a rubric point the answer addressed.
type KeyPointCovered struct {
	Point   string `json:"point"`
	Quality string `json:"quality"`
}

// KeyPointMissing is a rubric point the answer left out.
type KeyPointMissing struct {
	Point      string `json:"point"`
	Importance string `json:"importance"`
}

// GradingFeedback is the normalized grading result for one short answer.
// Every list is non-nil.
type GradingFeedback struct {
	Score            float64           `json:"score"`
	Feedback         string            `json:"feedback"`
	KeyPointsCovered []KeyPointCovered `json:"keyPointsCovered"`
	KeyPointsMissing []KeyPointMissing `json:"keyPointsMissing"`
	Misconceptions   []string          `json:"misconceptions"`
	Suggestions      []string          `json:"suggestions"`
}

// FeedbackSlot is the grading state of one short-answer item. A slot is
// either pending, an error entry, or holds feedback.
type FeedbackSlot struct {
	Pending  bool             `json:"pending,omitempty"`
	Err      string           `json:"error,omitempty"`
	Feedback *GradingFeedback `json:"feedback,omitempty"`
}

// Graded reports whether the slot holds a usable result.
func (s FeedbackSlot) Graded() bool {
	return !s.Pending && s.Err == "" && s.Feedback != nil
}

// Assessment is a generated set of items.
type Assessment struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Types        []QuestionType    `json:"types"`
	MCQs         []MCQItem         `json:"mcqs"`
	ShortAnswers []ShortAnswerItem `json:"shortAnswers"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// MCQ returns the multiple-choice item with the given id.
func (a *Assessment) MCQ(id int) (MCQItem, bool) {
	for _, q := range a.MCQs {
		if q.ID == id {
			return q, true
		}
	}
	return MCQItem{}, false
}

// ShortAnswer returns the short-answer item with the given id.
func (a *Assessment) ShortAnswer(id int) (ShortAnswerItem, bool) {
	for _, q := range a.ShortAnswers {
		if q.ID == id {
			return q, true
		}
	}
	return ShortAnswerItem{}, false
}
