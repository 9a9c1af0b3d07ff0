package assessment

// MCQScore is the percentage of multiple-choice items answered correctly.
// ok is false when MCQs were not requested or there are none.
func MCQScore(requested bool, items []MCQItem, selected map[int]int) (score float64, ok bool) {
	if !requested || len(items) == 0 {
		return 0, false
	}
	correct := 0
	for _, q := range items {
		if choice, answered := selected[q.ID]; answered && choice == q.CorrectAnswer {
			correct++
		}
	}
	return float64(correct) / float64(len(items)) * 100, true
}

// ShortScore is the mean grading score over graded short answers. Error
// entries and zero scores are left out of the mean. ok is false when short
// answers were not requested or there are none; when requested but nothing
// is graded yet the score is 0 with ok true.
func ShortScore(requested bool, items []ShortAnswerItem, feedback map[int]FeedbackSlot) (score float64, ok bool) {
	if !requested || len(items) == 0 {
		return 0, false
	}
	var total float64
	graded := 0
	for _, q := range items {
		slot, found := feedback[q.ID]
		if !found || !slot.Graded() || slot.Feedback.Score == 0 {
			continue
		}
		total += slot.Feedback.Score
		graded++
	}
	if graded == 0 {
		return 0, true
	}
	return total / float64(graded), true
}

// FinalScore combines the two sub-scores. With neither applicable it is 0;
// with one applicable it is that one; otherwise their unweighted mean.
func FinalScore(mcq float64, mcqOK bool, short float64, shortOK bool) float64 {
	switch {
	case !mcqOK && !shortOK:
		return 0
	case !mcqOK:
		return short
	case !shortOK:
		return mcq
	}
	return (mcq + short) / 2
}

// IsComplete reports whether every requested collection has an answer for
// each multiple-choice id and a settled feedback entry for each short-answer
// id. Error entries count as settled; pending ones do not.
func IsComplete(types []QuestionType, mcqs []MCQItem, shorts []ShortAnswerItem, selected map[int]int, feedback map[int]FeedbackSlot) bool {
	if HasType(types, TypeMCQ) {
		for _, q := range mcqs {
			if _, ok := selected[q.ID]; !ok {
				return false
			}
		}
	}
	if HasType(types, TypeShort) {
		for _, q := range shorts {
			slot, ok := feedback[q.ID]
			if !ok || slot.Pending {
				return false
			}
		}
	}
	return true
}

// Score is a snapshot of an attempt's scores. Nil sub-scores are not
// applicable.
type Score struct {
	MCQ      *float64 `json:"mcq"`
	Short    *float64 `json:"short"`
	Final    float64  `json:"final"`
	Complete bool     `json:"complete"`
}

// ScoreState computes the Score of st.
func ScoreState(st *State) Score {
	a := st.Assessment
	mcq, mcqOK := MCQScore(HasType(a.Types, TypeMCQ), a.MCQs, st.Selected)
	short, shortOK := ShortScore(HasType(a.Types, TypeShort), a.ShortAnswers, st.Feedback)

	s := Score{
		Final:    FinalScore(mcq, mcqOK, short, shortOK),
		Complete: IsComplete(a.Types, a.MCQs, a.ShortAnswers, st.Selected, st.Feedback),
	}
	if mcqOK {
		s.MCQ = &mcq
	}
	if shortOK {
		s.Short = &short
	}
	return s
}
