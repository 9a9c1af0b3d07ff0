package planner

import (
	"slices"
	"strconv"
)

// Option is a selectable value with its display name.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Curricula, subjects and grades offered for term plans.
var (
	Curricula = []Option{
		{ID: "ontario", Name: "Ontario Curriculum"},
		{ID: "british_columbia", Name: "British Columbia Curriculum"},
	}

	Subjects = []Option{
		{ID: "english", Name: "English"},
		{ID: "maths", Name: "Mathematics"},
		{ID: "science", Name: "Science"},
	}

	Grades = []int{2, 3, 4, 5}
)

// Lesson plan preferences.
var (
	ClassDurations = []string{"30 minutes", "45 minutes", "60 minutes", "90 minutes"}

	TeachingStyles = []Option{
		{ID: "interactive", Name: "Interactive"},
		{ID: "lecture", Name: "Lecture-based"},
		{ID: "project_based", Name: "Project-based"},
		{ID: "flipped_classroom", Name: "Flipped Classroom"},
	}

	HomeworkPreferences = []Option{
		{ID: "none", Name: "None"},
		{ID: "minimal", Name: "Minimal"},
		{ID: "moderate", Name: "Moderate"},
		{ID: "extensive", Name: "Extensive"},
	}
)

// Bounds on the number of classes in one lesson plan request.
const (
	MinClasses = 1
	MaxClasses = 50
)

func hasOption(opts []Option, id string) bool {
	return slices.ContainsFunc(opts, func(o Option) bool { return o.ID == id })
}

func validGrade(grade string) bool {
	n, err := strconv.Atoi(grade)
	return err == nil && slices.Contains(Grades, n)
}

// SubjectName returns the display name of a subject id, or the id itself.
func SubjectName(id string) string {
	for _, o := range Subjects {
		if o.ID == id {
			return o.Name
		}
	}
	return id
}
