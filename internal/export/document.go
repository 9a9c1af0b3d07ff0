// Package export renders assessments and plans as Markdown or as paged PNG
// images.
package export

import (
	"fmt"
	"strings"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/assistant"
	"github.com/eadteachers/teachkit/internal/planner"
)

// Kind is the role of a block in a document.
type Kind int

const (
	Title Kind = iota
	Heading
	Label
	Text
	Item
	Gap
)

// Block is one renderable unit.
type Block struct {
	Kind Kind
	Text string
}

// Document is an ordered list of blocks.
type Document struct {
	Blocks []Block
}

func (d *Document) add(kind Kind, format string, args ...any) {
	d.Blocks = append(d.Blocks, Block{Kind: kind, Text: fmt.Sprintf(format, args...)})
}

func (d *Document) gap() {
	d.Blocks = append(d.Blocks, Block{Kind: Gap})
}

// Include selects the assessment sections to export.
type Include struct {
	MCQ   bool
	Short bool
}

// FromAssessment lays out the questions of a without answers.
func FromAssessment(a *assessment.Assessment, inc Include) Document {
	var d Document
	d.add(Title, "Assessment")

	if inc.MCQ && len(a.MCQs) > 0 {
		d.add(Heading, "Multiple Choice Questions")
		for i, q := range a.MCQs {
			d.add(Text, "%d. %s", i+1, q.Question)
			for j, opt := range q.Options {
				d.add(Item, "%c) %s", 'A'+j, opt)
			}
			d.gap()
		}
	}

	if inc.Short && len(a.ShortAnswers) > 0 {
		d.add(Heading, "Short Answer Questions")
		for i, q := range a.ShortAnswers {
			d.add(Text, "%d. %s", i+1, q.Question)
			d.gap()
		}
	}
	return d
}

// FromTermPlan lays out a term plan with its numbered sources.
func FromTermPlan(title string, plan *planner.TermPlan) Document {
	var d Document
	d.add(Title, "%s", title)

	for _, para := range strings.Split(assistant.PlainText(plan.Response), "\n") {
		if para = strings.TrimSpace(para); para != "" {
			d.add(Text, "%s", para)
		}
	}

	if len(plan.Sources) > 0 {
		d.gap()
		d.add(Heading, "Sources:")
		for i, src := range plan.Sources {
			d.add(Item, "%d. %s", i+1, src)
		}
	}
	return d
}

// FromLessonPlan lays out a series of lessons.
func FromLessonPlan(title string, lessons []planner.Lesson) Document {
	var d Document
	d.add(Title, "%s", title)

	for i, l := range lessons {
		heading := l.Heading(i)
		if l.Duration != "" {
			heading += " (" + l.Duration + ")"
		}
		d.add(Heading, "%s", heading)

		if len(l.Objectives) > 0 {
			d.add(Label, "Learning Objectives:")
			for _, o := range l.Objectives {
				d.add(Item, "- %s", o)
			}
		}
		if len(l.Activities) > 0 {
			d.add(Label, "Activities:")
			for j, a := range l.Activities {
				d.add(Item, "%d. %s", j+1, a)
			}
		}
		if l.Homework != "" {
			d.add(Label, "Homework:")
			d.add(Text, "%s", l.Homework)
		}
		d.gap()
	}
	return d
}
