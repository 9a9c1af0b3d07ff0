package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eadteachers/teachkit/internal/export"
	"github.com/eadteachers/teachkit/internal/planner"
	"github.com/eadteachers/teachkit/internal/sourcetext"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Draft term and lesson plans with the planning backend",
}

var planTermCmd = &cobra.Command{
	Use:     "term <what the term should cover>",
	Short:   "Draft a curriculum term plan",
	Example: `  teachkit plan term --curriculum ontario --subject science --grade 4 "Habitats and communities"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req planner.TermPlanRequest
		req.Curriculum, _ = cmd.Flags().GetString("curriculum")
		req.Subject, _ = cmd.Flags().GetString("subject")
		req.Grade, _ = cmd.Flags().GetString("grade")
		req.TopK, _ = cmd.Flags().GetInt("top-k")
		req.Query = strings.Join(args, " ")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		plan, err := d.planner().TermPlan(cmd.Context(), req)
		if err != nil {
			return err
		}
		if format == "json" {
			return writeJSON(cmd.OutOrStdout(), out, plan)
		}
		doc := export.FromTermPlan(req.Title(), plan)
		return writeTo(cmd.OutOrStdout(), out, func(w io.Writer) error { return export.Markdown(w, doc) })
	},
}

var planLessonCmd = &cobra.Command{
	Use:     "lesson <syllabus.pdf>",
	Short:   "Draft lesson plans from a syllabus",
	Example: `  teachkit plan lesson syllabus.pdf --classes 5 --duration "60 minutes" --style project_based`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := planner.DefaultLessonPlanRequest()
		req.ClassDuration, _ = cmd.Flags().GetString("duration")
		req.HomeworkPreference, _ = cmd.Flags().GetString("homework")
		req.TeachingStyle, _ = cmd.Flags().GetString("style")
		req.NumClasses, _ = cmd.Flags().GetInt("classes")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		syllabus, err := sourcetext.FromFile(args[0], sourcetext.LessonPlanPages)
		if err != nil {
			return err
		}
		req.SyllabusData = syllabus

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		lessons, err := d.planner().LessonPlan(cmd.Context(), req)
		if err != nil {
			return err
		}
		if format == "json" {
			return writeJSON(cmd.OutOrStdout(), out, lessons)
		}
		doc := export.FromLessonPlan(planner.LessonPlanTitle(filepath.Base(args[0])), lessons)
		return writeTo(cmd.OutOrStdout(), out, func(w io.Writer) error { return export.Markdown(w, doc) })
	},
}

func writeJSON(stdout io.Writer, out string, v any) error {
	return writeTo(stdout, out, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func init() {
	planTermCmd.Flags().String("curriculum", "ontario", "Curriculum id: ontario, british_columbia")
	planTermCmd.Flags().String("subject", "", "Subject id: english, maths, science")
	planTermCmd.Flags().String("grade", "", "Grade: 2-5")
	planTermCmd.Flags().Int("top-k", planner.DefaultTopK, "Curriculum passages to retrieve")

	d := planner.DefaultLessonPlanRequest()
	planLessonCmd.Flags().String("duration", d.ClassDuration, "Class duration")
	planLessonCmd.Flags().String("homework", d.HomeworkPreference, "Homework: none, minimal, moderate, extensive")
	planLessonCmd.Flags().String("style", d.TeachingStyle, "Teaching style: interactive, lecture, project_based, flipped_classroom")
	planLessonCmd.Flags().Int("classes", d.NumClasses, fmt.Sprintf("Number of classes (%d-%d)", planner.MinClasses, planner.MaxClasses))

	for _, c := range []*cobra.Command{planTermCmd, planLessonCmd} {
		c.Flags().String("format", "md", "Output format: md or json")
		c.Flags().StringP("out", "o", "", "Output file")
		planCmd.AddCommand(c)
	}
}
