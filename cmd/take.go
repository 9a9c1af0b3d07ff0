package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eadteachers/teachkit/internal/app"
	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/export"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take an assessment in the terminal",
	Example: `  teachkit take --file chapter3.pdf
  teachkit take --assessment quiz.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.Options{}

		if path, _ := cmd.Flags().GetString("assessment"); path != "" {
			a, err := readAssessment(path)
			if err != nil {
				return err
			}
			opts.Assessment = a
		} else {
			req, err := generationRequest(cmd)
			if err != nil {
				return err
			}
			opts.Request = req
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		// Without any key the quiz opens on the API key screen.
		if !d.hasKey(cmd) {
			if err := d.credentials.RequestOnboarding(cmd.Context()); err != nil {
				return err
			}
		}
		opts.Credentials = d.credentials

		p, err := d.provider(cmd)
		if err != nil {
			return err
		}
		opts.Generator = d.generator(p)
		opts.Grader = d.grader(p)
		opts.Export = exportAttempt

		return app.Run(cmd.Context(), opts)
	},
}

func readAssessment(path string) (*assessment.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assessment: %w", err)
	}
	var a assessment.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", path, err)
	}
	if len(a.Types) == 0 {
		return nil, fmt.Errorf("assessment %s has no question types", path)
	}
	return &a, nil
}

// exportAttempt writes the questions of an attempt as Markdown in the
// working directory.
func exportAttempt(st *assessment.State) (string, error) {
	name := "assessment.md"
	if st.ID != "" {
		name = "assessment-" + st.ID + ".md"
	}
	doc := export.FromAssessment(st.Assessment, export.Include{MCQ: true, Short: true})
	if err := writeFile(name, func(w io.Writer) error { return export.Markdown(w, doc) }); err != nil {
		return "", err
	}
	return name, nil
}

func init() {
	addSourceFlags(takeCmd)
	takeCmd.Flags().String("assessment", "", "Take a saved assessment (from `assess --format json`) instead of generating one")
}
