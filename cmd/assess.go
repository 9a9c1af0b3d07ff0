package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/export"
	"github.com/eadteachers/teachkit/internal/sourcetext"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Generate an assessment from lesson material",
	Example: `  teachkit assess --file chapter3.pdf
  teachkit assess --text "Photosynthesis turns light into..." --types short
  teachkit assess --file notes.txt --format json --out quiz.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := generationRequest(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		if format == "png" && out == "" {
			return fmt.Errorf("--format png needs --out")
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		p, err := d.provider(cmd)
		if err != nil {
			return err
		}
		a, err := d.generator(p).Generate(cmd.Context(), req)
		if err != nil {
			return err
		}
		return writeAssessment(cmd.OutOrStdout(), a, format, out)
	},
}

// generationRequest reads the source and question types from flags.
func generationRequest(cmd *cobra.Command) (assessment.GenerationRequest, error) {
	file, _ := cmd.Flags().GetString("file")
	text, _ := cmd.Flags().GetString("text")
	names, _ := cmd.Flags().GetStringSlice("types")

	var req assessment.GenerationRequest
	switch {
	case file != "":
		src, err := sourcetext.FromFile(file, 0)
		if err != nil {
			return req, err
		}
		req.SourceText = src
	case text != "":
		req.SourceText = text
	default:
		return req, errNoInput
	}

	for _, name := range names {
		t, ok := assessment.ParseType(strings.TrimSpace(name))
		if !ok {
			return req, fmt.Errorf("unknown question type %q (want mcq or short)", name)
		}
		if !assessment.HasType(req.Types, t) {
			req.Types = append(req.Types, t)
		}
	}
	if len(req.Types) == 0 {
		req.Types = assessment.AllTypes
	}
	return req, nil
}

func writeAssessment(stdout io.Writer, a *assessment.Assessment, format, out string) error {
	doc := export.FromAssessment(a, export.Include{MCQ: true, Short: true})

	switch format {
	case "png":
		pages, err := export.PNGPages(doc, export.PageOptions{})
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(out, filepath.Ext(out))
		for i, page := range pages {
			name := fmt.Sprintf("%s-%d.png", base, i+1)
			if err := writeFile(name, func(w io.Writer) error { return export.WritePNG(w, page) }); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "wrote", name)
		}
		return nil
	case "json":
		return writeJSON(stdout, out, a)
	case "md", "":
		return writeTo(stdout, out, func(w io.Writer) error { return export.Markdown(w, doc) })
	}
	return fmt.Errorf("unknown format %q (want md, json or png)", format)
}

// writeTo writes to out when set and to stdout otherwise.
func writeTo(stdout io.Writer, out string, write func(io.Writer) error) error {
	if out == "" {
		return write(stdout)
	}
	if err := writeFile(out, write); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "wrote", out)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Lesson material: .pdf, .txt or .md")
	cmd.Flags().String("text", "", "Lesson material as literal text")
	cmd.Flags().StringSlice("types", []string{"mcq", "short"}, "Question types: mcq, short")
}

func init() {
	addSourceFlags(assessCmd)
	assessCmd.Flags().String("format", "md", "Output format: md, json or png")
	assessCmd.Flags().StringP("out", "o", "", "Output file (png pages get -1, -2, ... suffixes)")
}
