package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eadteachers/teachkit/internal/assistant"
)

var askCmd = &cobra.Command{
	Use:       "ask teacher|student <question>",
	Short:     "Ask the teacher or student assistant a question",
	Example:   `  teachkit ask student --subject Mathematics --grade 4 --curriculum Ontario "How do I add fractions?"`,
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{string(assistant.Teacher), string(assistant.Student)},
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := assistant.ParseRole(args[0])
		if !ok {
			return fmt.Errorf("unknown assistant %q (want teacher or student)", args[0])
		}
		var sc assistant.SubjectContext
		sc.Subject, _ = cmd.Flags().GetString("subject")
		sc.Grade, _ = cmd.Flags().GetString("grade")
		sc.Curriculum, _ = cmd.Flags().GetString("curriculum")
		raw, _ := cmd.Flags().GetBool("html")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		p, err := d.provider(cmd)
		if err != nil {
			return err
		}
		answer, err := d.assistant(role, p).Ask(cmd.Context(), sc, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if !raw {
			answer = assistant.PlainText(answer)
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	askCmd.Flags().String("subject", "", "Subject, e.g. Mathematics")
	askCmd.Flags().String("grade", "", "Grade level")
	askCmd.Flags().String("curriculum", "", "Curriculum, e.g. Ontario")
	askCmd.Flags().Bool("html", false, "Print the sanitized HTML answer instead of plain text")
}
