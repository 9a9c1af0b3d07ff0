package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eadteachers/teachkit/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "teachkit",
	Short: "AI assessment and planning toolkit for teachers",
	Long: "teachkit generates quizzes from lesson material, grades written answers, " +
		"answers teacher and student questions, and drafts term and lesson plans.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TEACHKIT_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: teachkit.yaml in . or the user config dir)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db.path from config, then TEACHKIT_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
