package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage the stored model API key",
}

var credentialSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key (read from stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read key: %w", err)
			}
			key = line
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("empty API key")
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.credentials.Set(cmd.Context(), key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
		return nil
	},
}

var credentialClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.credentials.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
		return nil
	},
}

var credentialStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		stored, err := d.credentials.HasKey(cmd.Context())
		if err != nil {
			return err
		}
		_, envErr := d.keys[0].APIKey(cmd.Context())

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Provider:     %s\n", d.cfg.LLM.Provider)
		fmt.Fprintf(w, "Environment:  %s\n", yesNo(envErr == nil))
		fmt.Fprintf(w, "Stored key:   %s\n", yesNo(stored))
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "configured"
	}
	return "not set"
}

func init() {
	credentialCmd.AddCommand(credentialSetCmd)
	credentialCmd.AddCommand(credentialClearCmd)
	credentialCmd.AddCommand(credentialStatusCmd)
}
