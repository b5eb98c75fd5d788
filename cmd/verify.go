package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Render every command variant with sample values",
	Long: `Verify renders every variant of every loaded command with sample arguments
and reports each placeholder that does not resolve, without touching the project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := scaffold.VerifyRegistry(packRegistry)
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %d command(s) verified", packRegistry.Len()))
			return nil
		}
		printError(cmd.ErrOrStderr(), err)
		return &reportedError{err: err}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
