package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var commandsCmd = &cobra.Command{
	Use:     "commands",
	Aliases: []string{"ls"},
	Short:   "List the commands of the loaded packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if packRegistry == nil || packRegistry.Len() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pack commands loaded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "COMMAND\tVARIANTS\tSOURCE\tDESCRIPTION")
		for _, c := range packRegistry.Commands() {
			variants := make([]string, 0, len(c.Sets))
			for key := range c.Sets {
				variants = append(variants, key)
			}
			sort.Strings(variants)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Spec.Name, strings.Join(variants, ","), c.Source, c.Spec.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
