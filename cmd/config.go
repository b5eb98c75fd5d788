package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agenticgokit/fsk/internal/config"
)

var (
	configInitPath  string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the fsk configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Long: `Write the effective settings (defaults, environment and flags) to a TOML
config file, $HOME/.fsk.toml unless --path is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configInitPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}

		if err := config.NewGenerator().GenerateConfig(settings, path, configInitForce); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Wrote %s", path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "where to write the config file")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "replace an existing config file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}
