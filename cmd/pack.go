package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agenticgokit/fsk/pkg/registry"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Manage command packs",
	Long:  `Install, list and remove the command packs fsk loads next to its builtin Flutter pack.`,
}

var packListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := registry.NewCacheManager(settings.PackDir)
		if err != nil {
			return err
		}

		packs, err := cm.List()
		if err != nil {
			return err
		}

		if len(packs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No packs installed. Add one with 'fsk pack add'.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tVERSION\tSOURCE\tDESCRIPTION")
		for _, p := range packs {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Version, p.Source, p.Description)
		}
		return w.Flush()
	},
}

var packAddCmd = &cobra.Command{
	Use:   "add [source]",
	Short: "Install a pack from Git, a local directory or the pack index",
	Example: `  fsk pack add github.com/acme/fsk-firebase@v1.2.0
  fsk pack add ./my-pack
  fsk pack add fsk/flutter-firebase`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		fmt.Fprintf(cmd.OutOrStdout(), "Fetching pack from %s...\n", source)

		cm, err := registry.NewCacheManager(settings.PackDir)
		if err != nil {
			return err
		}

		pack, err := registry.NewResolver(cm, settings.RegistryURL).Resolve(cmd.Context(), source)
		if err != nil {
			return err
		}
		if _, err := registry.LoadPack(os.DirFS(pack.LocalPath), pack.Source, Version); err != nil {
			_ = cm.Remove(pack.Source, pack.Version)
			return fmt.Errorf("pack %s is invalid and was not installed: %w", pack.Name, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Successfully added pack: %s (%s)", pack.Name, pack.Version))
		return nil
	},
}

var packRemoveCmd = &cobra.Command{
	Use:   "remove [name|source]",
	Short: "Remove an installed pack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := registry.NewCacheManager(settings.PackDir)
		if err != nil {
			return err
		}

		source, err := findInstalled(cm, args[0])
		if err != nil {
			return err
		}
		if err := cm.Remove(source, ""); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Removed pack: %s", source))
		return nil
	},
}

// findInstalled maps a pack name or source to the cached source key.
func findInstalled(cm *registry.CacheManager, ref string) (string, error) {
	packs, err := cm.List()
	if err != nil {
		return "", err
	}
	for _, p := range packs {
		if p.Source == ref || p.Name == ref {
			return p.Source, nil
		}
	}
	return "", fmt.Errorf("no installed pack named %q", ref)
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.AddCommand(packListCmd)
	packCmd.AddCommand(packAddCmd)
	packCmd.AddCommand(packRemoveCmd)
}
