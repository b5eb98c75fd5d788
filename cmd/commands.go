package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/agenticgokit/fsk/internal/builtin"
	"github.com/agenticgokit/fsk/internal/config"
	"github.com/agenticgokit/fsk/internal/project"
	"github.com/agenticgokit/fsk/internal/report"
	"github.com/agenticgokit/fsk/internal/toolchain"
	"github.com/agenticgokit/fsk/internal/tui"
	"github.com/agenticgokit/fsk/internal/utils"
	"github.com/agenticgokit/fsk/pkg/registry"
	"github.com/agenticgokit/fsk/pkg/scaffold"
)

var (
	// packRegistry holds every command of the builtin and installed packs.
	packRegistry *scaffold.Registry
	// packWarnings collects problems found while loading installed packs.
	packWarnings []string
)

// loadPacks loads the builtin pack followed by the installed packs in packDir.
// Installed packs that fail to load are skipped with a warning.
func loadPacks(packDir string) ([]*registry.Pack, []string, error) {
	base, err := builtin.Load(Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load builtin pack: %w", err)
	}
	packs := []*registry.Pack{base}

	var warnings []string
	cache, err := registry.NewCacheManager(packDir)
	if err != nil {
		return packs, append(warnings, err.Error()), nil
	}
	installed, err := cache.Load(Version)
	if err != nil {
		return packs, append(warnings, fmt.Sprintf("installed packs ignored: %v", err)), nil
	}
	return append(packs, installed...), warnings, nil
}

// registerPackCommands adds a subcommand per pack command to rootCmd.
func registerPackCommands() error {
	packs, warnings, err := loadPacks(viper.GetString(config.KeyPackDir))
	if err != nil {
		return err
	}
	reg, err := registry.BuildRegistry(packs...)
	if err != nil {
		return err
	}
	packRegistry = reg
	packWarnings = warnings

	for _, c := range reg.Commands() {
		if existing, _, err := rootCmd.Find([]string{c.Spec.Name}); err == nil && existing != rootCmd {
			packWarnings = append(packWarnings, fmt.Sprintf("command %q from %s shadows a built-in fsk command and was skipped", c.Spec.Name, c.Source))
			continue
		}
		if clashes := globalFlagCollisions(rootCmd.PersistentFlags(), c.Spec); len(clashes) > 0 {
			packWarnings = append(packWarnings, fmt.Sprintf("command %q from %s was skipped: arguments %s collide with global flags", c.Spec.Name, c.Source, strings.Join(clashes, ", ")))
			continue
		}
		rootCmd.AddCommand(newPackCommand(c))
	}
	return nil
}

// globalFlagCollisions lists the arguments of spec that reuse a global flag name
// or shorthand.
func globalFlagCollisions(flags *pflag.FlagSet, spec scaffold.CommandSpec) []string {
	var clashes []string
	for _, arg := range spec.Arguments {
		if arg.Positional {
			continue
		}
		switch {
		case arg.Name == "help" || flags.Lookup(arg.Name) != nil:
			clashes = append(clashes, "--"+arg.Name)
		case arg.Short == "h" || (len(arg.Short) == 1 && flags.ShorthandLookup(arg.Short) != nil):
			clashes = append(clashes, "-"+arg.Short)
		}
	}
	return clashes
}

// extractGlobalFlags applies the global flags found in tokens to flags and
// returns the remaining tokens for the option resolver.
func extractGlobalFlags(flags *pflag.FlagSet, tokens []string) ([]string, error) {
	var rest []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "--" {
			return append(rest, tokens[i:]...), nil
		}

		var f *pflag.Flag
		var value string
		var hasValue bool
		switch {
		case strings.HasPrefix(tok, "--"):
			var name string
			name, value, hasValue = strings.Cut(tok[2:], "=")
			f = flags.Lookup(name)
		case len(tok) == 2 && tok[0] == '-' && tok[1] != '-':
			f = flags.ShorthandLookup(tok[1:])
		}
		if f == nil {
			rest = append(rest, tok)
			continue
		}

		if !hasValue {
			if f.Value.Type() == "bool" {
				value = "true"
			} else {
				if i+1 >= len(tokens) {
					return nil, &scaffold.MissingFlagValueError{Name: f.Name}
				}
				i++
				value = tokens[i]
			}
		}
		if err := flags.Set(f.Name, value); err != nil {
			return nil, utils.NewValidationError(f.Name, fmt.Sprintf("invalid value %q", value))
		}
	}
	return rest, nil
}

func wantsHelp(tokens []string) bool {
	for _, tok := range tokens {
		if tok == "--" {
			return false
		}
		if tok == "-h" || tok == "--help" {
			return true
		}
	}
	return false
}

// newPackCommand wraps a pack command. Flag parsing is left to the option
// resolver; only global flags are taken out of the arguments.
func newPackCommand(c *scaffold.Command) *cobra.Command {
	var tokens []string
	use := c.Spec.Name
	if primary, ok := c.Spec.Primary(); ok {
		use += " <" + primary.Name + ">"
	}

	return &cobra.Command{
		Use:                use,
		Short:              c.Spec.Description,
		Long:               packCommandHelp(c),
		DisableFlagParsing: true,
		Annotations:        map[string]string{"source": c.Source},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rest, err := extractGlobalFlags(rootCmd.PersistentFlags(), args)
			if err != nil {
				return err
			}
			tokens = rest
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if wantsHelp(tokens) {
				return cmd.Help()
			}
			return runPackCommand(cmd, c, tokens)
		},
	}
}

func packCommandHelp(c *scaffold.Command) string {
	var b strings.Builder
	b.WriteString(c.Spec.Description)
	b.WriteString("\n\nArguments:\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, arg := range c.Spec.Arguments {
		var name string
		switch {
		case arg.Positional:
			name = "<" + arg.Name + ">"
		case arg.Short != "":
			name = fmt.Sprintf("-%s, --%s", arg.Short, arg.Name)
		default:
			name = "    --" + arg.Name
		}

		var details []string
		if len(arg.Allowed) > 0 {
			details = append(details, strings.Join(arg.Allowed, "|"))
		}
		if arg.Convention != "" {
			details = append(details, string(arg.Convention))
		}
		if arg.Required {
			details = append(details, "required")
		}
		if arg.HasDefault && arg.Kind != scaffold.KindBoolean {
			details = append(details, "default "+arg.Default)
		}
		desc := arg.Description
		if len(details) > 0 {
			desc += " (" + strings.Join(details, ", ") + ")"
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", name, desc)
	}
	_ = w.Flush()

	if len(c.Spec.Agents) > 0 {
		fmt.Fprintf(&b, "\nAgents: %s\n", strings.Join(c.Spec.Agents, ", "))
	}
	fmt.Fprintf(&b, "\nSource: %s", c.Source)
	return b.String()
}

// runPackCommand runs one pack command against the project and prints its report.
func runPackCommand(cmd *cobra.Command, c *scaffold.Command, tokens []string) error {
	ctx := cmd.Context()
	log := GetLogger()

	root := settings.ProjectRoot
	if found, err := utils.FindProjectRoot(afero.NewOsFs(), root); err == nil {
		root = found
	} else {
		log.Debug().Err(err).Str("dir", root).Msg("no Flutter project found, using directory as is")
	}

	fsys, err := utils.ProjectFs(root)
	if err != nil {
		return utils.NewUserError("Cannot open the project directory", "Pass an existing directory with --dir", err)
	}
	proj, err := project.Open(fsys, root)
	if err != nil {
		return utils.NewUserError("Cannot read pubspec.yaml", "Fix the YAML syntax in pubspec.yaml", err)
	}

	if settings.Interactive && tui.IsInteractive(os.Stdin) && tui.IsInteractive(os.Stderr) {
		tokens, err = tui.PromptChoices(c.Spec, tokens, os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
	}

	svc := scaffold.NewService(packRegistry, fsys,
		scaffold.WithLogger(log),
		scaffold.WithProject(proj),
		scaffold.WithTracerProvider(otel.GetTracerProvider()),
	)
	rep, runErr := svc.Run(ctx, scaffold.Invocation{
		Command: c.Spec.Name,
		Args:    tokens,
		DryRun:  settings.DryRun,
	})

	if runErr == nil && rep.Written && settings.RunHooks && len(rep.Hooks) > 0 {
		results := toolchain.NewRunner(root, log).Run(ctx, rep.Hooks)
		rep.HookResults = results
		rep.Warnings = append(rep.Warnings, toolchain.Warnings(results)...)
	}

	if runErr == nil || settings.Format != "console" || settings.Verbose {
		if err := report.NewReporter(settings.Format).Generate(rep, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	if runErr != nil {
		printError(cmd.ErrOrStderr(), runErr)
		return &reportedError{err: runErr}
	}
	return nil
}
