// Package cmd implements the command-line interface for fsk.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agenticgokit/fsk/internal/config"
	"github.com/agenticgokit/fsk/internal/report"
	"github.com/agenticgokit/fsk/internal/utils"
	"github.com/agenticgokit/fsk/pkg/scaffold"
)

var (
	cfgFile        string
	settings       config.Settings
	tracerShutdown func(context.Context) error
	logger         *zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fsk",
	Short: "Flutter scaffolding kit",
	Long: `fsk generates Flutter code from command packs.

Every pack command renders a set of templates into the project, refusing to
touch existing files unless told to, and reports exactly what it planned and wrote.

Features:
  • Clean-architecture features with riverpod, bloc or provider state
  • Widgets, authentication flows and CI pipelines
  • Installable command packs from Git or a local directory
  • Dry runs and machine-readable reports (json, yaml, markdown)

Get started with: fsk new-feature products --with-tests`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return &scaffold.UnknownCommandError{Name: args[0]}
		}
		return cmd.Help()
	},
}

// reportedError marks an error whose details were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute loads the command packs, registers their commands and runs the CLI.
func Execute() error {
	args := os.Args[1:]
	bootstrap(args)
	initConfig()

	if err := registerPackCommands(); err != nil {
		printError(os.Stderr, err)
		return err
	}

	err := rootCmd.Execute()
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		printError(os.Stderr, err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fsk.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "debug mode")
	rootCmd.PersistentFlags().String("dir", ".", "Flutter project directory")
	rootCmd.PersistentFlags().String("format", "console", "report format: "+strings.Join(report.Formats, "|"))
	rootCmd.PersistentFlags().Bool("dry-run", false, "plan the changes without writing anything")
	rootCmd.PersistentFlags().Bool("run-hooks", false, "run the command's toolchain hooks after writing")
	rootCmd.PersistentFlags().Bool("interactive", false, "prompt for unset choices on a terminal")
	rootCmd.PersistentFlags().Bool("trace", false, "print OpenTelemetry spans to stderr")
	rootCmd.PersistentFlags().String("pack-dir", "", "directory holding installed packs (default is $HOME/.fsk/packs)")
	rootCmd.PersistentFlags().String("registry-url", "", "pack index URL")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyVerbose, rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag(config.KeyDebug, rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag(config.KeyProjectRoot, rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag(config.KeyFormat, rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag(config.KeyDryRun, rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = viper.BindPFlag(config.KeyRunHooks, rootCmd.PersistentFlags().Lookup("run-hooks"))
	_ = viper.BindPFlag(config.KeyInteractive, rootCmd.PersistentFlags().Lookup("interactive"))
	_ = viper.BindPFlag(config.KeyTrace, rootCmd.PersistentFlags().Lookup("trace"))
	_ = viper.BindPFlag(config.KeyPackDir, rootCmd.PersistentFlags().Lookup("pack-dir"))
	_ = viper.BindPFlag(config.KeyRegistryURL, rootCmd.PersistentFlags().Lookup("registry-url"))
}

// bootstrap reads the flags needed before the command tree exists: the config
// file and the pack directory decide which pack commands are registered.
func bootstrap(args []string) {
	fs := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	configPath := fs.String("config", "", "")
	packDir := fs.String("pack-dir", "", "")
	_ = fs.Parse(args)

	if *configPath != "" {
		cfgFile = *configPath
	}
	if *packDir != "" {
		viper.Set(config.KeyPackDir, *packDir)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(strings.TrimSuffix(config.FileName, ".toml"))
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	_ = viper.ReadInConfig()
}

// setup turns the parsed configuration into settings, a logger and, with
// --trace, a tracer provider.
func setup(cmd *cobra.Command) error {
	settings = config.Load(viper.GetViper())

	logger = utils.NewLogger(settings.Debug)
	if settings.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zerolog.TimeFieldFormat = time.RFC3339

	if used := viper.ConfigFileUsed(); used != "" && settings.Verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
	for _, w := range packWarnings {
		logger.Warn().Msg(w)
	}

	if !slices.Contains(report.Formats, settings.Format) {
		return utils.NewValidationError("format", fmt.Sprintf("unknown report format %q (use one of %s)", settings.Format, strings.Join(report.Formats, ", ")))
	}

	if settings.Trace {
		var err error
		tracerShutdown, err = setupTracing(os.Stderr)
		if err != nil {
			logger.Error().Err(err).Msg("failed to set up tracer")
		}
	}
	return nil
}

func shutdown(cmd *cobra.Command) {
	if tracerShutdown == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_ = tracerShutdown(ctx)
	tracerShutdown = nil
}

// printError writes one line per error followed by the collected hints.
func printError(w io.Writer, err error) {
	ue := utils.FromEngineError(err)
	if scaffold.CategoryOf(err) == "" {
		fmt.Fprintln(w, color.RedString("✗ %s", ue.Message))
		if ue.Err != nil && ue.Err.Error() != ue.Message {
			fmt.Fprintln(w, color.RedString("  %v", ue.Err))
		}
	} else {
		for _, e := range scaffold.Flatten(err) {
			fmt.Fprintln(w, color.RedString("✗ %s", e))
		}
	}
	if ue.Solution != "" {
		fmt.Fprintln(w, color.YellowString("💡 %s", ue.Solution))
	}
}

// GetLogger returns the configured logger
func GetLogger() *zerolog.Logger {
	if logger == nil {
		logger = utils.NewLogger(false)
	}
	return logger
}
