package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-manifest/internal/config"
	"github.com/oshokin/release-manifest/internal/logger"
	"github.com/oshokin/release-manifest/internal/service/generator"
	"github.com/oshokin/release-manifest/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd generates the manifest.
	rootCmd = &cobra.Command{
		Use:   "release-manifest",
		Short: "Generate a versions manifest from GitHub releases.",
		Long: `Lists every release of a GitHub repository, keeps the archives built for
darwin, linux and win32 on x64, arm64 or x86, and writes them as a JSON manifest.

Settings come from defaults, an optional YAML file, the environment
(REPOSITORY, GITHUB_TOKEN, OUTPUT, GITHUB_API_URL, LOG_LEVEL) and flags,
in increasing priority. The output file is overwritten on every run.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: applyLogLevel,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("log-level") {
				if err = logger.SetLevelString(cfg.LogLevel); err != nil {
					return err
				}
			}

			return generator.Run(ctx, &generator.Options{Config: cfg})
		},
	}
)

// Execute runs the release-manifest CLI and exits with non-zero status on error.
func Execute() {
	rootCmd.AddCommand(version.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogLevel sets the global log level from --log-level or LOG_LEVEL.
func applyLogLevel(_ *cobra.Command, _ []string) error {
	level := logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	return logger.SetLevelString(level)
}

// manifestPath returns args[0] or the configured output path.
func manifestPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return "", err
	}

	return cfg.Output, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Flags shared by every subcommand.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	// Generation flags, bound to configuration keys by config.Load.
	rootCmd.Flags().StringP("repository", "r", config.DefaultRepository, "repository in owner/name form")
	rootCmd.Flags().StringP("output", "o", config.DefaultOutput, "path of the generated manifest")
	rootCmd.Flags().String("base-url", config.DefaultBaseURL, "GitHub REST API root")
	rootCmd.Flags().Int("per-page", config.DefaultPerPage, "releases requested per page")
	rootCmd.Flags().Duration("timeout", 0, "per-request HTTP timeout, 0 disables it")
	rootCmd.Flags().Bool("keep-empty", false, "keep releases that have no matching files")
}
