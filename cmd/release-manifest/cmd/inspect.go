package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-manifest/internal/config"
	repository "github.com/oshokin/release-manifest/internal/repository/manifest"
	"github.com/oshokin/release-manifest/internal/service/inspector"
)

var (
	// resolvePlatform and resolveArch select the file printed by resolve.
	resolvePlatform string
	resolveArch     string

	// showCmd prints a summary of a manifest.
	showCmd = &cobra.Command{
		Use:   "show [manifest]",
		Short: "Print a summary table of a manifest.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := manifestPath(args)
			if err != nil {
				return err
			}

			return inspector.Summarize(cmd.Context(), path, cmd.OutOrStdout())
		},
	}

	// resolveCmd prints the download URL of a release for a platform.
	resolveCmd = &cobra.Command{
		Use:   "resolve [version]",
		Short: "Print the download URL of a release for a platform.",
		Long: `Looks up a version in the manifest (default "latest", the newest stable
release) and prints the download URL of its file for the given platform and
architecture. Both default to the host and accept manifest names
(darwin, linux, win32 / x64, arm64, x86) as well as Go names (windows / amd64, 386).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := manifestPath(nil)
			if err != nil {
				return err
			}

			version := inspector.LatestVersion
			if len(args) > 0 {
				version = args[0]
			}

			file, err := inspector.Resolve(cmd.Context(), &inspector.ResolveOptions{
				ManifestPath: path,
				Version:      version,
				Platform:     resolvePlatform,
				Arch:         resolveArch,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), file.DownloadURL)

			return err
		},
	}

	// validateCmd checks a manifest against the schema.
	validateCmd = &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Check a manifest against the manifest schema.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := manifestPath(args)
			if err != nil {
				return err
			}

			violations, err := inspector.Validate(cmd.Context(), path)
			if err != nil {
				return err
			}

			for _, v := range violations {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", v.Path, v.Message)
			}

			if err = repository.AsError(violations); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)

			return err
		},
	}

	// initCmd writes a configuration file with the default settings.
	initCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with default settings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	resolveCmd.Flags().StringVar(&resolvePlatform, "platform", "", "target platform (default: host)")
	resolveCmd.Flags().StringVar(&resolveArch, "arch", "", "target architecture (default: host)")

	rootCmd.AddCommand(showCmd, resolveCmd, validateCmd, initCmd)
}
