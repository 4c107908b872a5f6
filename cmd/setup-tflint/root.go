package main

import (
	"github.com/spf13/cobra"

	"github.com/tflint-actions/setup-tflint/internal/actions"
	"github.com/tflint-actions/setup-tflint/internal/config"
	"github.com/tflint-actions/setup-tflint/internal/logging"
	"github.com/tflint-actions/setup-tflint/internal/setup"
)

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "setup-tflint",
		Short: "Install TFLint on a CI runner",
		Long: `setup-tflint resolves, downloads, verifies and caches TFLint, adds it to
PATH and optionally installs an output-capturing wrapper. Inputs are read
from INPUT_* environment variables, an optional config file and flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			_, err = setup.Run(cmd.Context(), cfg, setup.Options{
				Runner: actions.New(actions.WithStdout(cmd.OutOrStdout())),
				Logger: logging.Component("setup"),
			})
			return err
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML file with input values")
	flags.String("tflint-version", "", "TFLint version to install (default \"latest\")")
	flags.String("checksums", "", "accepted SHA-256 digests of the release archive")
	flags.Bool("tflint-wrapper", false, "install the output-capturing wrapper")
	flags.String("github-token", "", "token for the GitHub releases API")
	flags.Bool("cache", false, "cache the TFLint plugin directory")
	flags.String("tflint-config-path", "", "glob of TFLint config files hashed into the cache key")
	flags.String("plugin-dir", "", "TFLint plugin directory")
	flags.String("signing-key", "", "armored public key verifying checksums.txt.sig")
	flags.String("download-base-url", "", "base URL of release archives")
	flags.String("api-url", "", "GitHub API URL")
	flags.String("wrapper-path", "", "path of the tflint-wrapper executable")
	flags.String("log-level", "", "log level")
	flags.String("log-format", "", "log format: actions, text or json")
	flags.String("log-file", "", "additional rotating log file")

	cmd.AddCommand(newPostCmd(&configFile))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig reads the inputs for cmd and initializes logging from them.
func loadConfig(cmd *cobra.Command, configFile string) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		File:  configFile,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := logging.Init(cfg.Logging, cmd.OutOrStdout()); err != nil {
		return nil, err
	}
	return cfg, nil
}
