package main

import (
	"github.com/spf13/cobra"

	"github.com/tflint-actions/setup-tflint/internal/actions"
	"github.com/tflint-actions/setup-tflint/internal/logging"
	"github.com/tflint-actions/setup-tflint/internal/setup"
)

func newPostCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Save the TFLint plugin cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configFile)
			if err != nil {
				return err
			}
			setup.Post(cmd.Context(), cfg, setup.Options{
				Runner: actions.New(actions.WithStdout(cmd.OutOrStdout())),
				Logger: logging.Component("post"),
			})
			return nil
		},
	}
}
