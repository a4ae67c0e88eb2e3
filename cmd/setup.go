package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zbowling/gmail-ai-unsub/internal/setup"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup wizard",
		Long: `Configure gmail-ai-unsub interactively: choose an LLM provider and model,
set the Gmail labels, and authenticate with Gmail.

An existing configuration is updated in place; your current settings are
prefilled so pressing Enter keeps them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setup.Run(cmd.Context())
		},
	}
}
