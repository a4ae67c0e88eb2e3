package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zbowling/gmail-ai-unsub/internal/logging"
)

// rootCmd represents the base command for the gmail-ai-unsub application
var rootCmd = &cobra.Command{
	Use:   "gmail-ai-unsub",
	Short: "Unsubscribe from marketing email in your Gmail inbox using AI",
	Long: `gmail-ai-unsub scans your Gmail inbox, uses an LLM to identify marketing
and promotional email, labels it, and unsubscribes on your behalf.

Unsubscribing works through every available channel: RFC 8058 one-click
POST, unsubscribe mailto addresses, and AI-guided browser automation for
plain unsubscribe links.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A local .env is optional; missing files are fine.
		_ = godotenv.Load()
		logging.Init(logLevel)
	},
}

var (
	configPath string
	logLevel   string
)

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gmail-ai-unsub version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newUnsubscribeCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gmail-ai-unsub version %s\n", version)
		},
	}
}
