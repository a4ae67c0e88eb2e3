package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/zbowling/gmail-ai-unsub/internal/cache"
	"github.com/zbowling/gmail-ai-unsub/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the email analysis cache",
		Long: `The cache remembers which emails have been analyzed so repeat scans skip
them and save API tokens. Use these commands to view statistics, clear
the cache, or remove a single email so it is re-analyzed.`,
	}
	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheRemoveCmd())
	return cmd
}

func openCache() (*cache.Cache, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	c, err := cache.Open(cfg.Storage.CacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open analysis cache: %w", err)
	}
	return c, nil
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			stats, err := c.GetStats()
			if err != nil {
				return err
			}

			fmt.Println("Cache Statistics:")
			fmt.Printf("  Total cached:  %d\n", stats.Total)
			fmt.Printf("  Marketing:     %d\n", stats.Marketing)
			fmt.Printf("  Not marketing: %d\n", stats.NonMarketing)
			fmt.Printf("  Database:      %s\n", c.Path())
			if info, err := os.Stat(c.Path()); err == nil {
				fmt.Printf("  Size:          %s\n", formatSize(info.Size()))
			}
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the email analysis cache",
		Long: `Remove every cached analysis so all emails are re-analyzed on the next
scan. Use this after manually changing labels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			stats, err := c.GetStats()
			if err != nil {
				return err
			}
			if stats.Total == 0 {
				fmt.Println("Cache is already empty.")
				return nil
			}

			if !yes {
				var confirm bool
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("This will clear %d cached email analyses. Continue?", stats.Total),
				}
				if err := survey.AskOne(prompt, &confirm); err != nil {
					return err
				}
				if !confirm {
					fmt.Println("Cancelled.")
					return nil
				}
			}

			count, err := c.Clear()
			if err != nil {
				return err
			}
			if err := c.Vacuum(); err != nil {
				return err
			}
			fmt.Printf("Cleared %d cached entries.\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func newCacheRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <email-id>",
		Short: "Remove one email from the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			removed, err := c.Remove(args[0])
			if err != nil {
				return err
			}
			if removed {
				fmt.Printf("Removed %s from cache.\n", args[0])
			} else {
				fmt.Printf("Email %s was not in cache.\n", args[0])
			}
			return nil
		},
	}
}

func formatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
