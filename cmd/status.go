package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zbowling/gmail-ai-unsub/internal/config"
	"github.com/zbowling/gmail-ai-unsub/internal/state"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of unsubscribe attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			store, err := state.NewStore(cfg.Storage.StateFile)
			if err != nil {
				return fmt.Errorf("failed to open state file: %w", err)
			}

			links := store.AllLinks()
			var pending []state.Link
			succeeded, failed := 0, 0
			for _, link := range links {
				switch link.Status {
				case state.StatusSuccess:
					succeeded++
				case state.StatusFailed:
					failed++
				default:
					pending = append(pending, link)
				}
			}

			fmt.Println("Unsubscribe Status:")
			fmt.Printf("  Total:      %d\n", len(links))
			fmt.Printf("  Pending:    %d\n", len(pending))
			fmt.Printf("  Successful: %d\n", succeeded)
			fmt.Printf("  Failed:     %d\n", failed)

			if len(pending) > 0 {
				fmt.Println("\nPending unsubscribe links:")
				show := pending
				if len(show) > 10 {
					show = show[:10]
				}
				for _, link := range show {
					target := link.URL
					if target == "" {
						target = link.Mailto
					}
					fmt.Printf("  - %s: %s\n", link.MessageID, target)
				}
			}
			return nil
		},
	}
}
