package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gmail_v1 "google.golang.org/api/gmail/v1"

	"github.com/zbowling/gmail-ai-unsub/internal/cache"
	"github.com/zbowling/gmail-ai-unsub/internal/classify"
	"github.com/zbowling/gmail-ai-unsub/internal/gmail"
	"github.com/zbowling/gmail-ai-unsub/internal/instrumentation"
	"github.com/zbowling/gmail-ai-unsub/internal/unsubscribe"
)

func newScanCmd() *cobra.Command {
	var (
		days      int
		labelFlag string
		scanLabel string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the inbox and label marketing emails",
		Long: `Scan recent emails, classify each one with the configured LLM, and apply
the marketing label to the ones identified as marketing. Unsubscribe links
are extracted and stored for the unsubscribe command.

Emails already analyzed are skipped via a local cache unless --no-cache
is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			ctx, span := a.provider.Tracer("gmail-ai-unsub").Start(ctx, "scan")
			defer span.End()

			analysisCache, err := cache.Open(a.cfg.Storage.CacheFile)
			if err != nil {
				return fmt.Errorf("failed to open analysis cache: %w", err)
			}
			defer analysisCache.Close()

			llmClient, err := a.classifierClient(ctx)
			if err != nil {
				return err
			}
			classifier := classify.New(llmClient,
				a.cfg.Prompts.System,
				a.cfg.Prompts.MarketingCriteria,
				a.cfg.Prompts.Exclusions,
				a.cfg.Prompts.UserPreferences)

			marketingLabel := a.cfg.Labels.Marketing
			if labelFlag != "" {
				marketingLabel = labelFlag
			}
			marketingLabelID, err := a.client.GetOrCreateLabel(ctx, marketingLabel)
			if err != nil {
				return fmt.Errorf("failed to resolve label %q: %w", marketingLabel, err)
			}

			query := buildScanQuery(time.Now(), days, scanLabel,
				marketingLabel, a.cfg.Labels.Unsubscribed, a.cfg.Labels.Failed)

			fmt.Printf("Model:      %s/%s\n", a.cfg.LLM.Provider, a.cfg.LLM.Model)
			fmt.Printf("Time range: last %d days\n", days)
			fmt.Printf("Label:      %s\n", marketingLabel)
			if !noCache {
				if stats, err := analysisCache.GetStats(); err == nil {
					fmt.Printf("Cache:      %d emails cached (%d marketing)\n", stats.Total, stats.Marketing)
				}
			}
			fmt.Println()

			var ids []string
			if err := a.client.ForeachMessage(ctx, query, func(m *gmail_v1.Message) error {
				ids = append(ids, m.Id)
				return nil
			}); err != nil {
				return fmt.Errorf("failed to list messages: %w", err)
			}

			skipped := 0
			if !noCache && len(ids) > 0 {
				cached, err := analysisCache.AnalyzedIDs(ids)
				if err != nil {
					return fmt.Errorf("cache lookup failed: %w", err)
				}
				fresh := ids[:0]
				for _, id := range ids {
					if cached[id] {
						skipped++
						continue
					}
					fresh = append(fresh, id)
				}
				ids = fresh
			}

			if len(ids) == 0 {
				fmt.Println("No new emails to scan.")
				return nil
			}

			processed, marketing, errors := 0, 0, 0
			for _, id := range ids {
				if ctx.Err() != nil {
					break
				}
				processed++

				meta, err := a.client.GetMessageMetadata(ctx, id)
				if err != nil {
					errors++
					fmt.Printf("  [%d] error: %v\n", processed, err)
					continue
				}
				subject := gmail.HeaderValue(meta, "Subject")
				from := gmail.HeaderValue(meta, "From")

				full, err := a.client.GetMessage(ctx, id)
				if err != nil {
					errors++
					fmt.Printf("  [%d] error: %v\n", processed, err)
					continue
				}
				body := gmail.ExtractBody(full)

				a.metrics.RecordEmailScanned(ctx)
				start := time.Now()
				result, err := classifier.Classify(ctx, subject, from, body.Text)
				if err != nil {
					errors++
					a.metrics.RecordClassification(ctx, instrumentation.StatusError, time.Since(start))
					fmt.Printf("  [%d] classification error: %v\n", processed, err)
					continue
				}
				classLabel := instrumentation.ResultNotMarketing
				if result.IsMarketing {
					classLabel = instrumentation.ResultMarketing
				}
				a.metrics.RecordClassification(ctx, classLabel, time.Since(start))

				if result.IsMarketing {
					marketing++
					if err := a.client.ModifyLabels(ctx, id, []string{marketingLabelID}, nil); err != nil {
						fmt.Printf("  [%d] failed to apply label: %v\n", processed, err)
					}
					fmt.Printf("  [%d] MARKETING %3.0f%%  %s\n", processed, result.Confidence*100, truncate(subject, 70))
					fmt.Printf("        From: %s  %s\n", gmail.ExtractAddress(from), gmail.MessageURL(id))

					link, found := unsubscribe.FromHeader(meta)
					if !found {
						link, found = unsubscribe.FromBody(id, body.Text, body.HTML)
					}
					if found {
						link.MessageID = id
						if err := a.store.AddLink(link); err != nil {
							fmt.Printf("        failed to record unsubscribe link: %v\n", err)
						} else {
							fmt.Println("        unsubscribe link found")
						}
					}
				} else {
					fmt.Printf("  [%d] not marketing (%.0f%%)  %s\n", processed, result.Confidence*100, truncate(subject, 70))
				}

				if err := analysisCache.MarkAnalyzed(id, result.IsMarketing, result.Confidence, subject, from); err != nil {
					fmt.Printf("        failed to cache result: %v\n", err)
				}
			}

			fmt.Println()
			fmt.Printf("Scanned:   %d\n", processed)
			fmt.Printf("Marketing: %d\n", marketing)
			if skipped > 0 {
				fmt.Printf("Skipped:   %d (cached)\n", skipped)
			}
			if errors > 0 {
				fmt.Printf("Errors:    %d\n", errors)
			}
			if marketing > 0 {
				fmt.Printf("\nRun 'gmail-ai-unsub unsubscribe' to unsubscribe from %d email(s).\n", marketing)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Number of days back to scan")
	cmd.Flags().StringVar(&labelFlag, "label", "", "Label to apply to marketing emails (default from config)")
	cmd.Flags().StringVar(&scanLabel, "scan-label", "", "Label to scan instead of the inbox")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-analyze emails even if cached")
	return cmd
}

// buildScanQuery assembles the Gmail search query for a scan: a time window,
// a location, and exclusions for the three labels this tool manages.
func buildScanQuery(now time.Time, days int, scanLabel, marketingLabel, unsubscribedLabel, failedLabel string) string {
	after := now.AddDate(0, 0, -days).Format("2006/01/02")

	location := "in:inbox"
	if scanLabel != "" && !strings.EqualFold(scanLabel, "inbox") {
		location = "label:" + gmail.EscapeLabelForQuery(scanLabel)
	}

	parts := []string{
		"after:" + after,
		location,
		"-label:" + gmail.EscapeLabelForQuery(marketingLabel),
		"-label:" + gmail.EscapeLabelForQuery(unsubscribedLabel),
		"-label:" + gmail.EscapeLabelForQuery(failedLabel),
	}
	return strings.Join(parts, " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
