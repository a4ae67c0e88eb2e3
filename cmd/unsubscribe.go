package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	gmail_v1 "google.golang.org/api/gmail/v1"

	"github.com/zbowling/gmail-ai-unsub/internal/gmail"
	"github.com/zbowling/gmail-ai-unsub/internal/state"
	"github.com/zbowling/gmail-ai-unsub/internal/unsubscribe"
)

// pendingEmail is one labeled message queued for an unsubscribe attempt.
type pendingEmail struct {
	id      string
	subject string
	from    string
	date    time.Time
	link    state.Link
}

func newUnsubscribeCmd() *cobra.Command {
	var (
		labelFlag string
		headless  bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Unsubscribe from labeled marketing emails",
		Long: `Work through every email carrying the marketing label and attempt to
unsubscribe: send the unsubscribe email for mailto links, perform the
RFC 8058 one-click POST when the message advertises it, and otherwise
drive a browser through the unsubscribe page with AI assistance.

Each email is confirmed interactively unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			ctx, span := a.provider.Tracer("gmail-ai-unsub").Start(ctx, "unsubscribe")
			defer span.End()

			marketingLabel := a.cfg.Labels.Marketing
			if labelFlag != "" {
				marketingLabel = labelFlag
			}
			marketingLabelID, err := a.client.LabelIDByName(ctx, marketingLabel)
			if err != nil {
				return fmt.Errorf("failed to look up label %q: %w", marketingLabel, err)
			}
			if marketingLabelID == "" {
				fmt.Printf("Label %q not found. No emails to process.\n", marketingLabel)
				return nil
			}
			unsubscribedLabelID, err := a.client.GetOrCreateLabel(ctx, a.cfg.Labels.Unsubscribed)
			if err != nil {
				return err
			}
			failedLabelID, err := a.client.GetOrCreateLabel(ctx, a.cfg.Labels.Failed)
			if err != nil {
				return err
			}

			fmt.Printf("Finding emails with label: %s\n", marketingLabel)
			emails, err := a.collectPending(ctx, marketingLabel)
			if err != nil {
				return err
			}
			if len(emails) == 0 {
				fmt.Println("No emails found with that label.")
				return nil
			}
			fmt.Printf("Found %d emails to process.\n\n", len(emails))

			headlessMode := a.cfg.UnsubscribeHeadless()
			if cmd.Flags().Changed("headless") {
				headlessMode = headless
			}
			browser, err := a.newBrowser(ctx, headlessMode)
			if err != nil {
				fmt.Printf("Browser automation unavailable: %v\n", err)
			}
			executor := unsubscribe.NewExecutor(a.client,
				&http.Client{Timeout: 30 * time.Second},
				browser, a.metrics, a.cfg.UnsubscribeEnableMailto())

			succeeded, failed, skipped := 0, 0, 0
			autoYes := yes

		emailLoop:
			for i, email := range emails {
				if ctx.Err() != nil {
					break
				}

				if stored, ok := a.store.Link(email.id); ok && stored.Status == state.StatusSuccess {
					fmt.Printf("Skipping %s - already unsubscribed\n", truncate(email.subject, 50))
					skipped++
					continue
				}
				if !a.store.ShouldUnsubscribeFromSender(email.from, email.date) {
					if last, ok := a.store.LastUnsubscribed(email.from); ok {
						fmt.Printf("Skipping %s - already unsubscribed from %s on %s\n",
							truncate(email.subject, 50),
							gmail.ExtractAddress(email.from),
							last.Format("2006-01-02"))
						skipped++
						continue
					}
				}

				fmt.Printf("--- Email %d/%d ---\n", i+1, len(emails))
				fmt.Printf("Subject: %s\n", truncate(email.subject, 70))
				fmt.Printf("From:    %s\n", email.from)
				fmt.Printf("Gmail:   %s\n", gmail.MessageURL(email.id))
				fmt.Printf("Method:  %s\n", describeMethod(email.link))

				if !email.link.HasMethod() {
					fmt.Println("Skipping - no unsubscribe method available.")
					failed++
					a.resolve(ctx, email.id, false, "No unsubscribe link found",
						marketingLabelID, unsubscribedLabelID, failedLabelID, email)
					continue
				}

				if !autoYes {
					var choice string
					err := survey.AskOne(&survey.Select{
						Message: "Unsubscribe from this sender?",
						Options: []string{"Yes", "No (skip)", "Always (don't ask again)", "Quit"},
					}, &choice)
					if err != nil {
						if errors.Is(err, terminal.InterruptErr) {
							break
						}
						return err
					}
					switch choice {
					case "Quit":
						break emailLoop
					case "No (skip)":
						fmt.Println("Skipped.")
						skipped++
						continue
					case "Always (don't ask again)":
						autoYes = true
					}
				}

				full, err := a.client.GetMessage(ctx, email.id)
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					failed++
					a.store.UpdateStatus(email.id, state.StatusFailed, err.Error())
					continue
				}

				outcome := executor.Attempt(ctx, full, email.link)
				if outcome.Success {
					fmt.Printf("Unsubscribed via %s.\n\n", outcome.Method)
					succeeded++
					if outcome.WorkingURL != "" && outcome.WorkingURL != email.link.URL {
						email.link.URL = outcome.WorkingURL
						a.store.AddLink(email.link)
					}
					a.resolve(ctx, email.id, true, "",
						marketingLabelID, unsubscribedLabelID, failedLabelID, email)
				} else {
					fmt.Printf("Failed to unsubscribe: %s\n\n", outcome.Note)
					failed++
					a.resolve(ctx, email.id, false, outcome.Note,
						marketingLabelID, unsubscribedLabelID, failedLabelID, email)
				}
			}

			fmt.Println("--- Summary ---")
			fmt.Printf("Successful: %d\n", succeeded)
			fmt.Printf("Failed:     %d\n", failed)
			if skipped > 0 {
				fmt.Printf("Skipped:    %d\n", skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&labelFlag, "label", "", "Label to process (default from config)")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Unsubscribe from everything without asking")
	return cmd
}

// collectPending loads metadata and unsubscribe links for every message
// carrying the label.
func (a *app) collectPending(ctx context.Context, label string) ([]pendingEmail, error) {
	query := "label:" + strings.ReplaceAll(label, "/", "-")

	var emails []pendingEmail
	err := a.client.ForeachMessage(ctx, query, func(m *gmail_v1.Message) error {
		meta, err := a.client.GetMessageMetadata(ctx, m.Id)
		if err != nil {
			return err
		}

		link, known := a.store.Link(m.Id)
		if !known {
			var found bool
			link, found = unsubscribe.FromHeader(meta)
			if !found {
				full, err := a.client.GetMessage(ctx, m.Id)
				if err != nil {
					return err
				}
				body := gmail.ExtractBody(full)
				link, found = unsubscribe.FromBody(m.Id, body.Text, body.HTML)
			}
			if found {
				link.MessageID = m.Id
				if err := a.store.AddLink(link); err != nil {
					return err
				}
			} else {
				link = state.Link{MessageID: m.Id}
			}
		}

		emails = append(emails, pendingEmail{
			id:      m.Id,
			subject: gmail.HeaderValue(meta, "Subject"),
			from:    gmail.HeaderValue(meta, "From"),
			date:    gmail.InternalDate(meta),
			link:    link,
		})
		return nil
	})
	return emails, err
}

// newBrowser builds the AI browser agent, or returns an error when the
// browser LLM cannot be configured.
func (a *app) newBrowser(ctx context.Context, headless bool) (unsubscribe.BrowserRunner, error) {
	client, err := a.browserClient(ctx)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(a.cfg.Unsubscribe.BrowserTimeout) * time.Second
	return unsubscribe.NewBrowserAgent(client, headless, timeout), nil
}

// resolve swaps labels and records the final state for one message.
func (a *app) resolve(ctx context.Context, messageID string, success bool, note string,
	marketingLabelID, unsubscribedLabelID, failedLabelID string, email pendingEmail) {

	addLabel, status := failedLabelID, state.StatusFailed
	if success {
		addLabel, status = unsubscribedLabelID, state.StatusSuccess
	}
	if err := a.client.ModifyLabels(ctx, messageID, []string{addLabel}, []string{marketingLabelID}); err != nil {
		fmt.Printf("Failed to update labels: %v\n", err)
	}
	if err := a.store.UpdateStatus(messageID, status, note); err != nil {
		fmt.Printf("Failed to record status: %v\n", err)
	}
	if success {
		if err := a.store.RecordUnsubscribedSender(email.from, email.date); err != nil {
			fmt.Printf("Failed to record sender: %v\n", err)
		}
	}
}

// describeMethod summarizes how an unsubscribe will be attempted.
func describeMethod(link state.Link) string {
	switch {
	case link.Header != "" && link.Mailto != "":
		return "Header (RFC 8058) -> mailto:" + link.Mailto
	case link.Header != "" && link.URL != "":
		return "Header (RFC 8058) -> " + truncate(link.URL, 50)
	case link.URL != "":
		return "Browser -> " + truncate(link.URL, 50)
	case link.Mailto != "":
		return "Email -> " + link.Mailto
	default:
		return "None found"
	}
}
