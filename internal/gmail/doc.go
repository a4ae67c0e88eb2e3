// Package gmail provides a client for interacting with the Gmail API.
//
// This package offers the Gmail functionality the scan and unsubscribe
// phases need:
//   - Message iteration with query-based pagination
//   - Metadata and full-format message fetches
//   - Label management (list, get-or-create, apply/remove)
//   - Sending plain-text mail (for mailto unsubscribe requests)
//   - MIME body extraction (text and HTML parts)
//
// All API calls retry with exponential backoff on rate-limit (429) and
// server (5xx) responses; other errors surface to the caller.
//
// Authentication uses the cached OAuth token from the google package.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx, "", tokenFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.ForeachMessage(ctx, "in:inbox after:2026/01/01", func(ref *gmailapi.Message) error {
//	    msg, err := client.GetMessageMetadata(ctx, ref.Id)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(gmail.HeaderValue(msg, "Subject"))
//	    return nil
//	})
package gmail
