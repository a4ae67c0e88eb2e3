package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/zbowling/gmail-ai-unsub/internal/logging"
)

// Build-time OAuth client credentials. These are placeholders in the source
// tree; releases inject real values via
// -ldflags "-X .../internal/google.buildClientID=... -X .../internal/google.buildClientSecret=...".
//
// This follows the public-client pattern for native apps: the client secret
// is treated as non-secret, and security comes from the user consent flow.
var (
	buildClientID     = "__GMAIL_CLIENT_ID__"
	buildClientSecret = "__GMAIL_CLIENT_SECRET__"
)

// clientCredentials resolves the OAuth client ID and secret.
// Environment variables take priority over the build-time defaults so that
// development and CI can override released credentials.
func clientCredentials() (string, string) {
	id := os.Getenv("GMAIL_CLIENT_ID")
	secret := os.Getenv("GMAIL_CLIENT_SECRET")
	if id != "" && secret != "" {
		return id, secret
	}
	return buildClientID, buildClientSecret
}

// credentialsJSON is the subset of a Google OAuth client JSON file we need.
type credentialsJSON struct {
	Installed struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"installed"`
	Web struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"web"`
}

// oauthConfig builds the OAuth2 configuration. When credentialsFile is
// non-empty and readable it takes priority over the built-in client.
func oauthConfig(credentialsFile string) (*oauth2.Config, error) {
	clientID, clientSecret := clientCredentials()

	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsFile, err)
		}
		var creds credentialsJSON
		if err := json.Unmarshal(data, &creds); err != nil {
			return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsFile, err)
		}
		switch {
		case creds.Installed.ClientID != "":
			clientID, clientSecret = creds.Installed.ClientID, creds.Installed.ClientSecret
		case creds.Web.ClientID != "":
			clientID, clientSecret = creds.Web.ClientID, creds.Web.ClientSecret
		default:
			return nil, fmt.Errorf("credentials file %s contains no installed or web client", credentialsFile)
		}
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}, nil
}

// HasToken checks if a cached OAuth token exists at tokenFile.
func HasToken(tokenFile string) bool {
	_, err := loadToken(tokenFile)
	return err == nil
}

func loadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", tokenFile, err)
	}
	return &tok, nil
}

func saveToken(tokenFile string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// persistingTokenSource wraps a token source and writes refreshed tokens back
// to the token file so the next run does not need to refresh again.
type persistingTokenSource struct {
	tokenFile string
	src       oauth2.TokenSource
	last      string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := saveToken(p.tokenFile, tok); err != nil {
			slog.Warn("failed to persist refreshed token", logging.Err(err))
		}
	}
	return tok, nil
}

// TokenSource returns an auto-refreshing OAuth2 token source backed by the
// cached token at tokenFile. It fails if no token is cached; run the
// interactive flow first.
func TokenSource(ctx context.Context, credentialsFile, tokenFile string) (oauth2.TokenSource, error) {
	conf, err := oauthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}

	tok, err := loadToken(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found; run 'gmail-ai-unsub setup' to authenticate: %w", err)
	}

	return &persistingTokenSource{
		tokenFile: tokenFile,
		src:       conf.TokenSource(ctx, tok),
		last:      tok.AccessToken,
	}, nil
}

// HTTPClient returns an HTTP client configured with OAuth2 authentication
// for the Gmail API.
func HTTPClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	ts, err := TokenSource(ctx, credentialsFile, tokenFile)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// Authenticate runs the interactive OAuth flow using a loopback redirect:
// it starts a listener on an ephemeral localhost port, prints the consent
// URL, waits for Google to redirect back with the authorization code, then
// exchanges and caches the token.
func Authenticate(ctx context.Context, credentialsFile, tokenFile string) error {
	conf, err := oauthConfig(credentialsFile)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start local OAuth listener: %w", err)
	}
	defer ln.Close()

	conf.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state := randomState()
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintf(os.Stderr, "Open this URL in your browser to authorize Gmail access:\n\n  %s\n\n", authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- fmt.Errorf("oauth state mismatch")
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", errMsg)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		codeCh <- q.Get("code")
	})}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return saveToken(tokenFile, tok)
}
