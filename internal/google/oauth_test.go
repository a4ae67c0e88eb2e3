package google

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestClientCredentialsFromEnv(t *testing.T) {
	t.Setenv("GMAIL_CLIENT_ID", "env-id")
	t.Setenv("GMAIL_CLIENT_SECRET", "env-secret")

	id, secret := clientCredentials()
	assert.Equal(t, "env-id", id)
	assert.Equal(t, "env-secret", secret)
}

func TestClientCredentialsBuildDefaults(t *testing.T) {
	t.Setenv("GMAIL_CLIENT_ID", "")
	t.Setenv("GMAIL_CLIENT_SECRET", "")

	id, secret := clientCredentials()
	assert.Equal(t, buildClientID, id)
	assert.Equal(t, buildClientSecret, secret)
}

func TestOAuthConfigFromCredentialsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	content := `{"installed":{"client_id":"file-id","client_secret":"file-secret"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	conf, err := oauthConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-id", conf.ClientID)
	assert.Equal(t, "file-secret", conf.ClientSecret)
	assert.Equal(t, Scopes, conf.Scopes)
}

func TestOAuthConfigWebClient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	content := `{"web":{"client_id":"web-id","client_secret":"web-secret"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	conf, err := oauthConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "web-id", conf.ClientID)
}

func TestOAuthConfigInvalidCredentialsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	_, err := oauthConfig(path)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "nested", "token.json")

	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	require.NoError(t, saveToken(tokenFile, tok))

	assert.True(t, HasToken(tokenFile))

	loaded, err := loadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)

	// Token file must not be world-readable
	info, err := os.Stat(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestHasTokenMissing(t *testing.T) {
	assert.False(t, HasToken(filepath.Join(t.TempDir(), "token.json")))
}

func TestTokenSourceNoToken(t *testing.T) {
	_, err := TokenSource(context.Background(), "", filepath.Join(t.TempDir(), "token.json"))
	assert.Error(t, err)
}

func TestPersistingTokenSource(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	refreshed := &oauth2.Token{AccessToken: "new-access", RefreshToken: "refresh"}

	src := &persistingTokenSource{
		tokenFile: tokenFile,
		src:       oauth2.StaticTokenSource(refreshed),
		last:      "old-access",
	}

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok.AccessToken)

	// The refreshed token was written back to disk
	data, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	var onDisk oauth2.Token
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "new-access", onDisk.AccessToken)
}
