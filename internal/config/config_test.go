package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "GOOGLE_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, DefaultMarketingLabel, cfg.Labels.Marketing)
	assert.Equal(t, DefaultUnsubscribedLabel, cfg.Labels.Unsubscribed)
	assert.Equal(t, DefaultFailedLabel, cfg.Labels.Failed)
	assert.Equal(t, 60, cfg.Unsubscribe.BrowserTimeout)
	assert.True(t, cfg.UnsubscribeHeadless())
	assert.True(t, cfg.UnsubscribeEnableMailto())
	assert.NotEmpty(t, cfg.Storage.StateFile)
	assert.NotEmpty(t, cfg.Gmail.TokenFile)
	// No credentials_file means the built-in OAuth client is used
	assert.Empty(t, cfg.Gmail.CredentialsFile)
	require.NotNil(t, cfg.LLM.ThinkingLevel)
	assert.Equal(t, "low", *cfg.LLM.ThinkingLevel)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[gmail]
credentials_file = "~/creds.json"
token_file = "/tmp/token.json"

[llm]
provider = "anthropic"
model = "claude-haiku-4-5"
api_key = "sk-ant-test"
temperature = 0.2
max_tokens = 1024

[labels]
marketing = "Marketing/Unsub"
unsubscribed = "Marketing/Done"
failed = "Marketing/Failed"

[unsubscribe]
headless = false
browser_timeout = 120
enable_mailto = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.LLM.APIKeyEnv)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.2, *cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, "Marketing/Unsub", cfg.Labels.Marketing)
	assert.False(t, cfg.UnsubscribeHeadless())
	assert.False(t, cfg.UnsubscribeEnableMailto())
	assert.Equal(t, 120, cfg.Unsubscribe.BrowserTimeout)
	assert.Equal(t, "/tmp/token.json", cfg.Gmail.TokenFile)
	// ~ is expanded
	assert.NotContains(t, cfg.Gmail.CredentialsFile, "~")

	key, err := cfg.LLMAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test", key)
}

func TestLLMAPIKeyFromEnv(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "openai"
model = "gpt-5-mini"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-env-test")
	key, err := cfg.LLMAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-env-test", key)
}

func TestLLMAPIKeyMissing(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "openai"
api_key_env = "GMAIL_AI_UNSUB_TEST_KEY_UNSET"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.LLMAPIKey()
	assert.Error(t, err)
}

func TestBrowserFallbacks(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "google"
model = "gemini-2.5-flash"
api_key = "google-key"

[browser]
provider = "anthropic"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.BrowserProvider())
	// Model and key fall back to the [llm] section
	assert.Equal(t, "gemini-2.5-flash", cfg.BrowserModel())
	key, err := cfg.BrowserAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "google-key", key)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home := homeDir()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"tilde only", "~", home},
		{"tilde prefix", "~/x/y", filepath.Join(home, "x", "y")},
		{"absolute untouched", "/etc/passwd", "/etc/passwd"},
		{"relative untouched", "rel/path", "rel/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.in))
		})
	}
}

func TestFindConfigFilePrefersCurrentDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(""), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found := FindConfigFile()
	assert.Equal(t, "config.toml", found)
}
