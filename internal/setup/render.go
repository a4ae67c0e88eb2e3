package setup

import (
	"fmt"
	"strings"
)

// Answers holds everything the wizard collected.
type Answers struct {
	Provider      string
	Model         string
	APIKey        string
	APIKeyEnv     string
	Temperature   *float64
	ThinkingLevel string
	MaxTokens     int

	CredentialsFile string
	TokenFile       string

	MarketingLabel    string
	UnsubscribedLabel string
	FailedLabel       string

	UserPreferences string

	StateFile string
	CacheFile string

	Headless       bool
	BrowserTimeout int
	EnableMailto   bool

	// SaveKeyToConfig records whether the API key goes into config.toml or
	// stays in the environment variable named by APIKeyEnv.
	SaveKeyToConfig bool
}

// Render produces the config.toml contents for the collected answers.
func (a Answers) Render(configPath string) string {
	var b strings.Builder

	b.WriteString("# gmail-ai-unsub configuration\n")
	b.WriteString("# Generated by: gmail-ai-unsub setup\n")
	fmt.Fprintf(&b, "# Location: %s\n\n", configPath)

	b.WriteString("[gmail]\n")
	if a.CredentialsFile != "" {
		fmt.Fprintf(&b, "credentials_file = %s\n", tomlString(a.CredentialsFile))
	}
	fmt.Fprintf(&b, "token_file = %s\n\n", tomlString(a.TokenFile))

	b.WriteString("[llm]\n")
	fmt.Fprintf(&b, "provider = %s\n", tomlString(a.Provider))
	fmt.Fprintf(&b, "model = %s\n", tomlString(a.Model))
	if a.SaveKeyToConfig && a.APIKey != "" {
		fmt.Fprintf(&b, "api_key = %s\n", tomlString(a.APIKey))
	}
	fmt.Fprintf(&b, "api_key_env = %s\n", tomlString(a.APIKeyEnv))
	if a.Temperature != nil {
		fmt.Fprintf(&b, "temperature = %g\n", *a.Temperature)
	}
	if a.ThinkingLevel != "" {
		fmt.Fprintf(&b, "thinking_level = %s\n", tomlString(a.ThinkingLevel))
	}
	if a.MaxTokens > 0 {
		fmt.Fprintf(&b, "max_tokens = %d\n", a.MaxTokens)
	}
	b.WriteString("\n[labels]\n")
	fmt.Fprintf(&b, "marketing = %s\n", tomlString(a.MarketingLabel))
	fmt.Fprintf(&b, "unsubscribed = %s\n", tomlString(a.UnsubscribedLabel))
	fmt.Fprintf(&b, "failed = %s\n\n", tomlString(a.FailedLabel))

	if a.UserPreferences != "" {
		b.WriteString("[prompts]\n")
		fmt.Fprintf(&b, "user_preferences = %s\n\n", tomlString(a.UserPreferences))
	}

	b.WriteString("[storage]\n")
	fmt.Fprintf(&b, "state_file = %s\n", tomlString(a.StateFile))
	fmt.Fprintf(&b, "cache_file = %s\n\n", tomlString(a.CacheFile))

	b.WriteString("[unsubscribe]\n")
	fmt.Fprintf(&b, "headless = %t\n", a.Headless)
	fmt.Fprintf(&b, "browser_timeout = %d\n", a.BrowserTimeout)
	fmt.Fprintf(&b, "enable_mailto = %t\n", a.EnableMailto)

	return b.String()
}

func tomlString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

// MaskKey obscures an API key for display.
func MaskKey(key string) string {
	if len(key) > 12 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	return "***"
}
