package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Default label names applied when the config omits them.
const (
	DefaultMarketingLabel    = "Unsubscribe"
	DefaultUnsubscribedLabel = "Unsubscribed"
	DefaultFailedLabel       = "Unsubscribe-Failed"
)

// Default classification prompt fragments.
const (
	DefaultSystemPrompt      = "You are an expert email analyst helping identify unwanted subscription emails."
	DefaultMarketingCriteria = "Unwanted newsletters, promotional emails, marketing campaigns, spam-like notifications"
	DefaultExclusions        = "Receipts, password resets, personal emails, banking alerts, wanted newsletters"
)

// Config is the application configuration loaded from config.toml.
type Config struct {
	Gmail       GmailConfig       `toml:"gmail"`
	LLM         LLMConfig         `toml:"llm"`
	Labels      LabelsConfig      `toml:"labels"`
	Prompts     PromptsConfig     `toml:"prompts"`
	Storage     StorageConfig     `toml:"storage"`
	Browser     BrowserConfig     `toml:"browser"`
	Unsubscribe UnsubscribeConfig `toml:"unsubscribe"`

	// Path is the file the config was loaded from.
	Path string `toml:"-"`
}

// GmailConfig holds Gmail OAuth file locations.
type GmailConfig struct {
	// CredentialsFile is an optional user-provided OAuth client JSON file.
	// Empty means use the built-in client credentials.
	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`
}

// LLMConfig selects the classification model.
type LLMConfig struct {
	Provider      string   `toml:"provider"`
	Model         string   `toml:"model"`
	APIKey        string   `toml:"api_key"`
	APIKeyEnv     string   `toml:"api_key_env"`
	Temperature   *float64 `toml:"temperature"`
	ThinkingLevel *string  `toml:"thinking_level"`
	MaxTokens     int      `toml:"max_tokens"`
}

// LabelsConfig names the Gmail labels the tool manages.
type LabelsConfig struct {
	Marketing    string `toml:"marketing"`
	Unsubscribed string `toml:"unsubscribed"`
	Failed       string `toml:"failed"`
}

// PromptsConfig customizes the classification prompt.
type PromptsConfig struct {
	System            string `toml:"system"`
	MarketingCriteria string `toml:"marketing_criteria"`
	Exclusions        string `toml:"exclusions"`
	UserPreferences   string `toml:"user_preferences"`
}

// StorageConfig locates persisted state.
type StorageConfig struct {
	StateFile string `toml:"state_file"`
	CacheFile string `toml:"cache_file"`
}

// BrowserConfig optionally selects a different model for browser automation.
// Unset fields fall back to the [llm] section.
type BrowserConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	APIKeyEnv string `toml:"api_key_env"`
}

// UnsubscribeConfig controls the unsubscribe phase.
type UnsubscribeConfig struct {
	Headless       *bool `toml:"headless"`
	BrowserTimeout int   `toml:"browser_timeout"`
	EnableMailto   *bool `toml:"enable_mailto"`
}

// Load reads configuration from the given path. An empty path searches the
// standard locations (current directory, XDG config dir, legacy dot-directory).
func Load(path string) (*Config, error) {
	if path == "" {
		found := FindConfigFile()
		if found == "" {
			return nil, fmt.Errorf("config file not found; expected config.toml in the current directory or %s.\nRun 'gmail-ai-unsub setup' to create one", ConfigFile())
		}
		path = found
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gmail.TokenFile == "" {
		c.Gmail.TokenFile = TokenFile()
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.5-flash"
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = defaultKeyEnv(c.LLM.Provider)
	}
	if c.LLM.ThinkingLevel == nil {
		low := "low"
		c.LLM.ThinkingLevel = &low
	}
	if c.Labels.Marketing == "" {
		c.Labels.Marketing = DefaultMarketingLabel
	}
	if c.Labels.Unsubscribed == "" {
		c.Labels.Unsubscribed = DefaultUnsubscribedLabel
	}
	if c.Labels.Failed == "" {
		c.Labels.Failed = DefaultFailedLabel
	}
	if c.Prompts.System == "" {
		c.Prompts.System = DefaultSystemPrompt
	}
	if c.Prompts.MarketingCriteria == "" {
		c.Prompts.MarketingCriteria = DefaultMarketingCriteria
	}
	if c.Prompts.Exclusions == "" {
		c.Prompts.Exclusions = DefaultExclusions
	}
	if c.Storage.StateFile == "" {
		c.Storage.StateFile = StateFile()
	}
	if c.Storage.CacheFile == "" {
		c.Storage.CacheFile = CacheFile()
	}
	if c.Unsubscribe.BrowserTimeout == 0 {
		c.Unsubscribe.BrowserTimeout = 60
	}

	c.Gmail.CredentialsFile = ExpandPath(c.Gmail.CredentialsFile)
	c.Gmail.TokenFile = ExpandPath(c.Gmail.TokenFile)
	c.Storage.StateFile = ExpandPath(c.Storage.StateFile)
	c.Storage.CacheFile = ExpandPath(c.Storage.CacheFile)
}

func defaultKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "GOOGLE_API_KEY"
	}
}

// LLMAPIKey resolves the classification API key: the config value wins,
// otherwise the configured environment variable is consulted.
func (c *Config) LLMAPIKey() (string, error) {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey, nil
	}
	if key := os.Getenv(c.LLM.APIKeyEnv); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key not found: set api_key in the [llm] section of %s or export %s", c.Path, c.LLM.APIKeyEnv)
}

// BrowserProvider returns the provider for browser automation, falling back
// to the classification provider.
func (c *Config) BrowserProvider() string {
	if c.Browser.Provider != "" {
		return c.Browser.Provider
	}
	return c.LLM.Provider
}

// BrowserModel returns the model for browser automation, falling back to the
// classification model.
func (c *Config) BrowserModel() string {
	if c.Browser.Model != "" {
		return c.Browser.Model
	}
	return c.LLM.Model
}

// BrowserAPIKey resolves the browser automation API key, falling back to the
// classification key when no browser-specific key is configured.
func (c *Config) BrowserAPIKey() (string, error) {
	if c.Browser.APIKey != "" {
		return c.Browser.APIKey, nil
	}
	if c.Browser.APIKeyEnv != "" {
		if key := os.Getenv(c.Browser.APIKeyEnv); key != "" {
			return key, nil
		}
	}
	return c.LLMAPIKey()
}

// UnsubscribeHeadless reports whether the browser should run headless
// (default true).
func (c *Config) UnsubscribeHeadless() bool {
	if c.Unsubscribe.Headless == nil {
		return true
	}
	return *c.Unsubscribe.Headless
}

// UnsubscribeEnableMailto reports whether mailto unsubscribe is enabled
// (default true).
func (c *Config) UnsubscribeEnableMailto() bool {
	if c.Unsubscribe.EnableMailto == nil {
		return true
	}
	return *c.Unsubscribe.EnableMailto
}
