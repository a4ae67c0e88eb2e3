// Package setup implements the interactive configuration wizard.
package setup

import "github.com/zbowling/gmail-ai-unsub/internal/config"

// ModelChoice is one selectable model for a provider.
type ModelChoice struct {
	Value       string
	Description string
}

// Models ordered fastest first; classification rarely needs a large model.
var (
	googleModels = []ModelChoice{
		{"gemini-2.5-flash-lite", "Fastest, good for simple classification"},
		{"gemini-2.5-flash", "Fast and capable (recommended)"},
		{"gemini-3-pro-preview", "Best quality with low reasoning mode"},
	}
	anthropicModels = []ModelChoice{
		{"claude-4-5-haiku", "Fast and efficient (recommended)"},
		{"claude-4-5-sonnet", "More capable, slower"},
	}
	openaiModels = []ModelChoice{
		{"gpt-5-nano", "Fastest (recommended)"},
		{"gpt-5-mini", "Fast and capable"},
		{"o4-mini", "Reasoning model"},
	}
)

// ModelsFor returns the model choices for a provider, defaulting to the
// Google list for unknown providers.
func ModelsFor(provider string) []ModelChoice {
	switch provider {
	case "anthropic":
		return anthropicModels
	case "openai":
		return openaiModels
	default:
		return googleModels
	}
}

// APIKeyEnv returns the conventional environment variable for a provider's
// API key.
func APIKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "GOOGLE_API_KEY"
	}
}

// APIKeyURL returns the console page where a key for the provider is issued.
func APIKeyURL(provider string) string {
	switch provider {
	case "anthropic":
		return "https://console.anthropic.com/settings/keys"
	case "openai":
		return "https://platform.openai.com/api-keys"
	default:
		return "https://aistudio.google.com/apikey"
	}
}

// ProviderName returns the display name for a provider's console.
func ProviderName(provider string) string {
	switch provider {
	case "anthropic":
		return "Anthropic Console"
	case "openai":
		return "OpenAI Platform"
	default:
		return "Google AI Studio"
	}
}

// DefaultAnswers returns the wizard answers before any prompting.
func DefaultAnswers() Answers {
	return Answers{
		Provider:          "google",
		Model:             "gemini-2.5-flash",
		APIKeyEnv:         "GOOGLE_API_KEY",
		ThinkingLevel:     "low",
		TokenFile:         config.TokenFile(),
		MarketingLabel:    config.DefaultMarketingLabel,
		UnsubscribedLabel: config.DefaultUnsubscribedLabel,
		FailedLabel:       config.DefaultFailedLabel,
		StateFile:         config.StateFile(),
		CacheFile:         config.CacheFile(),
		Headless:          true,
		BrowserTimeout:    60,
		EnableMailto:      true,
	}
}

// PrefillFromConfig overlays values from an existing configuration so the
// wizard prompts with the user's current settings.
func PrefillFromConfig(a Answers, cfg *config.Config) Answers {
	if cfg == nil {
		return a
	}
	if cfg.LLM.Provider != "" {
		a.Provider = cfg.LLM.Provider
	}
	if cfg.LLM.Model != "" {
		a.Model = cfg.LLM.Model
	}
	if cfg.LLM.APIKey != "" {
		a.APIKey = cfg.LLM.APIKey
		a.SaveKeyToConfig = true
	}
	if cfg.LLM.APIKeyEnv != "" {
		a.APIKeyEnv = cfg.LLM.APIKeyEnv
	}
	if cfg.LLM.Temperature != nil {
		a.Temperature = cfg.LLM.Temperature
	}
	if cfg.LLM.ThinkingLevel != nil {
		a.ThinkingLevel = *cfg.LLM.ThinkingLevel
	}
	if cfg.LLM.MaxTokens > 0 {
		a.MaxTokens = cfg.LLM.MaxTokens
	}
	if cfg.Gmail.CredentialsFile != "" {
		a.CredentialsFile = cfg.Gmail.CredentialsFile
	}
	if cfg.Gmail.TokenFile != "" {
		a.TokenFile = cfg.Gmail.TokenFile
	}
	if cfg.Labels.Marketing != "" {
		a.MarketingLabel = cfg.Labels.Marketing
	}
	if cfg.Labels.Unsubscribed != "" {
		a.UnsubscribedLabel = cfg.Labels.Unsubscribed
	}
	if cfg.Labels.Failed != "" {
		a.FailedLabel = cfg.Labels.Failed
	}
	if cfg.Prompts.UserPreferences != "" {
		a.UserPreferences = cfg.Prompts.UserPreferences
	}
	if cfg.Storage.StateFile != "" {
		a.StateFile = cfg.Storage.StateFile
	}
	if cfg.Storage.CacheFile != "" {
		a.CacheFile = cfg.Storage.CacheFile
	}
	if cfg.Unsubscribe.Headless != nil {
		a.Headless = *cfg.Unsubscribe.Headless
	}
	if cfg.Unsubscribe.BrowserTimeout > 0 {
		a.BrowserTimeout = cfg.Unsubscribe.BrowserTimeout
	}
	if cfg.Unsubscribe.EnableMailto != nil {
		a.EnableMailto = *cfg.Unsubscribe.EnableMailto
	}
	return a
}
