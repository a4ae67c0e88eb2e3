package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/BurntSushi/toml"

	"github.com/zbowling/gmail-ai-unsub/internal/config"
	"github.com/zbowling/gmail-ai-unsub/internal/google"
)

// Run walks the user through configuration and Gmail authentication, then
// writes config.toml. An existing config prefills every prompt.
func Run(ctx context.Context) error {
	configPath := config.ConfigFile()

	answers := DefaultAnswers()
	if existing := loadExisting(configPath); existing != nil {
		fmt.Printf("Found existing config at %s; current settings are prefilled.\n\n", configPath)
		answers = PrefillFromConfig(answers, existing)
	}

	fmt.Println("gmail-ai-unsub setup")
	fmt.Printf("  Config: %s\n", filepath.Dir(configPath))
	fmt.Printf("  State:  %s\n\n", filepath.Dir(answers.StateFile))

	var advanced bool
	if err := survey.AskOne(&survey.Confirm{
		Message: "Customize advanced settings (Gmail API files, storage, temperature)?",
		Default: false,
	}, &advanced); err != nil {
		return err
	}

	if err := promptLLM(&answers, advanced); err != nil {
		return err
	}
	if advanced {
		if err := promptGmail(&answers); err != nil {
			return err
		}
	}
	if err := promptLabels(&answers); err != nil {
		return err
	}
	if advanced {
		if err := promptStorage(&answers); err != nil {
			return err
		}
	}
	if err := promptUnsubscribe(&answers); err != nil {
		return err
	}
	if err := promptPreferences(&answers); err != nil {
		return err
	}
	if err := promptAPIKey(&answers); err != nil {
		return err
	}

	printSummary(answers)

	var save bool
	if err := survey.AskOne(&survey.Confirm{Message: "Save this configuration?", Default: true}, &save); err != nil {
		return err
	}
	if !save {
		fmt.Println("Setup cancelled.")
		return nil
	}

	if err := writeConfig(configPath, answers); err != nil {
		return err
	}
	fmt.Printf("Configuration saved to %s\n\n", configPath)

	if err := authenticateGmail(ctx, answers); err != nil {
		fmt.Printf("Gmail authentication failed: %v\n", err)
		fmt.Println("You can try again by running 'gmail-ai-unsub setup'.")
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Scan your inbox:      gmail-ai-unsub scan --days 30")
	fmt.Println("  2. Review labeled mail in Gmail, then: gmail-ai-unsub unsubscribe")
	return nil
}

func promptLLM(a *Answers, advanced bool) error {
	if err := survey.AskOne(&survey.Select{
		Message: "AI provider:",
		Options: []string{"google", "anthropic", "openai"},
		Default: a.Provider,
		Description: func(value string, _ int) string {
			switch value {
			case "anthropic":
				return "Anthropic Claude"
			case "openai":
				return "OpenAI GPT and o-series"
			default:
				return "Google Gemini (recommended)"
			}
		},
	}, &a.Provider); err != nil {
		return err
	}
	a.APIKeyEnv = APIKeyEnv(a.Provider)

	models := ModelsFor(a.Provider)
	options := make([]string, len(models))
	defaultModel := models[0].Value
	for i, m := range models {
		options[i] = m.Value
		if m.Value == a.Model {
			defaultModel = m.Value
		}
	}
	if err := survey.AskOne(&survey.Select{
		Message: "Model:",
		Options: options,
		Default: defaultModel,
		Description: func(value string, index int) string {
			return models[index].Description
		},
	}, &a.Model); err != nil {
		return err
	}

	if a.Provider == "google" {
		def := a.ThinkingLevel
		if def == "" {
			def = "disabled"
		}
		var level string
		if err := survey.AskOne(&survey.Select{
			Message: "Reasoning level:",
			Options: []string{"low", "high", "disabled"},
			Default: def,
		}, &level); err != nil {
			return err
		}
		if level == "disabled" {
			level = ""
		}
		a.ThinkingLevel = level
	}

	if !advanced {
		return nil
	}

	var temp string
	if a.Temperature != nil {
		temp = strconv.FormatFloat(*a.Temperature, 'g', -1, 64)
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Temperature (0.0-1.0, empty for model default):",
		Default: temp,
	}, &temp); err != nil {
		return err
	}
	if temp == "" {
		a.Temperature = nil
	} else {
		v, err := strconv.ParseFloat(temp, 64)
		if err != nil || v < 0 || v > 1 {
			return fmt.Errorf("temperature must be a number between 0 and 1")
		}
		a.Temperature = &v
	}

	var maxTokens string
	if a.MaxTokens > 0 {
		maxTokens = strconv.Itoa(a.MaxTokens)
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Max output tokens (empty for model default):",
		Default: maxTokens,
	}, &maxTokens); err != nil {
		return err
	}
	if maxTokens == "" {
		a.MaxTokens = 0
	} else {
		n, err := strconv.Atoi(maxTokens)
		if err != nil || n < 0 {
			return fmt.Errorf("max tokens must be a non-negative integer")
		}
		a.MaxTokens = n
	}
	return nil
}

func promptGmail(a *Answers) error {
	if err := survey.AskOne(&survey.Input{
		Message: "Custom OAuth credentials.json (empty to use the built-in client):",
		Default: a.CredentialsFile,
	}, &a.CredentialsFile); err != nil {
		return err
	}
	return survey.AskOne(&survey.Input{
		Message: "Token file:",
		Default: a.TokenFile,
	}, &a.TokenFile)
}

func promptLabels(a *Answers) error {
	if err := survey.AskOne(&survey.Input{
		Message: "Label for emails to unsubscribe from:",
		Default: a.MarketingLabel,
	}, &a.MarketingLabel, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Label applied after a successful unsubscribe:",
		Default: a.UnsubscribedLabel,
	}, &a.UnsubscribedLabel, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	return survey.AskOne(&survey.Input{
		Message: "Label applied when an unsubscribe fails:",
		Default: a.FailedLabel,
	}, &a.FailedLabel, survey.WithValidator(survey.Required))
}

func promptStorage(a *Answers) error {
	if err := survey.AskOne(&survey.Input{
		Message: "State file:",
		Default: a.StateFile,
	}, &a.StateFile); err != nil {
		return err
	}
	return survey.AskOne(&survey.Input{
		Message: "Analysis cache file:",
		Default: a.CacheFile,
	}, &a.CacheFile)
}

func promptUnsubscribe(a *Answers) error {
	if err := survey.AskOne(&survey.Confirm{
		Message: "Run the browser headless (no visible window)?",
		Default: a.Headless,
	}, &a.Headless); err != nil {
		return err
	}
	timeout := strconv.Itoa(a.BrowserTimeout)
	if err := survey.AskOne(&survey.Input{
		Message: "Browser timeout in seconds:",
		Default: timeout,
	}, &timeout); err != nil {
		return err
	}
	n, err := strconv.Atoi(timeout)
	if err != nil || n < 10 || n > 300 {
		return fmt.Errorf("browser timeout must be between 10 and 300 seconds")
	}
	a.BrowserTimeout = n
	return survey.AskOne(&survey.Confirm{
		Message: "Send unsubscribe emails for mailto: links?",
		Default: a.EnableMailto,
	}, &a.EnableMailto)
}

func promptPreferences(a *Answers) error {
	fmt.Println("\nOptionally describe what you want to keep or avoid, in free form.")
	fmt.Println("Example: 'Keep NPR newsletters. Unsubscribe from all other Substack mail.'")
	return survey.AskOne(&survey.Input{
		Message: "Email preferences (empty to skip):",
		Default: a.UserPreferences,
	}, &a.UserPreferences)
}

func promptAPIKey(a *Answers) error {
	name := ProviderName(a.Provider)

	if a.APIKey != "" {
		var keep bool
		if err := survey.AskOne(&survey.Confirm{
			Message: fmt.Sprintf("Keep the existing API key (%s) from config.toml?", MaskKey(a.APIKey)),
			Default: true,
		}, &keep); err != nil {
			return err
		}
		if keep {
			a.SaveKeyToConfig = true
			return nil
		}
	}

	if envKey := os.Getenv(a.APIKeyEnv); envKey != "" {
		var useEnv bool
		if err := survey.AskOne(&survey.Confirm{
			Message: fmt.Sprintf("Use the API key from %s (%s)?", a.APIKeyEnv, MaskKey(envKey)),
			Default: true,
		}, &useEnv); err != nil {
			return err
		}
		if useEnv {
			a.APIKey = ""
			a.SaveKeyToConfig = false
			return nil
		}
	}

	fmt.Printf("\nGet an API key from %s: %s\n\n", name, APIKeyURL(a.Provider))

	var key string
	if err := survey.AskOne(&survey.Password{
		Message: fmt.Sprintf("Enter your %s API key:", name),
	}, &key); err != nil {
		return err
	}
	if key == "" {
		fmt.Printf("No API key provided; export %s before using the tool.\n", a.APIKeyEnv)
		a.APIKey = ""
		a.SaveKeyToConfig = false
		return nil
	}

	var where string
	if err := survey.AskOne(&survey.Select{
		Message: "Where should the API key be saved?",
		Options: []string{
			"Save to config.toml (recommended)",
			fmt.Sprintf("I'll set %s myself", a.APIKeyEnv),
		},
	}, &where); err != nil {
		return err
	}
	if where == "Save to config.toml (recommended)" {
		a.APIKey = key
		a.SaveKeyToConfig = true
	} else {
		fmt.Printf("Run: export %s=%s\n", a.APIKeyEnv, key)
		a.APIKey = ""
		a.SaveKeyToConfig = false
	}
	return nil
}

func printSummary(a Answers) {
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Provider:  %s\n", a.Provider)
	fmt.Printf("  Model:     %s\n", a.Model)
	if a.SaveKeyToConfig && a.APIKey != "" {
		fmt.Printf("  API key:   %s\n", MaskKey(a.APIKey))
	} else {
		fmt.Printf("  API key:   from %s\n", a.APIKeyEnv)
	}
	fmt.Printf("  Labels:    %s / %s / %s\n", a.MarketingLabel, a.UnsubscribedLabel, a.FailedLabel)
	fmt.Printf("  Headless:  %t\n", a.Headless)
}

func writeConfig(path string, a Answers) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(a.Render(path)), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func authenticateGmail(ctx context.Context, a Answers) error {
	if google.HasToken(a.TokenFile) {
		var reauth bool
		if err := survey.AskOne(&survey.Confirm{
			Message: "Gmail is already authenticated. Re-authenticate?",
			Default: false,
		}, &reauth); err != nil {
			return err
		}
		if !reauth {
			return nil
		}
	}

	fmt.Println("\nThis tool requests the following Gmail permissions:")
	for _, scope := range google.ScopeDescriptions() {
		fmt.Printf("  - %s\n", scope[1])
	}
	fmt.Println("Credentials are stored locally and never sent anywhere else.")

	var proceed bool
	if err := survey.AskOne(&survey.Confirm{
		Message: "Open a browser to authenticate with Gmail?",
		Default: true,
	}, &proceed); err != nil {
		return err
	}
	if !proceed {
		fmt.Println("Gmail authentication skipped; run 'gmail-ai-unsub setup' later.")
		return nil
	}

	if err := google.Authenticate(ctx, a.CredentialsFile, a.TokenFile); err != nil {
		return err
	}
	fmt.Println("Gmail authentication successful.")
	return nil
}

// loadExisting decodes an existing config file without applying defaults.
// Returns nil when the file is missing or unreadable.
func loadExisting(path string) *config.Config {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	var cfg config.Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil
	}
	return &cfg
}
