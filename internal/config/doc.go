// Package config loads the application configuration from a TOML file.
//
// Configuration lives in config.toml with sections [gmail], [llm], [labels],
// [prompts], [storage], [browser] and [unsubscribe]. When no explicit path is
// given, the loader searches the current directory, the XDG config directory
// and the legacy ~/.gmail-ai-unsub location.
//
// Secrets (LLM API keys) may be stored in the file or resolved from
// environment variables; the file value always wins. All filesystem paths in
// the config support ~ expansion.
package config
