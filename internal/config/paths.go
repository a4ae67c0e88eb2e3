package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "gmail-ai-unsub"

// ConfigDir returns the per-user configuration directory for the application.
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDirName)
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	return filepath.Join(homeDir(), ".config", appDirName)
}

// CacheDir returns the per-user cache directory for the application.
func CacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches", appDirName)
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appDirName)
		}
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	return filepath.Join(homeDir(), ".cache", appDirName)
}

// ConfigFile returns the default config.toml location.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// TokenFile returns the default OAuth token cache location.
func TokenFile() string {
	return filepath.Join(CacheDir(), "token.json")
}

// StateFile returns the default unsubscribe state file location.
func StateFile() string {
	return filepath.Join(ConfigDir(), "state.json")
}

// CacheFile returns the default analysis cache database location.
func CacheFile() string {
	return filepath.Join(CacheDir(), "cache.db")
}

// legacyDir is the pre-XDG dot-directory config location.
func legacyDir() string {
	return filepath.Join(homeDir(), "."+appDirName)
}

// FindConfigFile searches the standard locations for an existing config.toml.
// Search order: current directory, XDG config dir, legacy dot-directory.
// Returns an empty string when no config file exists.
func FindConfigFile() string {
	candidates := []string{
		"config.toml",
		ConfigFile(),
		filepath.Join(legacyDir(), "config.toml"),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}
