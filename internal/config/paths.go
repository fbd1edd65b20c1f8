package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName names the config subdirectory.
const AppName = "todo-cli"

// ConfigFileName is the config file name inside the config directory.
const ConfigFileName = "config.toml"

// UserConfigPath returns where the user config file lives, whether or not it
// exists. It returns "" when no config directory can be determined.
func UserConfigPath() string {
	dir := osUserConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, AppName, ConfigFileName)
}

// findUserConfigFile returns the user config file if it exists.
func findUserConfigFile() string {
	path := UserConfigPath()
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	default:
		// On Linux/BSD, respect XDG_CONFIG_HOME or use ~/.config
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// expandPath expands $VAR references, then a leading ~ to the home directory.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
