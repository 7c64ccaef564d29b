package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvDataPath  = "WEBBPSF_PATH"
	EnvConfigDir = "WEBBPSF_CONFIG_DIR"

	ConfigFile = "webbpsf.yaml"
	EnvFile    = ".env"
)

// UserHome returns the current user's home directory.
func UserHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if home == "" {
		return "", errors.New("home directory not found")
	}
	return home, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv(EnvConfigDir); v != "" {
		return v, nil
	}
	home, err := UserHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".webbpsf"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFile), nil
}

func EnvFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, EnvFile), nil
}

// DefaultDataDir is the fallback reference-data location under home.
func DefaultDataDir(home string) string {
	return filepath.Join(home, "data", "webbpsf-data")
}

func EnsureDir(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	return os.MkdirAll(path, 0o755)
}

// HasHomePrefix reports whether ExpandHome would rewrite path.
func HasHomePrefix(path string) bool {
	return path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`)
}

// ExpandHome replaces a leading "~" or "~/" with homeDir. "~user" forms
// are left alone.
func ExpandHome(homeDir, path string) string {
	if !HasHomePrefix(path) {
		return path
	}
	if path == "~" {
		return homeDir
	}
	return filepath.Join(homeDir, path[2:])
}
