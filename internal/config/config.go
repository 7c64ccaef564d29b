package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultDataURL = "https://stsci.box.com/shared/static/qxpiaxsjwo15ml6m4pkhtk36c9jgj70k.gz"

type Config struct {
	DataPath          PathSetting `yaml:"webbpsf_path"`
	StrictEnvironment bool        `yaml:"strict_environment"`
	LogLevel          string      `yaml:"log_level"`
	Watch             bool        `yaml:"watch"`
	Data              DataConfig  `yaml:"data"`
}

// DataConfig controls how the reference data is fetched on first run.
type DataConfig struct {
	URL            string `yaml:"url"`
	Digest         string `yaml:"digest"`
	Command        string `yaml:"command"`
	MinFreeMB      int    `yaml:"min_free_mb"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		DataPath:          DeferToEnvironment(),
		StrictEnvironment: false,
		LogLevel:          "info",
		Data: DataConfig{
			URL:            DefaultDataURL,
			Digest:         "",
			Command:        "",
			MinFreeMB:      0,
			TimeoutSeconds: 600,
		},
	}
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return parse(data)
}

// LoadOptional is Load, except a missing file yields DefaultConfig.
func LoadOptional(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// Write then rename so a concurrent Watch never reads a partial file.
	tmp, err := os.CreateTemp(dir, ".webbpsf-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func validate(cfg Config) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("log_level must be debug|info|warn|error")
	}
	if cfg.Data.MinFreeMB < 0 {
		return errors.New("data.min_free_mb must be >= 0")
	}
	if cfg.Data.TimeoutSeconds < 0 {
		return errors.New("data.timeout_seconds must be >= 0")
	}
	if d := cfg.Data.Digest; d != "" {
		algo, sum, ok := strings.Cut(d, ":")
		if !ok || sum == "" {
			return fmt.Errorf("data.digest must be <algorithm>:<hex>, got %q", d)
		}
		switch strings.ToLower(algo) {
		case "sha256", "blake2b":
		default:
			return fmt.Errorf("data.digest algorithm must be sha256|blake2b, got %q", algo)
		}
	}
	// Only the default location is ever bootstrapped, so an explicit
	// webbpsf_path needs no fetch source.
	if cfg.DataPath.Kind() != Explicit && cfg.Data.URL == "" && cfg.Data.Command == "" {
		return errors.New("data.url or data.command is required unless webbpsf_path is explicit")
	}
	return nil
}
