package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/choomlang/choom/errors"
)

type Config struct {
	Transport   string  `yaml:"transport"`
	BaseURL     string  `yaml:"base_url"`
	AModel      string  `yaml:"a_model"`
	BModel      string  `yaml:"b_model"`
	TimeoutS    float64 `yaml:"timeout_s"`
	KeepAliveS  float64 `yaml:"keep_alive_s"`
	Log         string  `yaml:"log"`
	MaxTurns    int     `yaml:"max_turns"`
	ProfilesDir string  `yaml:"profiles_dir"`
}

func defaults() *Config {
	return &Config{
		Transport:   "ollama",
		BaseURL:     "http://localhost:11434",
		TimeoutS:    180,
		KeepAliveS:  300,
		MaxTurns:    6,
		ProfilesDir: "profiles",
	}
}

// LoadConfig loads configuration from the user's home directory and the
// current working directory, with the latter taking precedence over both
// the former and the built-in defaults.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	// User-level config first
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".choom", "config.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := loadFromFile(userConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	// Project-level config, overriding user-level
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectConfigPath := filepath.Join(wd, ".choom", "config.yaml")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := loadFromFile(projectConfigPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites fields present in the YAML. This gives a simple
	// merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}
