package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for pulsedcm.
type FileConfig struct {
	Action  *string `yaml:"action"`
	Policy  *string `yaml:"policy"`
	Out     *string `yaml:"out"`
	Jobs    *int    `yaml:"jobs"`
	Verbose *bool   `yaml:"verbose"`
	NoColor *bool   `yaml:"no_color"`
	Include *string `yaml:"include"`
	Exclude *string `yaml:"exclude"`
	// Audit is the path of a JSONL file that records every run.
	Audit *string `yaml:"audit"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the given root.
// It supports .pulsedcm.yml/.yaml and pulsedcm.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".pulsedcm.yml", ".pulsedcm.yaml", "pulsedcm.yml", "pulsedcm.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "pulsedcm", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Save writes cfg as YAML, omitting unset fields.
func Save(path string, cfg FileConfig) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
