package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is loaded when present and --config is not given.
const DefaultConfigFile = "cedar.yaml"

// Config holds default file paths so repeated invocations don't need to
// repeat the same flags.
type Config struct {
	Policies string `yaml:"policies"`
	Entities string `yaml:"entities"`
	Schema   string `yaml:"schema"`
}

// LoadConfig reads a YAML config file. When path is empty, the default
// config file is used if it exists; a missing default is not an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// resolvePath prefers the flag value over the config value.
func resolvePath(flag, fromConfig string) string {
	if flag != "" {
		return flag
	}
	return fromConfig
}
