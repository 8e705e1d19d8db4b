package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a YAML configuration file from path. Environment
// variables of the form ${VAR} or $VAR are expanded before parsing, and
// unknown fields are rejected so a typo in the YAML surfaces immediately
// rather than silently falling back to a zero value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := decoder.Decode(new(any)); err != io.EOF {
		return nil, fmt.Errorf("config: %s contains more than one YAML document", path)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field invariants Load can't express through
// struct tags alone.
func Validate(cfg *Config) error {
	if len(cfg.Agents) == 0 {
		return fmt.Errorf("config: at least one agent must be configured")
	}
	seen := make(map[string]struct{}, len(cfg.Agents))
	for _, a := range cfg.Agents {
		if a.Name == "" {
			return fmt.Errorf("config: every agent needs a name")
		}
		if _, exists := seen[a.Name]; exists {
			return fmt.Errorf("config: duplicate agent name %q", a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	if cfg.Workflow.Type == "" {
		return fmt.Errorf("config: workflow.type is required")
	}
	return nil
}
