package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the command a lead is piped to.
type Config struct {
	Command     string
	Args        []string
	Environment map[string]string
	Dir         string
	Timeout     time.Duration
}

// fileConfig is Config as written on disk. The timeout is a duration
// string ("10s") in both YAML and JSON.
type fileConfig struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	Timeout     string            `yaml:"timeout" json:"timeout"`
}

// LoadConfig reads a delivery command definition (YAML or JSON).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read delivery command config: %w", err)
	}

	var raw fileConfig
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg := Config{
		Command:     raw.Command,
		Args:        raw.Args,
		Environment: raw.Environment,
		Dir:         raw.Dir,
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid timeout %q: %w", path, raw.Timeout, err)
		}
		cfg.Timeout = d
	}

	if strings.TrimSpace(cfg.Command) == "" {
		return Config{}, fmt.Errorf("%s: command is required", path)
	}
	if cfg.Dir != "" && !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	return cfg, nil
}
