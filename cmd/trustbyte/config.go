package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultAPIBase = "http://localhost:8081"

// Config holds CLI settings read from config.yaml. The TRUSTBYTE_API
// environment variable overrides the file.
type Config struct {
	APIBase string `yaml:"api_base"`
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trustbyte", "config.yaml"), nil
}

func loadConfig() (Config, error) {
	cfg := Config{APIBase: defaultAPIBase}

	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
		if cfg.APIBase == "" {
			cfg.APIBase = defaultAPIBase
		}
	}

	if v := os.Getenv("TRUSTBYTE_API"); v != "" {
		cfg.APIBase = v
	}
	return cfg, nil
}
