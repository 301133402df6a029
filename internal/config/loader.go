package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the config file at path, fills defaults, and applies
// environment overrides. A missing file is not an error: defaults plus
// environment are used. The format is chosen by extension: .yaml/.yml parse
// as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := unmarshal(path, data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// applyEnv overlays environment variables onto cfg. Environment always wins
// over the file so deployments can keep credentials out of config files.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PERSONAFORGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_BASE"); v != "" {
		cfg.LLM.APIBase = v
	}
	if v := os.Getenv("PERSONAFORGE_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("X_BEARER_TOKEN"); v != "" {
		cfg.X.BearerToken = v
	}
	if v := os.Getenv("PDF_EXTRACT_URL"); v != "" {
		cfg.Browse.PDFExtractURL = v
	}
}
