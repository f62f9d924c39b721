package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from the given YAML file (if it exists), then
// overrides with environment variables, then applies defaults.
//
// Precedence, highest first:
//  1. Environment variables (SERVER_PORT, QDRANT_HOST, GENERATION_API_KEY, ...)
//  2. YAML config file
//  3. Defaults
//
// Environment variables map to config keys by lowercasing and splitting on
// the first underscore: SERVER_SHUTDOWN_TIMEOUT -> server.shutdown_timeout.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	// Only the known section prefixes are consumed so unrelated process
	// environment (PATH, HOME, ...) cannot leak into the config tree.
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// sections are the env var prefixes that map into the config tree.
var sections = []string{
	"SERVER_", "LOGGING_", "STORE_", "QDRANT_",
	"EMBEDDING_", "GENERATION_", "SESSION_", "RETRIEVAL_",
}

// envTransform maps SECTION_FIELD_NAME to section.field_name. Variables
// outside the known sections are dropped.
func envTransform(s string) string {
	matched := false
	for _, prefix := range sections {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			matched = true
			break
		}
	}
	if !matched {
		return ""
	}

	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	return parts[0] + "." + parts[1]
}
