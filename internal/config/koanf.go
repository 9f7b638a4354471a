// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/rolltrace/config.yaml",
	"/etc/rolltrace/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Comma-separated env override for the origins slice
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitAndTrim(origins)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, honoring the
// CONFIG_PATH override.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc transforms environment variable names to koanf config
// paths.
//
// Examples:
//   - IDENTITY_URL -> upstream.identity_url
//   - API_BASE_URL -> upstream.api_base_url
//   - HTTP_ADDR -> server.addr
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Upstream identity and API
		"identity_url":        "upstream.identity_url",
		"api_base_url":        "upstream.api_base_url",
		"client_id":           "upstream.client_id",
		"api_username":        "upstream.username",
		"api_password":        "upstream.password",
		"tenant_id":           "upstream.tenant_id",
		"request_timeout":     "upstream.request_timeout",
		"token_expiry_buffer": "upstream.token_expiry_buffer",
		"service_account":     "upstream.service_account",

		// Server
		"http_addr":             "server.addr",
		"shutdown_timeout":      "server.shutdown_timeout",
		"rate_limit_per_minute": "server.rate_limit_per_minute",
		"cache_ttl":             "server.cache_ttl",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Timeline tunables
		"gap_threshold_days":     "timeline.gap_threshold_days",
		"synthetic_spacing_days": "timeline.synthetic_spacing_days",
		"row_height_px":          "timeline.row_height_px",
		"header_height_px":       "timeline.header_height_px",
		"min_height_px":          "timeline.min_height_px",
		"max_inline_thumbnails":  "timeline.max_inline_thumbnails",
		"window_padding_days":    "timeline.window_padding_days",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown variables are dropped rather than guessed at; a stray
	// HOSTNAME or PATH must not leak into the config tree.
	return ""
}

// splitAndTrim splits a comma-separated value into trimmed, non-empty parts.
func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
