// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package config loads and validates Rolltrace configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//
//  1. Built-in defaults (defaultConfig)
//  2. Config file (config.yaml, see DefaultConfigPaths)
//  3. Environment variables (see envTransformFunc)
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrMissingCredentials indicates the upstream identity credentials are not
// configured. This is detected synchronously at startup, before any network
// attempt, and surfaced to the operator as a configuration error.
var ErrMissingCredentials = errors.New("upstream credentials are not configured: username, password and client id are required")

// Config is the root configuration structure.
type Config struct {
	Upstream UpstreamConfig `koanf:"upstream"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Timeline TimelineConfig `koanf:"timeline"`
}

// UpstreamConfig holds the remote asset-management API and identity provider
// settings. All values are externally supplied; none are hardcoded secrets.
type UpstreamConfig struct {
	// IdentityURL is the OAuth2 identity endpoint (password grant).
	IdentityURL string `koanf:"identity_url" validate:"required,url"`

	// APIBaseURL is the asset-management API base URL.
	APIBaseURL string `koanf:"api_base_url" validate:"required,url"`

	// ClientID is the OAuth2 client identifier.
	ClientID string `koanf:"client_id"`

	// Username and Password authenticate the password grant.
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// TenantID is sent as the Third-Party header on every API call.
	TenantID string `koanf:"tenant_id" validate:"required"`

	// RequestTimeout bounds each upstream HTTP request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// TokenExpiryBuffer is subtracted from the token expiry so a token is
	// refreshed shortly before the upstream would reject it.
	TokenExpiryBuffer time.Duration `koanf:"token_expiry_buffer"`

	// ServiceAccount is the operator sentinel that marks machine-generated
	// events; detail content suppresses the operator line when it matches.
	ServiceAccount string `koanf:"service_account"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8417".
	Addr string `koanf:"addr" validate:"required"`

	// ShutdownTimeout is the graceful shutdown window.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins for the browser shell.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitPerMinute caps requests per client IP per minute.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"min=0"`

	// CacheTTL bounds how long a composed asset view is served from memory
	// before a fresh upstream load.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TimelineConfig holds projection tunables. Defaults reproduce the upstream
// product behavior; they are exposed so an operator can retune without a
// rebuild.
type TimelineConfig struct {
	// GapThresholdDays is the real-time gap above which compressed mode
	// inserts a gap marker.
	GapThresholdDays int `koanf:"gap_threshold_days" validate:"min=1"`

	// SyntheticSpacingDays is the fixed spacing between consecutive events
	// in compressed mode.
	SyntheticSpacingDays int `koanf:"synthetic_spacing_days" validate:"min=1"`

	// RowHeightPx and HeaderHeightPx derive the rendered timeline height
	// from the number of active rows. MinHeightPx is the floor.
	RowHeightPx    int `koanf:"row_height_px" validate:"min=1"`
	HeaderHeightPx int `koanf:"header_height_px" validate:"min=0"`
	MinHeightPx    int `koanf:"min_height_px" validate:"min=0"`

	// MaxInlineThumbnails caps how many thumbnails detail content inlines;
	// the remainder is reported as an overflow count.
	MaxInlineThumbnails int `koanf:"max_inline_thumbnails" validate:"min=0"`

	// WindowPaddingDays extends the initial window beyond today so the most
	// recent events are not clipped at the right edge.
	WindowPaddingDays int `koanf:"window_padding_days" validate:"min=0"`
}

// defaultConfig returns a Config with all default values applied.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			IdentityURL:       "",
			APIBaseURL:        "",
			ClientID:          "",
			Username:          "",
			Password:          "",
			TenantID:          "",
			RequestTimeout:    30 * time.Second,
			TokenExpiryBuffer: 10 * time.Second,
			ServiceAccount:    "service.account",
		},
		Server: ServerConfig{
			Addr:               ":8417",
			ShutdownTimeout:    10 * time.Second,
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 300,
			CacheTTL:           time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Timeline: TimelineConfig{
			GapThresholdDays:     90,
			SyntheticSpacingDays: 14,
			RowHeightPx:          40,
			HeaderHeightPx:       60,
			MinHeightPx:          200,
			MaxInlineThumbnails:  4,
			WindowPaddingDays:    30,
		},
	}
}

// Validate checks the configuration for correctness.
//
// Missing upstream credentials are reported as ErrMissingCredentials so the
// caller can distinguish a misconfigured deployment from a malformed one.
func (c *Config) Validate() error {
	if c.Upstream.Username == "" || c.Upstream.Password == "" || c.Upstream.ClientID == "" {
		return ErrMissingCredentials
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid configuration: field %s failed %q validation", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
