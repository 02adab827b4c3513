// Package config holds the typed application configuration, loaded by the
// CLI layer through viper (defaults, optional YAML file, PROMO_* env vars).
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	// Environment gates CAPTCHA enforcement: anything other than
	// "production" combined with a missing secret bypasses verification.
	Environment string `mapstructure:"environment"`

	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CMS       CMSConfig       `mapstructure:"cms"`
	Captcha   CaptchaConfig   `mapstructure:"captcha"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Throttle  ThrottleConfig  `mapstructure:"throttle"`
	Site      SiteConfig      `mapstructure:"site"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// CMSConfig points at the headless CMS that stores accepted submissions.
type CMSConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CaptchaConfig contains the verification service settings. An empty secret
// outside production disables enforcement.
type CaptchaConfig struct {
	Secret    string        `mapstructure:"secret"`
	VerifyURL string        `mapstructure:"verify_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig holds the two per-identifier window policies and the
// sweep interval for the in-memory store.
type RateLimitConfig struct {
	IPMax         int           `mapstructure:"ip_max"`
	IPWindow      time.Duration `mapstructure:"ip_window"`
	EmailMax      int           `mapstructure:"email_max"`
	EmailWindow   time.Duration `mapstructure:"email_window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// Redis switches the window store to a shared backend when Addr is set,
	// so the same windows apply across replicas.
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains the optional shared rate-limit store settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ThrottleConfig configures the coarse token-bucket flood brake in front of
// the contact endpoint, independent of the per-identifier windows.
type ThrottleConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// SiteConfig describes the public site's locale layout for SEO metadata.
type SiteConfig struct {
	BaseURL       string   `mapstructure:"base_url"`
	DefaultLocale string   `mapstructure:"default_locale"`
	Locales       []string `mapstructure:"locales"`
	XDefault      string   `mapstructure:"x_default"`
}
