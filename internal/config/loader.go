package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all configuration environment variables,
// e.g. PROMO_SERVER_PORT or PROMO_CMS_TOKEN.
const EnvPrefix = "PROMO"

// SetDefaults installs default configuration values on the given viper
// instance. Pass viper.GetViper() for the process-wide instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// CMS defaults
	v.SetDefault("cms.base_url", "")
	v.SetDefault("cms.token", "")
	v.SetDefault("cms.timeout", "10s")

	// Captcha defaults
	v.SetDefault("captcha.secret", "")
	v.SetDefault("captcha.verify_url", "")
	v.SetDefault("captcha.timeout", "10s")

	// Rate limit defaults: IP window is the coarser, higher-ceiling axis
	v.SetDefault("rate_limit.ip_max", 5)
	v.SetDefault("rate_limit.ip_window", "1h")
	v.SetDefault("rate_limit.email_max", 3)
	v.SetDefault("rate_limit.email_window", "1h")
	v.SetDefault("rate_limit.sweep_interval", "2h")
	v.SetDefault("rate_limit.redis.addr", "")
	v.SetDefault("rate_limit.redis.password", "")
	v.SetDefault("rate_limit.redis.db", 0)

	// Throttle defaults
	v.SetDefault("throttle.enabled", true)
	v.SetDefault("throttle.rps", 10.0)
	v.SetDefault("throttle.burst", 20)

	// Site locale defaults. The x-default deliberately stays "en" while the
	// site default locale is "lv".
	v.SetDefault("site.base_url", "https://kuponi.example.lv")
	v.SetDefault("site.default_locale", "lv")
	v.SetDefault("site.locales", []string{"lv", "en", "ru"})
	v.SetDefault("site.x_default", "en")
}

// BindEnv wires PROMO_*-prefixed environment variables into the viper
// instance, with dots mapped to underscores (server.port → PROMO_SERVER_PORT).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the viper state into a typed Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
