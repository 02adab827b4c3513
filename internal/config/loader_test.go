package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "info", cfg.Logging.Level)

	require.Empty(t, cfg.CMS.BaseURL)
	require.Empty(t, cfg.CMS.Token)
	require.Equal(t, 10*time.Second, cfg.CMS.Timeout)
	require.Empty(t, cfg.Captcha.Secret)

	require.Equal(t, 5, cfg.RateLimit.IPMax)
	require.Equal(t, time.Hour, cfg.RateLimit.IPWindow)
	require.Equal(t, 3, cfg.RateLimit.EmailMax)
	require.Equal(t, time.Hour, cfg.RateLimit.EmailWindow)
	require.Equal(t, 2*time.Hour, cfg.RateLimit.SweepInterval)
	require.Empty(t, cfg.RateLimit.Redis.Addr)

	require.True(t, cfg.Throttle.Enabled)
	require.Equal(t, 10.0, cfg.Throttle.RPS)
	require.Equal(t, 20, cfg.Throttle.Burst)

	require.Equal(t, "https://kuponi.example.lv", cfg.Site.BaseURL)
	require.Equal(t, "lv", cfg.Site.DefaultLocale)
	require.Equal(t, []string{"lv", "en", "ru"}, cfg.Site.Locales)
	require.Equal(t, "en", cfg.Site.XDefault)
}

func TestEnvironmentVariableOverrides(t *testing.T) {
	t.Setenv("PROMO_SERVER_PORT", "9090")
	t.Setenv("PROMO_CMS_TOKEN", "secret-token")
	t.Setenv("PROMO_RATE_LIMIT_IP_MAX", "7")
	t.Setenv("PROMO_ENVIRONMENT", "production")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "secret-token", cfg.CMS.Token)
	require.Equal(t, 7, cfg.RateLimit.IPMax)
	require.Equal(t, "production", cfg.Environment)
}
