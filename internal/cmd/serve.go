package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GAkim/promo-gateway/internal/captcha"
	"github.com/GAkim/promo-gateway/internal/cms"
	"github.com/GAkim/promo-gateway/internal/config"
	"github.com/GAkim/promo-gateway/internal/gatekeeper"
	"github.com/GAkim/promo-gateway/internal/observability"
	"github.com/GAkim/promo-gateway/internal/ratelimit"
	"github.com/GAkim/promo-gateway/internal/seo"
	"github.com/GAkim/promo-gateway/internal/server"
	"github.com/GAkim/promo-gateway/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// cmsHealthChecker degrades readiness when the forwarding credential is absent.
type cmsHealthChecker struct {
	store cms.SubmissionStore
}

func (c cmsHealthChecker) CheckHealth(ctx context.Context) error {
	if c.store == nil || !c.store.Configured() {
		return errors.New("cms credential not configured")
	}
	return nil
}

// captchaHealthChecker flags the enforce-without-secret misconfiguration.
type captchaHealthChecker struct {
	policy captcha.Policy
	secret string
}

func (c captchaHealthChecker) CheckHealth(ctx context.Context) error {
	if c.policy == captcha.Enforce && c.secret == "" {
		return errors.New("captcha enforced but no secret configured")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

SIGINT or SIGTERM triggers a graceful shutdown: the HTTP server drains
in-flight requests, the rate-limit sweep stops, and logs are flushed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		observability.InitServerLogger("promogate", cfg.Logging.Level)
		logger := observability.ServerLogger

		logger.Info("Initializing server",
			zap.String("environment", cfg.Environment),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))

		// Rate-limit store: process-local by default, Redis when configured
		// so windows hold across replicas.
		var store ratelimit.Store
		if cfg.RateLimit.Redis.Addr != "" {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.RateLimit.Redis.Addr,
				Password: cfg.RateLimit.Redis.Password,
				DB:       cfg.RateLimit.Redis.DB,
			})
			store = ratelimit.NewRedisStore(client)
			logger.Info("Using Redis rate-limit store",
				zap.String("addr", cfg.RateLimit.Redis.Addr))
		} else {
			store = ratelimit.NewMemoryStore()
		}

		limiter := ratelimit.NewLimiter(store,
			ratelimit.WithSweepInterval(cfg.RateLimit.SweepInterval),
			ratelimit.WithLogger(logger))
		limiter.Start(cmd.Context())
		defer limiter.Stop()

		policy := captcha.PolicyFor(cfg.Environment, cfg.Captcha.Secret)
		if policy == captcha.Bypass {
			logger.Warn("CAPTCHA verification bypassed (non-production mode, no secret configured)")
		}

		captchaClient := &captcha.Client{
			Secret:     cfg.Captcha.Secret,
			VerifyURL:  cfg.Captcha.VerifyURL,
			HTTPClient: &http.Client{Timeout: orDuration(cfg.Captcha.Timeout, 10*time.Second)},
			Logger:     logger,
		}

		cmsClient := &cms.Client{
			BaseURL:    cfg.CMS.BaseURL,
			Token:      cfg.CMS.Token,
			HTTPClient: &http.Client{Timeout: orDuration(cfg.CMS.Timeout, 10*time.Second)},
			Logger:     logger,
		}

		gk := &gatekeeper.Gatekeeper{
			Store:         cmsClient,
			Captcha:       captchaClient,
			CaptchaPolicy: policy,
			Limiter:       limiter,
			IPPolicy:      gatekeeper.WindowPolicy{Max: cfg.RateLimit.IPMax, Window: cfg.RateLimit.IPWindow},
			EmailPolicy:   gatekeeper.WindowPolicy{Max: cfg.RateLimit.EmailMax, Window: cfg.RateLimit.EmailWindow},
			Logger:        logger,
		}

		site, err := seo.New(seo.Config{
			BaseURL:       cfg.Site.BaseURL,
			DefaultLocale: cfg.Site.DefaultLocale,
			Locales:       cfg.Site.Locales,
			XDefault:      cfg.Site.XDefault,
		})
		if err != nil {
			return err
		}

		health := handlers.NewHealthManager(versionInfo.Version)
		health.RegisterChecker("cms", cmsHealthChecker{store: cmsClient})
		health.RegisterChecker("captcha", captchaHealthChecker{policy: policy, secret: cfg.Captcha.Secret})

		srv := server.New(cfg.Server, server.Deps{
			Gatekeeper: gk,
			Site:       site,
			Health:     health,
			Throttle:   cfg.Throttle,
			Logger:     logger,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		select {
		case err := <-errChan:
			return err
		case <-ctx.Done():
		}

		shutdownTimeout := orDuration(cfg.Server.ShutdownTimeout, 10*time.Second)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
			return err
		}

		logger.Info("HTTP server stopped gracefully")
		_ = logger.Sync()
		return nil
	},
}

func orDuration(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
