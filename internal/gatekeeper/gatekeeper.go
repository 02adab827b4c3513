// Package gatekeeper sequences the abuse defenses applied to contact-form
// submissions. The pipeline is strict and short-circuiting: cheap,
// high-confidence bot filters run first, and each stage's failure is
// terminal for the request.
package gatekeeper

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GAkim/promo-gateway/internal/captcha"
	"github.com/GAkim/promo-gateway/internal/cms"
	"github.com/GAkim/promo-gateway/internal/ratelimit"
	"github.com/GAkim/promo-gateway/internal/validate"
)

// Default window policies. The IP axis has the higher ceiling and catches
// scripted floods; the email axis has the lower ceiling and catches one
// identity abused across rotating IPs.
const (
	DefaultIPMax      = 5
	DefaultEmailMax   = 3
	DefaultRateWindow = time.Hour

	ipKeyNamespace    = "ip:"
	emailKeyNamespace = "email:"
)

// Verifier is the CAPTCHA surface the gatekeeper depends on.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) captcha.Result
}

// WindowPolicy is one rate-limit axis.
type WindowPolicy struct {
	Max    int
	Window time.Duration
}

// Gatekeeper orchestrates the submission pipeline.
type Gatekeeper struct {
	Store         cms.SubmissionStore
	Captcha       Verifier
	CaptchaPolicy captcha.Policy
	Limiter       *ratelimit.Limiter
	IPPolicy      WindowPolicy
	EmailPolicy   WindowPolicy
	Logger        *zap.Logger
}

// Receipt confirms an accepted submission.
type Receipt struct {
	ID int64
}

// Process runs a submission through the full pipeline and either returns a
// receipt or the typed rejection for the first failing stage.
func (g *Gatekeeper) Process(ctx context.Context, payload validate.Payload, remoteIP string) (*Receipt, error) {
	// Preflight: without the forwarding credential nothing else matters.
	if g.Store == nil || !g.Store.Configured() {
		return nil, &ConfigError{Missing: "content store credential"}
	}

	if validate.TrippedHoneypot(payload) {
		return nil, g.rejectSpam("honeypot", remoteIP)
	}

	if g.CaptchaPolicy == captcha.Enforce {
		token := strings.TrimSpace(payload.CaptchaToken)
		if token == "" {
			return nil, g.rejectSpam("captcha token missing", remoteIP)
		}
		result := g.Captcha.Verify(ctx, token, remoteIP)
		if !result.Valid() {
			return nil, g.rejectSpam("captcha verification failed", remoteIP,
				zap.Strings("error_codes", result.ErrorCodes),
				zap.Int("failure_kind", int(result.Failure)))
		}
	}

	ipRes, err := g.Limiter.Check(ctx, ipKeyNamespace+remoteIP, g.ipPolicy().Max, g.ipPolicy().Window)
	if err != nil {
		return nil, err
	}
	if !ipRes.Allowed {
		g.logReject("rate_limit_ip", remoteIP, nil)
		return nil, &RateLimitError{Scope: "ip", RetryAfter: time.Until(ipRes.ResetAt)}
	}

	email := validate.NormalizeEmail(payload.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "Email is required"}
	}
	emailRes, err := g.Limiter.Check(ctx, emailKeyNamespace+email, g.emailPolicy().Max, g.emailPolicy().Window)
	if err != nil {
		return nil, err
	}
	if !emailRes.Allowed {
		g.logReject("rate_limit_email", remoteIP, nil)
		return nil, &RateLimitError{Scope: "email", RetryAfter: time.Until(emailRes.ResetAt)}
	}

	if err := validate.CheckFields(payload); err != nil {
		var fieldErr *validate.FieldError
		if errors.As(err, &fieldErr) {
			return nil, &ValidationError{Field: fieldErr.Field, Message: fieldErr.Message}
		}
		return nil, &ValidationError{Message: err.Error()}
	}

	sanitized := validate.Sanitize(payload)

	receipt, err := g.Store.CreateSubmission(ctx, sanitized)
	if err != nil {
		var statusErr *cms.StatusError
		if errors.As(err, &statusErr) {
			return nil, &UpstreamError{Status: statusErr.Status, Detail: statusErr.Detail}
		}
		return nil, &UpstreamError{Status: 0, Detail: err.Error()}
	}

	if g.Logger != nil {
		g.Logger.Info("submission accepted",
			zap.Int64("submission_id", receipt.ID),
			zap.String("remote_ip", remoteIP))
	}
	return &Receipt{ID: receipt.ID}, nil
}

func (g *Gatekeeper) ipPolicy() WindowPolicy {
	if g.IPPolicy.Max > 0 && g.IPPolicy.Window > 0 {
		return g.IPPolicy
	}
	return WindowPolicy{Max: DefaultIPMax, Window: DefaultRateWindow}
}

func (g *Gatekeeper) emailPolicy() WindowPolicy {
	if g.EmailPolicy.Max > 0 && g.EmailPolicy.Window > 0 {
		return g.EmailPolicy
	}
	return WindowPolicy{Max: DefaultEmailMax, Window: DefaultRateWindow}
}

func (g *Gatekeeper) logReject(stage, remoteIP string, extra []zap.Field) {
	if g.Logger == nil {
		return
	}
	fields := append([]zap.Field{
		zap.String("stage", stage),
		zap.String("remote_ip", remoteIP),
	}, extra...)
	g.Logger.Info("submission rejected", fields...)
}

// rejectSpam builds the terminal spam rejection and logs its reason. The
// reason stays server-side; the wire message is deliberately vague.
func (g *Gatekeeper) rejectSpam(reason, remoteIP string, extra ...zap.Field) error {
	err := &SpamError{Reason: reason}
	g.logReject("spam", remoteIP, append([]zap.Field{zap.String("reason", err.Reason)}, extra...))
	return err
}
