// Package captcha verifies human-verification tokens against the reCAPTCHA
// siteverify endpoint. Verification never fails open: any transport or
// decoding problem yields an invalid result carrying a generic error code.
package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultVerifyURL is the Google siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// verificationErrorCode is the single code surfaced for any client-side
// failure, keeping the fail-closed contract opaque on the wire.
const verificationErrorCode = "verification_error"

// Policy decides whether verification is enforced for a submission.
type Policy int

const (
	// Enforce requires a valid token on every submission.
	Enforce Policy = iota
	// Bypass skips verification entirely. Only selected when running in a
	// non-production mode with no usable secret configured.
	Bypass
)

// PolicyFor derives the enforcement policy from the runtime mode and the
// configured secret. Production always enforces.
func PolicyFor(environment, secret string) Policy {
	if !strings.EqualFold(strings.TrimSpace(environment), "production") && strings.TrimSpace(secret) == "" {
		return Bypass
	}
	return Enforce
}

// FailureKind distinguishes why a verification came back invalid, for logs
// only; the wire contract stays a single opaque code.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureUpstream: the service answered and rejected the token.
	FailureUpstream
	// FailureNetwork: the request never completed.
	FailureNetwork
	// FailureMalformed: the service answered with an undecodable body.
	FailureMalformed
)

// Result is the interpreted outcome of one verification call.
type Result struct {
	Success     bool
	ErrorCodes  []string
	Score       float64
	Hostname    string
	ChallengeTS string
	Failure     FailureKind
}

// Valid applies the conjunctive validity predicate: success reported AND no
// error codes attached. A success with error codes is treated as invalid.
func (r Result) Valid() bool {
	return r.Success && len(r.ErrorCodes) == 0
}

// Client calls the verification service. The secret never leaves the server
// boundary and is never logged.
type Client struct {
	Secret     string
	VerifyURL  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Verify checks a token, optionally binding it to the submitter's IP.
// It never returns an error: failures map to an invalid Result.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) Result {
	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	verifyURL := c.VerifyURL
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return c.failure(FailureNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return c.failure(FailureNetwork, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	var payload struct {
		Success     bool     `json:"success"`
		Score       float64  `json:"score"`
		ErrorCodes  []string `json:"error-codes"`
		ChallengeTS string   `json:"challenge_ts"`
		Hostname    string   `json:"hostname"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return c.failure(FailureMalformed, err)
	}

	result := Result{
		Success:     payload.Success,
		ErrorCodes:  payload.ErrorCodes,
		Score:       payload.Score,
		Hostname:    payload.Hostname,
		ChallengeTS: payload.ChallengeTS,
	}
	if !result.Valid() {
		result.Failure = FailureUpstream
	}
	return result
}

func (c *Client) failure(kind FailureKind, err error) Result {
	if c.Logger != nil {
		c.Logger.Warn("captcha verification failed",
			zap.Int("failure_kind", int(kind)),
			zap.Error(err))
	}
	return Result{
		Success:    false,
		ErrorCodes: []string{verificationErrorCode},
		Failure:    kind,
	}
}
