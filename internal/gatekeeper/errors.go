package gatekeeper

import (
	"fmt"
	"time"
)

// ConfigError signals a missing server-side credential. The request fails
// closed before any of its content is inspected.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("server configuration error: %s not configured", e.Missing)
}

// SpamError rejects a submission flagged as automated, by either the
// honeypot or CAPTCHA verification. The client message is deliberately vague.
type SpamError struct {
	Reason string
}

func (e *SpamError) Error() string { return "Submission rejected" }

// RateLimitError denies a submission that exceeded one of the two windows.
type RateLimitError struct {
	Scope      string // "ip" or "email"
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "Too many requests. Please try again later."
}

// RetryAfterSeconds reports the delay in whole seconds, rounded up so a
// client that waits the advertised delay lands in the next window.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// ValidationError carries the first failing field rule's message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UpstreamError reports a failed relay to the content store. Detail is the
// opaque upstream body, the only internal detail allowed on the wire.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("failed to forward submission: upstream status %d", e.Status)
}
