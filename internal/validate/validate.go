// Package validate holds the pure validation and sanitization rules applied
// to contact-form submissions before they are forwarded upstream.
package validate

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits for contact submissions.
const (
	MaxNameLen    = 100
	MaxSubjectLen = 200
	MinMessageLen = 10
	MaxMessageLen = 2000

	// MaxEmailLen is the practical RFC 5321 ceiling, enforced before the
	// email is used as a rate-limit key.
	MaxEmailLen = 254
)

// SubmissionStatus is attached to every sanitized submission forwarded to the CMS.
const SubmissionStatus = "new"

// emailPattern accepts local@domain.tld shapes: non-whitespace segments around
// a single @ and at least one dot in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Payload is the transient contact-form input.
type Payload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	CaptchaToken  string `json:"recaptchaToken"`
	HoneypotURL   string `json:"website_url"`
	HoneypotField string `json:"website"`
}

// SanitizedSubmission is the validated, entity-encoded form of a Payload.
// It is only ever derived from a payload that passed CheckFields.
type SanitizedSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// FieldError reports the first validation rule a payload violated.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// TrippedHoneypot reports whether either decoy field carries a value.
// Both historical field names are checked.
func TrippedHoneypot(p Payload) bool {
	return strings.TrimSpace(p.HoneypotURL) != "" || strings.TrimSpace(p.HoneypotField) != ""
}

// NormalizeEmail lowercases and trims an email address so limiter keys and
// stored values stay consistent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address matches a basic local@domain.tld shape.
func ValidEmail(email string) bool {
	email = NormalizeEmail(email)
	if email == "" || len(email) > MaxEmailLen {
		return false
	}
	return emailPattern.MatchString(email)
}

// CheckFields validates a payload and returns the first failing rule,
// or nil when the payload is acceptable.
func CheckFields(p Payload) error {
	name := strings.TrimSpace(p.Name)
	subject := strings.TrimSpace(p.Subject)
	message := strings.TrimSpace(p.Message)
	email := NormalizeEmail(p.Email)

	if name == "" || subject == "" || message == "" || email == "" {
		return errors.New("All fields are required")
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return &FieldError{Field: "name", Message: "Name must be 100 characters or less"}
	}
	if utf8.RuneCountInString(subject) > MaxSubjectLen {
		return &FieldError{Field: "subject", Message: "Subject must be 200 characters or less"}
	}
	if n := utf8.RuneCountInString(message); n < MinMessageLen || n > MaxMessageLen {
		return &FieldError{Field: "message", Message: "Message must be between 10 and 2000 characters"}
	}
	if !ValidEmail(email) {
		return &FieldError{Field: "email", Message: "Please provide a valid email address"}
	}
	return nil
}

// Sanitize entity-encodes the HTML-significant characters (& < > " ') on
// name, subject and message, leaves the email untouched beyond normalization,
// and attaches the fixed submission status.
func Sanitize(p Payload) SanitizedSubmission {
	return SanitizedSubmission{
		Name:    html.EscapeString(strings.TrimSpace(p.Name)),
		Email:   NormalizeEmail(p.Email),
		Subject: html.EscapeString(strings.TrimSpace(p.Subject)),
		Message: html.EscapeString(strings.TrimSpace(p.Message)),
		Status:  SubmissionStatus,
	}
}
