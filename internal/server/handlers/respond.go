// Package handlers implements the HTTP handlers for the submission gateway.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/GAkim/promo-gateway/internal/gatekeeper"
)

// ErrorResponder writes a client-facing error response for err.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

var defaultErrorResponder ErrorResponder = RespondWithError

var errorResponder = defaultErrorResponder

// SetErrorResponder lets the server package inject a centralized error
// handler. Passing nil restores the default.
func SetErrorResponder(responder ErrorResponder) {
	if responder == nil {
		errorResponder = defaultErrorResponder
		return
	}
	errorResponder = responder
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	errorResponder(w, r, err)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RespondWithError maps the gatekeeper error taxonomy onto the wire format:
// 400 for validation/spam, 429 with Retry-After for rate limits, 500 for
// configuration and upstream failures. Unknown errors become an opaque 500.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		configErr   *gatekeeper.ConfigError
		spamErr     *gatekeeper.SpamError
		rateErr     *gatekeeper.RateLimitError
		validateErr *gatekeeper.ValidationError
		upstreamErr *gatekeeper.UpstreamError
	)

	switch {
	case errors.As(err, &configErr):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "Server configuration error",
		})
	case errors.As(err, &spamErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Submission rejected",
		})
	case errors.As(err, &rateErr):
		retryAfter := rateErr.RetryAfterSeconds()
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":      "Too many requests. Please try again later.",
			"retryAfter": retryAfter,
		})
	case errors.As(err, &validateErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": validateErr.Message,
		})
	case errors.As(err, &upstreamErr):
		body := map[string]any{
			"error": "Failed to submit message",
		}
		if upstreamErr.Detail != "" {
			body["details"] = upstreamErr.Detail
		}
		writeJSON(w, http.StatusInternalServerError, body)
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "Internal server error",
		})
	}
}
