package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/GAkim/promo-gateway/internal/gatekeeper"
	"github.com/GAkim/promo-gateway/internal/validate"
)

// maxContactBody bounds the request body; the largest legal payload is a
// 2000-char message plus headers-worth of other fields.
const maxContactBody = 64 * 1024

// ContactHandler accepts contact-form submissions and runs them through the
// gatekeeper pipeline.
type ContactHandler struct {
	Gatekeeper *gatekeeper.Gatekeeper
	Logger     *zap.Logger
}

// ServeHTTP handles POST /api/contact.
func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload validate.Payload
	body := http.MaxBytesReader(w, r.Body, maxContactBody)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("rejecting undecodable contact payload",
				zap.Error(err),
				zap.String("remote_ip", clientIP(r)))
		}
		respondError(w, r, &gatekeeper.ValidationError{Message: "Invalid request body"})
		return
	}

	receipt, err := h.Gatekeeper.Process(r.Context(), payload, clientIP(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Thank you for your message. We will get back to you soon.",
		"data": map[string]any{
			"id": receipt.ID,
		},
	})
}

// clientIP extracts the submitter's address. The RealIP middleware has
// already folded X-Forwarded-For into RemoteAddr when trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
