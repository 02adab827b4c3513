// Package cms is the client for the headless CMS that owns all durable
// content, including accepted contact submissions.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GAkim/promo-gateway/internal/validate"
)

// SubmissionStore is the gatekeeper-facing surface of the CMS.
type SubmissionStore interface {
	Configured() bool
	CreateSubmission(ctx context.Context, sub validate.SanitizedSubmission) (*Receipt, error)
}

// Receipt carries the upstream-assigned identifier for an accepted submission.
type Receipt struct {
	ID int64 `json:"id"`
}

// StatusError reports a non-success upstream response. Detail is an opaque
// passthrough of the upstream body.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms responded with status %d", e.Status)
}

// Client talks to the CMS content API with a server-side bearer token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Configured reports whether the forwarding credential is present. The
// gatekeeper fails closed before touching a request when it is not.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.Token) != ""
}

// CreateSubmission posts a sanitized submission to the CMS. A non-2xx
// response becomes a StatusError with the upstream body attached; there is
// no retry here.
func (c *Client) CreateSubmission(ctx context.Context, sub validate.SanitizedSubmission) (*Receipt, error) {
	body, err := json.Marshal(map[string]any{"data": sub})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/api/contact-submissions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.Logger != nil {
			c.Logger.Error("cms rejected submission",
				zap.Int("status", resp.StatusCode))
		}
		return nil, &StatusError{Status: resp.StatusCode, Detail: string(detail)}
	}

	var payload struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &StatusError{Status: resp.StatusCode, Detail: "undecodable cms response"}
	}

	return &Receipt{ID: payload.Data.ID}, nil
}
