package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyAcceptsValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "test-secret", r.PostFormValue("secret"))
		require.Equal(t, "tok-123", r.PostFormValue("response"))
		require.Equal(t, "203.0.113.9", r.PostFormValue("remoteip"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "score": 0.9, "hostname": "kuponi.example.lv"}`))
	}))
	defer srv.Close()

	client := &Client{Secret: "test-secret", VerifyURL: srv.URL}
	result := client.Verify(context.Background(), "tok-123", "203.0.113.9")

	require.True(t, result.Valid())
	require.Equal(t, 0.9, result.Score)
	require.Equal(t, "kuponi.example.lv", result.Hostname)
	require.Equal(t, FailureNone, result.Failure)
}

func TestVerifyRejectsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer srv.Close()

	client := &Client{Secret: "test-secret", VerifyURL: srv.URL}
	result := client.Verify(context.Background(), "bad-token", "")

	require.False(t, result.Valid())
	require.Equal(t, FailureUpstream, result.Failure)
	require.Contains(t, result.ErrorCodes, "invalid-input-response")
}

func TestVerifyTreatsSuccessWithErrorCodesAsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "error-codes": ["timeout-or-duplicate"]}`))
	}))
	defer srv.Close()

	client := &Client{Secret: "test-secret", VerifyURL: srv.URL}
	result := client.Verify(context.Background(), "tok", "")

	require.False(t, result.Valid(), "success with error codes is inconsistent and must not pass")
	require.Equal(t, FailureUpstream, result.Failure)
}

func TestVerifyNetworkFailureFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := &Client{Secret: "test-secret", VerifyURL: srv.URL}
	result := client.Verify(context.Background(), "tok", "")

	require.False(t, result.Valid())
	require.Equal(t, []string{"verification_error"}, result.ErrorCodes)
	require.Equal(t, FailureNetwork, result.Failure)
}

func TestVerifyMalformedResponseFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	client := &Client{Secret: "test-secret", VerifyURL: srv.URL}
	result := client.Verify(context.Background(), "tok", "")

	require.False(t, result.Valid())
	require.Equal(t, []string{"verification_error"}, result.ErrorCodes)
	require.Equal(t, FailureMalformed, result.Failure)
}

func TestPolicyFor(t *testing.T) {
	require.Equal(t, Bypass, PolicyFor("development", ""))
	require.Equal(t, Enforce, PolicyFor("development", "secret"))
	require.Equal(t, Enforce, PolicyFor("production", ""))
	require.Equal(t, Enforce, PolicyFor("production", "secret"))
	require.Equal(t, Enforce, PolicyFor("PRODUCTION", "  "))
}
