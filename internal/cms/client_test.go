package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GAkim/promo-gateway/internal/validate"
)

func sanitized() validate.SanitizedSubmission {
	return validate.SanitizedSubmission{
		Name:    "Anna",
		Email:   "anna@example.lv",
		Subject: "Hello",
		Message: "A question about coupons",
		Status:  validate.SubmissionStatus,
	}
}

func TestCreateSubmissionPostsDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/contact-submissions", r.URL.Path)
		require.Equal(t, "Bearer cms-token", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Data validate.SanitizedSubmission `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "new", body.Data.Status)
		require.Equal(t, "anna@example.lv", body.Data.Email)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data": {"id": 42}}`))
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, Token: "cms-token"}
	receipt, err := client.CreateSubmission(context.Background(), sanitized())
	require.NoError(t, err)
	require.Equal(t, int64(42), receipt.ID)
}

func TestCreateSubmissionSurfacesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"maintenance"}}`))
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, Token: "cms-token"}
	_, err := client.CreateSubmission(context.Background(), sanitized())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
	require.Contains(t, statusErr.Detail, "maintenance")
}

func TestConfigured(t *testing.T) {
	require.False(t, (&Client{}).Configured())
	require.False(t, (&Client{BaseURL: "https://cms.example"}).Configured())
	require.False(t, (&Client{Token: "t"}).Configured())
	require.True(t, (&Client{BaseURL: "https://cms.example", Token: "t"}).Configured())
}
