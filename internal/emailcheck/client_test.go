package emailcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNotConfigured(t *testing.T) {
	c := New("")
	_, err := c.Validate(context.Background(), "a@b.com")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestValidateOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "ann@example.com", r.URL.Query().Get("email"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"email": "ann@example.com",
			"deliverability": "DELIVERABLE",
			"quality_score": "0.95",
			"is_valid_format": {"value": true, "text": "TRUE"},
			"is_smtp_valid": {"value": true, "text": "TRUE"}
		}`))
	}))
	defer srv.Close()

	c := New("secret", WithEndpoint(srv.URL))
	got, err := c.Validate(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "DELIVERABLE", got.Deliverability)
	assert.True(t, got.IsValidFormat.Value)
	assert.Equal(t, "ann@example.com", got.Email)
}

func TestValidateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("secret", WithEndpoint(srv.URL))
	_, err := c.Validate(context.Background(), "ann@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
