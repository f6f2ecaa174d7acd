package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates the test from the developer's share settings
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SHARE_API_CONFIG", "SHARE_API_BASE_URL", "SHARE_API_AUTH_USER", "SHARE_API_AUTH_PASSWORD", "SHARE_API_PROJECT_ID"} {
		t.Setenv(key, "")
	}
}

func newEntryServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api.php/entries/{id}", handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Success(t *testing.T) {
	clearEnv(t)
	var gotID string
	srv := newEntryServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = chi.URLParam(r, "id")
		io.WriteString(w, `{"id": 7, "subject": "Smoke", "attachments": [{"id": 1}, {"id": 2}]}`)
	})

	var out bytes.Buffer
	code := run(context.Background(), []string{"--entry-id", "7", "--base-url", srv.URL + "/"}, &out)

	assert.Equal(t, 0, code)
	assert.Equal(t, "7", gotID)
	assert.Contains(t, out.String(), "Share API Connection Test")
	assert.Contains(t, out.String(), "  [OK] No auth configured")
	assert.Contains(t, out.String(), "  [OK] HTTP 200")
	assert.Contains(t, out.String(), "  [OK] Subject: Smoke")
	assert.Contains(t, out.String(), "  [OK] Attachments: 2")
	assert.Contains(t, out.String(), "Connection test passed!")
}

func TestRun_UsesBasicAuthFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHARE_API_AUTH_USER", "bob")
	t.Setenv("SHARE_API_AUTH_PASSWORD", "pw")

	var user string
	srv := newEntryServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, _, _ = r.BasicAuth()
		io.WriteString(w, `{"subject": "x"}`)
	})
	t.Setenv("SHARE_API_BASE_URL", srv.URL)

	var out bytes.Buffer
	require.Equal(t, 0, run(context.Background(), nil, &out))
	assert.Equal(t, "bob", user)
	assert.Contains(t, out.String(), "  [OK] Using Basic Auth")
}

func TestRun_MissingBaseURL(t *testing.T) {
	clearEnv(t)

	var out bytes.Buffer
	code := run(context.Background(), nil, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "  [FAIL] SHARE_API_BASE_URL is not set and no --base-url provided")
}

func TestRun_HTTPStatusFailure(t *testing.T) {
	clearEnv(t)
	srv := newEntryServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	})

	var out bytes.Buffer
	code := run(context.Background(), []string{"--base-url", srv.URL}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "  [FAIL] HTTP 404: Not Found")
}

func TestRun_NotJSONObject(t *testing.T) {
	clearEnv(t)
	srv := newEntryServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[1, 2]`)
	})

	var out bytes.Buffer
	code := run(context.Background(), []string{"--base-url", srv.URL}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Expected JSON object, got array")
}

func TestRun_InvalidJSON(t *testing.T) {
	clearEnv(t)
	srv := newEntryServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>`)
	})

	var out bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), []string{"--base-url", srv.URL}, &out))
	assert.Contains(t, out.String(), "Response is not valid JSON")
}

func TestRun_ConnectionFailure(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	var out bytes.Buffer
	code := run(context.Background(), []string{"--base-url", base}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "  [FAIL] Connection failed:")
}

func TestRun_Timeout(t *testing.T) {
	clearEnv(t)
	orig := requestTimeout
	requestTimeout = 50 * time.Millisecond
	t.Cleanup(func() { requestTimeout = orig })

	release := make(chan struct{})
	srv := newEntryServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	var out bytes.Buffer
	code := run(context.Background(), []string{"--base-url", srv.URL}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "  [FAIL] Request timed out after")
}
