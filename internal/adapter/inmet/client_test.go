package inmet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/couchcryptid/inmet-scraper/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchArchive_Success(t *testing.T) {
	payload := []byte("PK\x03\x04 pretend archive")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/uploads/dadoshistoricos/2020.zip", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := testClient(srv.URL+"/uploads/dadoshistoricos", 5*time.Second)
	got, err := c.FetchArchive(context.Background(), 2020)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestClient_FetchArchive_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.FetchArchive(context.Background(), 2022)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "2022.zip")
}

func TestClient_FetchArchive_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.FetchArchive(context.Background(), 2021)
	require.Error(t, err)
	assert.Equal(t, domain.FailureTransport, domain.ClassifyError(err))
	assert.Contains(t, err.Error(), "502")
}

func TestClient_FetchArchive_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 50*time.Millisecond)
	_, err := c.FetchArchive(context.Background(), 2020)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestClient_FetchArchive_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := testClient(url, time.Second)
	_, err := c.FetchArchive(context.Background(), 2020)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestClient_FetchArchive_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL, time.Second)
	_, err := c.FetchArchive(ctx, 2020)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.True(t, errors.Is(err, context.Canceled))
}
