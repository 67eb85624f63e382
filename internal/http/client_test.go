package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		BaseRetryDelay: 5 * time.Millisecond,
		MaxRetryDelay:  20 * time.Millisecond,
	}
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	var out map[string]string
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, int64(1), client.RequestCount())
	assert.Equal(t, int64(0), client.RetryCount())
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt64(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		}
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	var out map[string]string
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
	assert.Equal(t, int64(2), client.RetryCount())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	err := client.GetJSON(context.Background(), server.URL, &struct{}{})
	require.Error(t, err)

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	resp, err := client.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err, "the final attempt's response is returned as-is")
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls), "initial attempt plus two retries")
}

func TestClient_PostJSONReplaysBodyOnRetry(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "value", payload["key"])

		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": payload["key"]})
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	var out map[string]string
	require.NoError(t, client.PostJSON(context.Background(), server.URL, map[string]string{"key": "value"}, &out))
	assert.Equal(t, "value", out["echo"])
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{
		MaxRetries:     5,
		BaseRetryDelay: time.Hour,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Do(ctx, http.MethodGet, server.URL, nil, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_UserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "geoprocessing-kit", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig()
	cfg.UserAgent = "geoprocessing-kit"
	client := NewClient(cfg)

	resp, err := client.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
}
