package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type payload struct {
	Value int `json:"value"`
}

func newTestClient(url string, retries int) *Client {
	return New(Options{BaseURL: url + "/", MaxRetries: retries, Backoff: time.Millisecond})
}

func TestNewLimiter(t *testing.T) {
	unlimited := NewLimiter(0)
	assert.Equal(t, rate.Inf, unlimited.Limit())
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow())
	}

	limited := NewLimiter(2)
	assert.Equal(t, rate.Limit(2), limited.Limit())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"value": 7}`))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer k")
	c := New(Options{BaseURL: server.URL, Header: header})

	var out payload
	require.NoError(t, c.PostJSON(context.Background(), "/embed", payload{Value: 1}, &out))
	assert.Equal(t, 7, out.Value)
}

func TestPostJSON_RetriesOverload(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"value": 1}`))
	}))
	defer server.Close()

	var out payload
	require.NoError(t, newTestClient(server.URL, 2).PostJSON(context.Background(), "/x", payload{}, &out))
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostJSON_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("busy"))
	}))
	defer server.Close()

	err := newTestClient(server.URL, 1).PostJSON(context.Background(), "/x", payload{}, &payload{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, "status 503: busy", err.Error())
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newTestClient(server.URL, 3).PostJSON(context.Background(), "/x", payload{}, &payload{})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSON_CancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	c := New(Options{BaseURL: server.URL, MaxRetries: 5, Backoff: time.Hour})

	err := c.PostJSON(ctx, "/x", payload{}, &payload{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPostJSON_BadResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	err := newTestClient(server.URL, 0).PostJSON(context.Background(), "/x", payload{}, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 0)
	assert.NoError(t, c.Get(context.Background(), "/ok"))
	assert.EqualError(t, c.Get(context.Background(), "/missing"), "status 404")
}

func TestVector(t *testing.T) {
	vec, err := Vector([]float64{0.5, -1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1}, vec)

	_, err = Vector([]float64{1}, 3)
	assert.EqualError(t, err, "expected 3 dimensions, got 1")
}
