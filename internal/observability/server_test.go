// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package observability_test

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/tickethub/internal/observability"
)

// startServer starts an observability server on an ephemeral port and stops
// it on cleanup.
func startServer(t *testing.T, ready observability.ReadinessChecker) *observability.Server {
	t.Helper()

	srv := observability.NewServer("127.0.0.1:0", ready)
	_, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Stop(ctx))
	})
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServerMetricsEndpoint(t *testing.T) {
	srv := startServer(t, nil)
	srv.Metrics().RegistrationsTotal.Inc()
	srv.Metrics().LoginsTotal.WithLabelValues("success").Inc()
	srv.Metrics().RequestsTotal.WithLabelValues("GET", "200").Inc()

	status, body := get(t, "http://"+srv.Addr()+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "tickethub_registrations_total 1")
	assert.Contains(t, body, `tickethub_logins_total{result="success"} 1`)
	assert.Contains(t, body, `tickethub_requests_total{method="GET",status="200"} 1`)
	// Runtime collectors are registered too.
	assert.Contains(t, body, "go_goroutines")
}

func TestServerHealthProbes(t *testing.T) {
	var ready atomic.Bool
	srv := startServer(t, ready.Load)

	status, body := get(t, "http://"+srv.Addr()+"/healthz/liveness")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)

	status, body = get(t, "http://"+srv.Addr()+"/healthz/readiness")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "not ready\n", body)

	ready.Store(true)
	status, _ = get(t, "http://"+srv.Addr()+"/healthz/readiness")
	assert.Equal(t, http.StatusOK, status)
}

func TestServerNilReadinessChecker(t *testing.T) {
	srv := startServer(t, nil)

	status, _ := get(t, "http://"+srv.Addr()+"/healthz/readiness")
	assert.Equal(t, http.StatusOK, status)
}

func TestServerLifecycle(t *testing.T) {
	t.Run("double start fails", func(t *testing.T) {
		srv := startServer(t, nil)

		_, err := srv.Start()
		assert.Error(t, err)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		srv := observability.NewServer("127.0.0.1:0", nil)
		_, err := srv.Start()
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Stop(ctx))
		require.NoError(t, srv.Stop(ctx))
	})

	t.Run("addr is empty before start", func(t *testing.T) {
		srv := observability.NewServer("127.0.0.1:0", nil)
		assert.Empty(t, srv.Addr())
	})
}
