// internal/server/router_test.go
//
// Unit-tests for the ops router.
//
// Workflow
// --------
// fakePinger stands in for *pgxpool.Pool so the health handler can be
// driven without a database.  Each test fires an httptest request and
// asserts status and body.

package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/dbconf/internal/config"
	"github.com/yanizio/dbconf/internal/env"
	_ "github.com/yanizio/dbconf/internal/metrics" // registers collectors
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func descriptor(t *testing.T) config.Descriptor {
	t.Helper()
	d, err := config.Resolve(env.Source{config.KeyConnectionTimeout: "100"})
	require.NoError(t, err)
	return d
}

func TestHealthz_OK(t *testing.T) {
	h := NewRouter(fakePinger{}, descriptor(t))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestHealthz_Down(t *testing.T) {
	h := NewRouter(fakePinger{err: errors.New("connection refused")}, descriptor(t))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}

func TestMetrics(t *testing.T) {
	h := NewRouter(fakePinger{}, descriptor(t))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "dbconf_pool_max_conns"))
}

func TestUnknownRoute(t *testing.T) {
	h := NewRouter(fakePinger{}, descriptor(t))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := New("127.0.0.1:0", http.NotFoundHandler())
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
