package lock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerberus/internal/adapters/config"
)

func controllerFor(t *testing.T, srv *httptest.Server, timeout time.Duration) *Controller {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return NewController(config.LockConfig{
		Host:    u.Hostname(),
		Port:    port,
		AuthKey: "k3y",
		Timeout: timeout,
	})
}

func TestController_Unlock_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/unlock", r.URL.Path)
		assert.Equal(t, "k3y", r.URL.Query().Get("code"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := controllerFor(t, srv, 0)
	assert.True(t, c.Unlock(context.Background()))
}

func TestController_Unlock_NonOKStatus(t *testing.T) {
	statuses := []int{
		http.StatusCreated,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusInternalServerError,
	}

	for _, status := range statuses {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := controllerFor(t, srv, 0)
		assert.False(t, c.Unlock(context.Background()), "status %d must be a failure", status)

		srv.Close()
	}
}

func TestController_Unlock_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := controllerFor(t, srv, 0)
	srv.Close()

	assert.False(t, c.Unlock(context.Background()))
}

func TestController_Unlock_TimeoutIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	c := controllerFor(t, srv, 100*time.Millisecond)

	start := time.Now()
	result := c.Unlock(context.Background())
	elapsed := time.Since(start)

	assert.False(t, result)
	assert.Less(t, elapsed, time.Second, "unlock must fail within the configured timeout")
}

func TestController_Unlock_AuthKeyIsEscaped(t *testing.T) {
	var gotCode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCode = r.URL.Query().Get("code")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	c := NewController(config.LockConfig{
		Host:    u.Hostname(),
		Port:    port,
		AuthKey: "k&y=1 2",
	})

	require.True(t, c.Unlock(context.Background()))
	assert.Equal(t, "k&y=1 2", gotCode)
}
