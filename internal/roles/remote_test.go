package roles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/resilience"
)

func newTestRemote(baseURL string) *RemoteClassifier {
	c := NewRemoteClassifier(RemoteOptions{BaseURL: baseURL, RequestsPerSecond: 1000})
	c.retry = resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}
	return c
}

func TestRemoteClassifier_Match(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/roles", r.URL.Path)
		assert.Equal(t, "50:05:07:63:0a:03:17:e4", r.URL.Query().Get("wwpn"))
		w.Write([]byte(`{"role":"target"}`))
	}))
	defer srv.Close()

	role, ok, err := newTestRemote(srv.URL).Classify(context.Background(), "500507630A0317E4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.RoleTarget, role)
}

func TestRemoteClassifier_NotFoundMeansNoRule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, ok, err := newTestRemote(srv.URL).Classify(context.Background(), "500507630a0317e4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoteClassifier_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"role":"initiator"}`))
	}))
	defer srv.Close()

	role, ok, err := newTestRemote(srv.URL).Classify(context.Background(), "500507630a0317e4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.RoleInitiator, role)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRemoteClassifier_HardErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, _, err := newTestRemote(srv.URL).Classify(context.Background(), "500507630a0317e4")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRemoteClassifier_InvalidWWPNSkipsLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer srv.Close()

	_, ok, err := newTestRemote(srv.URL).Classify(context.Background(), "HOST1")
	require.NoError(t, err)
	assert.False(t, ok)
}
