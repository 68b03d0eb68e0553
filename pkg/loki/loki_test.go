package loki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type MockLogger struct{}

func (m *MockLogger) Error(msg string, args ...any) {
}

func Test_ConfigValidation(t *testing.T) {
	cfg := Config{}
	_, err := New(context.Background(), cfg, &MockLogger{})
	assert.Error(t, err)

	cfg.Url = "http://loki:3100/loki/api/v1/push"
	pusher, err := New(context.Background(), cfg, &MockLogger{})
	require.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, cfg.Url, pusher.config.Url)
	assert.Equal(t, 1000, pusher.config.BatchMaxSize)
	assert.Equal(t, 5*time.Second, pusher.config.BatchMaxWait)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func Test_Pusher_FlushesOnStopGroupedByLevel(t *testing.T) {
	received := make(chan lokiPushRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		var req lokiPushRequest
		require.NoError(t, json.NewDecoder(gz).Decode(&req))
		received <- req
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pusher, err := New(context.Background(), Config{
		Url:          server.URL,
		BatchMaxWait: time.Hour,
		Labels:       map[string]string{"app": "jobscout"},
	}, &MockLogger{})
	require.NoError(t, err)

	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "boom", ErrorType: "db"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "info", Message: "hello"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "boom again"}))
	pusher.Stop()

	select {
	case req := <-received:
		require.Len(t, req.Streams, 2)
		assert.Equal(t, "error", req.Streams[0].Stream["level"])
		assert.Equal(t, "jobscout", req.Streams[0].Stream["app"])
		assert.Len(t, req.Streams[0].Values, 2)
		assert.Equal(t, "info", req.Streams[1].Stream["level"])
	case <-time.After(5 * time.Second):
		t.Fatal("no push received")
	}

	assert.Error(t, pusher.Push(LogEntry{Level: "info"}))
}
