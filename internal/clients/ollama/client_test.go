package ollama

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func Test_Client_GenerateResponse_SendsJSONFormat(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"{\"score\":70}","done":true}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "llama3", "be strict", 5*time.Second)
	require.NoError(t, err)

	resp, err := client.GenerateResponse(context.Background(), "score this")
	require.NoError(t, err)

	assert.Equal(t, `{"score":70}`, resp)
	assert.Equal(t, "llama3", received["model"])
	assert.Equal(t, "be strict", received["system"])
	assert.Equal(t, "json", received["format"])
	assert.Equal(t, false, received["stream"])
}

func Test_Client_GenerateResponse_PropagatesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "llama3", "", 5*time.Second)
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), "score this")
	assert.Error(t, err)
}
