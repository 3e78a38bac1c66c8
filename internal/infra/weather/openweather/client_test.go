package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/weather", r.URL.Path)
		query := r.URL.Query()
		require.Equal(t, "103.85", query.Get("lon"))
		require.Equal(t, "1.29", query.Get("lat"))
		require.Equal(t, "test-key", query.Get("appid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"weather":[{"main":"Rain"}],"main":{"temp":29.4}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)
	payload, err := client.Current(context.Background(), 103.85, 1.29)
	require.NoError(t, err)
	require.JSONEq(t, `{"weather":[{"main":"Rain"}],"main":{"temp":29.4}}`, string(payload))
}

func TestClientCurrentUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Current(context.Background(), 1, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=401")
}

func TestClientCurrentRejectsNonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Current(context.Background(), 1, 2)
	require.Error(t, err)
}
