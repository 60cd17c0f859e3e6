package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agentcrew/pkg/config"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(config.CompletionConfig{
		BaseURL:        server.URL,
		Model:          "test-model",
		APIKey:         "secret",
		TimeoutSeconds: 5,
	})
}

func TestCompleteReturnsContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "analysis text"}, "finish_reason": "stop"},
			},
		})
	})

	text, err := client.Complete(context.Background(), "you are an analyst", "analyze this")
	require.NoError(t, err)
	require.Equal(t, "analysis text", text)
}

func TestCompleteRejectsErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"":                          "http://localhost:1234/v1",
		"localhost:9000":            "http://localhost:9000/v1",
		"http://api.example.com":    "http://api.example.com/v1",
		"http://api.example.com/v1": "http://api.example.com/v1",
		"https://host/v1/":          "https://host/v1",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizeBaseURL(in), "input %q", in)
	}
}
