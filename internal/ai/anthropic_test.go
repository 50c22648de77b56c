package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnthropicChat_SendsExpectedRequest(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotReq anthropicChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"text": "Lisbon is a great "},
				{"text": "pick."},
			},
		})
	}))
	defer srv.Close()

	provider := &anthropicProvider{apiKey: "sk-test", baseURL: srv.URL, client: srv.Client()}
	reply, err := provider.Chat(context.Background(), "be helpful", []Message{
		{Role: "user", Content: "Where should I go?"},
	}, ChatOptions{Model: "claude-sonnet", MaxTokens: 512, Temperature: 0.7})

	require.NoError(t, err)
	require.Equal(t, "Lisbon is a great pick.", reply)
	require.Equal(t, "/messages", gotPath)
	require.Equal(t, "sk-test", gotKey)
	require.Equal(t, "2023-06-01", gotVersion)
	require.Equal(t, "be helpful", gotReq.System)
	require.Equal(t, "claude-sonnet", gotReq.Model)
	require.Equal(t, 512, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestAnthropicChat_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	provider := &anthropicProvider{apiKey: "sk-test", baseURL: srv.URL, client: srv.Client()}
	_, err := provider.Chat(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, ChatOptions{Model: "m"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, "anthropic", upstream.Provider)
	require.Equal(t, http.StatusTooManyRequests, upstream.Status)
}

func TestAnthropicChat_NoKey(t *testing.T) {
	provider := &anthropicProvider{client: http.DefaultClient}
	_, err := provider.Chat(context.Background(), "", nil, ChatOptions{})
	require.ErrorIs(t, err, ErrUnavailable)
}
