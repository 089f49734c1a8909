package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsAuthAndModel(t *testing.T) {
	var got chatRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Bonjour !"}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "llama-3.1-8b-instant").WithEndpoint(server.URL)
	reply, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Salut"}}, 100)
	require.NoError(t, err)

	assert.Equal(t, "Bonjour !", reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, RoleUser, got.Messages[0].Role)
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", "llama-3.1-8b-instant").WithEndpoint(server.URL)
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Salut"}}, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai api error")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "llama-3.1-8b-instant").WithEndpoint(server.URL)
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Salut"}}, 100)
	require.Error(t, err)
}
