package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		DefaultModel: "analyst",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		LogLevel:     "error",
		Models: map[string]ModelConfig{
			"analyst": {
				ModelName: "mistralai/Mixtral-8x7B-Instruct-v0.1",
			},
		},
	}
}

const completionBody = `{
	"id":"chatcmpl-1",
	"object":"chat.completion",
	"created":1730366400,
	"model":"mistralai/Mixtral-8x7B-Instruct-v0.1",
	"choices":[
		{
			"index":0,
			"finish_reason":"stop",
			"logprobs":null,
			"message":{"role":"assistant","content":"  BTC held steady this week.  "}
		}
	],
	"usage":{"prompt_tokens":10,"completion_tokens":12,"total_tokens":22}
}`

func TestClientChat(t *testing.T) {
	var (
		mu       sync.Mutex
		lastBody []byte
		lastPath string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		lastPath = r.URL.Path
		lastBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	temp := 0.3
	maxTokens := 600
	resp, err := client.Chat(ctx, &ChatRequest{
		Messages:    []Message{{Role: "user", Content: "analyze"}},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, 22, resp.Usage.TotalTokens)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/chat/completions", lastPath)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(lastBody, &sent))
	require.Equal(t, "mistralai/Mixtral-8x7B-Instruct-v0.1", sent["model"])
	require.InDelta(t, 0.3, sent["temperature"].(float64), 0.0001)
	require.EqualValues(t, 600, sent["max_tokens"])
}

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	text, err := client.Complete(context.Background(), "You are an analyst.", "analyze", CompleteOptions{
		MaxTokens:   600,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	require.Equal(t, "BTC held steady this week.", text)
}

func TestClientCompleteResolvesAlias(t *testing.T) {
	var (
		mu       sync.Mutex
		lastBody []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		lastBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.DefaultModel = "mistralai/Mistral-7B-Instruct-v0.2"
	cfg.Models = map[string]ModelConfig{
		"analysis": {ModelName: "mistralai/Mixtral-8x7B-Instruct-v0.1"},
	}

	client, err := NewClient(cfg, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Complete(context.Background(), "", "analyze", CompleteOptions{
		Model:     "analysis",
		MaxTokens: 600,
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	var sent map[string]any
	require.NoError(t, json.Unmarshal(lastBody, &sent))
	require.Equal(t, "mistralai/Mixtral-8x7B-Instruct-v0.1", sent["model"],
		"alias must resolve to its configured model, not the default")
}

func TestClientCompleteServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	client, err := NewClient(cfg,
		WithHTTPClient(server.Client()),
		WithRetryHandler(NewRetryHandler(RetryConfig{
			MaxRetries:     1,
			InitialBackoff: time.Millisecond,
		})),
	)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Complete(context.Background(), "", "analyze", CompleteOptions{})
	require.Error(t, err)
	require.GreaterOrEqual(t, calls, 2)
}

func TestClientRequiresMessages(t *testing.T) {
	client, err := NewClient(testConfig("https://example.com"))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
}
