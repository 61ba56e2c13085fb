package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenAIClientGenerate(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		var captured map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"role": "assistant", "content": "texto gerado"}},
				},
				"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 80},
			})
		}))
		defer server.Close()

		client := NewOpenAIClient("sk-test", server.URL, zap.NewNop())
		resp, err := client.Generate(context.Background(), &GenerateRequest{
			Model:        "gpt-4o",
			SystemPrompt: "Voce redige defesas.",
			UserPrompt:   "Auto AB123",
			Temperature:  0.7,
			MaxTokens:    2048,
		})
		require.NoError(t, err)

		assert.Equal(t, "texto gerado", resp.Content)
		assert.Equal(t, 120, resp.InputTokens)
		assert.Equal(t, 80, resp.OutputTokens)

		assert.Equal(t, "gpt-4o", captured["model"])
		messages := captured["messages"].([]interface{})
		require.Len(t, messages, 2)
		first := messages[0].(map[string]interface{})
		assert.Equal(t, "system", first["role"])
	})

	t.Run("system prompt omitted when empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			messages := body["messages"].([]interface{})
			assert.Len(t, messages, 1)

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"content": "ok"}},
				},
			})
		}))
		defer server.Close()

		client := NewOpenAIClient("sk-test", server.URL, zap.NewNop())
		_, err := client.Generate(context.Background(), &GenerateRequest{Model: "gpt-4o", UserPrompt: "x"})
		require.NoError(t, err)
	})

	t.Run("upstream error surfaces body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
		}))
		defer server.Close()

		client := NewOpenAIClient("sk-test", server.URL, zap.NewNop())
		_, err := client.Generate(context.Background(), &GenerateRequest{Model: "gpt-4o", UserPrompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer server.Close()

		client := NewOpenAIClient("sk-test", server.URL, zap.NewNop())
		_, err := client.Generate(context.Background(), &GenerateRequest{Model: "gpt-4o", UserPrompt: "x"})
		assert.Error(t, err)
	})
}

func TestAnthropicClientGenerate(t *testing.T) {
	t.Run("successful message", func(t *testing.T) {
		var captured map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
			assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"content": []map[string]string{
					{"type": "text", "text": "parte um "},
					{"type": "text", "text": "parte dois"},
				},
				"usage": map[string]int{"input_tokens": 150, "output_tokens": 95},
			})
		}))
		defer server.Close()

		client := NewAnthropicClient("sk-ant-test", server.URL, zap.NewNop())
		resp, err := client.Generate(context.Background(), &GenerateRequest{
			Model:        "claude-3-5-sonnet",
			SystemPrompt: "Voce redige recursos.",
			UserPrompt:   "Auto AB123",
			MaxTokens:    2048,
		})
		require.NoError(t, err)

		assert.Equal(t, "parte um parte dois", resp.Content)
		assert.Equal(t, 150, resp.InputTokens)
		assert.Equal(t, 95, resp.OutputTokens)
		assert.Equal(t, "Voce redige recursos.", captured["system"])
	})

	t.Run("upstream error surfaces body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("overloaded"))
		}))
		defer server.Close()

		client := NewAnthropicClient("sk-ant-test", server.URL, zap.NewNop())
		_, err := client.Generate(context.Background(), &GenerateRequest{Model: "claude-3-5-sonnet", UserPrompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overloaded")
	})
}
