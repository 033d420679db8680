package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ollamaServer(t *testing.T, handler func(req api.ChatRequest, w http.ResponseWriter)) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req api.ChatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		w.Header().Set("Content-Type", "application/x-ndjson")
		handler(req, w)
	}))
	t.Cleanup(srv.Close)

	client, err := NewOllamaClient(srv.URL)
	require.NoError(t, err)
	return client
}

func TestOllamaGenerate(t *testing.T) {
	client := ollamaServer(t, func(req api.ChatRequest, w http.ResponseWriter) {
		assert.Equal(t, "llama3", req.Model)
		require.NotNil(t, req.Stream)
		assert.False(t, *req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.EqualValues(t, 256, req.Options["num_predict"])
		fmt.Fprintln(w, `{"model":"llama3","message":{"role":"assistant","content":"{\"signal\":\"neutral\"}"},"done":true,"done_reason":"stop","prompt_eval_count":10,"eval_count":5}`)
	})

	m, err := NewOllamaChatModel(client, "llama3")
	require.NoError(t, err)

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("hi"),
	}, model.WithMaxTokens(256))
	require.NoError(t, err)
	assert.Equal(t, schema.Assistant, out.Role)
	assert.Equal(t, `{"signal":"neutral"}`, out.Content)
	require.NotNil(t, out.ResponseMeta)
	assert.Equal(t, "stop", out.ResponseMeta.FinishReason)
	assert.Equal(t, 15, out.ResponseMeta.Usage.TotalTokens)
}

func TestOllamaStream(t *testing.T) {
	client := ollamaServer(t, func(req api.ChatRequest, w http.ResponseWriter) {
		assert.True(t, *req.Stream)
		for _, chunk := range []string{"he", "llo"} {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":false}`+"\n", chunk)
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true,"done_reason":"stop"}`)
	})

	m, err := NewOllamaChatModel(client, "llama3")
	require.NoError(t, err)

	sr, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	defer sr.Close()

	var content string
	for {
		msg, err := sr.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content += msg.Content
	}
	assert.Equal(t, "hello", content)
}

func TestOllamaGenerateError(t *testing.T) {
	client := ollamaServer(t, func(_ api.ChatRequest, w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{"error":"model 'llama3' not found"}`)
	})

	m, err := NewOllamaChatModel(client, "llama3")
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = NewOllamaChatModel(nil, "x")
	assert.Error(t, err)
	_, err = NewOllamaChatModel(client, "")
	assert.Error(t, err)
}
