package perception

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termai/internal/types"
	"termai/internal/usage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaClient(OllamaConfig{Endpoint: srv.URL + "/", Timeout: 5 * time.Second})
}

func TestOllamaClient_ListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:8b"},{"name":"qwen2:7b"},{"name":""}]}`))
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3:8b", "qwen2:7b"}, models)
}

func TestOllamaClient_ListModelsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestOllamaClient_ListModelsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewOllamaClient(OllamaConfig{Endpoint: url, Timeout: time.Second})
	_, err := client.ListModels(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "GET", reqErr.Op)
}

func TestOllamaClient_ChatSendsWholeTranscript(t *testing.T) {
	history := []types.Message{
		types.SystemMessage("sys"),
		types.UserMessage("hello"),
		types.AssistantMessage("hi"),
		types.UserMessage("list files"),
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, history, req.Messages)

		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`))
	})

	msg, err := client.Chat(context.Background(), "llama3", history)
	require.NoError(t, err)
	assert.Equal(t, types.AssistantMessage("ok"), msg)
}

func TestOllamaClient_ChatErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantServer string
		wantEmpty  bool
	}{
		{name: "error field", status: http.StatusOK, body: `{"error":"model not found"}`, wantServer: "model not found"},
		{name: "error field with 404", status: http.StatusNotFound, body: `{"error":"model 'x' not found"}`, wantServer: "model 'x' not found"},
		{name: "both present prefers error", status: http.StatusOK, body: `{"message":{"role":"assistant","content":"x"},"error":"boom"}`, wantServer: "boom"},
		{name: "neither present", status: http.StatusOK, body: `{}`, wantEmpty: true},
		{name: "malformed json", status: http.StatusOK, body: `{"message":`},
		{name: "bad status without error field", status: http.StatusBadGateway, body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Chat(context.Background(), "m", []types.Message{types.UserMessage("q")})

			var pe *ProtocolError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantServer, pe.ServerMessage)
			assert.Equal(t, tt.wantServer != "", IsServerError(err))
			if tt.wantServer != "" {
				assert.Equal(t, tt.wantServer, err.Error())
			}
			assert.Equal(t, tt.wantEmpty, errors.Is(err, errEmptyReply))
		})
	}
}

func TestOllamaClient_ChatUnknownRoleBecomesAssistant(t *testing.T) {
	for name, body := range map[string]string{
		"missing": `{"message":{"content":"hey"}}`,
		"tool":    `{"message":{"role":"tool","content":"hey"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			msg, err := client.Chat(context.Background(), "m", nil)
			require.NoError(t, err)
			assert.Equal(t, types.RoleAssistant, msg.Role)
			assert.Equal(t, "hey", msg.Content)
		})
	}
}

func TestOllamaClient_ChatHonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Chat(ctx, "m", nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOllamaClient_ChatTracksUsage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"prompt_eval_count":42,"eval_count":7}`))
	})

	tracker := usage.NewTracker()
	ctx := usage.NewContext(context.Background(), tracker)

	_, err := client.Chat(ctx, "llama3", nil)
	require.NoError(t, err)

	stats := tracker.Stats()
	assert.Equal(t, 1, stats.Requests)
	assert.EqualValues(t, 42, stats.ByModel["llama3"].Input)
	assert.EqualValues(t, 7, stats.ByModel["llama3"].Output)
}
