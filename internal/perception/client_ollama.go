package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"termai/internal/logging"
	"termai/internal/types"
	"termai/internal/usage"
)

// OllamaConfig holds Ollama client configuration.
type OllamaConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// DefaultOllamaConfig returns the local server defaults.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Endpoint: "http://localhost:11434",
		Timeout:  300 * time.Second,
	}
}

// OllamaClient talks to a local Ollama server over its JSON API.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ types.ChatClient = (*OllamaClient)(nil)

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultOllamaConfig().Endpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOllamaConfig().Timeout
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Endpoint returns the server base URL.
func (c *OllamaClient) Endpoint() string {
	return c.baseURL
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []types.Message `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message *types.Message `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`

	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

// ListModels returns the names of the installed models in server order.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	url := c.baseURL + "/api/tags"
	logging.APIDebug("ListModels: GET %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIError("ListModels: request failed: %v", err)
		return nil, &RequestError{Op: "GET", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ProtocolError{Op: "list models", StatusCode: resp.StatusCode, ServerMessage: serverError(body)}
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, &ProtocolError{Op: "list models", StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	logging.API("ListModels: %d models", len(names))
	return names, nil
}

// Chat sends the whole conversation and returns the assistant reply.
// The service keeps no state, so messages must be the complete transcript.
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []types.Message) (types.Message, error) {
	url := c.baseURL + "/api/chat"
	timer := logging.StartTimer(logging.CategoryAPI, "Chat")
	defer timer.Stop()

	logging.APIDebug("Chat: model=%s messages=%d", model, len(messages))

	payload, err := json.Marshal(ollamaChatRequest{Model: model, Messages: messages, Stream: false})
	if err != nil {
		return types.Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return types.Message{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIError("Chat: request failed: %v", err)
		return types.Message{}, &RequestError{Op: "POST", URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Message{}, &RequestError{Op: "POST", URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	parsed, err := decodeChatResponse(resp.StatusCode, body)
	if err != nil {
		return types.Message{}, err
	}

	if tracker := usage.FromContext(ctx); tracker != nil {
		tracker.Track(ctx, model, parsed.PromptEvalCount, parsed.EvalCount)
	}

	msg := *parsed.Message
	if !msg.Role.Valid() {
		logging.APIDebug("Chat: reply role %q treated as assistant", msg.Role)
		msg.Role = types.RoleAssistant
	}
	logging.APIDebug("Chat: reply role=%s len=%d tokens=%d/%d", msg.Role, len(msg.Content), parsed.PromptEvalCount, parsed.EvalCount)
	return msg, nil
}

// decodeChatResponse applies the reply contract: an error field always wins,
// otherwise a message must be present.
func decodeChatResponse(status int, body []byte) (*ollamaChatResponse, error) {
	var parsed ollamaChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logging.APIError("Chat: malformed body (status %d): %v", status, err)
		return nil, &ProtocolError{Op: "chat", StatusCode: status, Err: fmt.Errorf("malformed response: %w", err)}
	}

	if parsed.Error != "" {
		logging.APIError("Chat: server error: %s", parsed.Error)
		return nil, &ProtocolError{Op: "chat", StatusCode: status, ServerMessage: parsed.Error}
	}
	if status != http.StatusOK {
		return nil, &ProtocolError{Op: "chat", StatusCode: status}
	}
	if parsed.Message == nil {
		return nil, &ProtocolError{Op: "chat", StatusCode: status, Err: errEmptyReply}
	}
	return &parsed, nil
}

// serverError extracts {"error": "..."} from a non-OK body, falling back to the raw text.
func serverError(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return strings.TrimSpace(string(body))
}
