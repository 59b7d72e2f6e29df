package config

// DefaultEndpoint is the local Ollama server.
const DefaultEndpoint = "http://localhost:11434"

// ChatConfig configures the chat service client.
type ChatConfig struct {
	// Endpoint is the Ollama base URL (overridden by OLLAMA_HOST).
	Endpoint string `yaml:"endpoint"`

	// Model preselects a model and skips the picker when set.
	Model string `yaml:"model,omitempty"`

	// Timeout bounds a single chat request, e.g. "300s".
	Timeout string `yaml:"timeout"`

	// SystemPrompt replaces the built-in agent instruction when non-empty.
	SystemPrompt string `yaml:"system_prompt,omitempty"`
}

// DefaultContinuePrompt is queued after an executed command when auto-continue is on.
const DefaultContinuePrompt = "Review the command output above and tell me the next step."

// AgentConfig configures the agent loop policy.
type AgentConfig struct {
	// AutoContinue sends ContinuePrompt to the model after a confirmed command ran.
	AutoContinue bool `yaml:"auto_continue"`

	// ContinuePrompt is the synthetic follow-up used by AutoContinue.
	ContinuePrompt string `yaml:"continue_prompt"`

	// KeepFailedTurns keeps the user message of a turn whose chat call failed.
	// When false the message is dropped together with the failed turn.
	KeepFailedTurns bool `yaml:"keep_failed_turns"`
}
