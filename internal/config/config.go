package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all termai configuration.
type Config struct {
	// Chat service (Ollama) settings
	Chat ChatConfig `yaml:"chat"`

	// Shell execution settings
	Shell ShellConfig `yaml:"shell"`

	// Agent loop policy
	Agent AgentConfig `yaml:"agent"`

	// Terminal presentation
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chat: ChatConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  "300s",
		},

		Shell: ShellConfig{
			MaxOutputBytes: 1 << 20,
		},

		Agent: AgentConfig{
			AutoContinue:    false,
			ContinuePrompt:  DefaultContinuePrompt,
			KeepFailedTurns: false,
		},

		UI: UIConfig{
			Theme:               "auto",
			RenderMarkdown:      true,
			WordWrap:            100,
			InitialPromptSource: SelectionKitty,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns <workspace>/.termai/config.yaml.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".termai", "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Chat.Endpoint = normalizeHost(host)
	}
	if model := os.Getenv("TERMAI_MODEL"); model != "" {
		c.Chat.Model = model
	}

	// TERMAI_SHELL wins over the login shell; $SHELL only fills an empty path.
	if sh := os.Getenv("TERMAI_SHELL"); sh != "" {
		c.Shell.Path = sh
	} else if c.Shell.Path == "" {
		c.Shell.Path = os.Getenv("SHELL")
	}
}

// normalizeHost turns OLLAMA_HOST values like "0.0.0.0:11434" into a base URL.
func normalizeHost(host string) string {
	if u, err := url.Parse(host); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return host
	}
	return "http://" + host
}

// GetChatTimeout returns the chat request timeout as a duration.
func (c *Config) GetChatTimeout() time.Duration {
	d, err := time.ParseDuration(c.Chat.Timeout)
	if err != nil || d <= 0 {
		return 300 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Chat.Endpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid chat endpoint: %q", c.Chat.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid chat endpoint scheme: %q (valid: http, https)", u.Scheme)
	}

	if c.Shell.MaxOutputBytes < 0 {
		return fmt.Errorf("shell.max_output_bytes must not be negative")
	}

	validSource := false
	for _, s := range ValidSelectionSources {
		if c.UI.InitialPromptSource == s {
			validSource = true
			break
		}
	}
	if !validSource {
		return fmt.Errorf("invalid ui.initial_prompt_source: %s (valid: %v)", c.UI.InitialPromptSource, ValidSelectionSources)
	}

	return nil
}
