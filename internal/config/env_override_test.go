package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Chat(t *testing.T) {
	t.Run("OLLAMA_HOST with scheme is used as-is", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://gpu-box:11434", cfg.Chat.Endpoint)
	})

	t.Run("OLLAMA_HOST without scheme gets http", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OLLAMA_HOST", "0.0.0.0:11434")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://0.0.0.0:11434", cfg.Chat.Endpoint)
	})

	t.Run("TERMAI_MODEL overrides file model", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TERMAI_MODEL", "mistral")

		cfg := &Config{Chat: ChatConfig{Model: "llama3"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "mistral", cfg.Chat.Model)
	})

	t.Run("empty env leaves config alone", func(t *testing.T) {
		clearEnv(t)

		cfg := &Config{Chat: ChatConfig{Endpoint: "http://a:1", Model: "m"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://a:1", cfg.Chat.Endpoint)
		assert.Equal(t, "m", cfg.Chat.Model)
	})
}

func TestEnvOverrides_Shell(t *testing.T) {
	t.Run("SHELL fills an empty path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHELL", "/bin/zsh")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "/bin/zsh", cfg.Shell.Path)
	})

	t.Run("SHELL does not override configured path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHELL", "/bin/zsh")

		cfg := &Config{Shell: ShellConfig{Path: "/bin/bash"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "/bin/bash", cfg.Shell.Path)
	})

	t.Run("TERMAI_SHELL overrides configured path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHELL", "/bin/zsh")
		t.Setenv("TERMAI_SHELL", "/usr/bin/fish")

		cfg := &Config{Shell: ShellConfig{Path: "/bin/bash"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "/usr/bin/fish", cfg.Shell.Path)
	})
}

func TestLoad_AppliesEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TERMAI_MODEL", "phi3")

	cfg, err := Load(t.TempDir() + "/missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, "phi3", cfg.Chat.Model)
}
