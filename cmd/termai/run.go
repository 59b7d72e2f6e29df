package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"termai/cmd/termai/ui"
	"termai/internal/config"
	"termai/internal/logging"
	"termai/internal/perception"
	"termai/internal/session"
	"termai/internal/tactile"
	"termai/internal/types"
)

// startupError is a fatal error that has already been shown to the user.
type startupError struct {
	err error
}

func (e *startupError) Error() string { return e.err.Error() }

func (e *startupError) Unwrap() error { return e.err }

// runRoot starts an interactive session.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return runSession(cmd.Context(), cfg)
}

func runSession(ctx context.Context, cfg *config.Config) error {
	timer := logging.StartTimer(logging.CategoryBoot, "Startup")

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	terminal := ui.NewTerminal(os.Stdin, os.Stdout, styles)
	console := ui.NewConsole(os.Stdout, os.Stderr, styles, ui.ConsoleOptions{
		RenderMarkdown: cfg.UI.RenderMarkdown,
		WordWrap:       cfg.UI.WordWrap,
		Interactive:    terminal.Interactive(),
	})

	client := perception.NewOllamaClient(perception.OllamaConfig{
		Endpoint: cfg.Chat.Endpoint,
		Timeout:  cfg.GetChatTimeout(),
	})

	model, err := chooseModel(ctx, client, terminal, cfg.Chat.Model)
	if err != nil {
		if errors.Is(err, session.ErrInterrupted) || ctx.Err() != nil {
			return nil
		}
		return fatal(terminal, client.Endpoint(), err)
	}

	runner := tactile.NewRunner(tactile.Config{
		ShellPath:        cfg.Shell.Path,
		ShellArgs:        cfg.Shell.Args,
		WorkingDirectory: cfg.Shell.WorkingDirectory,
		MaxOutputBytes:   cfg.Shell.MaxOutputBytes,
	})

	completions := append([]string(nil), session.MetaCommands...)
	completions = append(completions, "cd")
	completions = append(completions, tactile.Executables(os.Getenv("PATH"))...)
	terminal.SetCompletions(completions)

	systemPrompt := cfg.Chat.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = perception.DefaultSystemPrompt(runner.Shell())
	}

	initial := tactile.ReadSelection(ctx, cfg.UI.InitialPromptSource)

	s := session.New(client, runner, console, terminal, terminal, session.Options{
		Model:           model,
		SystemPrompt:    systemPrompt,
		InitialPrompt:   initial,
		AutoContinue:    cfg.Agent.AutoContinue,
		ContinuePrompt:  cfg.Agent.ContinuePrompt,
		KeepFailedTurns: cfg.Agent.KeepFailedTurns,
	})
	timer.Stop()

	logger.Debug("session starting",
		zap.String("session_id", s.ID()),
		zap.String("model", model),
		zap.String("shell", runner.Shell()),
		zap.Bool("initial_prompt", initial != ""),
	)

	console.Notice(fmt.Sprintf("=== %s (Agent Mode) started. Type !help for commands, exit or Ctrl+D to quit ===", model))

	err = s.Run(ctx)
	logger.Debug("session finished",
		zap.String("session_id", s.ID()),
		zap.Int("requests", s.Usage().Stats().Requests),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			console.Notice("Bye!")
			return nil
		}
		return err
	}
	return nil
}

// chooseModel returns preferred when it is installed, the only model when
// there is one, or the user's pick.
func chooseModel(ctx context.Context, client types.ChatClient, picker session.Picker, preferred string) (string, error) {
	models, err := client.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", perception.ErrNoModels
	}

	if preferred != "" {
		for _, m := range models {
			if m == preferred {
				return m, nil
			}
		}
		logging.BootWarn("Configured model %q is not installed", preferred)
		fmt.Fprintf(os.Stderr, "Model %q is not installed; choose another.\n", preferred)
	}

	if len(models) == 1 {
		return models[0], nil
	}

	idx, err := picker.Pick(ctx, "Select a model", models)
	if err != nil {
		return "", err
	}
	return models[idx], nil
}

// fatal reports a startup failure and waits for Enter so the message stays
// visible when termai was launched in its own window.
func fatal(terminal *ui.Terminal, endpoint string, err error) error {
	logging.BootError("Startup failed: %v", err)

	if errors.Is(err, perception.ErrNoModels) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: could not reach Ollama at %s: %v\n", endpoint, err)
		fmt.Fprintln(os.Stderr, "Check that Ollama is running (ollama serve).")
	}
	terminal.WaitForEnter("Press Enter to exit...")
	return &startupError{err: err}
}

// listModels prints one installed model per line.
func listModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client := perception.NewOllamaClient(perception.OllamaConfig{
		Endpoint: cfg.Chat.Endpoint,
		Timeout:  cfg.GetChatTimeout(),
	})
	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not reach Ollama at %s: %w", client.Endpoint(), err)
	}
	if len(models) == 0 {
		return perception.ErrNoModels
	}

	out := cmd.OutOrStdout()
	for _, m := range models {
		marker := "  "
		if m == cfg.Chat.Model {
			marker = "* "
		}
		fmt.Fprintln(out, marker+m)
	}
	return nil
}

// initConfig writes the default configuration file.
func initConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath(workspace)
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	logger.Info("config written", zap.String("path", path))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
