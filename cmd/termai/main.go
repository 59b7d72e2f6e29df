// Package main is the termai command: a terminal assistant that lets a local
// Ollama model propose shell commands, runs them after confirmation, and keeps
// a direct shell mode alongside.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"termai/internal/config"
	"termai/internal/logging"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Session flags
	modelFlag    string
	endpointFlag string
	shellFlag    string
	autoContinue bool

	// config init
	forceInit bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "termai",
	Short: "termai - a terminal assistant backed by a local Ollama model",
	Long: `termai connects a local Ollama chat model to your shell.

In Agent mode your input goes to the model. When it proposes a command in an
execute block, termai shows it and runs it only after you answer "y"; the output
goes back into the conversation. In Shell mode your input runs directly.

Commands inside the session: !shell, !agent, !model, !help, exit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(workspace)
		if err != nil {
			return err
		}
		workspace = ws

		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runRoot,
}

// modelsCmd lists installed models
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models installed on the Ollama server",
	Args:  cobra.NoArgs,
	RunE:  listModels,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the termai configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to .termai/config.yaml",
	Args:  cobra.NoArgs,
	RunE:  initConfig,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to .termai/logs")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.termai/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Ollama base URL (or set OLLAMA_HOST)")

	// Session flags
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model to use, skipping the picker (or set TERMAI_MODEL)")
	rootCmd.Flags().StringVar(&shellFlag, "shell", "", "Shell that runs commands (or set TERMAI_SHELL)")
	rootCmd.Flags().BoolVar(&autoContinue, "auto-continue", false, "Ask the model to review command output automatically")

	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var se *startupError
		if !errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func resolveWorkspace(ws string) (string, error) {
	if ws == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return cwd, nil
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return "", fmt.Errorf("invalid workspace %q: %w", ws, err)
	}
	return abs, nil
}

// loadConfig reads the config file and layers command-line flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath(workspace)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Chat.Endpoint = endpointFlag
	}
	if flags.Changed("model") {
		cfg.Chat.Model = modelFlag
	}
	if flags.Changed("shell") {
		cfg.Shell.Path = shellFlag
	}
	if flags.Changed("auto-continue") {
		cfg.Agent.AutoContinue = autoContinue
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := logging.Initialize(workspace, cfg.Logging.ToLogging()); err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}
	logging.Boot("Config loaded from %s (endpoint=%s model=%q shell=%q)", path, cfg.Chat.Endpoint, cfg.Chat.Model, cfg.Shell.Path)
	return cfg, nil
}
