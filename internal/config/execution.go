package config

// ShellConfig configures the shell that runs commands.
type ShellConfig struct {
	// Path is the shell binary. Empty falls back to $SHELL, then /bin/sh.
	Path string `yaml:"path,omitempty"`

	// Args precede the command string. Empty derives them from the shell:
	// /C for cmd, -NoProfile -Command for PowerShell, -c otherwise.
	Args []string `yaml:"args,omitempty"`

	// WorkingDirectory is the initial directory for commands (default: cwd).
	WorkingDirectory string `yaml:"working_directory,omitempty"`

	// MaxOutputBytes caps captured stdout and stderr each. Zero means unlimited.
	MaxOutputBytes int64 `yaml:"max_output_bytes"`
}
