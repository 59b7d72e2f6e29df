package config

// Initial prompt sources.
const (
	SelectionNone      = "none"
	SelectionKitty     = "kitty"
	SelectionClipboard = "clipboard"
)

// ValidSelectionSources lists the accepted ui.initial_prompt_source values.
var ValidSelectionSources = []string{SelectionNone, SelectionKitty, SelectionClipboard}

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light", "dark" or "auto".
	Theme string `yaml:"theme"`

	// RenderMarkdown renders the visible answer with glamour.
	RenderMarkdown bool `yaml:"render_markdown"`

	// WordWrap is the markdown wrap width.
	WordWrap int `yaml:"word_wrap"`

	// InitialPromptSource picks where the first agent input comes from:
	// "kitty" reads the terminal's primary selection, "clipboard" falls back to
	// the system clipboard as well, "none" disables the probe.
	InitialPromptSource string `yaml:"initial_prompt_source"`
}
