package perception

import (
	"fmt"
	"path/filepath"
	"runtime"
)

const systemPromptTemplate = `You are a Terminal Assistant running on %s (%s shell).

[IMPORTANT RULES]
1. Before answering, you MUST provide your thinking process enclosed in <think> and </think> tags.
2. If the user asks to perform a system action, you MUST output the command inside a code block labeled 'execute'.
3. Propose at most one execute block per reply. The user confirms it before it runs and the output is sent back to you.

Example:
<think>
User wants to update npm. I need to use the global flag.
</think>

%sexecute
npm update -g
%s

Do NOT ask for permission in text. Just provide the execute block.
`

// DefaultSystemPrompt builds the agent instruction for the given shell binary.
func DefaultSystemPrompt(shellPath string) string {
	shell := filepath.Base(shellPath)
	if shellPath == "" {
		shell = "sh"
	}
	return fmt.Sprintf(systemPromptTemplate, osName(), shell, Fence, Fence)
}

func osName() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	default:
		return "Linux"
	}
}
