package tactile

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"termai/internal/logging"
)

// Selection sources for the initial prompt.
const (
	SelectionNone      = "none"
	SelectionKitty     = "kitty"
	SelectionClipboard = "clipboard"
)

// clipboardReadAll is swapped out in tests.
var clipboardReadAll = clipboard.ReadAll

const selectionTimeout = 2 * time.Second

// ReadSelection returns text the user highlighted before starting, or "".
// "kitty" asks the kitty terminal for its primary selection; "clipboard"
// tries that first and then the system clipboard. Failures are not errors:
// there simply is no initial prompt.
func ReadSelection(ctx context.Context, source string) string {
	if source == "" || source == SelectionNone {
		return ""
	}

	if text := kittySelection(ctx); text != "" {
		logging.UIDebug("ReadSelection: %d bytes from kitty", len(text))
		return text
	}

	if source != SelectionClipboard {
		return ""
	}
	text, err := clipboardReadAll()
	if err != nil {
		logging.UIDebug("ReadSelection: clipboard unavailable: %v", err)
		return ""
	}
	text = strings.TrimSpace(text)
	logging.UIDebug("ReadSelection: %d bytes from clipboard", len(text))
	return text
}

func kittySelection(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, selectionTimeout)
	defer cancel()

	out, err := execCommandContext(ctx, "kitty", "@", "get-text", "--selection", "primary").Output()
	if err != nil {
		logging.UIDebug("kitty selection probe failed: %v", err)
		return ""
	}
	return strings.TrimSpace(string(out))
}
