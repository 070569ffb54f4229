package tui

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// copyFadeDelay is how long the "copied" indicator stays visible.
const copyFadeDelay = 2 * time.Second

// copyFadeMsg is sent after copyFadeDelay to clear the copied indicator.
// seq lets the model ignore stale fades when the user copied again in the
// meantime: only the newest copy's fade clears the indicator.
type copyFadeMsg struct {
	seq int
}

// copyToClipboard writes text to the system clipboard via the OSC 52
// terminal escape sequence. Writes directly to /dev/tty to bypass
// bubbletea's managed output — OSC 52 is invisible (no screen effect)
// so it's safe to write alongside the TUI renderer.
//
// Uses BEL (\x07) as the OSC terminator rather than ST (\x1b\\)
// because BEL is a single byte that survives intact through layered
// terminal environments (SSH, tmux, screen).
//
// When tmux is detected (via $TMUX or $TERM prefix), sends the OSC 52
// both via tmux DCS passthrough (for allow-passthrough configurations)
// and directly (for set-clipboard configurations). This covers both
// tmux forwarding modes; duplicate clipboard sets are harmless.
//
// A terminal without OSC 52 support ignores the sequence; the copy
// silently does nothing and the indicator still shows.
func copyToClipboard(text string, seq int) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
			if err != nil {
				return nil
			}
			defer tty.Close()

			encoded := base64.StdEncoding.EncodeToString([]byte(text))
			osc52 := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)

			inTmux := os.Getenv("TMUX") != "" ||
				strings.HasPrefix(os.Getenv("TERM"), "tmux") ||
				strings.HasPrefix(os.Getenv("TERM"), "screen")

			if inTmux {
				// tmux DCS passthrough: escapes are doubled inside the
				// DCS wrapper. Requires tmux allow-passthrough on.
				fmt.Fprintf(tty, "\x1bPtmux;\x1b%s\x1b\\", osc52)
			}

			tty.WriteString(osc52)
			return nil
		},
		tea.Tick(copyFadeDelay, func(time.Time) tea.Msg {
			return copyFadeMsg{seq: seq}
		}),
	)
}
