package huginn

import (
	"context"
	"os/exec"

	"github.com/blacktop/huginn/pkg/csi"
)

// inTmux reports whether the environment says we run inside tmux.
func inTmux(getenv func(string) string) bool {
	return getenv("TMUX") != "" || getenv("TERM_PROGRAM") == "tmux"
}

// EnableTmuxPassthrough turns on allow-passthrough for the current pane so
// graphics sequences reach the outer terminal.
func EnableTmuxPassthrough(ctx context.Context) error {
	// -p flag sets the option for the current pane only
	cmd := exec.CommandContext(ctx, "tmux", "set", "-p", "allow-passthrough", "on")
	return cmd.Run()
}

// wrapTmuxPassthrough wraps an escape sequence for tmux passthrough.
func wrapTmuxPassthrough(seq []byte) []byte {
	return []byte(csi.Passthrough(string(seq)))
}
