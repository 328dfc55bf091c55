package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/blacktop/huginn"
	"github.com/blacktop/huginn/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(terminfoCmd)
}

// terminfoCmd prints the detected terminal capabilities
var terminfoCmd = &cobra.Command{
	Use:   "terminfo",
	Short: "Show the detected terminal graphics capabilities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		detector := huginn.NewDetector(protocolOverride(protocol, cfg.Logo.Protocol))
		detector.Timeout = cfg.DetectTimeout()
		printTerminal(cmd.OutOrStdout(), detector.Terminal(cmd.Context()), os.Getenv)
		return nil
	},
}

func printTerminal(w io.Writer, t huginn.Terminal, getenv func(string) string) {
	fmt.Fprintln(w, "Terminal Environment:")
	fmt.Fprintf(w, "  TERM: %s\n", getenv("TERM"))
	fmt.Fprintf(w, "  TERM_PROGRAM: %s\n", getenv("TERM_PROGRAM"))
	fmt.Fprintf(w, "  In tmux: %v\n", t.Tmux)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Graphics Protocol: %s\n", t.Protocol)
	if t.CellWidth > 0 && t.CellHeight > 0 {
		fmt.Fprintf(w, "Cell Size: %dx%d pixels\n", t.CellWidth, t.CellHeight)
	} else {
		fmt.Fprintf(w, "Cell Size: not reported (using %dx%d)\n", huginn.DefaultCellWidth, huginn.DefaultCellHeight)
	}
	fmt.Fprintln(w)

	switch t.Protocol {
	case huginn.Kitty:
		fmt.Fprintln(w, "✓ Kitty graphics: full color with transparency")
	case huginn.ITerm2:
		fmt.Fprintln(w, "✓ iTerm2 inline images: full color with transparency")
	case huginn.Sixel:
		fmt.Fprintln(w, "✓ Sixel graphics: logo is quantized to the palette limit")
	default:
		fmt.Fprintln(w, "• No graphics protocol detected - set logo.fallback = \"blocks\" for a text logo")
	}
	if t.Tmux {
		fmt.Fprintln(w, "• Running in tmux - graphics use passthrough sequences")
	}
}
