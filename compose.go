package huginn

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// DefaultGap is the number of blank columns between the logo and the text.
const DefaultGap = 2

const (
	saveCursor    = "\x1b7"
	restoreCursor = "\x1b8"
)

// TextPanel is the styled text rendered beside the logo, one entry per row.
type TextPanel struct {
	Lines []string
}

// ComposeOptions tunes the layout.
type ComposeOptions struct {
	// Gap is the number of columns between logo and text. Zero means
	// DefaultGap.
	Gap int
	// Fallback is a text logo shown when there is no image.
	Fallback []string
}

func (o ComposeOptions) gap() int {
	if o.Gap <= 0 {
		return DefaultGap
	}
	return o.Gap
}

// Compose writes enc and panel to w so that the image occupies a fixed
// rectangle on the left and each panel line starts to its right. The cursor
// ends on the line below the taller of the two.
//
// A nil enc, or one for None, writes text only: the fallback logo if any,
// otherwise the panel left aligned. No graphics sequence is ever written in
// that case.
func Compose(w io.Writer, enc *EncodedImage, panel TextPanel, opts ComposeOptions) error {
	bw := bufio.NewWriter(w)
	if enc == nil || enc.Protocol == None || len(enc.Data) == 0 {
		composeText(bw, panel, opts)
		return bw.Flush()
	}

	cols, rows := enc.Footprint.Columns, enc.Footprint.Rows
	height := max(rows, len(panel.Lines))

	// Reserve the rows first so the terminal never scrolls mid-image, which
	// would leave the saved cursor position pointing at the wrong line.
	if height > 0 {
		bw.WriteString(strings.Repeat("\n", height))
		fmt.Fprintf(bw, "\x1b[%dA", height)
	}

	bw.WriteString(saveCursor)
	bw.Write(enc.Data)
	bw.WriteString(restoreCursor)

	offset := cols + opts.gap()
	for _, line := range panel.Lines {
		bw.WriteByte('\r')
		if offset > 0 {
			fmt.Fprintf(bw, "\x1b[%dC", offset)
		}
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	for range rows - len(panel.Lines) {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// composeText lays the fallback logo and the panel side by side as plain
// columns, padding logo rows to a common display width.
func composeText(bw *bufio.Writer, panel TextPanel, opts ComposeOptions) {
	if len(opts.Fallback) == 0 {
		for _, line := range panel.Lines {
			bw.WriteString(line)
			bw.WriteByte('\n')
		}
		return
	}

	width := 0
	for _, l := range opts.Fallback {
		width = max(width, ansi.StringWidth(l))
	}
	pad := strings.Repeat(" ", opts.gap())
	for i := range max(len(opts.Fallback), len(panel.Lines)) {
		var logo, text string
		if i < len(opts.Fallback) {
			logo = opts.Fallback[i]
		}
		if i < len(panel.Lines) {
			text = panel.Lines[i]
		}
		bw.WriteString(logo)
		if text != "" {
			bw.WriteString(strings.Repeat(" ", width-ansi.StringWidth(logo)))
			bw.WriteString(pad)
			bw.WriteString(text)
		}
		bw.WriteByte('\n')
	}
}
