package huginn

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/blacktop/huginn/pkg/csi"
	"golang.org/x/term"
)

// ProtocolEnv overrides protocol detection when set to kitty, sixel, iterm2,
// none or auto.
const ProtocolEnv = "HUGINN_IMAGE_PROTOCOL"

// DefaultDetectTimeout bounds every terminal query.
const DefaultDetectTimeout = 50 * time.Millisecond

// Terminal is what a Detector learned about the output terminal. It is
// computed once and passed to every stage that needs it.
type Terminal struct {
	Protocol Protocol
	// CellWidth and CellHeight are zero when the terminal did not report them.
	CellWidth  int
	CellHeight int
	// Tmux means graphics must be wrapped in tmux passthrough.
	Tmux bool
}

// Footprint returns a columns×rows footprint using the terminal's cell size.
func (t Terminal) Footprint(columns, rows int) CellFootprint {
	return CellFootprint{Columns: columns, Rows: rows, CellWidth: t.CellWidth, CellHeight: t.CellHeight}
}

// Detector classifies the terminal. Every field has a working default; tests
// replace the functions that touch the real terminal.
type Detector struct {
	// Override is an explicit protocol name; empty or "auto" means detect.
	Override string
	// Timeout bounds each terminal query.
	Timeout time.Duration

	Getenv      func(string) string
	Interactive func() bool
	// QueryAttributes issues DA1 and returns the attribute list.
	QueryAttributes func(ctx context.Context, passthrough bool) ([]int, error)
	// QueryCellSize returns the cell size in pixels.
	QueryCellSize func(ctx context.Context, passthrough bool) (width, height int, err error)

	Logger log.Interface
}

// NewDetector returns a Detector wired to the real environment and terminal.
func NewDetector(override string) *Detector {
	return &Detector{
		Override: override,
		Timeout:  DefaultDetectTimeout,
		Getenv:   os.Getenv,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
		QueryAttributes: csi.QueryDeviceAttributes,
		QueryCellSize: func(ctx context.Context, passthrough bool) (int, int, error) {
			if w, h, ok := csi.CellSizeFromWinsize(int(os.Stdout.Fd())); ok {
				return w, h, nil
			}
			return csi.QueryCharacterCellSizeInPixels(ctx, passthrough)
		},
		Logger: log.Log,
	}
}

// Detect returns the protocol of the active terminal. It never fails; every
// uncertain signal resolves to None.
func (d *Detector) Detect(ctx context.Context) Protocol {
	return d.detect(ctx, d.inTmux())
}

// Terminal detects the protocol and, when graphics are available, the cell size.
func (d *Detector) Terminal(ctx context.Context) Terminal {
	t := Terminal{Tmux: d.inTmux()}
	t.Protocol = d.detect(ctx, t.Tmux)
	// Cell size queries write to the tty too; a forced protocol on a pipe
	// keeps the default cell size.
	if t.Protocol == None || d.QueryCellSize == nil || d.Interactive == nil || !d.Interactive() {
		return t
	}
	qctx, cancel := context.WithTimeout(ctx, d.timeout())
	defer cancel()
	w, h, err := d.QueryCellSize(qctx, t.Tmux)
	if err != nil {
		d.logger().WithError(err).Debug("cell size unknown, using defaults")
		return t
	}
	t.CellWidth, t.CellHeight = w, h
	return t
}

func (d *Detector) detect(ctx context.Context, tmux bool) Protocol {
	l := d.logger()

	override := d.Override
	if override == "" {
		override = d.getenv(ProtocolEnv)
	}
	if p, ok := ParseProtocol(override); ok {
		l.WithField("protocol", p).Debug("protocol override")
		return p
	}
	if override != "" && !strings.EqualFold(override, "auto") {
		l.WithField("value", override).Warn("ignoring unknown protocol override")
	}

	// Never write queries into a pipe or file.
	if d.Interactive == nil || !d.Interactive() {
		l.Debug("output is not a terminal")
		return None
	}
	if d.getenv("TERM") == "dumb" {
		return None
	}

	if p := d.fromEnv(); p != None {
		l.WithField("protocol", p).Debug("protocol from environment")
		return p
	}

	if d.QueryAttributes == nil {
		return None
	}
	qctx, cancel := context.WithTimeout(ctx, d.timeout())
	defer cancel()
	attrs, err := d.QueryAttributes(qctx, tmux)
	if err != nil {
		if errors.Is(err, csi.ErrTimeout) {
			err = ErrDetectionTimeout
		}
		l.WithError(err).Debug("device attributes query failed")
		return None
	}
	// Attribute 4 advertises Sixel graphics.
	if slices.Contains(attrs, 4) {
		return Sixel
	}
	return None
}

// fromEnv matches terminal identification variables.
func (d *Detector) fromEnv() Protocol {
	termEnv := strings.ToLower(d.getenv("TERM"))
	termProgram := d.getenv("TERM_PROGRAM")

	// Contour does not speak Kitty graphics but can inherit Kitty variables
	// from the terminal it was launched from.
	contour := d.getenv("CONTOUR_PROFILE") != "" || strings.EqualFold(termProgram, "contour")

	if !contour {
		switch {
		case d.getenv("KITTY_WINDOW_ID") != "":
			return Kitty
		case strings.Contains(termEnv, "kitty"):
			return Kitty
		case termProgram == "ghostty", d.getenv("GHOSTTY_RESOURCES_DIR") != "":
			return Kitty
		}
		// Konsole supports Kitty graphics since 22.04
		if v := d.getenv("KONSOLE_VERSION"); len(v) >= 4 && v[:4] >= "2204" {
			return Kitty
		}
	}

	switch {
	case termProgram == "iTerm.app":
		return ITerm2
	case strings.Contains(strings.ToLower(d.getenv("LC_TERMINAL")), "iterm"):
		return ITerm2
	case d.getenv("ITERM_SESSION_ID") != "":
		return ITerm2
	case termProgram == "WezTerm":
		return ITerm2
	case termProgram == "mintty", termEnv == "mintty":
		return ITerm2
	case termProgram == "vscode" && d.getenv("TERM_PROGRAM_VERSION") != "":
		return ITerm2
	}

	switch {
	case contour:
		return Sixel
	case strings.HasPrefix(termEnv, "foot"):
		return Sixel
	case strings.Contains(termEnv, "mlterm"), strings.Contains(termProgram, "mlterm"):
		return Sixel
	case strings.Contains(termEnv, "yaft"):
		return Sixel
	}
	return None
}

func (d *Detector) inTmux() bool { return inTmux(d.getenv) }

func (d *Detector) getenv(key string) string {
	if d.Getenv == nil {
		return ""
	}
	return d.Getenv(key)
}

func (d *Detector) timeout() time.Duration {
	if d.Timeout <= 0 {
		return DefaultDetectTimeout
	}
	return d.Timeout
}

func (d *Detector) logger() log.Interface {
	if d.Logger == nil {
		return log.Log
	}
	return d.Logger
}
