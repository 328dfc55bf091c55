package huginn

import (
	"io"

	"github.com/apex/log"
)

// Fallback styles for terminals without graphics.
const (
	FallbackText   = "text"
	FallbackBlocks = "blocks"
)

// Renderer runs the logo pipeline for one terminal: rasterize, quantize when
// needed, encode and compose next to the text panel.
type Renderer struct {
	Terminal Terminal
	// Columns and Rows are the logo size in cells.
	Columns int
	Rows    int
	Gap     int
	// Fallback is FallbackText or FallbackBlocks.
	Fallback string
	Options  EncodeOptions
	Logger   log.Interface
}

// NewRenderer returns a Renderer with default options for t.
func NewRenderer(t Terminal, columns, rows int) *Renderer {
	return &Renderer{
		Terminal: t,
		Columns:  columns,
		Rows:     rows,
		Fallback: FallbackText,
		Options: EncodeOptions{
			MaxColors:   MaxPaletteSize,
			Passthrough: t.Tmux,
		},
		Logger: log.Log,
	}
}

// Render writes logo and panel to w. Graphics failures are logged once and
// the panel is rendered as text; only write errors are returned.
func (r *Renderer) Render(w io.Writer, logo Logo, panel TextPanel) error {
	opts := ComposeOptions{Gap: r.Gap}
	if logo == nil {
		return Compose(w, nil, panel, opts)
	}

	enc, err := r.encode(logo)
	if err != nil {
		r.logger().WithError(err).WithField("protocol", r.Terminal.Protocol).Warn("logo disabled, rendering text only")
		return Compose(w, nil, panel, opts)
	}
	if enc == nil && r.Fallback == FallbackBlocks {
		opts.Fallback = r.blocks(logo)
	}
	return Compose(w, enc, panel, opts)
}

func (r *Renderer) encode(logo Logo) (*EncodedImage, error) {
	if r.Terminal.Protocol == None {
		return nil, nil
	}
	fp := r.Terminal.Footprint(r.Columns, r.Rows)
	raster, err := Rasterize(logo, fp)
	if err != nil {
		return nil, err
	}
	return Encode(r.Terminal.Protocol, raster, fp, r.Options)
}

func (r *Renderer) blocks(logo Logo) []string {
	raster, err := Rasterize(logo, BlockFootprint(r.Columns, r.Rows))
	if err != nil {
		r.logger().WithError(err).Debug("block logo unavailable")
		return nil
	}
	return RenderBlocks(raster, r.Columns, r.Rows, r.Options.Dither)
}

func (r *Renderer) logger() log.Interface {
	if r.Logger == nil {
		return log.Log
	}
	return r.Logger
}
