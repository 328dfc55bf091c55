package huginn

import "fmt"

// EncodedImage is a terminal-ready escape sequence and the footprint it was
// encoded for. It is consumed once by Compose.
type EncodedImage struct {
	Protocol  Protocol
	Footprint CellFootprint
	Data      []byte
}

// EncodeOptions bundles the per-protocol encoder options.
type EncodeOptions struct {
	// MaxColors bounds the Sixel palette. Zero means MaxPaletteSize.
	MaxColors int
	// Dither enables error diffusion when the Sixel palette is too small.
	Dither bool
	Kitty  KittyOptions
	ITerm2 ITerm2Options
	// Passthrough wraps the sequence for tmux.
	Passthrough bool
}

// Encode dispatches r to the encoder for p. None yields ErrNoGraphics.
func Encode(p Protocol, r *Raster, fp CellFootprint, opts EncodeOptions) (*EncodedImage, error) {
	var (
		enc *EncodedImage
		err error
	)
	switch p {
	case Sixel:
		maxColors := opts.MaxColors
		if maxColors <= 0 {
			maxColors = MaxPaletteSize
		}
		var ir *IndexedRaster
		ir, err = Quantize(r, maxColors, QuantizeOptions{Dither: opts.Dither})
		if err != nil {
			return nil, &EncodeError{Protocol: Sixel, Reason: "quantize", Err: err}
		}
		enc, err = EncodeSixel(ir, fp)
	case Kitty:
		enc, err = EncodeKitty(r, fp, opts.Kitty)
	case ITerm2:
		enc, err = EncodeITerm2(r, fp, opts.ITerm2)
	case None:
		return nil, ErrNoGraphics
	default:
		return nil, fmt.Errorf("encode: unknown protocol %s", p)
	}
	if err != nil {
		return nil, err
	}
	if opts.Passthrough {
		enc.Data = wrapTmuxPassthrough(enc.Data)
	}
	return enc, nil
}
