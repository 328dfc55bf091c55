package huginn

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
)

// MaxITerm2Pixels caps the raster size the iTerm2 encoder accepts; the whole
// image travels in a single escape sequence.
const MaxITerm2Pixels = 1448 * 1448

// Container is the image file format wrapped in an iTerm2 sequence.
type Container int

const (
	// ContainerPNG is lossless and keeps transparency.
	ContainerPNG Container = iota
	// ContainerBMP is an uncompressed 32-bit bitmap.
	ContainerBMP
)

// ITerm2Options contains iTerm2-specific encoding options
type ITerm2Options struct {
	Container Container
}

// EncodeITerm2 wraps r in an image container and emits a single OSC 1337
// inline file sequence sized in cells, leaving scaling to the terminal.
func EncodeITerm2(r *Raster, fp CellFootprint, opts ITerm2Options) (*EncodedImage, error) {
	if r.empty() {
		return nil, &EncodeError{Protocol: ITerm2, Reason: "empty raster"}
	}
	if r.Width()*r.Height() > MaxITerm2Pixels {
		return nil, &EncodeError{Protocol: ITerm2, Reason: fmt.Sprintf("%dx%d exceeds %d pixels", r.Width(), r.Height(), MaxITerm2Pixels)}
	}

	var buf bytes.Buffer
	switch opts.Container {
	case ContainerBMP:
		if err := bmp.Encode(&buf, r.Image()); err != nil {
			return nil, &EncodeError{Protocol: ITerm2, Reason: "bmp", Err: err}
		}
	default:
		if err := png.Encode(&buf, r.Image()); err != nil {
			return nil, &EncodeError{Protocol: ITerm2, Reason: "png", Err: err}
		}
	}
	data := buf.Bytes()

	params := []string{
		"inline=1",
		fmt.Sprintf("size=%d", len(data)),
	}
	if fp.Columns > 0 && fp.Rows > 0 {
		params = append(params,
			fmt.Sprintf("width=%d", fp.Columns),
			fmt.Sprintf("height=%d", fp.Rows),
			"preserveAspectRatio=0",
		)
	} else {
		params = append(params,
			fmt.Sprintf("width=%dpx", r.Width()),
			fmt.Sprintf("height=%dpx", r.Height()),
		)
	}
	params = append(params, "doNotMoveCursor=1")

	// Format: ESC ] 1337 ; File=[parameters] : [base64 data] BEL
	out := fmt.Sprintf("\x1b]1337;File=%s:%s\x07", strings.Join(params, ";"), base64Encode(data))
	return &EncodedImage{Protocol: ITerm2, Footprint: fp, Data: []byte(out)}, nil
}
