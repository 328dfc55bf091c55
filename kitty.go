package huginn

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zlib"
)

const (
	// KittyChunkSize is the largest base64 payload of a single Kitty command.
	KittyChunkSize = 4096
	// MaxKittyPixels caps the raster size the Kitty encoder accepts.
	MaxKittyPixels = 2048 * 2048

	kittyStart = "\x1b_G"
	kittyEnd   = "\x1b\\"
)

// KittyOptions contains Kitty-specific encoding options
type KittyOptions struct {
	// Compress deflates the RGBA payload (o=z).
	Compress bool
	// ImageID sets i=<id>; zero lets the terminal pick one.
	ImageID uint32
}

// EncodeKitty encodes r as direct RGBA (f=32) Kitty graphics commands.
// The payload is split into KittyChunkSize pieces; every command but the
// last carries m=1, and only the first carries the image metadata.
func EncodeKitty(r *Raster, fp CellFootprint, opts KittyOptions) (*EncodedImage, error) {
	if r.empty() {
		return nil, &EncodeError{Protocol: Kitty, Reason: "empty raster"}
	}
	if r.Width()*r.Height() > MaxKittyPixels {
		return nil, &EncodeError{Protocol: Kitty, Reason: fmt.Sprintf("%dx%d exceeds %d pixels", r.Width(), r.Height(), MaxKittyPixels)}
	}

	payload := r.Pix()
	if opts.Compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, &EncodeError{Protocol: Kitty, Reason: "compress", Err: err}
		}
		if err := zw.Close(); err != nil {
			return nil, &EncodeError{Protocol: Kitty, Reason: "compress", Err: err}
		}
		payload = buf.Bytes()
	}

	// a=T: transmit and display
	// f=32: RGBA, s/v: pixel size, c/r: cell size
	// C=1: keep the cursor where it is, q=2: no replies
	controls := []string{
		"a=T",
		"f=32",
		fmt.Sprintf("s=%d", r.Width()),
		fmt.Sprintf("v=%d", r.Height()),
	}
	if fp.Columns > 0 && fp.Rows > 0 {
		controls = append(controls, fmt.Sprintf("c=%d", fp.Columns), fmt.Sprintf("r=%d", fp.Rows))
	}
	if opts.Compress {
		controls = append(controls, "o=z")
	}
	if opts.ImageID > 0 {
		controls = append(controls, fmt.Sprintf("i=%d", opts.ImageID))
	}
	controls = append(controls, "C=1", "q=2")

	chunks := base64Chunks(payload, KittyChunkSize)
	var sb strings.Builder
	for i, chunk := range chunks {
		more := 0
		if i < len(chunks)-1 {
			more = 1
		}
		sb.WriteString(kittyStart)
		if i == 0 {
			sb.WriteString(strings.Join(controls, ","))
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "m=%d;%s", more, chunk)
		sb.WriteString(kittyEnd)
	}

	return &EncodedImage{Protocol: Kitty, Footprint: fp, Data: []byte(sb.String())}, nil
}
