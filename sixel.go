package huginn

import (
	"bytes"
	"fmt"
	"strconv"
)

const (
	// MaxSixelPixels caps the raster size the Sixel encoder accepts.
	MaxSixelPixels = 2048 * 2048

	sixelStart = "\x1bP0;1;0q" // P2=1: unpainted pixels keep the background
	sixelEnd   = "\x1b\\"

	// Runs shorter than this cost less written out than as "!n<c>".
	sixelMinRun = 3
)

// EncodeSixel encodes an indexed raster as a DEC Sixel sequence. One color
// register is defined per opaque palette entry; transparent pixels are never
// painted.
func EncodeSixel(ir *IndexedRaster, fp CellFootprint) (*EncodedImage, error) {
	if ir == nil || ir.Width <= 0 || ir.Height <= 0 {
		return nil, &EncodeError{Protocol: Sixel, Reason: "empty raster"}
	}
	if ir.Width*ir.Height > MaxSixelPixels {
		return nil, &EncodeError{Protocol: Sixel, Reason: fmt.Sprintf("%dx%d exceeds %d pixels", ir.Width, ir.Height, MaxSixelPixels)}
	}
	if len(ir.Index) != ir.Width*ir.Height {
		return nil, &EncodeError{Protocol: Sixel, Reason: "index length does not match dimensions"}
	}
	pal := ir.Palette
	if pal.Len() > MaxPaletteSize {
		return nil, &EncodeError{Protocol: Sixel, Reason: fmt.Sprintf("palette has %d colors", pal.Len())}
	}
	for _, idx := range ir.Index {
		if int(idx) >= pal.Len() {
			return nil, &EncodeError{Protocol: Sixel, Reason: fmt.Sprintf("index %d outside palette", idx)}
		}
	}

	var buf bytes.Buffer
	buf.WriteString(sixelStart)
	fmt.Fprintf(&buf, "\"1;1;%d;%d", ir.Width, ir.Height)

	for i, c := range pal.Colors {
		if i == pal.Transparent {
			continue
		}
		fmt.Fprintf(&buf, "#%d;2;%d;%d;%d", i, percent(c.R), percent(c.G), percent(c.B))
	}

	row := make([]byte, ir.Width)
	used := make([]bool, pal.Len())
	for top := 0; top < ir.Height; top += 6 {
		if top > 0 {
			buf.WriteByte('-')
		}
		bottom := min(top+6, ir.Height)

		clear(used)
		for y := top; y < bottom; y++ {
			for _, idx := range ir.Index[y*ir.Width : (y+1)*ir.Width] {
				used[idx] = true
			}
		}

		first := true
		for c := range used {
			if !used[c] || c == pal.Transparent {
				continue
			}
			for x := range row {
				var bits byte
				for y := top; y < bottom; y++ {
					if int(ir.Index[y*ir.Width+x]) == c {
						bits |= 1 << (y - top)
					}
				}
				row[x] = '?' + bits
			}
			if !first {
				buf.WriteByte('$')
			}
			first = false
			buf.WriteByte('#')
			buf.WriteString(strconv.Itoa(c))
			writeSixelRow(&buf, bytes.TrimRight(row, "?"))
		}
	}

	buf.WriteString(sixelEnd)
	return &EncodedImage{Protocol: Sixel, Footprint: fp, Data: buf.Bytes()}, nil
}

// writeSixelRow writes one color's sixels for a band, run-length encoding
// runs of at least sixelMinRun identical characters.
func writeSixelRow(buf *bytes.Buffer, row []byte) {
	for i := 0; i < len(row); {
		j := i + 1
		for j < len(row) && row[j] == row[i] {
			j++
		}
		if n := j - i; n >= sixelMinRun {
			buf.WriteByte('!')
			buf.WriteString(strconv.Itoa(n))
			buf.WriteByte(row[i])
		} else {
			buf.Write(row[i:j])
		}
		i = j
	}
}

// percent converts an 8-bit channel to the 0-100 scale of Sixel registers.
func percent(v uint8) int {
	return (int(v)*100 + 127) / 255
}
