package huginn

import (
	"bytes"
	"image"
	"image/color"
	"regexp"
	"testing"

	"github.com/mattn/go-sixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixelRegister = regexp.MustCompile(`#(\d+);2;(\d+);(\d+);(\d+)`)

func solidRaster(w, h int, c color.NRGBA) *Raster {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return NewRaster(img)
}

func encodeSixel(t *testing.T, r *Raster, maxColors int) []byte {
	t.Helper()
	ir, err := Quantize(r, maxColors, QuantizeOptions{})
	require.NoError(t, err)
	enc, err := EncodeSixel(ir, CellFootprint{Columns: 8, Rows: 4})
	require.NoError(t, err)
	assert.Equal(t, Sixel, enc.Protocol)
	return enc.Data
}

func TestSixelSingleRegisterForSolidRed(t *testing.T) {
	red := solidRaster(64, 64, color.NRGBA{R: 255, A: 255})
	data := encodeSixel(t, red, 2)

	regs := sixelRegister.FindAllStringSubmatch(string(data), -1)
	require.Len(t, regs, 1, "exactly one color register")
	assert.Equal(t, []string{"#0;2;100;0;0", "0", "100", "0", "0"}, regs[0])
}

func TestSixelFraming(t *testing.T) {
	data := encodeSixel(t, solidRaster(10, 13, color.NRGBA{G: 255, A: 255}), 256)

	assert.True(t, bytes.HasPrefix(data, []byte("\x1bP0;1;0q\"1;1;10;13")), "DCS introducer and raster attributes")
	assert.True(t, bytes.HasSuffix(data, []byte("\x1b\\")), "string terminator")
	// 13 rows make three bands.
	assert.Equal(t, 2, bytes.Count(data, []byte("-")))
	// Full runs of ten are run length encoded.
	assert.Contains(t, string(data), "!10~")
}

func TestWriteSixelRow(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{name: "single", row: "~", want: "~"},
		{name: "pair stays literal", row: "~~", want: "~~"},
		{name: "run of three", row: "~~~", want: "!3~"},
		{name: "mixed", row: "AAAAB@@", want: "!4AB@@"},
		{name: "empty", row: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeSixelRow(&buf, []byte(tt.row))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSixelTransparentPixelsUnpainted(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := range 6 {
		img.SetNRGBA(0, y, color.NRGBA{B: 255, A: 255})
	}
	ir, err := Quantize(NewRaster(img), 4, QuantizeOptions{})
	require.NoError(t, err)
	enc, err := EncodeSixel(ir, CellFootprint{})
	require.NoError(t, err)

	regs := sixelRegister.FindAllStringSubmatch(string(enc.Data), -1)
	require.Len(t, regs, 1, "no register for the transparent slot")
	assert.Equal(t, "100", regs[0][4])
	// Only column zero is painted; trailing empty sixels are trimmed.
	assert.Contains(t, string(enc.Data), "#"+regs[0][1]+"~\x1b\\")
}

func TestSixelRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 24, 18))
	palette := []color.NRGBA{
		{R: 255, A: 255},
		{G: 128, B: 64, A: 255},
		{R: 10, G: 200, B: 250, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
	for y := range 18 {
		for x := range 24 {
			img.SetNRGBA(x, y, palette[(x/3+y/2)%len(palette)])
		}
	}
	src := NewRaster(img)
	data := encodeSixel(t, src, 16)

	var decoded image.Image
	require.NoError(t, sixel.NewDecoder(bytes.NewReader(data)).Decode(&decoded))
	require.Equal(t, image.Rect(0, 0, 24, 18), decoded.Bounds())

	for y := range 18 {
		for x := range 24 {
			want := src.At(x, y)
			got := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			// Registers carry percentages, so each channel may drift by a few steps.
			assert.InDelta(t, want.R, got.R, 3, "R at %d,%d", x, y)
			assert.InDelta(t, want.G, got.G, 3, "G at %d,%d", x, y)
			assert.InDelta(t, want.B, got.B, 3, "B at %d,%d", x, y)
		}
	}
}

func TestEncodeSixelValidation(t *testing.T) {
	tests := []struct {
		name string
		ir   *IndexedRaster
	}{
		{name: "nil", ir: nil},
		{name: "zero width", ir: &IndexedRaster{Width: 0, Height: 4}},
		{name: "index length", ir: &IndexedRaster{Width: 2, Height: 2, Index: []uint8{0}, Palette: Palette{Colors: []color.RGBA{{}}, Transparent: -1}}},
		{name: "index outside palette", ir: &IndexedRaster{Width: 1, Height: 1, Index: []uint8{3}, Palette: Palette{Colors: []color.RGBA{{}}, Transparent: -1}}},
		{name: "too large", ir: &IndexedRaster{Width: 4096, Height: 4096}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeSixel(tt.ir, CellFootprint{})
			var encErr *EncodeError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, Sixel, encErr.Protocol)
		})
	}
}
