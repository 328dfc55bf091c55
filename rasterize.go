package huginn

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

// Sanity bounds for logo sources and rasters.
const (
	MaxSourceBytes     = 4 << 20 // 4MB
	MaxSourceDimension = 16384
	MaxRasterPixels    = 4096 * 4096
)

// Logo is a source image that can be drawn at any size.
// Implementations are *VectorImage and *BitmapImage.
type Logo interface {
	// Size returns the natural width and height of the source.
	Size() (width, height float64)
	draw(dst *image.NRGBA, r image.Rectangle)
}

// VectorImage is a parsed SVG logo.
type VectorImage struct {
	icon *oksvg.SvgIcon
}

// ParseVector parses an SVG document.
func ParseVector(r io.Reader) (*VectorImage, error) {
	data, err := readBounded(r)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, &RasterizeError{Reason: "malformed svg", Err: err}
	}
	v := &VectorImage{icon: icon}
	if err := checkSourceSize(v.Size()); err != nil {
		return nil, err
	}
	return v, nil
}

// Size returns the SVG viewBox dimensions.
func (v *VectorImage) Size() (float64, float64) {
	return v.icon.ViewBox.W, v.icon.ViewBox.H
}

func (v *VectorImage) draw(dst *image.NRGBA, r image.Rectangle) {
	w, h := r.Dx(), r.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	// Draw a shallow copy so the shared icon keeps its transform.
	icon := *v.icon
	vb := icon.ViewBox
	// Map the viewBox onto the target: translate its origin away, then scale.
	icon.Transform = rasterx.Identity.Scale(float64(w)/vb.W, float64(h)/vb.H).Translate(-vb.X, -vb.Y)
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	xdraw.Copy(dst, r.Min, rgba, rgba.Bounds(), xdraw.Src, nil)
}

// BitmapImage is a decoded raster logo (PNG, JPEG or GIF).
type BitmapImage struct {
	img image.Image
}

// DecodeBitmap decodes a raster logo file.
func DecodeBitmap(r io.Reader) (*BitmapImage, error) {
	data, err := readBounded(r)
	if err != nil {
		return nil, err
	}
	// Check the declared canvas before decoding allocates it.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &RasterizeError{Reason: "malformed image", Err: err}
	}
	if err := checkSourceSize(float64(cfg.Width), float64(cfg.Height)); err != nil {
		return nil, err
	}
	if cfg.Width*cfg.Height > MaxRasterPixels {
		return nil, &RasterizeError{Reason: fmt.Sprintf("source %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxRasterPixels)}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &RasterizeError{Reason: "malformed image", Err: err}
	}
	return &BitmapImage{img: img}, nil
}

// NewBitmap wraps an already decoded image.
func NewBitmap(img image.Image) *BitmapImage {
	return &BitmapImage{img: img}
}

// Size returns the bitmap pixel dimensions.
func (b *BitmapImage) Size() (float64, float64) {
	bounds := b.img.Bounds()
	return float64(bounds.Dx()), float64(bounds.Dy())
}

func (b *BitmapImage) draw(dst *image.NRGBA, r image.Rectangle) {
	scaled := resize.Resize(uint(r.Dx()), uint(r.Dy()), b.img, resize.Lanczos3)
	xdraw.Copy(dst, r.Min, scaled, scaled.Bounds(), xdraw.Src, nil)
}

// OpenLogo loads a logo file, choosing the decoder by extension.
func OpenLogo(path string) (Logo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".svg") {
		v, err := ParseVector(f)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	b, err := DecodeBitmap(f)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Rasterize draws logo into a raster covering fp, preserving the source
// aspect ratio. Unused area stays fully transparent.
func Rasterize(logo Logo, fp CellFootprint) (*Raster, error) {
	if logo == nil {
		return nil, &RasterizeError{Reason: "no logo"}
	}
	width, height := fp.PixelSize()
	if width <= 0 || height <= 0 {
		return nil, &RasterizeError{Reason: fmt.Sprintf("empty footprint %dx%d", fp.Columns, fp.Rows)}
	}
	if width*height > MaxRasterPixels {
		return nil, &RasterizeError{Reason: fmt.Sprintf("target %dx%d exceeds %d pixels", width, height, MaxRasterPixels)}
	}
	sw, sh := logo.Size()
	if err := checkSourceSize(sw, sh); err != nil {
		return nil, err
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	if r := letterbox(sw, sh, width, height); !r.Empty() {
		logo.draw(canvas, r)
	}
	return &Raster{img: canvas}, nil
}

// letterbox centers a (sw, sh) source scaled to fit inside (width, height).
func letterbox(sw, sh float64, width, height int) image.Rectangle {
	scale := math.Min(float64(width)/sw, float64(height)/sh)
	dw := min(int(math.Round(sw*scale)), width)
	dh := min(int(math.Round(sh*scale)), height)
	x := (width - dw) / 2
	y := (height - dh) / 2
	return image.Rect(x, y, x+dw, y+dh)
}

func checkSourceSize(w, h float64) error {
	switch {
	case math.IsNaN(w) || math.IsNaN(h) || w <= 0 || h <= 0:
		return &RasterizeError{Reason: fmt.Sprintf("invalid source size %gx%g", w, h)}
	case w > MaxSourceDimension || h > MaxSourceDimension:
		return &RasterizeError{Reason: fmt.Sprintf("source size %gx%g exceeds %d", w, h, MaxSourceDimension)}
	}
	return nil
}

func readBounded(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceBytes+1))
	if err != nil {
		return nil, &RasterizeError{Reason: "read source", Err: err}
	}
	if len(data) > MaxSourceBytes {
		return nil, &RasterizeError{Reason: fmt.Sprintf("source larger than %d bytes", MaxSourceBytes)}
	}
	return data, nil
}
