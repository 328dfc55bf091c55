package huginn

import (
	"image"
	"image/color"
	"image/draw"
)

// Default cell size in pixels, used when the terminal does not report one.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// CellFootprint is a rendering size in terminal cells plus the pixel size of
// one cell. A zero cell size means unknown.
type CellFootprint struct {
	Columns    int
	Rows       int
	CellWidth  int
	CellHeight int
}

// Cell returns the pixel size of one cell, falling back to the defaults.
func (f CellFootprint) Cell() (width, height int) {
	width, height = f.CellWidth, f.CellHeight
	if width <= 0 || height <= 0 {
		return DefaultCellWidth, DefaultCellHeight
	}
	return width, height
}

// PixelSize returns the pixel dimensions covered by the footprint.
func (f CellFootprint) PixelSize() (width, height int) {
	cw, ch := f.Cell()
	return f.Columns * cw, f.Rows * ch
}

// Raster is an immutable grid of non-premultiplied RGBA pixels.
type Raster struct {
	img *image.NRGBA
}

// NewRaster copies img into a Raster anchored at the origin.
func NewRaster(img image.Image) *Raster {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Raster{img: dst}
}

// Width is the raster width in pixels.
func (r *Raster) Width() int { return r.img.Rect.Dx() }

// Height is the raster height in pixels.
func (r *Raster) Height() int { return r.img.Rect.Dy() }

// At returns the pixel at (x, y).
func (r *Raster) At(x, y int) color.NRGBA { return r.img.NRGBAAt(x, y) }

// Pix returns the pixel bytes in RGBA order, row-major with no padding.
// Callers must not modify the returned slice.
func (r *Raster) Pix() []byte { return r.img.Pix }

// Image exposes the raster as a read-only image.Image.
func (r *Raster) Image() image.Image { return r.img }

func (r *Raster) empty() bool { return r == nil || r.Width() <= 0 || r.Height() <= 0 }
