package huginn

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/soniakeys/quant/median"
)

// MaxPaletteSize is the largest palette a Sixel image can address.
const MaxPaletteSize = 256

// Palette is an ordered set of opaque colors. When the source raster has
// pixels below AlphaThreshold one entry is reserved for them; Transparent
// holds its index, or -1 when there is none.
type Palette struct {
	Colors      []color.RGBA
	Transparent int
}

// Len returns the number of palette entries, the transparent slot included.
func (p Palette) Len() int { return len(p.Colors) }

// IndexedRaster is a raster expressed as indices into a Palette.
type IndexedRaster struct {
	Width   int
	Height  int
	Index   []uint8
	Palette Palette
}

// At returns the palette index of the pixel at (x, y).
func (ir *IndexedRaster) At(x, y int) uint8 { return ir.Index[y*ir.Width+x] }

// QuantizeOptions tunes color reduction.
type QuantizeOptions struct {
	// Dither diffuses the quantization error (Floyd-Steinberg) when the
	// raster has more colors than the palette can hold.
	Dither bool
}

// AlphaThreshold is the lowest alpha painted by the Sixel path. Anything
// fainter, such as anti-aliased edges, maps to the transparent slot.
const AlphaThreshold = 0x80

type rgb struct{ r, g, b uint8 }

func transparent(c color.NRGBA) bool { return c.A < AlphaThreshold }

// Quantize reduces r to at most maxColors palette entries. Palette order is
// the order in which each entry is first used scanning left to right, top to
// bottom, so identical rasters always yield identical palettes.
func Quantize(r *Raster, maxColors int, opts QuantizeOptions) (*IndexedRaster, error) {
	if r.empty() {
		return nil, fmt.Errorf("quantize: empty raster")
	}
	if maxColors < 1 || maxColors > MaxPaletteSize {
		return nil, fmt.Errorf("quantize: palette size %d outside [1, %d]", maxColors, MaxPaletteSize)
	}

	w, h := r.Width(), r.Height()
	seen := make(map[rgb]int)
	var distinct []rgb
	hasTransparent := false
	opaque := 0
	for y := range h {
		for x := range w {
			c := r.At(x, y)
			if transparent(c) {
				hasTransparent = true
				continue
			}
			opaque++
			k := rgb{c.R, c.G, c.B}
			if _, ok := seen[k]; !ok {
				seen[k] = len(distinct)
				distinct = append(distinct, k)
			}
		}
	}

	budget := maxColors
	if hasTransparent {
		budget--
	}
	if budget < 1 && opaque > 0 {
		return nil, fmt.Errorf("quantize: palette size %d leaves no room for opaque colors", maxColors)
	}

	// reps holds the representative colors; repOf maps each distinct color
	// to its representative.
	var reps []rgb
	repOf := make(map[rgb]int, len(distinct))
	if len(distinct) <= budget {
		reps = distinct
		for i, c := range distinct {
			repOf[c] = i
		}
	} else {
		reps = medianCut(r, opaque, budget)
		nearest := newLabMatcher(reps)
		for _, c := range distinct {
			repOf[c] = nearest.index(c)
		}
	}

	src := r
	if opts.Dither && len(distinct) > budget {
		src = ditherTo(r, reps)
		nearest := newLabMatcher(reps)
		for y := range h {
			for x := range w {
				c := src.At(x, y)
				k := rgb{c.R, c.G, c.B}
				if _, ok := repOf[k]; !ok {
					repOf[k] = nearest.index(k)
				}
			}
		}
	}

	// Assign palette slots in first-use order.
	ir := &IndexedRaster{
		Width:   w,
		Height:  h,
		Index:   make([]uint8, w*h),
		Palette: Palette{Transparent: -1},
	}
	slot := make([]int, len(reps))
	for i := range slot {
		slot[i] = -1
	}
	for y := range h {
		for x := range w {
			i := y*w + x
			if transparent(r.At(x, y)) {
				if ir.Palette.Transparent < 0 {
					ir.Palette.Transparent = len(ir.Palette.Colors)
					ir.Palette.Colors = append(ir.Palette.Colors, color.RGBA{})
				}
				ir.Index[i] = uint8(ir.Palette.Transparent)
				continue
			}
			c := src.At(x, y)
			rep := repOf[rgb{c.R, c.G, c.B}]
			if slot[rep] < 0 {
				slot[rep] = len(ir.Palette.Colors)
				k := reps[rep]
				ir.Palette.Colors = append(ir.Palette.Colors, color.RGBA{R: k.r, G: k.g, B: k.b, A: 0xff})
			}
			ir.Index[i] = uint8(slot[rep])
		}
	}
	return ir, nil
}

// medianCut picks up to n representative colors from the opaque pixels of r.
func medianCut(r *Raster, opaque, n int) []rgb {
	// Pack the opaque pixels into a strip so transparent padding does not
	// pull a color into the palette.
	strip := image.NewNRGBA(image.Rect(0, 0, opaque, 1))
	i := 0
	for y := range r.Height() {
		for x := range r.Width() {
			c := r.At(x, y)
			if transparent(c) {
				continue
			}
			c.A = 0xff
			strip.SetNRGBA(i, 0, c)
			i++
		}
	}
	pal := median.Quantizer(n).Palette(strip).ColorPalette()

	reps := make([]rgb, 0, len(pal))
	dup := make(map[rgb]bool, len(pal))
	for _, c := range pal {
		k := toRGB(c)
		if dup[k] {
			continue
		}
		dup[k] = true
		reps = append(reps, k)
	}
	return reps
}

// ditherTo returns a copy of r whose opaque pixels only use colors from reps.
func ditherTo(r *Raster, reps []rgb) *Raster {
	pal := make([]color.Color, len(reps))
	for i, k := range reps {
		pal[i] = color.RGBA{R: k.r, G: k.g, B: k.b, A: 0xff}
	}
	d := dither.NewDitherer(pal)
	if d == nil {
		return r
	}
	d.Matrix = dither.FloydSteinberg

	img := image.NewNRGBA(r.img.Rect)
	copy(img.Pix, r.img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	var out image.Image = img
	if res := d.Dither(img); res != nil {
		out = res
	}
	return NewRaster(out)
}

// labMatcher finds the perceptually nearest representative color.
type labMatcher struct {
	lab [][3]float64
}

func newLabMatcher(reps []rgb) *labMatcher {
	m := &labMatcher{lab: make([][3]float64, len(reps))}
	for i, k := range reps {
		l, a, b := toColorful(k).Lab()
		m.lab[i] = [3]float64{l, a, b}
	}
	return m
}

func (m *labMatcher) index(k rgb) int {
	l, a, b := toColorful(k).Lab()
	best, bestDist := 0, math.Inf(1)
	for i, c := range m.lab {
		dl, da, db := l-c[0], a-c[1], b-c[2]
		if d := dl*dl + da*da + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func toColorful(k rgb) colorful.Color {
	return colorful.Color{R: float64(k.r) / 255, G: float64(k.g) / 255, B: float64(k.b) / 255}
}

func toRGB(c color.Color) rgb {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return rgb{n.R, n.G, n.B}
}
