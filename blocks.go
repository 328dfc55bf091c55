package huginn

import (
	"strings"

	"github.com/charmbracelet/x/mosaic"
)

// BlockFootprint is the footprint to rasterize a logo at before handing it
// to RenderBlocks: one pixel per column and two per row.
func BlockFootprint(columns, rows int) CellFootprint {
	return CellFootprint{Columns: columns, Rows: rows, CellWidth: 1, CellHeight: 2}
}

// RenderBlocks draws r with Unicode half blocks and ANSI colors, one string
// per terminal row. It is the text fallback for terminals without graphics.
func RenderBlocks(r *Raster, columns, rows int, dither bool) []string {
	if r.empty() || columns <= 0 || rows <= 0 {
		return nil
	}
	m := mosaic.New().Dither(dither).Width(columns).Height(rows)
	out := strings.TrimRight(m.Render(r.Image()), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
