package surface

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"techsketch/internal/geom"
)

var gridColor = color.RGBA{R: 0xb0, G: 0xb8, B: 0xc4, A: 0xff}

// Overlay is the topmost surface that draws the grid points. It never takes
// part in hit-testing, selection or history.
type Overlay struct {
	width  int
	height int
	grid   geom.Grid
	dc     *gg.Context
	dirty  bool
}

// NewOverlay creates a grid overlay of the given size.
func NewOverlay(width, height int, grid geom.Grid) *Overlay {
	o := &Overlay{grid: grid}
	o.Resize(width, height)
	return o
}

// Resize reallocates the overlay raster.
func (o *Overlay) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if o.dc != nil && width == o.width && height == o.height {
		return
	}
	o.width, o.height = width, height
	o.dc = gg.NewContext(width, height)
	o.dirty = true
}

// SetGrid replaces the grid parameters.
func (o *Overlay) SetGrid(g geom.Grid) {
	if g != o.grid {
		o.grid = g
		o.dirty = true
	}
}

// Grid returns the current grid parameters.
func (o *Overlay) Grid() geom.Grid { return o.grid }

// Visible reports whether the grid should be drawn at all.
func (o *Overlay) Visible() bool { return o.grid.Visible }

// Render draws one dot per grid point.
func (o *Overlay) Render() image.Image {
	if !o.dirty {
		return o.dc.Image()
	}
	dc := o.dc
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()
	dc.SetColor(gridColor)
	for _, p := range o.grid.Points(float64(o.width), float64(o.height)) {
		dc.DrawRectangle(p.X, p.Y, 1, 1)
	}
	dc.Fill()
	o.dirty = false
	return dc.Image()
}
