package surface

import (
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"

	"techsketch/internal/geom"
	"techsketch/internal/shape"
)

const markerRadius = 3.0

var (
	previewColor   = color.RGBA{R: 0x1e, G: 0x90, B: 0xff, A: 0xff}
	selectionColor = color.RGBA{R: 0xff, G: 0x8c, B: 0x00, A: 0xff}
)

// Handler receives the pointer events routed to a surface.
type Handler interface {
	Press(p geom.Point) error
	Move(p geom.Point)
	Release(p geom.Point) error
	// Cancel drops any in-progress gesture without committing it.
	Cancel()
}

// Surface is the raster surface of one layer. It owns the layer's ordered
// object list; the slice is replaced, never mutated in place, so callers may
// keep the result of Objects.
type Surface struct {
	LayerID string

	width  int
	height int

	visible     bool
	interactive bool
	handler     Handler

	objects  []*shape.Shape
	preview  *shape.Shape
	marker   *geom.Point
	selected *shape.Shape

	dc        *gg.Context
	dirty     bool
	printMode bool
}

// New creates a visible, non-interactive surface of the given size.
func New(layerID string, width, height int, objects []*shape.Shape) *Surface {
	s := &Surface{
		LayerID: layerID,
		visible: true,
		objects: append([]*shape.Shape(nil), objects...),
	}
	s.Resize(width, height)
	return s
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Resize reallocates the raster. Objects are kept.
func (s *Surface) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if s.dc != nil && width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.dc = gg.NewContext(width, height)
	s.dirty = true
}

// Visible reports whether the surface is shown.
func (s *Surface) Visible() bool { return s.visible }

// SetVisible shows or hides the surface.
func (s *Surface) SetVisible(v bool) { s.visible = v }

// Interactive reports whether the surface accepts pointer input.
func (s *Surface) Interactive() bool { return s.interactive }

// SetInteractive switches pointer input on or off. Turning it off cancels any
// gesture the bound handler has in flight.
func (s *Surface) SetInteractive(v bool) {
	if s.interactive && !v && s.handler != nil {
		s.handler.Cancel()
	}
	s.interactive = v
}

// Bind installs h as the surface's pointer handler, returning the previous one.
func (s *Surface) Bind(h Handler) Handler {
	prev := s.handler
	s.handler = h
	return prev
}

// Unbind removes the pointer handler, cancelling its gesture.
func (s *Surface) Unbind() {
	if s.handler != nil {
		s.handler.Cancel()
	}
	s.handler = nil
}

// Handler returns the bound pointer handler, or nil.
func (s *Surface) Handler() Handler { return s.handler }

// Objects returns the committed object list, bottom first.
func (s *Surface) Objects() []*shape.Shape { return s.objects }

// Len returns the number of committed objects.
func (s *Surface) Len() int { return len(s.objects) }

// Index returns the position of sh in the object list, or -1.
func (s *Surface) Index(sh *shape.Shape) int {
	for i, o := range s.objects {
		if o == sh {
			return i
		}
	}
	return -1
}

// Insert places sh at position at (clamped), unless it is already present.
func (s *Surface) Insert(sh *shape.Shape, at int) bool {
	if s.Index(sh) >= 0 {
		return false
	}
	if at < 0 || at > len(s.objects) {
		at = len(s.objects)
	}
	next := make([]*shape.Shape, 0, len(s.objects)+1)
	next = append(next, s.objects[:at]...)
	next = append(next, sh)
	next = append(next, s.objects[at:]...)
	s.objects = next
	s.dirty = true
	return true
}

// Remove drops sh and returns the index it occupied, or -1 when absent.
func (s *Surface) Remove(sh *shape.Shape) int {
	i := s.Index(sh)
	if i < 0 {
		return -1
	}
	next := make([]*shape.Shape, 0, len(s.objects)-1)
	next = append(next, s.objects[:i]...)
	next = append(next, s.objects[i+1:]...)
	s.objects = next
	if s.selected == sh {
		s.selected = nil
	}
	s.dirty = true
	return i
}

// TopmostAt returns the frontmost committed object hit at p.
func (s *Surface) TopmostAt(p geom.Point, threshold float64) *shape.Shape {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].HitTest(p, threshold) {
			return s.objects[i]
		}
	}
	return nil
}

// SetPreview shows a provisional shape and start marker; nil clears them.
func (s *Surface) SetPreview(sh *shape.Shape, marker *geom.Point) {
	s.preview = sh
	s.marker = marker
	s.dirty = true
}

// Preview returns the provisional shape, if any.
func (s *Surface) Preview() *shape.Shape { return s.preview }

// SetSelected highlights sh; nil clears the selection.
func (s *Surface) SetSelected(sh *shape.Shape) {
	s.selected = sh
	s.dirty = true
}

// Selected returns the highlighted shape, if any.
func (s *Surface) Selected() *shape.Shape { return s.selected }

// Invalidate forces a redraw on the next Render.
func (s *Surface) Invalidate() { s.dirty = true }

// Render rasterizes the surface. In print mode fills and selection
// decoration are omitted.
func (s *Surface) Render(printMode bool) image.Image {
	if !s.dirty && printMode == s.printMode {
		return s.dc.Image()
	}
	s.printMode = printMode
	dc := s.dc
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()
	for _, sh := range s.objects {
		drawShape(dc, sh, sh.Style.Stroke, printMode)
	}
	if !printMode {
		if s.selected != nil {
			drawSelection(dc, s.selected)
		}
		if s.preview != nil {
			drawShape(dc, s.preview, previewColor, false)
		}
		if s.marker != nil {
			dc.SetColor(previewColor)
			dc.DrawCircle(s.marker.X, s.marker.Y, markerRadius)
			dc.Fill()
		}
	}
	s.dirty = false
	return dc.Image()
}

func drawShape(dc *gg.Context, sh *shape.Shape, stroke color.Color, printMode bool) {
	g := sh.Geom
	width := sh.Style.StrokeWidth
	if width <= 0 {
		width = 1
	}
	dc.SetLineWidth(width)
	if sh.Provisional {
		dc.SetDash(6, 4)
	} else {
		dc.SetDash()
	}
	switch sh.Kind {
	case shape.KindLine:
		dc.DrawLine(g.Start.X, g.Start.Y, g.End.X, g.End.Y)
		dc.SetColor(stroke)
		dc.Stroke()
	case shape.KindArrow:
		dc.DrawLine(g.Start.X, g.Start.Y, g.End.X, g.End.Y)
		dc.SetColor(stroke)
		dc.Stroke()
		if g.Start != g.End {
			head := sh.ArrowHead()
			dc.MoveTo(head[0].X, head[0].Y)
			dc.LineTo(head[1].X, head[1].Y)
			dc.LineTo(head[2].X, head[2].Y)
			dc.ClosePath()
			dc.Fill()
		}
	case shape.KindRectangle:
		dc.DrawRectangle(g.Box.X, g.Box.Y, g.Box.Width, g.Box.Height)
		fillAndStroke(dc, sh, stroke, printMode)
	case shape.KindCircle:
		dc.DrawCircle(g.Center.X, g.Center.Y, g.Radius)
		fillAndStroke(dc, sh, stroke, printMode)
	case shape.KindText:
		drawText(dc, sh, stroke)
	}
	dc.SetDash()
}

func fillAndStroke(dc *gg.Context, sh *shape.Shape, stroke color.Color, printMode bool) {
	if sh.Style.HasFill() && !printMode {
		dc.SetColor(sh.Style.Fill)
		dc.FillPreserve()
	}
	dc.SetColor(stroke)
	dc.Stroke()
}

func drawText(dc *gg.Context, sh *shape.Shape, stroke color.Color) {
	face, err := textFace()
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(stroke)
	for i, line := range strings.Split(sh.Geom.Text, "\n") {
		y := sh.Geom.Box.Y + float64(i)*shape.TextLineHeight
		dc.DrawStringAnchored(line, sh.Geom.Box.X, y, 0, 1)
	}
	if sh.Provisional {
		// caret after the last character
		lines := strings.Split(sh.Geom.Text, "\n")
		last := lines[len(lines)-1]
		x := sh.Geom.Box.X + float64(len([]rune(last)))*shape.TextCharWidth
		y := sh.Geom.Box.Y + float64(len(lines)-1)*shape.TextLineHeight
		dc.SetLineWidth(1)
		dc.DrawLine(x, y, x, y+shape.TextLineHeight)
		dc.Stroke()
	}
}

func drawSelection(dc *gg.Context, sh *shape.Shape) {
	b := sh.Bounds().Inset(4)
	dc.SetDash(3, 3)
	dc.SetLineWidth(1)
	dc.SetColor(selectionColor)
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	dc.Stroke()
	dc.SetDash()
	h := sh.Handle()
	dc.DrawRectangle(h.X-markerRadius, h.Y-markerRadius, 2*markerRadius, 2*markerRadius)
	dc.Fill()
}
