package shape

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/google/uuid"

	"techsketch/internal/geom"
)

// Kind identifies the primitive a Shape draws.
type Kind int

const (
	KindLine Kind = iota
	KindArrow
	KindRectangle
	KindCircle
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	case KindRectangle:
		return "rectangle"
	case KindCircle:
		return "circle"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Closed reports whether the kind encloses an area that can be filled.
func (k Kind) Closed() bool {
	return k == KindRectangle || k == KindCircle
}

const (
	// ArrowHeadSize is the length of the arrow head triangle along the shaft.
	ArrowHeadSize   = 12.0
	arrowHeadSpread = 0.5

	// Text boxes are measured in monospace cells.
	TextCharWidth  = 8.0
	TextLineHeight = 16.0
)

// Style is applied to a shape when it is created.
type Style struct {
	StrokeWidth float64
	Stroke      color.RGBA
	Fill        color.RGBA
}

// DefaultStyle is a 2px black stroke with no fill.
func DefaultStyle() Style {
	return Style{StrokeWidth: 2, Stroke: color.RGBA{A: 255}}
}

// HasFill reports whether a fill colour is set.
func (s Style) HasFill() bool {
	return s.Fill.A > 0
}

// Geometry is an immutable snapshot of the fields that move/resize change.
// Only the fields relevant to the shape's Kind are meaningful.
type Geometry struct {
	Start  geom.Point
	End    geom.Point
	Box    geom.Rect
	Center geom.Point
	Radius float64
	Text   string
}

// Shape is one drawable primitive owned by exactly one layer.
type Shape struct {
	ID    string
	Kind  Kind
	Geom  Geometry
	Style Style

	// Provisional shapes are in-progress previews: not selectable, not hit-testable.
	Provisional bool
}

// New creates a provisional shape with a fresh id.
func New(kind Kind, style Style) *Shape {
	return &Shape{
		ID:          uuid.NewString(),
		Kind:        kind,
		Style:       style,
		Provisional: true,
	}
}

// Snapshot captures the current geometry.
func (s *Shape) Snapshot() Geometry {
	return s.Geom
}

// Restore replaces the geometry with a snapshot.
func (s *Shape) Restore(g Geometry) {
	s.Geom = g
}

// Promote turns a provisional shape into a committed, selectable one.
func (s *Shape) Promote() {
	s.Provisional = false
}

// Degenerate reports whether the shape has zero extent and must not be committed.
func (s *Shape) Degenerate() bool {
	switch s.Kind {
	case KindLine, KindArrow:
		return geom.Distance(s.Geom.Start, s.Geom.End) == 0
	case KindRectangle:
		return s.Geom.Box.Empty()
	case KindCircle:
		return s.Geom.Radius <= 0
	case KindText:
		return strings.TrimSpace(s.Geom.Text) == ""
	}
	return true
}

// SetText updates a text shape's content and recomputes its box.
func (s *Shape) SetText(text string) {
	s.Geom.Text = text
	lines := strings.Split(text, "\n")
	widest := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > widest {
			widest = n
		}
	}
	s.Geom.Box.Width = float64(widest) * TextCharWidth
	s.Geom.Box.Height = float64(len(lines)) * TextLineHeight
}

// Bounds returns the axis aligned bounding box, ignoring stroke width.
func (s *Shape) Bounds() geom.Rect {
	switch s.Kind {
	case KindLine:
		return geom.RectFromPoints(s.Geom.Start, s.Geom.End)
	case KindArrow:
		b := geom.RectFromPoints(s.Geom.Start, s.Geom.End)
		for _, p := range s.ArrowHead() {
			b = b.Union(geom.Rect{X: p.X, Y: p.Y})
		}
		return b
	case KindRectangle, KindText:
		return s.Geom.Box
	case KindCircle:
		r := s.Geom.Radius
		return geom.Rect{X: s.Geom.Center.X - r, Y: s.Geom.Center.Y - r, Width: 2 * r, Height: 2 * r}
	}
	return geom.Rect{}
}

// ArrowHead returns the tip and the two base corners of the arrow head,
// oriented along the segment angle.
func (s *Shape) ArrowHead() [3]geom.Point {
	tip := s.Geom.End
	angle := math.Atan2(s.Geom.End.Y-s.Geom.Start.Y, s.Geom.End.X-s.Geom.Start.X)
	dx, dy := math.Cos(angle), math.Sin(angle)
	size := ArrowHeadSize
	return [3]geom.Point{
		tip,
		{X: tip.X - size*dx + size*dy*arrowHeadSpread, Y: tip.Y - size*dy - size*dx*arrowHeadSpread},
		{X: tip.X - size*dx - size*dy*arrowHeadSpread, Y: tip.Y - size*dy + size*dx*arrowHeadSpread},
	}
}

// HitTest reports whether p touches the shape. Line-like shapes use the
// distance to the segment; closed shapes and text use point-in-shape.
func (s *Shape) HitTest(p geom.Point, threshold float64) bool {
	if s.Provisional {
		return false
	}
	switch s.Kind {
	case KindLine:
		return geom.DistanceToSegment(p, s.Geom.Start, s.Geom.End) <= threshold
	case KindArrow:
		if geom.DistanceToSegment(p, s.Geom.Start, s.Geom.End) <= threshold {
			return true
		}
		head := s.ArrowHead()
		return pointInTriangle(p, head[0], head[1], head[2])
	case KindRectangle, KindText:
		return s.Geom.Box.Contains(p)
	case KindCircle:
		return geom.Distance(p, s.Geom.Center) <= s.Geom.Radius
	}
	return false
}

// Translate moves the shape by d.
func (s *Shape) Translate(d geom.Point) {
	s.Geom.Start = s.Geom.Start.Add(d)
	s.Geom.End = s.Geom.End.Add(d)
	s.Geom.Center = s.Geom.Center.Add(d)
	s.Geom.Box.X += d.X
	s.Geom.Box.Y += d.Y
}

// Anchor is the point snapped while dragging the shape.
func (s *Shape) Anchor() geom.Point {
	switch s.Kind {
	case KindLine, KindArrow:
		return s.Geom.Start
	case KindCircle:
		return s.Geom.Center
	default:
		return s.Geom.Box.Min()
	}
}

// Handle is the point a resize drag grabs.
func (s *Shape) Handle() geom.Point {
	switch s.Kind {
	case KindLine, KindArrow:
		return s.Geom.End
	case KindCircle:
		return geom.Pt(s.Geom.Center.X+s.Geom.Radius, s.Geom.Center.Y)
	default:
		return s.Geom.Box.Max()
	}
}

// ResizeTo drags the resize handle to p. Text boxes follow their content and
// do not resize.
func (s *Shape) ResizeTo(p geom.Point) {
	switch s.Kind {
	case KindLine, KindArrow:
		s.Geom.End = p
	case KindCircle:
		s.Geom.Radius = geom.Distance(s.Geom.Center, p)
	case KindRectangle:
		s.Geom.Box = geom.RectFromPoints(s.Geom.Box.Min(), p)
	}
}

func pointInTriangle(p, a, b, c geom.Point) bool {
	sign := func(p1, p2, p3 geom.Point) float64 {
		return (p1.X-p3.X)*(p2.Y-p3.Y) - (p2.X-p3.X)*(p1.Y-p3.Y)
	}
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
