package tools

import (
	"techsketch/internal/geom"
	"techsketch/internal/shape"
)

// DrawTool is the press, drag, release gesture shared by line, arrow,
// rectangle and circle.
type DrawTool struct {
	gesture
	kind    shape.Kind
	start   geom.Point
	current *shape.Shape
}

func (d *DrawTool) Press(p geom.Point) error {
	if err := d.guard(); err != nil {
		return err
	}
	d.Cancel()
	d.start = d.snap(p)
	d.current = shape.New(d.kind, d.style())
	d.update(d.start)
	return nil
}

func (d *DrawTool) Move(p geom.Point) {
	if d.current == nil {
		return
	}
	d.update(d.snap(p))
}

func (d *DrawTool) Release(p geom.Point) error {
	if d.current == nil {
		return nil
	}
	d.update(d.snap(p))
	sh := d.current
	d.current = nil
	d.surface.SetPreview(nil, nil)
	return d.commit(sh)
}

func (d *DrawTool) Cancel() {
	if d.current == nil {
		return
	}
	d.current = nil
	d.surface.SetPreview(nil, nil)
}

// Drawing reports whether a gesture is in progress.
func (d *DrawTool) Drawing() bool {
	return d.current != nil
}

func (d *DrawTool) update(p geom.Point) {
	g := &d.current.Geom
	switch d.kind {
	case shape.KindLine, shape.KindArrow:
		g.Start, g.End = d.start, p
	case shape.KindRectangle:
		g.Box = geom.RectFromPoints(d.start, p)
	case shape.KindCircle:
		g.Center = d.start
		g.Radius = geom.Distance(d.start, p)
	}
	marker := d.start
	d.surface.SetPreview(d.current, &marker)
}
