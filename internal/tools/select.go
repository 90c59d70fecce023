package tools

import (
	"techsketch/internal/geom"
	"techsketch/internal/history"
	"techsketch/internal/shape"
)

type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragResize
)

// SelectTool picks a shape and moves it, or resizes it from its handle. A
// completed drag records one Modify entry with before and after geometry.
type SelectTool struct {
	gesture
	selected *shape.Shape
	mode     dragMode
	grab     geom.Point
	anchor   geom.Point
	before   shape.Geometry
}

func (s *SelectTool) Press(p geom.Point) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.abort()
	if s.selected != nil && s.surface.Index(s.selected) < 0 {
		s.setSelected(nil)
	}
	if s.selected != nil && s.selected.Kind != shape.KindText &&
		geom.Distance(p, s.selected.Handle()) <= HitThreshold {
		s.begin(dragResize, p)
		return nil
	}
	hit := s.m.canvas.HitTest(s.layerID, p, HitThreshold)
	s.setSelected(hit)
	if hit != nil {
		s.begin(dragMove, p)
	}
	return nil
}

func (s *SelectTool) Move(p geom.Point) {
	sh := s.selected
	switch s.mode {
	case dragMove:
		target := s.snap(s.anchor.Add(p.Sub(s.grab)))
		sh.Translate(target.Sub(sh.Anchor()))
	case dragResize:
		sh.ResizeTo(s.snap(p))
	default:
		return
	}
	s.surface.Invalidate()
}

func (s *SelectTool) Release(p geom.Point) error {
	if s.mode == dragNone {
		return nil
	}
	s.Move(p)
	s.mode = dragNone
	sh := s.selected
	after := sh.Snapshot()
	if after == s.before {
		return nil
	}
	if sh.Degenerate() {
		sh.Restore(s.before)
		s.surface.Invalidate()
		return ErrDegenerate
	}
	s.m.rec.Record(history.Entry{
		Kind:    history.KindModify,
		LayerID: s.layerID,
		Shapes:  []*shape.Shape{sh},
		Before:  []shape.Geometry{s.before},
		After:   []shape.Geometry{after},
	})
	return nil
}

// Cancel restores a shape mid-drag and clears the selection.
func (s *SelectTool) Cancel() {
	s.abort()
	s.setSelected(nil)
}

// Selected returns the selected shape, if any.
func (s *SelectTool) Selected() *shape.Shape {
	return s.selected
}

// Dragging reports whether a move or resize is in progress.
func (s *SelectTool) Dragging() bool {
	return s.mode != dragNone
}

// DeleteSelected removes the selected shape with one Remove entry.
func (s *SelectTool) DeleteSelected() error {
	if s.selected == nil {
		return ErrNothingSelected
	}
	if err := s.guard(); err != nil {
		return err
	}
	s.abort()
	sh := s.selected
	s.setSelected(nil)
	return s.remove(sh)
}

func (s *SelectTool) begin(mode dragMode, p geom.Point) {
	s.mode = mode
	s.grab = p
	s.anchor = s.selected.Anchor()
	s.before = s.selected.Snapshot()
}

func (s *SelectTool) abort() {
	if s.mode == dragNone {
		return
	}
	s.selected.Restore(s.before)
	s.mode = dragNone
	s.surface.Invalidate()
}

func (s *SelectTool) setSelected(sh *shape.Shape) {
	s.selected = sh
	s.surface.SetSelected(sh)
}
