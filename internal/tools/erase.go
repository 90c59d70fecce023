package tools

import "techsketch/internal/geom"

// EraseTool removes the topmost shape under the pointer on a click.
type EraseTool struct {
	gesture
}

// Press hit-tests the raw pointer position; erasing does not snap.
func (e *EraseTool) Press(p geom.Point) error {
	if err := e.guard(); err != nil {
		return err
	}
	sh := e.m.canvas.HitTest(e.layerID, p, HitThreshold)
	if sh == nil {
		return nil
	}
	return e.remove(sh)
}

func (e *EraseTool) Move(geom.Point) {}

func (e *EraseTool) Release(geom.Point) error { return nil }

func (e *EraseTool) Cancel() {}
