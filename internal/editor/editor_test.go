package editor

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"techsketch/internal/geom"
	"techsketch/internal/history"
	"techsketch/internal/layers"
	"techsketch/internal/shape"
	"techsketch/internal/tools"
)

func newEditor() *Editor {
	return New(Options{
		Width:  400,
		Height: 300,
		Grid:   geom.Grid{CellSize: 20, Visible: true, Snap: true},
	})
}

func objects(t *testing.T, e *Editor, layerID string) []*shape.Shape {
	t.Helper()
	s, ok := e.comp.Surface(layerID)
	if !ok {
		t.Fatalf("no surface for %s", layerID)
	}
	return s.Objects()
}

func drag(t *testing.T, e *Editor, from, to geom.Point) {
	t.Helper()
	if err := e.PointerDown(from); err != nil {
		t.Fatalf("pointer down at %v: %v", from, err)
	}
	e.PointerMove(to)
	if err := e.PointerUp(to); err != nil {
		t.Fatalf("pointer up at %v: %v", to, err)
	}
}

func TestSketchScenario(t *testing.T) {
	e := newEditor()

	drag(t, e, geom.Pt(5, 5), geom.Pt(33, 18))
	e.SetTool(tools.Rectangle)
	drag(t, e, geom.Pt(50, 50), geom.Pt(10, 90))

	objs := objects(t, e, "layer-1")
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects on Layer 1, got %d", len(objs))
	}
	line, rect := objs[0], objs[1]
	if line.Geom.Start != geom.Pt(0, 0) || line.Geom.End != geom.Pt(40, 20) {
		t.Fatalf("line endpoints %v %v", line.Geom.Start, line.Geom.End)
	}
	if diff := cmp.Diff(geom.Rect{X: 0, Y: 40, Width: 40, Height: 40}, rect.Geom.Box); diff != "" {
		t.Fatalf("rectangle mismatch (-want +got):\n%s", diff)
	}

	if err := e.RemoveLayer("layer-1"); !errors.Is(err, layers.ErrLastLayer) {
		t.Fatalf("expected ErrLastLayer, got %v", err)
	}
	if n, ok := e.Notice(); !ok || n.Level != NoticeError {
		t.Fatalf("expected an error notice, got %+v", n)
	}
	list, _ := e.Layers()
	if len(list) != 1 || list[0].ObjectCount != 2 {
		t.Fatalf("rejected removal changed state: %+v", list)
	}

	added := e.AddLayer()
	list, active := e.Layers()
	if len(list) != 2 || active != added.ID || list[1].ID != added.ID {
		t.Fatalf("new layer should be on top and active: %+v active=%s", list, active)
	}
	if added.Name == "Layer 1" || added.Name != "Layer 2" {
		t.Fatalf("unexpected default name %q", added.Name)
	}

	for i := 0; i < 2; i++ {
		if err := e.Undo(); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	if err := e.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	objs = objects(t, e, "layer-1")
	if len(objs) != 1 || objs[0] != line {
		t.Fatalf("expected only the line on Layer 1, got %d objects", len(objs))
	}
}

func TestLockedActiveLayerRejectsDrawing(t *testing.T) {
	e := newEditor()
	if err := e.ToggleLock(e.ActiveLayer().ID); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := e.PointerDown(geom.Pt(0, 0)); !errors.Is(err, tools.ErrLayerLocked) {
		t.Fatalf("expected ErrLayerLocked, got %v", err)
	}
	e.PointerMove(geom.Pt(60, 60))
	_ = e.PointerUp(geom.Pt(60, 60))
	if e.ActiveLayer().ObjectCount != 0 || e.CanUndo() {
		t.Fatalf("locked layer produced a shape or history entry")
	}
	if n, ok := e.Notice(); !ok || n.Level != NoticeError {
		t.Fatalf("expected a notice for the locked layer")
	}
}

func TestDegenerateGestureLeavesNoTrace(t *testing.T) {
	e := newEditor()
	if err := e.PointerDown(geom.Pt(3, 3)); err != nil {
		t.Fatalf("down: %v", err)
	}
	if err := e.PointerUp(geom.Pt(4, 4)); !errors.Is(err, tools.ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
	if n, _ := e.Notice(); n.Level != NoticeInfo {
		t.Fatalf("degenerate discard should be informational, got %v", n.Level)
	}
	if e.ActiveLayer().ObjectCount != 0 || e.CanUndo() {
		t.Fatalf("degenerate shape retained")
	}
}

func TestUndoOnEmptyHistoryIsANotice(t *testing.T) {
	e := newEditor()
	if err := e.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if err := e.Redo(); !errors.Is(err, history.ErrNothingToRedo) {
		t.Fatalf("expected ErrNothingToRedo, got %v", err)
	}
	if n, ok := e.Notice(); !ok || n.Text == "" {
		t.Fatalf("expected a notice")
	}
}

func TestUndoAfterLayerRemovalIsSafe(t *testing.T) {
	e := newEditor()
	second := e.AddLayer()
	drag(t, e, geom.Pt(0, 0), geom.Pt(40, 40))
	if err := e.RemoveLayer(second.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := e.Undo(); !errors.Is(err, history.ErrLayerGone) {
		t.Fatalf("expected ErrLayerGone, got %v", err)
	}
	if e.CanUndo() {
		t.Fatalf("cursor should move past the orphaned entry")
	}
	if n, _ := e.Notice(); n.Level != NoticeWarn {
		t.Fatalf("expected a warning notice, got %v", n.Level)
	}
}

func TestShortcuts(t *testing.T) {
	e := newEditor()
	tests := []struct {
		key  string
		want tools.Tool
	}{
		{"v", tools.Select},
		{"l", tools.Line},
		{"f", tools.Arrow},
		{"c", tools.Circle},
		{"r", tools.Rectangle},
		{"t", tools.Text},
		{"e", tools.Erase},
	}
	for _, tt := range tests {
		if !e.HandleKey(tt.key, false) {
			t.Fatalf("key %q not handled", tt.key)
		}
		if e.Tool() != tt.want {
			t.Fatalf("key %q selected %v, want %v", tt.key, e.Tool(), tt.want)
		}
	}

	e.HandleKey("g", false)
	e.HandleKey("s", false)
	if g := e.Grid(); g.Visible || g.Snap {
		t.Fatalf("g and s should toggle grid and snap off, got %+v", g)
	}

	if e.HandleKey("r", true) {
		t.Fatalf("shortcuts must be suppressed while text has focus")
	}
	if e.Tool() != tools.Erase {
		t.Fatalf("suppressed shortcut changed the tool")
	}
	if e.HandleKey("g", true) || !e.HandleKey("ctrl+z", true) {
		t.Fatalf("only undo/redo should pass through while text has focus")
	}
	if e.HandleKey("q", false) {
		t.Fatalf("unbound key reported as handled")
	}
}

func TestUndoRedoKeys(t *testing.T) {
	e := newEditor()
	drag(t, e, geom.Pt(0, 0), geom.Pt(40, 0))
	for _, key := range []string{"ctrl+z", "cmd+z"} {
		e.HandleKey("ctrl+y", false)
		if !e.HandleKey(key, false) {
			t.Fatalf("%s not handled", key)
		}
		if e.ActiveLayer().ObjectCount != 0 {
			t.Fatalf("%s did not undo", key)
		}
	}
	if !e.HandleKey("cmd+y", false) || e.ActiveLayer().ObjectCount != 1 {
		t.Fatalf("cmd+y did not redo")
	}
}

func TestLayerKeys(t *testing.T) {
	e := newEditor()
	e.HandleKey("n", false)
	e.HandleKey("n", false)
	list, active := e.Layers()
	if len(list) != 3 || active != list[2].ID {
		t.Fatalf("expected 3 layers with the top one active: %+v", list)
	}
	e.HandleKey("[", false)
	if _, active = e.Layers(); active != list[1].ID {
		t.Fatalf("[ should activate the layer below, got %s", active)
	}
	e.HandleKey("h", false)
	e.HandleKey("k", false)
	view := e.ActiveLayer()
	if view.Visible || !view.Locked {
		t.Fatalf("h and k should hide and lock the active layer: %+v", view)
	}
	e.HandleKey("x", false)
	if list, _ = e.Layers(); len(list) != 2 {
		t.Fatalf("x should remove the active layer")
	}
}

func TestTextEditingAndToolSwitchCommits(t *testing.T) {
	e := newEditor()
	e.SetTool(tools.Text)
	if err := e.PointerDown(geom.Pt(20, 20)); err != nil {
		t.Fatalf("down: %v", err)
	}
	_ = e.PointerUp(geom.Pt(20, 20))
	if !e.TextEditing() {
		t.Fatalf("expected edit mode")
	}
	e.TypeText("hello")
	e.Backspace()
	e.SetTool(tools.Line)
	if e.TextEditing() {
		t.Fatalf("switching tools should end the edit")
	}
	objs := objects(t, e, "layer-1")
	if len(objs) != 1 || objs[0].Geom.Text != "hell" {
		t.Fatalf("expected committed text, got %+v", objs)
	}
}

func TestDeleteSelection(t *testing.T) {
	e := newEditor()
	e.SetTool(tools.Rectangle)
	drag(t, e, geom.Pt(0, 0), geom.Pt(60, 60))
	e.SetTool(tools.Select)
	drag(t, e, geom.Pt(30, 30), geom.Pt(30, 30))
	if e.Selected() == nil {
		t.Fatalf("expected a selection")
	}
	if !e.HandleKey("delete", false) {
		t.Fatalf("delete not handled with the select tool")
	}
	if e.ActiveLayer().ObjectCount != 0 {
		t.Fatalf("selection not deleted")
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if e.ActiveLayer().ObjectCount != 1 {
		t.Fatalf("undo did not restore the deleted shape")
	}
}

func TestStyleAndGridClamps(t *testing.T) {
	e := newEditor()
	e.SetStyle(shape.Style{StrokeWidth: 40, Stroke: color.RGBA{A: 255}})
	if got := e.Style().StrokeWidth; got != MaxStrokeWidth {
		t.Fatalf("stroke width = %v", got)
	}
	e.SetStyle(shape.Style{StrokeWidth: 0})
	if got := e.Style().StrokeWidth; got != MinStrokeWidth {
		t.Fatalf("stroke width = %v", got)
	}
	e.SetGrid(geom.Grid{CellSize: 2})
	if got := e.Grid().CellSize; got != geom.MinGridCell {
		t.Fatalf("cell size = %v", got)
	}
	e.AdjustGridSize(100)
	if got := e.Grid().CellSize; got != geom.MaxGridCell {
		t.Fatalf("cell size = %v", got)
	}
}

func TestNewShapesUseCurrentStyle(t *testing.T) {
	e := newEditor()
	fill := color.RGBA{G: 200, A: 255}
	e.SetStyle(shape.Style{StrokeWidth: 4, Stroke: color.RGBA{R: 200, A: 255}, Fill: fill})
	e.SetTool(tools.Circle)
	drag(t, e, geom.Pt(100, 100), geom.Pt(140, 100))
	got := objects(t, e, "layer-1")[0]
	if got.Style.StrokeWidth != 4 || got.Style.Fill != fill {
		t.Fatalf("shape style %+v", got.Style)
	}
}

func TestPrintModeHidesFillWithoutChangingData(t *testing.T) {
	e := newEditor()
	fill := color.RGBA{B: 255, A: 255}
	e.SetStyle(shape.Style{StrokeWidth: 1, Stroke: color.RGBA{A: 255}, Fill: fill})
	e.SetTool(tools.Rectangle)
	drag(t, e, geom.Pt(40, 40), geom.Pt(120, 120))

	if got := e.Composite().RGBAAt(70, 70); got != fill {
		t.Fatalf("expected fill before print mode, got %v", got)
	}
	e.HandleKey("p", false)
	if !e.PrintMode() {
		t.Fatalf("p should enable print mode")
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := e.Composite().RGBAAt(70, 70); got != white {
		t.Fatalf("print mode should hide fill, got %v", got)
	}
	if objects(t, e, "layer-1")[0].Style.Fill != fill {
		t.Fatalf("print mode altered shape data")
	}
}

func TestLockAndHideCommitPendingText(t *testing.T) {
	for name, toggle := range map[string]func(*Editor, string) error{
		"lock": (*Editor).ToggleLock,
		"hide": (*Editor).ToggleVisibility,
	} {
		t.Run(name, func(t *testing.T) {
			e := newEditor()
			e.SetTool(tools.Text)
			if err := e.PointerDown(geom.Pt(40, 40)); err != nil {
				t.Fatalf("down: %v", err)
			}
			e.TypeText("hi")
			if err := toggle(e, e.ActiveLayer().ID); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if e.TextEditing() {
				t.Fatalf("edit still open after %s", name)
			}
			objs := objects(t, e, "layer-1")
			if len(objs) != 1 || objs[0].Geom.Text != "hi" {
				t.Fatalf("typed text lost: %+v", objs)
			}
		})
	}
}

func TestGesturing(t *testing.T) {
	e := newEditor()
	if e.Gesturing() {
		t.Fatalf("fresh editor reports a gesture")
	}
	if err := e.PointerDown(geom.Pt(0, 0)); err != nil {
		t.Fatalf("down: %v", err)
	}
	if !e.Gesturing() {
		t.Fatalf("line press should be a gesture")
	}
	e.SetTool(tools.Rectangle)
	if e.Gesturing() {
		t.Fatalf("tool switch should cancel the gesture")
	}

	drag(t, e, geom.Pt(0, 0), geom.Pt(40, 40))
	e.SetTool(tools.Select)
	if err := e.PointerDown(geom.Pt(20, 20)); err != nil {
		t.Fatalf("select down: %v", err)
	}
	if !e.Gesturing() {
		t.Fatalf("dragging a selection should be a gesture")
	}
	if _, err := e.registry.ToggleLock(e.ActiveLayer().ID); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if e.Gesturing() {
		t.Fatalf("locking the layer should cancel the drag")
	}
}
