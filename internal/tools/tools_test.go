package tools

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"techsketch/internal/compositor"
	"techsketch/internal/geom"
	"techsketch/internal/history"
	"techsketch/internal/layers"
	"techsketch/internal/shape"
	"techsketch/internal/surface"
)

type rig struct {
	reg  *layers.Registry
	comp *compositor.Compositor
	hist *history.Manager
	m    *Machine
	grid geom.Grid
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{grid: geom.DefaultGrid()}
	r.reg = layers.NewRegistry()
	r.comp = compositor.New(400, 300, r.grid, nil)
	r.reg.OnChange(r.comp.Sync)
	r.hist = history.NewManager(0)
	r.m = NewMachine(r.comp, r.hist, func() geom.Grid { return r.grid }, nil)
	return r
}

func (r *rig) use(tool Tool) {
	r.m.Reconcile(Config{LayerID: r.reg.ActiveID(), Tool: tool, Style: shape.DefaultStyle()})
}

func (r *rig) drag(from, to geom.Point) error {
	if err := r.comp.Dispatch(compositor.Press, from); err != nil {
		return err
	}
	if err := r.comp.Dispatch(compositor.Move, to); err != nil {
		return err
	}
	return r.comp.Dispatch(compositor.Release, to)
}

func (r *rig) surface(t *testing.T) *surface.Surface {
	t.Helper()
	s, ok := r.comp.Surface(r.reg.ActiveID())
	if !ok {
		t.Fatalf("no surface for active layer")
	}
	return s
}

func TestParseToolAndShortcuts(t *testing.T) {
	for _, tool := range All {
		got, err := ParseTool(" " + tool.String() + " ")
		if err != nil || got != tool {
			t.Fatalf("ParseTool(%q) = %v, %v", tool.String(), got, err)
		}
		back, ok := ForShortcut(tool.Shortcut())
		if !ok || back != tool {
			t.Fatalf("shortcut %q maps to %v", tool.Shortcut(), back)
		}
	}
	if _, err := ParseTool("lasso"); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if _, ok := ForShortcut('z'); ok {
		t.Fatalf("z should not select a tool")
	}
}

func TestLineSnapsEndpoints(t *testing.T) {
	r := newRig(t)
	r.use(Line)
	if err := r.drag(geom.Pt(5, 5), geom.Pt(33, 18)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	objs := r.surface(t).Objects()
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	got := objs[0]
	if got.Geom.Start != geom.Pt(0, 0) || got.Geom.End != geom.Pt(40, 20) {
		t.Fatalf("unexpected endpoints %v %v", got.Geom.Start, got.Geom.End)
	}
	if got.Provisional {
		t.Fatalf("committed shape still provisional")
	}
	if owner, _ := r.comp.Owner(got.ID); owner != "layer-1" {
		t.Fatalf("owner = %q", owner)
	}
	if r.hist.Len() != 1 || r.hist.Entries()[0].Kind != history.KindAdd {
		t.Fatalf("expected a single Add entry, got %+v", r.hist.Entries())
	}
	if r.surface(t).Preview() != nil {
		t.Fatalf("preview should be cleared after release")
	}
}

func TestMoveUpdatesPreviewWithoutHistory(t *testing.T) {
	r := newRig(t)
	r.use(Circle)
	if err := r.comp.Dispatch(compositor.Press, geom.Pt(40, 40)); err != nil {
		t.Fatalf("press: %v", err)
	}
	r.comp.Dispatch(compositor.Move, geom.Pt(100, 40))
	preview := r.surface(t).Preview()
	if preview == nil || !preview.Provisional {
		t.Fatalf("expected a provisional preview")
	}
	if preview.Geom.Center != geom.Pt(40, 40) || preview.Geom.Radius != 60 {
		t.Fatalf("unexpected circle %+v", preview.Geom)
	}
	if r.hist.Len() != 0 {
		t.Fatalf("move must not record history")
	}
	if r.comp.HitTest("layer-1", geom.Pt(40, 40), HitThreshold) != nil {
		t.Fatalf("provisional shape must not be hit-testable")
	}
}

func TestRectangleFlipsOrigin(t *testing.T) {
	r := newRig(t)
	r.use(Rectangle)
	if err := r.drag(geom.Pt(50, 50), geom.Pt(10, 90)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	got := r.surface(t).Objects()[0].Geom.Box
	want := geom.Rect{X: 0, Y: 40, Width: 40, Height: 40}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestDegenerateShapesAreDiscarded(t *testing.T) {
	for _, tool := range []Tool{Line, Arrow, Circle, Rectangle} {
		t.Run(tool.String(), func(t *testing.T) {
			r := newRig(t)
			r.use(tool)
			err := r.drag(geom.Pt(21, 21), geom.Pt(25, 18))
			if !errors.Is(err, ErrDegenerate) {
				t.Fatalf("expected ErrDegenerate, got %v", err)
			}
			if r.comp.ObjectCount("layer-1") != 0 || r.hist.Len() != 0 {
				t.Fatalf("degenerate shape retained")
			}
		})
	}
}

func TestArrowIsOneShape(t *testing.T) {
	r := newRig(t)
	r.use(Arrow)
	if err := r.drag(geom.Pt(0, 0), geom.Pt(100, 0)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	objs := r.surface(t).Objects()
	if len(objs) != 1 || objs[0].Kind != shape.KindArrow {
		t.Fatalf("expected one arrow, got %v", objs)
	}
	head := objs[0].ArrowHead()
	if head[0] != geom.Pt(100, 0) {
		t.Fatalf("arrow head tip at %v", head[0])
	}
}

func TestPressOnLockedLayerProducesNothing(t *testing.T) {
	r := newRig(t)
	r.use(Line)
	if _, err := r.reg.ToggleLock("layer-1"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := r.drag(geom.Pt(0, 0), geom.Pt(40, 40)); !errors.Is(err, ErrLayerLocked) {
		t.Fatalf("expected ErrLayerLocked, got %v", err)
	}
	if err := r.m.Handler().Press(geom.Pt(0, 0)); !errors.Is(err, ErrLayerLocked) {
		t.Fatalf("handler press should be guarded too, got %v", err)
	}
	if r.surface(t).Preview() != nil {
		t.Fatalf("no provisional shape expected on a locked layer")
	}
	if r.hist.Len() != 0 || r.comp.ObjectCount("layer-1") != 0 {
		t.Fatalf("locked layer was drawn on")
	}
}

func TestReconcileTearsDownBeforeRebinding(t *testing.T) {
	r := newRig(t)
	r.use(Line)
	old := r.m.Handler()
	if err := r.comp.Dispatch(compositor.Press, geom.Pt(0, 0)); err != nil {
		t.Fatalf("press: %v", err)
	}
	r.use(Rectangle)
	if r.surface(t).Preview() != nil {
		t.Fatalf("switching tools must cancel the provisional shape")
	}
	if r.surface(t).Handler() == old {
		t.Fatalf("old handler still bound")
	}
	if err := old.Release(geom.Pt(60, 60)); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if r.comp.ObjectCount("layer-1") != 0 {
		t.Fatalf("stale handler committed a shape")
	}

	cfg := r.m.Config()
	cfg.Style.StrokeWidth = 6
	if r.m.Reconcile(cfg) {
		t.Fatalf("style change alone should keep the binding")
	}

	second := r.reg.Add()
	r.use(Rectangle)
	first, _ := r.comp.Surface("layer-1")
	if first.Handler() != nil {
		t.Fatalf("previous layer still has a handler")
	}
	top, _ := r.comp.Surface(second.ID)
	if top.Handler() != r.m.Handler() {
		t.Fatalf("new layer not bound")
	}
}

func TestTextToolCommitsNonEmptyText(t *testing.T) {
	r := newRig(t)
	r.use(Text)
	if err := r.comp.Dispatch(compositor.Press, geom.Pt(41, 19)); err != nil {
		t.Fatalf("press: %v", err)
	}
	ed, ok := r.m.TextEditor()
	if !ok {
		t.Fatalf("expected edit mode after click")
	}
	ed.Insert("ab\tc")
	ed.Backspace()
	if got := ed.Text(); got != "ab    " {
		t.Fatalf("text = %q", got)
	}
	ed.Insert("x")
	if err := ed.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	objs := r.surface(t).Objects()
	if len(objs) != 1 || objs[0].Geom.Box.Min() != geom.Pt(40, 20) {
		t.Fatalf("unexpected text shape %+v", objs)
	}
	if r.hist.Len() != 1 {
		t.Fatalf("expected one Add entry")
	}

	if err := r.comp.Dispatch(compositor.Press, geom.Pt(100, 100)); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := ed.Commit(); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("empty text should be discarded, got %v", err)
	}
	if _, ok := r.m.TextEditor(); ok {
		t.Fatalf("edit mode should end on commit")
	}
	if r.hist.Len() != 1 {
		t.Fatalf("empty text recorded history")
	}
}

func TestEraseRemovesTopmostAndUndoRestoresPosition(t *testing.T) {
	r := newRig(t)
	r.use(Rectangle)
	if err := r.drag(geom.Pt(0, 0), geom.Pt(100, 100)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := r.drag(geom.Pt(40, 40), geom.Pt(140, 140)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	before := r.surface(t).Objects()

	r.use(Erase)
	if err := r.comp.Dispatch(compositor.Press, geom.Pt(60, 60)); err != nil {
		t.Fatalf("erase: %v", err)
	}
	after := r.surface(t).Objects()
	if len(after) != 1 || after[0] != before[0] {
		t.Fatalf("expected the topmost rectangle to be erased")
	}
	last := r.hist.Entries()[r.hist.Len()-1]
	if last.Kind != history.KindRemove {
		t.Fatalf("expected Remove entry, got %v", last.Kind)
	}

	if err := r.comp.Dispatch(compositor.Press, geom.Pt(300, 250)); err != nil {
		t.Fatalf("miss: %v", err)
	}
	if r.hist.Len() != 3 {
		t.Fatalf("a miss must not record history")
	}

	if _, err := r.hist.Undo(r.comp); err != nil {
		t.Fatalf("undo: %v", err)
	}
	restored := r.surface(t).Objects()
	if len(restored) != 2 || restored[0] != before[0] || restored[1] != before[1] {
		t.Fatalf("undo did not restore the previous order")
	}
}

func TestSelectMoveRecordsModify(t *testing.T) {
	r := newRig(t)
	r.use(Rectangle)
	if err := r.drag(geom.Pt(40, 40), geom.Pt(80, 80)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	sh := r.surface(t).Objects()[0]

	r.use(Select)
	if err := r.drag(geom.Pt(50, 50), geom.Pt(75, 50)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := sh.Geom.Box; got != (geom.Rect{X: 60, Y: 40, Width: 40, Height: 40}) {
		t.Fatalf("unexpected box after snapped move %+v", got)
	}
	last := r.hist.Entries()[r.hist.Len()-1]
	if last.Kind != history.KindModify || last.Before[0].Box.X != 40 || last.After[0].Box.X != 60 {
		t.Fatalf("unexpected modify entry %+v", last)
	}

	if _, err := r.hist.Undo(r.comp); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if sh.Geom.Box.X != 40 {
		t.Fatalf("undo did not restore geometry: %+v", sh.Geom.Box)
	}
	if _, err := r.hist.Redo(r.comp); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if sh.Geom.Box.X != 60 {
		t.Fatalf("redo did not re-apply geometry: %+v", sh.Geom.Box)
	}
}

func TestSelectResizeFromHandle(t *testing.T) {
	r := newRig(t)
	r.use(Rectangle)
	if err := r.drag(geom.Pt(0, 0), geom.Pt(40, 40)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	sh := r.surface(t).Objects()[0]
	r.use(Select)
	if err := r.drag(geom.Pt(20, 20), geom.Pt(20, 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if r.hist.Len() != 1 {
		t.Fatalf("a click without movement must not record history")
	}
	if err := r.drag(geom.Pt(41, 39), geom.Pt(79, 62)); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if got := sh.Geom.Box; got != (geom.Rect{Width: 80, Height: 60}) {
		t.Fatalf("unexpected box after resize %+v", got)
	}
}

func TestDeleteSelectedRecordsRemove(t *testing.T) {
	r := newRig(t)
	r.use(Line)
	if err := r.drag(geom.Pt(0, 0), geom.Pt(100, 0)); err != nil {
		t.Fatalf("drag: %v", err)
	}
	r.use(Select)
	sel, ok := r.m.Selector()
	if !ok {
		t.Fatalf("select tool not bound")
	}
	if err := sel.DeleteSelected(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
	if err := r.drag(geom.Pt(50, 4), geom.Pt(50, 4)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Selected() == nil {
		t.Fatalf("expected the line to be selected within the hit threshold")
	}
	if err := sel.DeleteSelected(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if r.comp.ObjectCount("layer-1") != 0 {
		t.Fatalf("selection not deleted")
	}
	if last := r.hist.Entries()[r.hist.Len()-1]; last.Kind != history.KindRemove {
		t.Fatalf("expected Remove entry, got %v", last.Kind)
	}
}
