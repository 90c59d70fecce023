package editor

import (
	"image"

	"techsketch/internal/compositor"
	"techsketch/internal/geom"
	"techsketch/internal/history"
	"techsketch/internal/layers"
	"techsketch/internal/shape"
	"techsketch/internal/tools"
	"techsketch/internal/util"
)

const (
	MinStrokeWidth = 1
	MaxStrokeWidth = 10
)

// LayerView is the read-only description of one layer for the layer panel.
type LayerView struct {
	ID          string
	Name        string
	Visible     bool
	Locked      bool
	ObjectCount int
}

// Options configures a new Editor.
type Options struct {
	Width        int
	Height       int
	Grid         geom.Grid
	Style        shape.Style
	HistoryLimit int
	Logger       *util.Logger
}

// Editor is the single entry point the presentation layer talks to. All
// calls are synchronous and run on the caller's goroutine.
type Editor struct {
	logger *util.Logger

	registry *layers.Registry
	comp     *compositor.Compositor
	hist     *history.Manager
	machine  *tools.Machine

	tool      tools.Tool
	style     shape.Style
	grid      geom.Grid
	printMode bool

	notice *Notice
}

// New creates an editor holding one empty layer with the line tool selected.
func New(opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = util.Discard()
	}
	grid := opts.Grid
	if grid.CellSize == 0 {
		grid = geom.DefaultGrid()
	}
	grid.CellSize = geom.ClampCellSize(grid.CellSize)
	style := opts.Style
	if style == (shape.Style{}) {
		style = shape.DefaultStyle()
	}
	style.StrokeWidth = clampWidth(style.StrokeWidth)

	e := &Editor{
		logger: logger,
		tool:   tools.Line,
		style:  style,
		grid:   grid,
	}
	e.registry = layers.NewRegistry()
	e.comp = compositor.New(opts.Width, opts.Height, grid, logger)
	e.hist = history.NewManager(opts.HistoryLimit)
	e.machine = tools.NewMachine(e.comp, e.hist, e.Grid, logger)

	e.registry.OnChange(e.comp.Sync)
	e.registry.OnChange(func([]layers.Layer, string) { e.reconcile() })
	return e
}

func (e *Editor) reconcile() {
	e.machine.Reconcile(tools.Config{
		LayerID: e.registry.ActiveID(),
		Tool:    e.tool,
		Style:   e.style,
	})
}

// Layers returns the layer panel view, bottom layer first, and the active layer id.
func (e *Editor) Layers() ([]LayerView, string) {
	list := e.registry.Snapshot()
	out := make([]LayerView, 0, len(list))
	for _, l := range list {
		out = append(out, LayerView{
			ID:          l.ID,
			Name:        l.Name,
			Visible:     l.Visible,
			Locked:      l.Locked,
			ObjectCount: e.comp.ObjectCount(l.ID),
		})
	}
	return out, e.registry.ActiveID()
}

// ActiveLayer returns the view of the active layer.
func (e *Editor) ActiveLayer() LayerView {
	l := e.registry.Active()
	return LayerView{
		ID:          l.ID,
		Name:        l.Name,
		Visible:     l.Visible,
		Locked:      l.Locked,
		ObjectCount: e.comp.ObjectCount(l.ID),
	}
}

// ObjectCount returns the number of shapes on a layer.
func (e *Editor) ObjectCount(layerID string) int {
	return e.comp.ObjectCount(layerID)
}

// AddLayer appends a layer on top and activates it.
func (e *Editor) AddLayer() LayerView {
	e.commitText()
	l := e.registry.Add()
	e.logger.Infof("added %s (%s)", l.ID, l.Name)
	return LayerView{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked}
}

// RemoveLayer deletes a layer and its shapes. The only layer cannot be removed.
func (e *Editor) RemoveLayer(id string) error {
	e.commitText()
	if err := e.registry.Remove(id); err != nil {
		return e.report(err)
	}
	e.logger.Infof("removed %s", id)
	return nil
}

// ToggleVisibility shows or hides a layer.
func (e *Editor) ToggleVisibility(id string) error {
	e.commitText()
	visible, err := e.registry.ToggleVisibility(id)
	if err != nil {
		return e.report(err)
	}
	e.logger.Debugf("%s visible=%t", id, visible)
	return nil
}

// ToggleLock locks or unlocks a layer. Locking the active layer stops input immediately.
func (e *Editor) ToggleLock(id string) error {
	e.commitText()
	locked, err := e.registry.ToggleLock(id)
	if err != nil {
		return e.report(err)
	}
	e.logger.Debugf("%s locked=%t", id, locked)
	return nil
}

// Rename renames a layer. Blank names are ignored.
func (e *Editor) Rename(id, name string) error {
	got, err := e.registry.Rename(id, name)
	if err != nil {
		return e.report(err)
	}
	if got != name {
		e.logger.Debugf("rename of %s stored as %q", id, got)
	}
	return nil
}

// SetActive makes the given layer the target of tool input.
func (e *Editor) SetActive(id string) error {
	e.commitText()
	return e.report(e.registry.SetActive(id))
}

// CycleLayer activates the layer delta steps above (or below) the active one.
func (e *Editor) CycleLayer(delta int) {
	e.commitText()
	e.registry.Cycle(delta)
}

// Tool returns the selected tool.
func (e *Editor) Tool() tools.Tool {
	return e.tool
}

// SetTool selects a tool. Text being edited is committed first.
func (e *Editor) SetTool(t tools.Tool) {
	if t == e.tool {
		return
	}
	e.commitText()
	e.tool = t
	e.reconcile()
	e.logger.Debugf("tool %s", t)
}

// Style returns the style applied to new shapes.
func (e *Editor) Style() shape.Style {
	return e.style
}

// SetStyle replaces the style for new shapes. Stroke width is clamped to 1-10.
func (e *Editor) SetStyle(s shape.Style) {
	s.StrokeWidth = clampWidth(s.StrokeWidth)
	e.style = s
	e.reconcile()
}

func clampWidth(w float64) float64 {
	if w < MinStrokeWidth {
		return MinStrokeWidth
	}
	if w > MaxStrokeWidth {
		return MaxStrokeWidth
	}
	return w
}

// Grid returns the grid configuration.
func (e *Editor) Grid() geom.Grid {
	return e.grid
}

// SetGrid replaces the grid configuration. Cell size is clamped to 10-50.
func (e *Editor) SetGrid(g geom.Grid) {
	g.CellSize = geom.ClampCellSize(g.CellSize)
	e.grid = g
	e.comp.SetGrid(g)
}

// ToggleGrid shows or hides the grid overlay.
func (e *Editor) ToggleGrid() {
	g := e.grid
	g.Visible = !g.Visible
	e.SetGrid(g)
}

// ToggleSnap switches snap-to-grid.
func (e *Editor) ToggleSnap() {
	g := e.grid
	g.Snap = !g.Snap
	e.SetGrid(g)
}

// AdjustGridSize grows or shrinks the cell size.
func (e *Editor) AdjustGridSize(delta float64) {
	g := e.grid
	g.CellSize += delta
	e.SetGrid(g)
}

// PrintMode reports whether grid and fills are hidden.
func (e *Editor) PrintMode() bool {
	return e.printMode
}

// SetPrintMode hides the grid and fills without touching shape data.
func (e *Editor) SetPrintMode(on bool) {
	e.printMode = on
}

// Resize changes the viewport size in pixels.
func (e *Editor) Resize(width, height int) {
	e.comp.Resize(width, height)
}

// Size returns the viewport size in pixels.
func (e *Editor) Size() (int, int) {
	return e.comp.Size()
}

// Composite renders all visible layers and the grid.
func (e *Editor) Composite() *image.RGBA {
	return e.comp.Composite(e.printMode)
}

// PointerDown starts a gesture on the active layer.
func (e *Editor) PointerDown(p geom.Point) error {
	e.ClearNotice()
	return e.report(e.comp.Dispatch(compositor.Press, p))
}

// PointerMove updates a gesture in progress. It never reports.
func (e *Editor) PointerMove(p geom.Point) {
	_ = e.comp.Dispatch(compositor.Move, p)
}

// PointerUp completes a gesture.
func (e *Editor) PointerUp(p geom.Point) error {
	return e.report(e.comp.Dispatch(compositor.Release, p))
}

// Undo reverts the most recent entry.
func (e *Editor) Undo() error {
	e.ClearNotice()
	e.cancelGesture()
	entry, err := e.hist.Undo(e.comp)
	if err != nil {
		return e.report(err)
	}
	e.logger.Debugf("undo %s on %s", entry.Kind, entry.LayerID)
	return nil
}

// Redo re-applies the next entry.
func (e *Editor) Redo() error {
	e.ClearNotice()
	e.cancelGesture()
	entry, err := e.hist.Redo(e.comp)
	if err != nil {
		return e.report(err)
	}
	e.logger.Debugf("redo %s on %s", entry.Kind, entry.LayerID)
	return nil
}

// CanUndo and CanRedo report whether the history has anything to replay.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// DeleteSelection removes the selected shape when the select tool is active.
func (e *Editor) DeleteSelection() error {
	sel, ok := e.machine.Selector()
	if !ok {
		return e.report(tools.ErrNothingSelected)
	}
	return e.report(sel.DeleteSelected())
}

// Selected returns the shape selected by the select tool, if any.
func (e *Editor) Selected() *shape.Shape {
	if sel, ok := e.machine.Selector(); ok {
		return sel.Selected()
	}
	return nil
}

// TextEditing reports whether a text shape is open for typing.
func (e *Editor) TextEditing() bool {
	_, ok := e.machine.TextEditor()
	return ok
}

// TypeText inserts s into the text being edited.
func (e *Editor) TypeText(s string) {
	if ed, ok := e.machine.TextEditor(); ok {
		ed.Insert(s)
	}
}

// Backspace deletes the last character of the text being edited.
func (e *Editor) Backspace() {
	if ed, ok := e.machine.TextEditor(); ok {
		ed.Backspace()
	}
}

// CommitText finishes the text being edited.
func (e *Editor) CommitText() error {
	ed, ok := e.machine.TextEditor()
	if !ok {
		return e.report(tools.ErrNotEditing)
	}
	return e.report(ed.Commit())
}

// CancelText drops the text being edited.
func (e *Editor) CancelText() {
	if ed, ok := e.machine.TextEditor(); ok {
		ed.Cancel()
	}
}

func (e *Editor) commitText() {
	if ed, ok := e.machine.TextEditor(); ok {
		_ = e.report(ed.Commit())
	}
}

// Gesturing reports whether a press has started a drag that has not been
// released yet: a shape being drawn, or a selection being moved or resized.
func (e *Editor) Gesturing() bool {
	switch h := e.machine.Handler().(type) {
	case *tools.DrawTool:
		return h.Drawing()
	case *tools.SelectTool:
		return h.Dragging()
	}
	return false
}

func (e *Editor) cancelGesture() {
	if h := e.machine.Handler(); h != nil {
		h.Cancel()
	}
}
