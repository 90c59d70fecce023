package tools

import (
	"techsketch/internal/geom"
	"techsketch/internal/history"
	"techsketch/internal/shape"
	"techsketch/internal/surface"
	"techsketch/internal/util"
)

// Canvas is the part of the compositor the tools draw through.
type Canvas interface {
	Surface(layerID string) (*surface.Surface, bool)
	CanDraw(layerID string) error
	Commit(layerID string, sh *shape.Shape) error
	Erase(layerID string, sh *shape.Shape) (int, error)
	HitTest(layerID string, p geom.Point, threshold float64) *shape.Shape
	Reevaluate()
}

// Recorder receives one history entry per completed gesture.
type Recorder interface {
	Record(e history.Entry)
}

// Machine holds the single active tool configuration and the handler bound
// for it. Reconcile is the only place handlers are bound or unbound.
type Machine struct {
	canvas Canvas
	rec    Recorder
	grid   func() geom.Grid
	logger *util.Logger

	cfg     Config
	handler surface.Handler
	bound   *surface.Surface
}

// NewMachine creates a machine with nothing bound. grid is consulted on every
// snap so grid changes apply to gestures immediately.
func NewMachine(canvas Canvas, rec Recorder, grid func() geom.Grid, logger *util.Logger) *Machine {
	if logger == nil {
		logger = util.Discard()
	}
	if grid == nil {
		grid = geom.DefaultGrid
	}
	return &Machine{canvas: canvas, rec: rec, grid: grid, logger: logger}
}

// Config returns the installed configuration.
func (m *Machine) Config() Config {
	return m.cfg
}

// Handler returns the bound handler, or nil.
func (m *Machine) Handler() surface.Handler {
	return m.handler
}

// Reconcile installs next. When the layer or tool differs from the installed
// config, or the bound surface has been replaced, the old binding is torn
// down (cancelling its gesture) before the new handler is bound. It reports
// whether the binding changed.
func (m *Machine) Reconcile(next Config) bool {
	s, ok := m.canvas.Surface(next.LayerID)
	if m.handler != nil && next.sameBinding(m.cfg) && ok && s == m.bound && s.Handler() == m.handler {
		m.cfg = next
		return false
	}

	m.teardown()
	m.cfg = next
	if ok {
		m.handler = m.newHandler(next.Tool, next.LayerID, s)
		s.Bind(m.handler)
		m.bound = s
		m.logger.Debugf("bound %s tool to %s", next.Tool, next.LayerID)
	}
	m.canvas.Reevaluate()
	return true
}

// Release unbinds the current handler without installing another.
func (m *Machine) Release() {
	m.teardown()
	m.canvas.Reevaluate()
}

func (m *Machine) teardown() {
	if m.handler == nil {
		return
	}
	m.handler.Cancel()
	if m.bound != nil && m.bound.Handler() == m.handler {
		m.bound.Bind(nil)
	}
	m.logger.Debugf("unbound %s tool from %s", m.cfg.Tool, m.cfg.LayerID)
	m.handler = nil
	m.bound = nil
}

func (m *Machine) newHandler(t Tool, layerID string, s *surface.Surface) surface.Handler {
	base := gesture{m: m, layerID: layerID, surface: s}
	switch t {
	case Text:
		return &TextTool{gesture: base}
	case Erase:
		return &EraseTool{gesture: base}
	case Select:
		return &SelectTool{gesture: base}
	}
	kind, _ := t.ShapeKind()
	return &DrawTool{gesture: base, kind: kind}
}

// TextEditor returns the bound text tool when text entry is active.
func (m *Machine) TextEditor() (*TextTool, bool) {
	t, ok := m.handler.(*TextTool)
	if !ok || !t.Editing() {
		return nil, false
	}
	return t, true
}

// Selector returns the bound select tool.
func (m *Machine) Selector() (*SelectTool, bool) {
	t, ok := m.handler.(*SelectTool)
	return t, ok
}

// gesture carries what every handler needs.
type gesture struct {
	m       *Machine
	layerID string
	surface *surface.Surface
}

func (g *gesture) snap(p geom.Point) geom.Point {
	return g.m.grid().SnapPoint(p)
}

func (g *gesture) style() shape.Style {
	return g.m.cfg.Style
}

func (g *gesture) guard() error {
	if g.layerID == "" {
		return ErrNoLayer
	}
	if err := g.m.canvas.CanDraw(g.layerID); err != nil {
		g.m.logger.Warnf("press rejected: %v", err)
		return err
	}
	return nil
}

// commit promotes sh, appends it to the layer and records one Add.
func (g *gesture) commit(sh *shape.Shape) error {
	if sh.Degenerate() {
		g.m.logger.Debugf("discarded degenerate %s", sh.Kind)
		return ErrDegenerate
	}
	sh.Promote()
	if err := g.m.canvas.Commit(g.layerID, sh); err != nil {
		return err
	}
	g.m.rec.Record(history.Entry{
		Kind:    history.KindAdd,
		LayerID: g.layerID,
		Shapes:  []*shape.Shape{sh},
	})
	return nil
}

// remove erases sh from the layer and records one Remove.
func (g *gesture) remove(sh *shape.Shape) error {
	index, err := g.m.canvas.Erase(g.layerID, sh)
	if err != nil {
		return err
	}
	if index < 0 {
		return nil
	}
	g.m.rec.Record(history.Entry{
		Kind:      history.KindRemove,
		LayerID:   g.layerID,
		Shapes:    []*shape.Shape{sh},
		Positions: []int{index},
	})
	return nil
}
