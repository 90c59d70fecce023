package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"techsketch/internal/geom"
	"techsketch/internal/layers"
	"techsketch/internal/shape"
	"techsketch/internal/surface"
	"techsketch/internal/util"
)

var (
	ErrNoSurface   = errors.New("no surface for layer")
	ErrLayerLocked = errors.New("layer is locked")
	ErrLayerHidden = errors.New("layer is hidden")
	ErrNoHandler   = errors.New("no tool bound to layer")
	ErrBusy        = errors.New("object list update already in progress")
)

// keepVisible is how much of a shape's extent Resize keeps inside the viewport.
const keepVisible = 20.0

// EventKind is the phase of a routed pointer event.
type EventKind int

const (
	Press EventKind = iota
	Move
	Release
)

var background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Compositor owns one surface per layer plus the grid overlay, keeps them in
// registry order and routes pointer input to the active, unlocked layer.
type Compositor struct {
	logger *util.Logger

	width  int
	height int

	surfaces map[string]*surface.Surface
	order    []string
	meta     map[string]layers.Layer
	activeID string
	overlay  *surface.Overlay

	// owners maps shape id to the id of the layer that owns it.
	owners map[string]string

	busy bool
}

// New creates an empty compositor for a viewport of the given size.
func New(width, height int, grid geom.Grid, logger *util.Logger) *Compositor {
	if logger == nil {
		logger = util.Discard()
	}
	return &Compositor{
		logger:   logger,
		width:    width,
		height:   height,
		surfaces: make(map[string]*surface.Surface),
		meta:     make(map[string]layers.Layer),
		overlay:  surface.NewOverlay(width, height, grid),
		owners:   make(map[string]string),
	}
}

// Sync reconciles surfaces with the registry: creates surfaces for new
// layers, destroys removed ones, restacks to registry order and re-applies
// visibility and interactivity. It is registered as a registry listener.
func (c *Compositor) Sync(list []layers.Layer, activeID string) {
	keep := make(map[string]bool, len(list))
	order := make([]string, 0, len(list))
	for _, l := range list {
		keep[l.ID] = true
		order = append(order, l.ID)
		if _, ok := c.surfaces[l.ID]; !ok {
			c.surfaces[l.ID] = surface.New(l.ID, c.width, c.height, nil)
			c.logger.Debugf("surface created for %s", l.ID)
		}
		c.meta[l.ID] = l
		c.surfaces[l.ID].SetVisible(l.Visible)
	}
	for id, s := range c.surfaces {
		if keep[id] {
			continue
		}
		s.Unbind()
		for _, sh := range s.Objects() {
			delete(c.owners, sh.ID)
		}
		delete(c.surfaces, id)
		delete(c.meta, id)
		c.logger.Debugf("surface destroyed for %s", id)
	}
	c.order = order
	c.activeID = activeID
	c.Reevaluate()
}

// Reevaluate applies the interactivity gate: only the active layer's surface,
// and only while that layer is visible and unlocked, accepts pointer input.
func (c *Compositor) Reevaluate() {
	for id, s := range c.surfaces {
		m := c.meta[id]
		s.SetInteractive(id == c.activeID && m.Visible && !m.Locked)
	}
}

// Surface returns the surface for a layer.
func (c *Compositor) Surface(layerID string) (*surface.Surface, bool) {
	s, ok := c.surfaces[layerID]
	return s, ok
}

// Order returns layer ids bottom first, matching the registry.
func (c *Compositor) Order() []string {
	return append([]string(nil), c.order...)
}

// ActiveID returns the id of the layer input is routed to.
func (c *Compositor) ActiveID() string {
	return c.activeID
}

// Size returns the viewport size.
func (c *Compositor) Size() (int, int) {
	return c.width, c.height
}

// CanDraw reports why the given layer cannot accept a new gesture, if it cannot.
func (c *Compositor) CanDraw(layerID string) error {
	if _, ok := c.surfaces[layerID]; !ok {
		return fmt.Errorf("%s: %w", layerID, ErrNoSurface)
	}
	m := c.meta[layerID]
	if m.Locked {
		return fmt.Errorf("%s: %w", m.Name, ErrLayerLocked)
	}
	if !m.Visible {
		return fmt.Errorf("%s: %w", m.Name, ErrLayerHidden)
	}
	return nil
}

// Dispatch routes one pointer event to the active surface's handler. Events
// never reach a surface that is not interactive.
func (c *Compositor) Dispatch(kind EventKind, p geom.Point) error {
	s, ok := c.surfaces[c.activeID]
	if !ok {
		return fmt.Errorf("%s: %w", c.activeID, ErrNoSurface)
	}
	if !s.Interactive() {
		if err := c.CanDraw(c.activeID); err != nil {
			return err
		}
		return fmt.Errorf("%s: %w", c.activeID, ErrNoHandler)
	}
	h := s.Handler()
	if h == nil {
		return fmt.Errorf("%s: %w", c.activeID, ErrNoHandler)
	}
	switch kind {
	case Press:
		return h.Press(p)
	case Move:
		h.Move(p)
		return nil
	case Release:
		return h.Release(p)
	}
	return nil
}

// mutate runs fn unless another object-list update is already in flight.
func (c *Compositor) mutate(fn func() error) error {
	if c.busy {
		c.logger.Warnf("dropped nested object list update")
		return ErrBusy
	}
	c.busy = true
	defer func() { c.busy = false }()
	return fn()
}

// Commit appends a promoted shape to a layer's object list and records its owner.
func (c *Compositor) Commit(layerID string, sh *shape.Shape) error {
	return c.mutate(func() error {
		s, ok := c.surfaces[layerID]
		if !ok {
			return fmt.Errorf("%s: %w", layerID, ErrNoSurface)
		}
		if s.Insert(sh, -1) {
			c.owners[sh.ID] = layerID
		}
		return nil
	})
}

// Erase removes a shape from its layer and returns the index it occupied.
func (c *Compositor) Erase(layerID string, sh *shape.Shape) (int, error) {
	index := -1
	err := c.mutate(func() error {
		s, ok := c.surfaces[layerID]
		if !ok {
			return fmt.Errorf("%s: %w", layerID, ErrNoSurface)
		}
		index = s.Remove(sh)
		delete(c.owners, sh.ID)
		return nil
	})
	return index, err
}

// Owner returns the layer that owns the shape with the given id.
func (c *Compositor) Owner(shapeID string) (string, bool) {
	id, ok := c.owners[shapeID]
	return id, ok
}

// HasLayer implements history.Applier.
func (c *Compositor) HasLayer(layerID string) bool {
	_, ok := c.surfaces[layerID]
	return ok
}

// Detach implements history.Applier. Absent shapes are skipped.
func (c *Compositor) Detach(layerID string, shapes []*shape.Shape) ([]int, error) {
	var positions []int
	err := c.mutate(func() error {
		s, ok := c.surfaces[layerID]
		if !ok {
			return fmt.Errorf("%s: %w", layerID, ErrNoSurface)
		}
		for _, sh := range shapes {
			if i := s.Remove(sh); i >= 0 {
				positions = append(positions, i)
			}
			delete(c.owners, sh.ID)
		}
		return nil
	})
	return positions, err
}

// Attach implements history.Applier. Present shapes are skipped.
func (c *Compositor) Attach(layerID string, shapes []*shape.Shape, positions []int) error {
	return c.mutate(func() error {
		s, ok := c.surfaces[layerID]
		if !ok {
			return fmt.Errorf("%s: %w", layerID, ErrNoSurface)
		}
		if len(positions) != len(shapes) {
			for _, sh := range shapes {
				if s.Insert(sh, -1) {
					c.owners[sh.ID] = layerID
				}
			}
			return nil
		}
		// Detach records indices one removal at a time, so reinsert in reverse.
		for i := len(shapes) - 1; i >= 0; i-- {
			if s.Insert(shapes[i], positions[i]) {
				c.owners[shapes[i].ID] = layerID
			}
		}
		return nil
	})
}

// Restore implements history.Applier by applying geometry snapshots.
func (c *Compositor) Restore(layerID string, shapes []*shape.Shape, geoms []shape.Geometry) error {
	return c.mutate(func() error {
		s, ok := c.surfaces[layerID]
		if !ok {
			return fmt.Errorf("%s: %w", layerID, ErrNoSurface)
		}
		for i, sh := range shapes {
			if i < len(geoms) {
				sh.Restore(geoms[i])
			}
		}
		s.Invalidate()
		return nil
	})
}

// HitTest returns the frontmost shape at p on a layer. Hidden and locked
// layers never report hits, and the grid overlay is never consulted.
func (c *Compositor) HitTest(layerID string, p geom.Point, threshold float64) *shape.Shape {
	s, ok := c.surfaces[layerID]
	if !ok || !s.Visible() || c.meta[layerID].Locked {
		return nil
	}
	return s.TopmostAt(p, threshold)
}

// ObjectCount returns the number of committed shapes on a layer.
func (c *Compositor) ObjectCount(layerID string) int {
	if s, ok := c.surfaces[layerID]; ok {
		return s.Len()
	}
	return 0
}

// SetGrid updates the overlay.
func (c *Compositor) SetGrid(g geom.Grid) {
	c.overlay.SetGrid(g)
}

// Resize resizes every surface and the overlay, then moves shapes that fell
// outside the new viewport back so part of each stays visible.
func (c *Compositor) Resize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.overlay.Resize(width, height)
	for _, id := range c.order {
		s := c.surfaces[id]
		s.Resize(width, height)
		for _, sh := range s.Objects() {
			if d, moved := nudge(sh.Bounds(), float64(width), float64(height)); moved {
				sh.Translate(d)
			}
		}
		s.Invalidate()
	}
	c.logger.Debugf("viewport resized to %dx%d", width, height)
}

// nudge returns the translation that brings b back into partial view, from
// past the far edges as well as from negative coordinates.
func nudge(b geom.Rect, width, height float64) (geom.Point, bool) {
	d := geom.Pt(nudgeAxis(b.X, b.Width, width), nudgeAxis(b.Y, b.Height, height))
	return d, d.X != 0 || d.Y != 0
}

func nudgeAxis(start, extent, limit float64) float64 {
	switch {
	case start > limit-keepVisible:
		d := limit - keepVisible - start
		if start+d < 0 {
			d = -start
		}
		return d
	case start < 0 && start+extent < keepVisible:
		return keepVisible - (start + extent)
	}
	return 0
}

// Composite stacks visible surfaces bottom to top over a white background and
// puts the grid on top. Print mode drops the grid and fills.
func (c *Compositor) Composite(printMode bool) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for _, id := range c.order {
		s := c.surfaces[id]
		if !s.Visible() {
			continue
		}
		draw.Draw(dst, dst.Bounds(), s.Render(printMode), image.Point{}, draw.Over)
	}
	if c.overlay.Visible() && !printMode {
		draw.Draw(dst, dst.Bounds(), c.overlay.Render(), image.Point{}, draw.Over)
	}
	return dst
}
